package middleware

import "github.com/rs/cors"

// SetupCORS builds the CORS handler straight from config, so origins and
// headers can change per environment without a code change.
func (mw *Middleware) SetupCORS() *cors.Cors {
	c := mw.cfg.Cors

	return cors.New(cors.Options{
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   c.AllowedMethods,
		AllowedHeaders:   c.AllowedHeaders,
		ExposedHeaders:   c.ExposedHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAge,
	})
}
