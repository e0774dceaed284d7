package artworks

import (
	"atelier_server/api/middleware"
	"atelier_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type ArtworkRoutesManager struct {
	logger         *gecho.Logger
	artworkService *services.ArtworkService
	mw             *middleware.Middleware
}

func NewArtworkRoutesManager(
	logger *gecho.Logger,
	artworkService *services.ArtworkService,
	mw *middleware.Middleware,
) *ArtworkRoutesManager {
	return &ArtworkRoutesManager{
		logger:         logger,
		artworkService: artworkService,
		mw:             mw,
	}
}

func (wrm *ArtworkRoutesManager) RegisterRoutes(r chi.Router) {
	r.Get("/artworks", wrm.FetchAllArtworks)
	r.Get("/artworks/{id}", wrm.FetchArtworkByID)

	// Editing an artwork is restricted to the owning artist (or an admin)
	r.Group(func(r chi.Router) {
		r.Use(wrm.mw.UserAuthMiddleware)
		r.Patch("/artworks/{id}", wrm.UpdateArtwork)
	})
}
