package auth

import (
	"atelier_server/api/middleware"
	"atelier_server/services"
	"atelier_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type AuthRoutesManager struct {
	logger       *gecho.Logger
	authService  *services.AuthService
	tokenService *services.TokenService
	emailService *services.EmailService
	cacheService *services.CacheService
	accounts     services.AccountStore
	cfg          *structs.Config
	mw           *middleware.Middleware
}

func NewAuthRoutesManager(
	logger *gecho.Logger,
	authService *services.AuthService,
	tokenService *services.TokenService,
	emailService *services.EmailService,
	cacheService *services.CacheService,
	accounts services.AccountStore,
	cfg *structs.Config,
	mw *middleware.Middleware,
) *AuthRoutesManager {
	return &AuthRoutesManager{
		logger:       logger,
		authService:  authService,
		tokenService: tokenService,
		emailService: emailService,
		cacheService: cacheService,
		accounts:     accounts,
		cfg:          cfg,
		mw:           mw,
	}
}

func (ar *AuthRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		// CSRF token endpoint (must be called before protected routes)
		r.Get("/csrf", ar.HandleCSRF)

		// Public routes behind CSRF
		r.Group(func(r chi.Router) {
			r.Use(ar.mw.CSRFMiddleware())
			r.Post("/register", ar.HandleRegister)
			r.Post("/login", ar.HandleLogin)
			r.Post("/logout", ar.HandleLogout)
			r.Post("/reset", ar.HandleReset)
			r.Post("/new-password", ar.HandleNewPassword)
			r.Post("/resend-verification", ar.HandleResendVerification)
		})

		r.Get("/me", ar.HandleMe)

		// Email deep link target, hit from the mail client so no CSRF
		r.Get("/new-verification", ar.HandleNewVerification)
	})
}
