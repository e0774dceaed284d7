package api

import (
	"atelier_server/api/artworks"
	"atelier_server/api/auth"
	"atelier_server/api/health"
	"atelier_server/api/middleware"
	"atelier_server/services"
	"atelier_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type routerManager struct {
	artworkRoutes *artworks.ArtworkRoutesManager
	healthRoutes  *health.HealthRoutesManager
	authRoutes    *auth.AuthRoutesManager
}

func NewRouterManager(
	logger *gecho.Logger,
	cfg *structs.Config,
	sm *services.ServiceManager,
	mw *middleware.Middleware,
) *routerManager {
	return &routerManager{
		artworkRoutes: artworks.NewArtworkRoutesManager(logger, sm.ArtworkService, mw),
		healthRoutes:  health.NewHealthRoutesManager(sm.HealthService),
		authRoutes: auth.NewAuthRoutesManager(
			logger,
			sm.AuthService,
			sm.TokenService,
			sm.EmailService,
			sm.CacheService,
			sm.Accounts,
			cfg,
			mw,
		),
	}
}

func (rm *routerManager) RegisterRoutes(r chi.Router) {
	rm.artworkRoutes.RegisterRoutes(r)
	rm.healthRoutes.RegisterRoutes(r)
	rm.authRoutes.RegisterRoutes(r)
}
