package middleware

import (
	"atelier_server/services"
	"atelier_server/structs"

	"github.com/MonkyMars/gecho"
)

type Middleware struct {
	logger       *gecho.Logger
	cfg          *structs.Config
	authService  *services.AuthService
	cacheService *services.CacheService
}

func NewMiddleware(logger *gecho.Logger, cfg *structs.Config, authService *services.AuthService, cacheService *services.CacheService) *Middleware {
	return &Middleware{
		logger:       logger,
		cfg:          cfg,
		authService:  authService,
		cacheService: cacheService,
	}
}
