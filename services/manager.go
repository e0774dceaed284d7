package services

import (
	"atelier_server/database"
	"atelier_server/structs"

	"github.com/MonkyMars/gecho"
)

type ServiceManager struct {
	AuthService    *AuthService
	TokenService   *TokenService
	EmailService   *EmailService
	CacheService   *CacheService
	HealthService  *HealthService
	ArtworkService *ArtworkService
	Accounts       AccountStore
}

// NewServiceManager wires the service graph. The email sender is injected so
// the provider client is constructed exactly once, at startup.
func NewServiceManager(logger *gecho.Logger, cfg *structs.Config, db *database.DB, sender Sender) *ServiceManager {
	cacheService := NewCacheService(logger, cfg)
	authService := NewAuthService(logger, cfg, db, cacheService)
	accounts := NewAccountStore(db)
	tokenService := NewTokenService(logger, cfg, NewTokenStore(db), accounts)
	emailService := NewEmailService(logger, cfg, sender)
	healthService := NewHealthService(logger, db, cacheService)
	artworkService := NewArtworkService(logger, db, cacheService)

	return &ServiceManager{
		AuthService:    authService,
		TokenService:   tokenService,
		EmailService:   emailService,
		CacheService:   cacheService,
		HealthService:  healthService,
		ArtworkService: artworkService,
		Accounts:       accounts,
	}
}
