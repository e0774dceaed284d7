package structs

import "time"

type Config struct {
	Server    *ServerConfig
	Cors      *CorsConfig
	Database  *DatabaseConfig
	Cache     *CacheConfig
	Auth      *AuthConfig
	Email     *EmailConfig
	Token     *TokenConfig
	RateLimit *RateLimitConfig
}

type ServerConfig struct {
	AppName        string        // Atelier
	Environment    string        // development, production
	Port           string        // :8084
	FrontendURL    string        // base URL for deep links in emails
	ServerURL      string        // public URL of this API
	ReadTimeout    time.Duration // in seconds
	WriteTimeout   time.Duration // in seconds
	IdleTimeout    time.Duration // in seconds
	MaxHeaderBytes int           // in bytes
}

type CorsConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	MaxConns     int
	MinConns     int
	MaxLifetime  time.Duration // in seconds
	MaxIdleTime  time.Duration // in seconds
	ReadTimeout  time.Duration // in seconds
	WriteTimeout time.Duration // in seconds
}

type CacheConfig struct {
	Address         string
	Username        string
	Password        string
	DB              int
	PoolSize        int
	MinIdleConns    int
	MaxIdleConns    int
	PoolTimeout     time.Duration
	IdleTimeout     time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	UserCacheTTL    time.Duration
	ArtworkCacheTTL time.Duration
}

type AuthConfig struct {
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration
	BlacklistCacheTTL  time.Duration
}

type EmailConfig struct {
	ApiKey       string
	From         string
	SupportEmail string
}

// TokenConfig drives the verification/reset token flow.
type TokenConfig struct {
	TTL            time.Duration // lifetime of an unconsumed token
	SweepInterval  time.Duration // how often expired tokens are garbage collected
	ResendCooldown time.Duration // minimum gap between re-sends per account
}

type RateLimitConfig struct {
	Enabled       bool
	AuthLimit     int
	AuthWindow    time.Duration
	GeneralLimit  int
	GeneralWindow time.Duration
}
