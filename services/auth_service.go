package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"atelier_server/database"
	"atelier_server/lib"
	"atelier_server/structs"
	"atelier_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

// DefaultParams is the argon2id cost profile used for all new hashes.
// Stored hashes carry their own parameters, so this can change without
// invalidating existing accounts.
var DefaultParams = &structs.ArgonParams{
	Memory:  64 * 1024, // KiB
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

// AuthService owns credentials and sessions: argon2id password hashing,
// JWT access/refresh token pairs, and the cached user lookup behind them.
type AuthService struct {
	logger       *gecho.Logger
	cfg          *structs.Config
	db           *database.DB
	cacheService *CacheService
}

func NewAuthService(logger *gecho.Logger, cfg *structs.Config, db *database.DB, cacheService *CacheService) *AuthService {
	return &AuthService{
		logger:       logger,
		cfg:          cfg,
		db:           db,
		cacheService: cacheService,
	}
}

// Login checks the credentials and returns the account with its hash
// scrubbed. Every failure mode collapses into ErrInvalidCredentials so the
// response never betrays whether the address is registered.
func (as *AuthService) Login(ctx context.Context, req *structs.AuthRequest) (*tables.User, error) {
	user, err := database.Query[tables.User](as.db).Where("email", req.Email).First(ctx)
	if err != nil {
		mapped := lib.MapPgError(err)
		if !lib.IsNotFound(mapped) {
			as.logger.Error("Unexpected database error during login",
				gecho.Field("error", mapped),
				gecho.Field("error_detail", lib.GetDetailForLogging(err)),
			)
		}
		return nil, lib.ErrInvalidCredentials
	}
	if user == nil {
		as.logger.Debug("Login attempt for unknown address", gecho.Field("identifier", req.Email))
		return nil, lib.ErrInvalidCredentials
	}

	ok, err := as.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		as.logger.Error("Failed to verify password hash", gecho.Field("error", err), gecho.Field("user_id", user.Id))
		return nil, err
	}
	if !ok {
		as.logger.Debug("Wrong password", gecho.Field("user_id", user.Id))
		return nil, lib.ErrInvalidCredentials
	}

	user.PasswordHash = ""

	if err := as.cacheService.SetUserInCache(user); err != nil {
		as.logger.Warn("Failed to cache user after login", gecho.Field("error", err), gecho.Field("user_id", user.Id))
	}

	as.logger.Debug("Login succeeded", gecho.Field("user_id", user.Id))
	return user, nil
}

// Register hashes the password and creates the account. Duplicate usernames
// or addresses surface as a conflict for the handler to map.
func (as *AuthService) Register(ctx context.Context, req *structs.RegisterRequest) (*tables.User, error) {
	passwordHash, err := as.HashPassword(req.Password, DefaultParams)
	if err != nil {
		as.logger.Error("Failed to hash password", gecho.Field("error", err))
		return nil, err
	}

	user, err := database.Query[tables.User](as.db).Insert(ctx, &tables.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		mapped := lib.MapPgError(err)
		if lib.IsUniqueViolation(mapped) {
			as.logger.Warn("Registration collides with existing account", gecho.Field("username", req.Username))
		} else {
			as.logger.Error("Database error during registration", gecho.Field("error", mapped))
		}
		return nil, mapped
	}

	as.logger.Debug("Account created", gecho.Field("user_id", user.Id))

	user.PasswordHash = ""
	return user, nil
}

// HashPassword produces an encoded argon2id hash in the standard
// $argon2id$v=19$m=..,t=..,p=..$salt$hash form.
func (as *AuthService) HashPassword(password string, p *structs.ArgonParams) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword re-derives the key with the parameters stored in the
// encoded hash and compares in constant time.
func (as *AuthService) VerifyPassword(password, encodedHash string) (bool, error) {
	parts, err := lib.DecodeArgon2Hash(encodedHash)
	if err != nil {
		return false, err
	}

	key := argon2.IDKey([]byte(password), parts.Salt, parts.Time, parts.Memory, parts.Threads, parts.KeyLen)
	return lib.SecureCompare(key, parts.Hash), nil
}

// GenerateAccessToken signs a short-lived token for API access.
func (as *AuthService) GenerateAccessToken(user *tables.User) (string, error) {
	return as.signToken(user, as.cfg.Auth.AccessTokenSecret, as.GetAccessTokenExpiration())
}

// GenerateRefreshToken signs a long-lived token used only to mint new pairs.
func (as *AuthService) GenerateRefreshToken(user *tables.User) (string, error) {
	return as.signToken(user, as.cfg.Auth.RefreshTokenSecret, as.GetRefreshTokenExpiration())
}

func (as *AuthService) signToken(user *tables.User, secret string, exp time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.Id.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   time.Now().Unix(),
		"exp":   exp.Unix(),
		"jti":   uuid.New().String(),
	})
	return token.SignedString([]byte(secret))
}

func (as *AuthService) GetAccessTokenExpiration() time.Time {
	return time.Now().Add(as.cfg.Auth.AccessTokenExpiry)
}

func (as *AuthService) GetRefreshTokenExpiration() time.Time {
	return time.Now().Add(as.cfg.Auth.RefreshTokenExpiry)
}

// RefreshAccessToken validates the refresh token (signature, expiry, jti not
// revoked) and returns a fresh token pair for its subject.
func (as *AuthService) RefreshAccessToken(refreshToken string) (*tables.AuthResponse, error) {
	claims, err := lib.ParseToken(refreshToken, as.cfg.Auth.RefreshTokenSecret)
	if err != nil {
		as.logger.Debug("Refresh token failed to parse", gecho.Field("error", err))
		return nil, lib.ErrTokenInvalid
	}

	if time.Now().After(claims.Exp) {
		return nil, lib.ErrTokenExpired
	}

	revoked, err := as.cacheService.IsTokenBlacklisted(claims.Jti)
	if err != nil {
		as.logger.Error("Blacklist lookup failed", gecho.Field("error", err), gecho.Field("jti", claims.Jti))
		return nil, err
	}
	if revoked {
		as.logger.Warn("Revoked refresh token presented", gecho.Field("jti", claims.Jti))
		return nil, lib.ErrTokenInvalid
	}

	user, err := as.GetUserByID(claims.Sub)
	if err != nil {
		return nil, err
	}

	accessToken, err := as.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	newRefreshToken, err := as.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &tables.AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// GetUserByID reads through the cache; a miss falls back to Postgres and
// repopulates the cache off the hot path.
func (as *AuthService) GetUserByID(userId uuid.UUID) (*tables.User, error) {
	cached, err := as.cacheService.GetUserFromCache(userId)
	if err != nil {
		as.logger.Warn("User cache read failed", gecho.Field("error", err), gecho.Field("user_id", userId))
	} else if cached != nil {
		return cached, nil
	}

	user, err := database.Query[tables.User](as.db).Where("id", userId).First(context.Background())
	if err != nil {
		as.logger.Error("Failed to load user", gecho.Field("error", err), gecho.Field("user_id", userId))
		return nil, lib.MapPgError(err)
	}

	go func() {
		if err := as.cacheService.SetUserInCache(user); err != nil {
			as.logger.Warn("Failed to cache user", gecho.Field("error", err), gecho.Field("user_id", userId))
		}
	}()

	return user, nil
}

func (as *AuthService) GetAccessTokenSecret() string {
	return as.cfg.Auth.AccessTokenSecret
}

func (as *AuthService) GetRefreshTokenSecret() string {
	return as.cfg.Auth.RefreshTokenSecret
}

// UpdateLastLogin stamps the login time, called off the request path.
func (as *AuthService) UpdateLastLogin(userId uuid.UUID) error {
	_, err := database.Query[tables.User](as.db).Where("id", userId).Update(context.Background(), map[string]any{
		"last_login": time.Now(),
	})
	if err != nil {
		return lib.MapPgError(err)
	}
	return nil
}
