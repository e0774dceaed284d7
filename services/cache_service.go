package services

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"atelier_server/config"
	"atelier_server/structs"
	"atelier_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cacheRetries = 3

var (
	redisClient *redis.Client
	redisOnce   sync.Once
	redisCtx    = context.Background()
)

// CacheService fronts the shared Redis client: user and artwork read caches,
// the JWT jti blacklist, and rate-limit counters.
type CacheService struct {
	logger *gecho.Logger
	config *structs.Config
	client *redis.Client
}

func NewCacheService(logger *gecho.Logger, cfg *structs.Config) *CacheService {
	return &CacheService{
		logger: logger,
		config: cfg,
		client: getRedisClient(),
	}
}

// getRedisClient builds the process-wide client on first use. Pool and
// timeout tuning comes from CacheConfig.
func getRedisClient() *redis.Client {
	redisOnce.Do(func() {
		cache := config.GetConfig().Cache
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cache.Address,
			Username: cache.Username,
			Password: cache.Password,
			DB:       cache.DB,

			PoolSize:        cache.PoolSize,
			MinIdleConns:    cache.MinIdleConns,
			MaxIdleConns:    cache.MaxIdleConns,
			PoolTimeout:     cache.PoolTimeout,
			ConnMaxIdleTime: cache.IdleTimeout,

			DialTimeout:  cache.DialTimeout,
			ReadTimeout:  cache.ReadTimeout,
			WriteTimeout: cache.WriteTimeout,

			MaxRetries:      cache.MaxRetries,
			MinRetryBackoff: cache.MinRetryBackoff,
			MaxRetryBackoff: cache.MaxRetryBackoff,
		})
	})
	return redisClient
}

// Close releases the shared connection pool.
func (cs *CacheService) Close() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}

func userKey(id uuid.UUID) string { return "user:" + id.String() }

func artworkKey(id uuid.UUID) string { return "artwork:" + id.String() }

func blacklistKey(jti uuid.UUID) string { return "blacklist:" + jti.String() }

func rateKey(ip, endpoint string) string {
	return fmt.Sprintf("ratelimit:%s:%s", ip, endpoint)
}

// withRetry reruns op on connection-level failures with exponential backoff
// and random jitter. Logical outcomes like a missing key never retry.
func (cs *CacheService) withRetry(op func() error) error {
	var err error
	for attempt := 0; attempt < cacheRetries; attempt++ {
		if err = op(); err == nil || !retryableRedisError(err) {
			return err
		}
		if attempt < cacheRetries-1 {
			time.Sleep(cacheBackoff(attempt))
		}
	}
	return fmt.Errorf("redis operation failed after %d attempts: %w", cacheRetries, err)
}

// cacheBackoff doubles a 100ms base per attempt, caps at 2s, and spreads
// the result over [half, full] so parallel callers don't thunder in step.
func cacheBackoff(attempt int) time.Duration {
	backoff := 100 * time.Millisecond << attempt
	if backoff > 2*time.Second {
		backoff = 2 * time.Second
	}

	var raw [8]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return backoff
	}
	jitter := time.Duration(binary.BigEndian.Uint64(raw[:]) % uint64(backoff/2+1))
	return backoff/2 + jitter
}

func retryableRedisError(err error) bool {
	if err == nil || err == redis.Nil {
		return false
	}
	for _, fragment := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"broken pipe",
		"no such host",
		"network is unreachable",
	} {
		if strings.Contains(err.Error(), fragment) {
			return true
		}
	}
	return false
}

// Set stores a value under key with the given TTL.
func (cs *CacheService) Set(key string, value any, ttl time.Duration) error {
	return cs.withRetry(func() error {
		return cs.client.Set(redisCtx, key, value, ttl).Err()
	})
}

// Get returns the value under key, or "" when the key does not exist.
func (cs *CacheService) Get(key string) (string, error) {
	var value string
	err := cs.withRetry(func() error {
		val, err := cs.client.Get(redisCtx, key).Result()
		if err == redis.Nil {
			return nil
		}
		value = val
		return err
	})
	return value, err
}

// Delete removes a key. Deleting a missing key is not an error.
func (cs *CacheService) Delete(key string) error {
	return cs.withRetry(func() error {
		return cs.client.Del(redisCtx, key).Err()
	})
}

// BlacklistToken marks a jti as revoked until the token's own expiry, so the
// entry disappears exactly when the token would have stopped working anyway.
func (cs *CacheService) BlacklistToken(jti uuid.UUID, exp time.Time) error {
	ttl := cs.config.Auth.BlacklistCacheTTL
	if exp.After(time.Now()) {
		ttl = time.Until(exp)
	}
	return cs.Set(blacklistKey(jti), "true", ttl)
}

// IsTokenBlacklisted reports whether a jti has been revoked.
func (cs *CacheService) IsTokenBlacklisted(jti uuid.UUID) (bool, error) {
	val, err := cs.Get(blacklistKey(jti))
	if err != nil {
		return false, err
	}
	return val == "true", nil
}

// GetUserFromCache returns the cached user, or nil on a miss.
func (cs *CacheService) GetUserFromCache(userID uuid.UUID) (*tables.User, error) {
	return getJSON[tables.User](cs, userKey(userID))
}

// SetUserInCache caches a user under its id.
func (cs *CacheService) SetUserInCache(user *tables.User) error {
	if user == nil {
		return nil
	}
	return setJSON(cs, userKey(user.Id), user, cs.config.Cache.UserCacheTTL)
}

// DeleteUserFromCache drops the cached user, typically on logout or after a
// mutation that makes the cached copy stale.
func (cs *CacheService) DeleteUserFromCache(userID uuid.UUID) error {
	return cs.Delete(userKey(userID))
}

// GetArtworkFromCache returns the cached artwork, or nil on a miss.
func (cs *CacheService) GetArtworkFromCache(artworkID uuid.UUID) (*tables.Artwork, error) {
	artwork, err := getJSON[tables.Artwork](cs, artworkKey(artworkID))
	if err != nil {
		cs.logger.Warn("Failed to get artwork from cache", gecho.Field("error", err), gecho.Field("artwork_id", artworkID))
		return nil, err
	}
	return artwork, nil
}

// SetArtworkInCache caches an artwork under its id.
func (cs *CacheService) SetArtworkInCache(artwork *tables.Artwork) error {
	if artwork == nil {
		return nil
	}
	return setJSON(cs, artworkKey(artwork.Id), artwork, cs.artworkCacheTTL())
}

// InvalidateArtworkCache drops the cached artwork after an update.
func (cs *CacheService) InvalidateArtworkCache(artworkID uuid.UUID) error {
	return cs.Delete(artworkKey(artworkID))
}

func (cs *CacheService) artworkCacheTTL() time.Duration {
	if ttl := cs.config.Cache.ArtworkCacheTTL; ttl > 0 {
		return ttl
	}
	return 5 * time.Minute
}

// IncrementRateLimit bumps the counter for (ip, endpoint) and returns the
// new count. The window TTL starts on the first hit.
func (cs *CacheService) IncrementRateLimit(ip, endpoint string, window time.Duration) (int, error) {
	key := rateKey(ip, endpoint)

	var count int64
	err := cs.withRetry(func() error {
		val, err := cs.client.Incr(redisCtx, key).Result()
		if err != nil {
			return err
		}
		count = val
		if val == 1 {
			return cs.client.Expire(redisCtx, key, window).Err()
		}
		return nil
	})
	return int(count), err
}

// Ping round-trips the connection, for health checks.
func (cs *CacheService) Ping() error {
	return cs.withRetry(func() error {
		return cs.client.Ping(redisCtx).Err()
	})
}

// GetConnectionStats exposes pool counters for the health endpoint.
func (cs *CacheService) GetConnectionStats() map[string]any {
	stats := cs.client.PoolStats()
	return map[string]any{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}

func setJSON[T any](cs *CacheService, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return cs.Set(key, data, ttl)
}

func getJSON[T any](cs *CacheService, key string) (*T, error) {
	val, err := cs.Get(key)
	if err != nil || val == "" {
		return nil, err
	}

	var result T
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
