package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
)

// limitFor picks the quota bucket for a path. Everything under /auth/ gets
// the strict bucket, including the raw token endpoints, so reset emails
// cannot be farmed and tokens cannot be brute-forced.
func (mw *Middleware) limitFor(path string) (limit int, window time.Duration) {
	if strings.HasPrefix(path, "/auth/") {
		return mw.cfg.RateLimit.AuthLimit, mw.cfg.RateLimit.AuthWindow
	}
	return mw.cfg.RateLimit.GeneralLimit, mw.cfg.RateLimit.GeneralWindow
}

// clientAddr resolves the caller's IP, preferring proxy headers when the
// server sits behind a load balancer.
func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		addr = addr[:idx]
	}
	return addr
}

// normalizeEndpoint collapses dynamic segments so counter keys stay bounded:
// /artworks/<uuid> counts against a single /artworks/:id bucket.
func normalizeEndpoint(path string) string {
	path = strings.TrimSuffix(path, "/")

	if strings.HasPrefix(path, "/artworks/") && path != "/artworks" {
		return "/artworks/:id"
	}
	return path
}

func writeRateHeaders(w http.ResponseWriter, limit, remaining int, window time.Duration) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(window).Unix(), 10))
}

// RateLimitMiddleware counts requests per client IP and endpoint in Redis and
// rejects the overflow with 429. Redis failures fail open: a degraded cache
// should slow nobody down.
func (mw *Middleware) RateLimitMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mw.cfg.RateLimit.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			// Probes and the root path are exempt.
			if strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/" {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientAddr(r)
			limit, window := mw.limitFor(r.URL.Path)
			endpoint := normalizeEndpoint(r.URL.Path)

			count, err := mw.cacheService.IncrementRateLimit(ip, endpoint, window)
			if err != nil {
				mw.logger.Warn("Rate limit counter unavailable, allowing request",
					gecho.Field("error", err),
					gecho.Field("ip", ip),
					gecho.Field("endpoint", endpoint),
				)
				next.ServeHTTP(w, r)
				return
			}

			if count > limit {
				mw.logger.Warn("Rate limit exceeded",
					gecho.Field("ip", ip),
					gecho.Field("endpoint", endpoint),
					gecho.Field("count", count),
					gecho.Field("limit", limit),
				)

				writeRateHeaders(w, limit, 0, window)
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))

				gecho.TooManyRequests(w,
					gecho.WithMessage("Rate limit exceeded. Please try again later."),
					gecho.Send(),
				)
				return
			}

			writeRateHeaders(w, limit, max(0, limit-count), window)
			next.ServeHTTP(w, r)
		})
	}
}
