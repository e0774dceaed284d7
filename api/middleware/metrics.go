package middleware

import (
	"net/http"
	"strconv"
	"time"

	"atelier_server/api/health"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsMiddleware records a counter increment and a latency observation per
// request, labelled by method, path and final status code.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		labels := prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": strconv.Itoa(ww.Status()),
		}
		health.HttpRequests.With(labels).Inc()
		health.HttpDuration.With(labels).Observe(elapsed.Seconds())
	})
}
