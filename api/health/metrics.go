package health

import "github.com/prometheus/client_golang/prometheus"

var requestLabels = []string{"method", "path", "status"}

var (
	// HttpDuration tracks request latency per route and status.
	HttpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "api",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		requestLabels,
	)

	// HttpRequests counts requests per route and status.
	HttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "api",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		},
		requestLabels,
	)
)
