// Package metrics holds the Prometheus collectors of the memo service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestDuration is the latency of API requests in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// DBQueryDuration is the latency of memo store operations in seconds.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memo_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"operation", "table"},
	)

	// UpstreamCallLatency covers the speech, classifier and login backends.
	UpstreamCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memo_upstream_call_latency_ms",
			Help:    "Upstream service call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(50, 2, 10), // 50ms to ~25s
		},
		[]string{"endpoint", "status"},
	)

	TemporalResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memo_temporal_resolutions_total",
			Help: "Temporal resolutions by winning strategy",
		},
		[]string{"source"}, // source: explicit_zh, explicit_en, search_based, fallback_generic, none
	)

	ActionsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memo_actions_total",
			Help: "Resolved actions by kind and category",
		},
		[]string{"kind", "category"},
	)

	// LowConfidence counts create labels demoted to Others.
	LowConfidence = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "memo_low_confidence_total",
			Help: "Create labels below the Others fallback threshold",
		},
	)
)

// RecordHTTPRequestDuration records the latency of one API request
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration records the latency of one store operation
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordUpstreamCall records the latency of one upstream request
func RecordUpstreamCall(endpoint, status string, duration time.Duration) {
	UpstreamCallLatency.WithLabelValues(endpoint, status).Observe(float64(duration.Milliseconds()))
}

// IncrementTemporal counts a resolution; pass "none" when nothing matched.
func IncrementTemporal(source string) {
	TemporalResolutions.WithLabelValues(source).Inc()
}

// IncrementAction counts a resolved action
func IncrementAction(kind, category string) {
	ActionsResolved.WithLabelValues(kind, category).Inc()
}

// IncrementLowConfidence counts a demotion to Others
func IncrementLowConfidence() {
	LowConfidence.Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
