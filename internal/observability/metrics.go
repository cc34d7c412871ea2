package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostSaves counts draft-manager save operations by resulting status and
	// whether the save patched an existing draft or inserted a new record.
	PostSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_post_saves_total",
		Help: "Total draft-manager saves by status and effect",
	}, []string{"status", "effect"})

	// FollowToggles counts follow toggle operations by outcome.
	FollowToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_follow_toggles_total",
		Help: "Total follow toggles by resulting edge state",
	}, []string{"result"})

	// ImageUploads counts upload proxy requests by outcome.
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_image_uploads_total",
		Help: "Total image upload proxy requests by outcome",
	}, []string{"outcome"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
