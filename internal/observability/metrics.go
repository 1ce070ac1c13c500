package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amateurs_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "amateurs_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostLifecycleTotal counts post mutations by operation and outcome.
	PostLifecycleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amateurs_post_lifecycle_total",
		Help: "Post create/update/delete/blind operations by outcome",
	}, []string{"operation", "outcome"})

	// EmbeddingTasksTotal counts embedding indexer tasks by operation and outcome.
	EmbeddingTasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amateurs_embedding_tasks_total",
		Help: "Embedding indexer tasks by operation and outcome",
	}, []string{"operation", "outcome"})

	// EmbeddingTaskDuration records how long embedding tasks take.
	EmbeddingTaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "amateurs_embedding_task_duration_seconds",
		Help:    "Embedding indexer task duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// PostViewEventsTotal counts post-viewed events by stage (published, recorded, deduplicated, failed).
	PostViewEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amateurs_post_view_events_total",
		Help: "Post viewed events by stage",
	}, []string{"broker", "stage"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ObserveEmbeddingTask records the outcome and duration of one embedding task.
func ObserveEmbeddingTask(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	EmbeddingTasksTotal.WithLabelValues(operation, outcome).Inc()
	EmbeddingTaskDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObservePostLifecycle records the outcome of a post mutation.
func ObservePostLifecycle(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	PostLifecycleTotal.WithLabelValues(operation, outcome).Inc()
}
