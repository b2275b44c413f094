// Package observability provides Prometheus metrics and OpenTelemetry tracing
// for the application.
package observability

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesCreated counts diary entries created since process start.
	EntriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lovediary_entries_created_total",
		Help: "Total number of diary entries created",
	})

	// MediaFilesStored counts blobs written to the media store.
	MediaFilesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lovediary_media_files_stored_total",
		Help: "Total number of media files written to the store",
	})

	// MediaBytesStored counts bytes written to the media store.
	MediaBytesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lovediary_media_bytes_stored_total",
		Help: "Total bytes of media written to the store",
	})

	// MediaFilesDeleted counts blobs removed from the media store.
	MediaFilesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lovediary_media_files_deleted_total",
		Help: "Total number of media files deleted from the store",
	})

	// CacheRequests counts entry-cache lookups by outcome (hit or miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lovediary_cache_requests_total",
		Help: "Total entry cache lookups by outcome",
	}, []string{"outcome"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lovediary_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lovediary_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// ObserveQuery records the latency of one database query. The operation label
// is derived from the first SQL keyword.
func ObserveQuery(sql string, elapsed time.Duration) {
	operation := "other"
	if fields := strings.Fields(sql); len(fields) > 0 {
		switch op := strings.ToUpper(fields[0]); op {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			operation = strings.ToLower(op)
		}
	}
	DatabaseQueryLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	CacheRequests.WithLabelValues("hit").Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	CacheRequests.WithLabelValues("miss").Inc()
}

// RecordRedisError increments the Redis error counter for the operation.
func RecordRedisError(operation string) {
	RedisErrorRate.WithLabelValues(operation).Inc()
}
