// Package metrics provides Prometheus instrumentation for the vidpress
// transcoding service.
//
// All metrics are prefixed with "vidpress_" to avoid naming collisions.
// Metrics are registered with the default registry via promauto and exposed
// by the metrics server (see main.go) on the METRICS_PORT endpoint.
//
// Categories:
//   - HTTP: request counts, durations, in-flight gauge
//   - Jobs: per-status counters, duration histogram, in-progress gauge
//   - Batches: submission counter, size histogram, in-progress gauge
//   - Cache: hits/misses/evictions, size and entry-count gauges
//   - Thumbnails: generation counters, duration, cache hits/misses
//   - Database: query counters and durations, file sizes
//
// The [Collector] periodically refreshes gauges that must be computed from
// external state (cache directory size, database file sizes).
package metrics
