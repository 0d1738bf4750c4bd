package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidpress_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidpress_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidpress_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Job metrics
var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidpress_jobs_total",
			Help: "Total number of transcode jobs by terminal state",
		},
		[]string{"state"}, // completed, failed, canceled, cached
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidpress_job_duration_seconds",
			Help:    "Transcode job duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	JobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidpress_jobs_in_progress",
			Help: "Number of transcode jobs currently running",
		},
	)

	ProgressEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidpress_progress_events_total",
			Help: "Progress events by disposition",
		},
		[]string{"disposition"}, // emitted, throttled
	)
)

// Batch metrics
var (
	BatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidpress_batches_total",
			Help: "Total number of batch submissions",
		},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidpress_batch_size",
			Help:    "Number of jobs per batch",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	BatchesInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidpress_batches_in_progress",
			Help: "Number of batches currently running",
		},
	)
)

// Result cache metrics
var (
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidpress_cache_hits_total",
			Help: "Result cache hits (jobs short-circuited)",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidpress_cache_misses_total",
			Help: "Result cache misses",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidpress_cache_evictions_total",
			Help: "Stale result cache entries evicted at lookup",
		},
	)

	CacheSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidpress_cache_size_bytes",
			Help: "Total size of the result cache directory in bytes",
		},
	)

	CacheEntryCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidpress_cache_entries",
			Help: "Number of entries in the result cache",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidpress_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidpress_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidpress_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidpress_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidpress_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidpress_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vidpress_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Filesystem metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidpress_filesystem_retry_attempts_total",
			Help: "Filesystem operations retried after transient errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidpress_filesystem_retry_failures_total",
			Help: "Filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)
)

// Authentication metrics
var (
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidpress_auth_attempts_total",
			Help: "Total number of admin token checks",
		},
		[]string{"status"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vidpress_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
