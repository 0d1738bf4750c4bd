package metrics

// InitializeMetrics pre-populates expected label combinations so every
// metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, state := range []string{"completed", "failed", "canceled", "cached"} {
		JobsTotal.WithLabelValues(state)
	}

	for _, d := range []string{"emitted", "throttled"} {
		ProgressEventsTotal.WithLabelValues(d)
	}

	for _, status := range []string{"success", "error"} {
		ThumbnailGenerationsTotal.WithLabelValues(status)
		AuthAttemptsTotal.WithLabelValues(status)
	}

	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}

	dbOps := []string{
		"initialize_schema", "upsert_cache_entry", "get_cache_entry",
		"delete_cache_entry", "clear_cache_entries", "list_cache_entries",
		"record_job", "recent_jobs", "get_token_hash", "set_token_hash",
	}
	for _, op := range dbOps {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	volumes := []string{"cache", "database", "unknown"}
	for _, op := range []string{"stat", "remove", "readdir"} {
		for _, vol := range volumes {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
		}
	}
}
