package metrics

// Strategy labels used by the resize pipeline.
var Strategies = []string{"image", "animation", "video"}

// Statuses mirror mediatypes.Status.String().
var Statuses = []string{"finished", "skipped", "error_ignored"}

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, s := range Strategies {
		for _, st := range Statuses {
			FilesProcessedTotal.WithLabelValues(s, st)
		}
		FileProcessingDuration.WithLabelValues(s)
		BytesOriginalTotal.WithLabelValues(s)
		BytesNewTotal.WithLabelValues(s)
	}

	for _, r := range []string{"completed", "cancelled"} {
		RunsTotal.WithLabelValues(r)
	}

	for _, st := range []string{"success", "error"} {
		TranscoderJobsTotal.WithLabelValues(st)
	}

	for _, op := range []string{"stat", "rename", "remove", "hash"} {
		FilesystemOperationDuration.WithLabelValues(op)
		FilesystemOperationErrors.WithLabelValues(op)
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemTransientErrors.WithLabelValues(op)
	}

	for _, op := range []string{"start_run", "finish_run", "record_outcome", "is_processed", "list_runs", "list_outcomes"} {
		for _, st := range []string{"success", "error"} {
			DBQueryTotal.WithLabelValues(op, st)
		}
		DBQueryDuration.WithLabelValues(op)
	}

	for _, ev := range []string{"create", "write", "rename", "remove", "chmod"} {
		WatcherEventsTotal.WithLabelValues(ev)
	}

	for _, path := range []string{"/healthz", "/progress", "/version"} {
		HTTPRequestsTotal.WithLabelValues("GET", path, "200")
		HTTPRequestDuration.WithLabelValues("GET", path)
	}
}
