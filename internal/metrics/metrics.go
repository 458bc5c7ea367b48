package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run metrics
var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resizer_runs_total",
			Help: "Total number of folder runs by result",
		},
		[]string{"result"}, // "completed", "cancelled"
	)

	RunInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resizer_run_in_progress",
			Help: "Whether a folder run is currently active (1 = running, 0 = idle)",
		},
	)

	RunLastDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resizer_run_last_duration_seconds",
			Help: "Duration of the last folder run in seconds",
		},
	)

	RunLastTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resizer_run_last_timestamp",
			Help: "Unix timestamp of the last completed folder run",
		},
	)
)

// Per-file metrics
var (
	FilesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resizer_files_processed_total",
			Help: "Total number of files processed by strategy and status",
		},
		[]string{"strategy", "status"},
	)

	FileProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resizer_file_processing_duration_seconds",
			Help:    "Time spent resizing one file, commit included",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		},
		[]string{"strategy"},
	)

	BytesOriginalTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resizer_bytes_original_total",
			Help: "Total size of processed originals in bytes",
		},
		[]string{"strategy"},
	)

	BytesNewTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resizer_bytes_new_total",
			Help: "Total size of files left on disk after processing in bytes",
		},
		[]string{"strategy"},
	)
)

// Transcoder metrics
var (
	TranscoderJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resizer_transcoder_jobs_total",
			Help: "Total number of ffmpeg transcoding jobs",
		},
		[]string{"status"},
	)

	TranscoderJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_resizer_transcoder_job_duration_seconds",
			Help:    "Transcoding job duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	TranscoderJobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resizer_transcoder_jobs_in_progress",
			Help: "Number of transcoding jobs currently in progress",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resizer_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration in seconds, retries included",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resizer_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resizer_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retry attempts",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resizer_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resizer_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation"},
	)

	FilesystemTransientErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resizer_filesystem_transient_errors_total",
			Help: "Total number of ESTALE/EBUSY errors encountered",
		},
		[]string{"operation"},
	)
)

// Journal database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resizer_db_query_total",
			Help: "Total number of journal database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resizer_db_query_duration_seconds",
			Help:    "Journal database query duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// Watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resizer_watcher_events_total",
			Help: "Total number of filesystem watcher events",
		},
		[]string{"event_type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_resizer_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)
)

// Memory backpressure metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resizer_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resizer_memory_paused",
			Help: "Whether new files are held back by memory pressure (1 = paused)",
		},
	)

	MemoryPausesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_resizer_memory_pauses_total",
			Help: "Total number of times memory pressure paused the run",
		},
	)
)

// Status server metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resizer_http_requests_total",
			Help: "Total number of status server requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resizer_http_request_duration_seconds",
			Help:    "Status server request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_resizer_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

// RecordFile adds one processed file to the per-strategy counters.
func RecordFile(strategy, status string, originalBytes, newBytes int64, durationSeconds float64) {
	FilesProcessedTotal.WithLabelValues(strategy, status).Inc()
	FileProcessingDuration.WithLabelValues(strategy).Observe(durationSeconds)
	BytesOriginalTotal.WithLabelValues(strategy).Add(float64(originalBytes))
	BytesNewTotal.WithLabelValues(strategy).Add(float64(newBytes))
}
