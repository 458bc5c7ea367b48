// Package metrics provides Prometheus instrumentation for media-resizer.
//
// All metrics are prefixed with "media_resizer_" and registered on the default
// registry through promauto. They are served by the optional status server
// (see internal/server) when --metrics-addr is set.
//
// # Metric Categories
//
// ## Runs
//   - RunsTotal: folder runs by result (completed/cancelled)
//   - RunInProgress, RunLastDuration, RunLastTimestamp
//
// ## Files
//   - FilesProcessedTotal: by strategy (image/animation/video) and status
//   - FileProcessingDuration: resize + commit time by strategy
//   - BytesOriginalTotal / BytesNewTotal: size before and after by strategy
//
// ## Transcoder
//   - TranscoderJobsTotal, TranscoderJobDuration, TranscoderJobsInProgress
//
// ## Filesystem
//   - FilesystemOperationDuration / FilesystemOperationErrors by operation
//   - FilesystemRetryAttempts / Success / Failures / TransientErrors
//
// ## Journal
//   - DBQueryTotal, DBQueryDuration by operation
//
// ## Watcher
//   - WatcherEventsTotal, WatcherErrors
//
// ## Memory
//   - MemoryUsageRatio, MemoryPaused, MemoryPausesTotal
//
// ## Status server
//   - HTTPRequestsTotal, HTTPRequestDuration by route template
//
// # Prometheus Queries
//
// Bytes saved per strategy:
//
//	sum by (strategy) (media_resizer_bytes_original_total - media_resizer_bytes_new_total)
//
// Share of files kept because the resized copy was larger:
//
//	sum(media_resizer_files_processed_total{status="skipped"}) / sum(media_resizer_files_processed_total)
package metrics
