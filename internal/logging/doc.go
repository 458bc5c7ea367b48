// Package logging provides a small leveled logger for media-resizer.
//
// Levels, lowest first:
//   - DEBUG: per-file codec and subprocess details
//   - INFO: configuration and run summaries
//   - WARN: recoverable problems (bad resolution text, cleanup failures)
//   - ERROR: failures that abort a command
//   - FATAL: logs and exits
//
// The level comes from LOG_LEVEL (or DEBUG=true) and can be overridden with
// SetLevel, which the CLI does for --log-level.
package logging
