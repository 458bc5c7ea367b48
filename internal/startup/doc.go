// Package startup loads configuration and writes the startup and shutdown log.
//
// # Configuration
//
// [LoadConfig] layers, in increasing precedence: built-in defaults
// ([DefaultConfig]), an optional TOML file (the explicit path, else
// MEDIA_RESIZER_CONFIG; a missing file is ignored), and environment variables:
//
//   - PHOTO_RESOLUTION: target for photos and animations (default: 1080p)
//   - VIDEO_RESOLUTION: target for videos (default: 720p)
//   - RESIZE_WORKERS: concurrent files, 0 for automatic (default: 0)
//   - ANIMATION_ERRORS: lenient or strict (default: lenient)
//   - JPEG_QUALITY: 1-100 (default: 90)
//   - FFMPEG_PATH, FFPROBE_PATH: binaries (default: from PATH)
//   - HISTORY_DB: SQLite journal path, empty disables it
//   - METRICS_ADDR: status server address, empty disables it
//   - SETTLE_DELAY: wait before measuring a new file (default: 100ms on Windows, 0 elsewhere)
//   - WATCH_DEBOUNCE: quiet period before a watch re-run (default: 2s)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//
// The file uses the same names in lower case, for example:
//
//	photo_resolution = "720p"
//	settle_delay = "250ms"
//
// Command-line flags are applied on top by the CLI.
//
// # Build Information
//
// Version, Commit and BuildTime are injected via ldflags and exposed via
// [GetBuildInfo].
package startup
