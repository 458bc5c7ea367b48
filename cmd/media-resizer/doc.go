// Command media-resizer shrinks the media files of a folder in place.
//
// Every photo, animated GIF and video directly inside the folder is resized to
// fit the requested resolution. A file is only replaced when the new version
// is not larger than the original.
//
// Usage:
//
//	media-resizer resize DIR [--photo 1080p] [--video 720p] [--workers N]
//	media-resizer watch DIR [--debounce 2s]
//	media-resizer history [--limit 20] [--history-db PATH]
//	media-resizer presets
//	media-resizer version
//
// Resolutions are preset names (see the presets command), "WxH" boxes, or a
// bare height such as "600", which gets a 16:9 width.
//
// # Output
//
// One line is printed per file: "Processing: name" and then its outcome, for
// example "Finished: name" or "Skipped (resized larger): name". On a terminal
// a progress line is redrawn below them. The run ends with a summary such as
// "12/12 files, saved 48.20 MB".
//
// # Interrupts
//
// The first SIGINT stops the run between files; files already being resized
// are completed. A second SIGINT kills any running ffmpeg and exits with
// status 130.
//
// # Configuration
//
// Flags override environment variables, which override the TOML file named by
// --config or MEDIA_RESIZER_CONFIG. See package startup for the full list.
package main
