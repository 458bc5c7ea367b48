// Package transcoder drives the ffprobe and ffmpeg binaries.
//
// Probe reads the display dimensions of a video's first stream and Transcode
// rescales it with
//
//	ffmpeg -i <in> -vf scale=<w>:<h> -c:a copy -y <out>
//
// leaving codec selection to ffmpeg. Running processes are tracked so
// Cleanup can kill them when the user interrupts twice.
//
// Binaries default to ffmpeg and ffprobe on PATH; FFMPEG_PATH and
// FFPROBE_PATH override them through the startup config.
package transcoder
