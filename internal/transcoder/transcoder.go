package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"media-resizer/internal/logging"
	"media-resizer/internal/metrics"
	"media-resizer/internal/resolution"
)

// ErrNoVideoStream is returned by Probe when the file has no decodable video
// stream with positive dimensions.
var ErrNoVideoStream = errors.New("no video stream")

// FFmpeg runs ffprobe and ffmpeg as subprocesses.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	processes   map[string]*exec.Cmd
	processMu   sync.Mutex
}

// New creates an FFmpeg runner. Empty paths fall back to the binaries on PATH.
func New(ffmpegPath, ffprobePath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		processes:   make(map[string]*exec.Cmd),
	}
}

// Probe returns the display dimensions of the first video stream.
func (f *FFmpeg) Probe(ctx context.Context, path string) (resolution.Size, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_type,codec_name,width,height:stream_tags=rotate:stream_side_data=rotation",
		"-print_format", "json",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return resolution.Size{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, lastLine(stderr.String()))
	}

	size, err := parseProbe(stdout.Bytes())
	if err != nil {
		return resolution.Size{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	logging.Debug("Probed %s: %s", path, size)
	return size, nil
}

// Transcode scales in to exactly size and writes out, copying audio.
// A non-zero exit is reported with the last line ffmpeg wrote to stderr.
func (f *FFmpeg) Transcode(ctx context.Context, in, out string, size resolution.Size) error {
	cmd := exec.CommandContext(ctx, f.ffmpegPath, buildArgs(in, out, size)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	f.processMu.Lock()
	f.processes[in] = cmd
	f.processMu.Unlock()

	defer func() {
		f.processMu.Lock()
		delete(f.processes, in)
		f.processMu.Unlock()
	}()

	metrics.TranscoderJobsInProgress.Inc()
	defer metrics.TranscoderJobsInProgress.Dec()

	start := time.Now()
	logging.Debug("Running %s %s", f.ffmpegPath, strings.Join(cmd.Args[1:], " "))

	err := cmd.Run()
	metrics.TranscoderJobDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.TranscoderJobsTotal.WithLabelValues("error").Inc()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Debug("FFmpeg stderr for %s: %s", in, stderr.String())
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}

	metrics.TranscoderJobsTotal.WithLabelValues("success").Inc()
	return nil
}

// Cleanup kills all running ffmpeg processes.
func (f *FFmpeg) Cleanup() {
	f.processMu.Lock()
	defer f.processMu.Unlock()

	for path, cmd := range f.processes {
		if cmd.Process != nil {
			logging.Info("Killing ffmpeg process for: %s", path)
			if err := cmd.Process.Kill(); err != nil {
				logging.Warn("failed to kill ffmpeg process for %s: %v", path, err)
			}
		}
	}
}

// Active returns the number of running ffmpeg processes.
func (f *FFmpeg) Active() int {
	f.processMu.Lock()
	defer f.processMu.Unlock()
	return len(f.processes)
}

func buildArgs(in, out string, size resolution.Size) []string {
	return []string{
		"-i", in,
		"-vf", fmt.Sprintf("scale=%d:%d", size.Width, size.Height),
		"-c:a", "copy",
		"-y", out,
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
