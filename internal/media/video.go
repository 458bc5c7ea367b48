package media

import (
	"context"
	"errors"

	"media-resizer/internal/filesystem"
	"media-resizer/internal/logging"
	"media-resizer/internal/mediatypes"
	"media-resizer/internal/resolution"
)

// Transcoder probes and rescales video files. transcoder.FFmpeg is the
// production implementation.
type Transcoder interface {
	Probe(ctx context.Context, path string) (resolution.Size, error)
	Transcode(ctx context.Context, in, out string, size resolution.Size) error
}

// VideoResizer handles video files through a Transcoder.
type VideoResizer struct {
	Committer  *filesystem.Committer
	Transcoder Transcoder
}

// NewVideoResizer creates a VideoResizer.
func NewVideoResizer(committer *filesystem.Committer, transcoder Transcoder) *VideoResizer {
	return &VideoResizer{Committer: committer, Transcoder: transcoder}
}

// Resize transcodes path to the fitted size. Videos are never re-encoded at
// their original resolution.
func (r *VideoResizer) Resize(ctx context.Context, path string, target resolution.Target) mediatypes.Outcome {
	box, ok := target.Size()
	if !ok {
		return mediatypes.Skipped(mediatypes.ReasonInvalidResolution)
	}

	originalSize, temp, err := prepare(r.Committer, path)
	if err != nil {
		return mediatypes.SkippedError(err)
	}

	orig, err := r.Transcoder.Probe(ctx, path)
	if err != nil {
		logging.Debug("Probe failed for %s: %v", path, err)
		return mediatypes.Skipped(mediatypes.ReasonCantOpenVideo)
	}

	size, err := resolution.FitWithin(orig, box)
	if err != nil {
		return mediatypes.Skipped(mediatypes.ReasonCantOpenVideo)
	}
	logging.Debug("Transcoding %s from %s to %s", path, orig, size)

	if err := r.Transcoder.Transcode(ctx, path, temp, size); err != nil {
		r.Committer.Discard(temp)
		return mediatypes.Skipped("ffmpeg error: " + err.Error())
	}

	outcome, err := r.Committer.Commit(path, temp, originalSize)
	if err != nil {
		if errors.Is(err, filesystem.ErrTempMissing) {
			return mediatypes.Skipped("ffmpeg error: no output written")
		}
		return mediatypes.SkippedError(err)
	}
	return outcome
}
