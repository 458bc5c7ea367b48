package media

import (
	"context"
	"fmt"

	"media-resizer/internal/filesystem"
	"media-resizer/internal/mediatypes"
	"media-resizer/internal/resolution"
)

// Strategy names, also used as metric labels.
const (
	StrategyImage     = "image"
	StrategyAnimation = "animation"
	StrategyVideo     = "video"
)

// Resizer shrinks one file in place toward a target resolution.
//
// Implementations never return an error: every failure is reported as an
// outcome and the original file is left untouched. The context is only
// consulted by blocking subprocess work.
type Resizer interface {
	Resize(ctx context.Context, path string, target resolution.Target) mediatypes.Outcome
}

// StrategyName returns the strategy that handles file.
func StrategyName(file mediatypes.MediaFile) string {
	switch {
	case file.Type == mediatypes.FileTypeVideo:
		return StrategyVideo
	case file.Animated:
		return StrategyAnimation
	default:
		return StrategyImage
	}
}

// prepare measures the original and clears any temp artifact left behind by
// an earlier crashed run.
func prepare(committer *filesystem.Committer, path string) (size int64, temp string, err error) {
	size, err = filesystem.FileSize(path, committer.Retry)
	if err != nil {
		return 0, "", fmt.Errorf("stat original: %w", err)
	}
	temp = mediatypes.TempPath(path)
	if err := filesystem.RemoveWithRetry(temp, committer.Retry); err != nil {
		return 0, "", fmt.Errorf("remove stale temp file: %w", err)
	}
	return size, temp, nil
}
