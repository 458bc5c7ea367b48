package filesystem

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"media-resizer/internal/logging"
	"media-resizer/internal/mediatypes"
)

// ErrTempMissing is returned when the strategy's output file cannot be found.
var ErrTempMissing = errors.New("temporary output missing")

// Committer decides whether a freshly written temp artifact replaces its
// original. The original is replaced only when the new file is not larger.
type Committer struct {
	// SettleDelay is waited before measuring the temp artifact. Some platforms
	// hold a transient lock on a just-closed file.
	SettleDelay time.Duration
	Retry       RetryConfig
}

// DefaultSettleDelay is 100ms on Windows and zero elsewhere.
func DefaultSettleDelay() time.Duration {
	if runtime.GOOS == "windows" {
		return 100 * time.Millisecond
	}
	return 0
}

// NewCommitter returns a Committer with platform defaults.
func NewCommitter() *Committer {
	return &Committer{
		SettleDelay: DefaultSettleDelay(),
		Retry:       DefaultRetryConfig(),
	}
}

// Commit measures temp and either promotes it over original or deletes it.
//
// On return the temp path no longer exists unless an error says otherwise, and
// original always holds either the old or the new content.
func (c *Committer) Commit(original, temp string, originalSize int64) (mediatypes.Outcome, error) {
	if c.SettleDelay > 0 {
		time.Sleep(c.SettleDelay)
	}

	newSize, err := FileSize(temp, c.Retry)
	if err != nil {
		if os.IsNotExist(err) {
			return mediatypes.Outcome{}, fmt.Errorf("%w: %s", ErrTempMissing, temp)
		}
		c.Discard(temp)
		return mediatypes.Outcome{}, fmt.Errorf("stat %s: %w", temp, err)
	}

	if newSize > originalSize {
		logging.Debug("Keeping original %s: resized %d bytes > original %d bytes", original, newSize, originalSize)
		c.Discard(temp)
		return mediatypes.SkippedUnchanged(mediatypes.ReasonResizedLarger, originalSize), nil
	}

	if err := c.promote(original, temp); err != nil {
		return mediatypes.Outcome{}, err
	}

	logging.Debug("Replaced %s: %d -> %d bytes", original, originalSize, newSize)
	return mediatypes.Finished(originalSize, newSize), nil
}

// promote renames temp over original. Rename replaces atomically on POSIX and on
// Windows; when the platform still refuses, the original is removed first and
// the rename retried. The temp file is never deleted here, so one copy survives
// every failure.
func (c *Committer) promote(original, temp string) error {
	err := RenameWithRetry(temp, original, c.Retry)
	if err == nil {
		return nil
	}

	logging.Debug("Rename %s -> %s failed (%v), removing original first", temp, original, err)
	if rmErr := RemoveWithRetry(original, c.Retry); rmErr != nil {
		c.Discard(temp)
		return fmt.Errorf("replace %s: %w", original, errors.Join(err, rmErr))
	}
	if err := RenameWithRetry(temp, original, c.Retry); err != nil {
		return fmt.Errorf("replace %s (resized copy kept at %s): %w", original, temp, err)
	}
	return nil
}

// Discard removes a temp artifact, logging instead of failing.
func (c *Committer) Discard(temp string) {
	if err := RemoveWithRetry(temp, c.Retry); err != nil {
		logging.Warn("failed to remove temporary file %s: %v", temp, err)
	}
}
