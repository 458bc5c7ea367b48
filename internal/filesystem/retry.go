package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"media-resizer/internal/logging"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns sensible defaults for network filesystems
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isTransientError reports whether err is worth retrying: an NFS stale file
// handle (ESTALE) or a file briefly held busy by another process (EBUSY).
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE || errno == syscall.EBUSY
	}

	return false
}

// withRetry runs fn until it succeeds, fails with a non-transient error, or
// the retry budget is spent.
func withRetry(op, path string, config RetryConfig, fn func() error) error {
	start := time.Now()
	obs := observe()
	backoff := config.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("%s succeeded on retry %d for %s", op, attempt, path)
				if obs != nil {
					obs.ObserveRetrySuccess(op)
				}
			}
			if obs != nil {
				obs.ObserveOperation(op, time.Since(start).Seconds(), nil)
			}
			return nil
		}

		lastErr = err

		if !isTransientError(err) {
			if obs != nil {
				obs.ObserveOperation(op, time.Since(start).Seconds(), err)
			}
			return err
		}

		if obs != nil {
			obs.ObserveTransientError(op)
		}

		// Don't sleep after the last attempt
		if attempt < config.MaxRetries {
			if obs != nil {
				obs.ObserveRetryAttempt(op)
			}
			logging.Debug("%s transient error for %s, retrying in %v (attempt %d/%d): %v",
				op, path, backoff, attempt+1, config.MaxRetries, err)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logging.Warn("%s failed after %d retries for %s: %v", op, config.MaxRetries, path, lastErr)
	if obs != nil {
		obs.ObserveRetryFailure(op)
		obs.ObserveOperation(op, time.Since(start).Seconds(), lastErr)
	}
	return lastErr
}

// StatWithRetry performs os.Stat with retry logic for transient errors
func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	var info os.FileInfo
	err := withRetry("stat", path, config, func() error {
		var statErr error
		info, statErr = os.Stat(path)
		return statErr
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// RenameWithRetry performs os.Rename with retry logic for transient errors
func RenameWithRetry(oldPath, newPath string, config RetryConfig) error {
	return withRetry("rename", newPath, config, func() error {
		return os.Rename(oldPath, newPath)
	})
}

// RemoveWithRetry performs os.Remove with retry logic for transient errors.
// A missing file is not an error.
func RemoveWithRetry(path string, config RetryConfig) error {
	return withRetry("remove", path, config, func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	})
}

// FileSize returns the size of path in bytes.
func FileSize(path string, config RetryConfig) (int64, error) {
	info, err := StatWithRetry(path, config)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
