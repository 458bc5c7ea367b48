package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"media-resizer/internal/logging"
	"media-resizer/internal/mediatypes"
	"media-resizer/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// drainQuiet is how long the event stream must stay silent after a run before
// new events count again. The run's own renames land inside this window.
var drainQuiet = 250 * time.Millisecond

// RunFunc performs one folder pass.
type RunFunc func(ctx context.Context) error

// Watch re-runs run whenever eligible media in dir is created or written,
// once the directory has been quiet for debounce. It blocks until ctx is done.
func Watch(ctx context.Context, dir string, debounce time.Duration, run RunFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			logging.Error("failed to close file watcher: %v", err)
		}
	}()

	if err := w.Add(dir); err != nil {
		metrics.WatcherErrors.Inc()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logging.Info("Watching %s (debounce %v)", dir, debounce)

	return loop(ctx, w.Events, w.Errors, debounce, run)
}

func loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, debounce time.Duration, run RunFunc) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			logging.Debug("Change detected: %s (%s)", filepath.Base(event.Name), eventType(event.Op))
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logging.Error("Watcher error: %v", err)
			metrics.WatcherErrors.Inc()

		case <-fire:
			fire = nil
			if err := run(ctx); err != nil {
				logging.Warn("Watch run failed: %v", err)
			}
			if n := drain(ctx, events); n > 0 {
				logging.Debug("Ignored %d events raised during the run", n)
			}
		}
	}
}

// relevant records the event and reports whether it should arm the timer.
func relevant(event fsnotify.Event) bool {
	metrics.WatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return mediatypes.IsEligible(filepath.Base(event.Name))
}

// drain discards events until the stream has been quiet for drainQuiet.
func drain(ctx context.Context, events <-chan fsnotify.Event) int {
	n := 0
	quiet := time.NewTimer(drainQuiet)
	defer func() { quiet.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return n
		case <-quiet.C:
			return n
		case event, ok := <-events:
			if !ok {
				return n
			}
			metrics.WatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()
			n++
			quiet.Stop()
			quiet = time.NewTimer(drainQuiet)
		}
	}
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}
