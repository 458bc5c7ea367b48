package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"media-resizer/internal/metrics"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type loopHarness struct {
	events chan fsnotify.Event
	errs   chan error
	runs   atomic.Int32
	cancel context.CancelFunc
	done   chan error
}

func startLoop(t *testing.T, debounce time.Duration, run func(h *loopHarness) error) *loopHarness {
	t.Helper()
	h := &loopHarness{
		events: make(chan fsnotify.Event, 32),
		errs:   make(chan error, 1),
		done:   make(chan error, 1),
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel

	go func() {
		h.done <- loop(ctx, h.events, h.errs, debounce, func(context.Context) error {
			h.runs.Add(1)
			if run != nil {
				return run(h)
			}
			return nil
		})
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(5 * time.Second):
			t.Error("loop did not stop after cancel")
		}
	})
	return h
}

func (h *loopHarness) send(name string, op fsnotify.Op) {
	h.events <- fsnotify.Event{Name: name, Op: op}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLoopDebouncesBurst(t *testing.T) {
	h := startLoop(t, 50*time.Millisecond, nil)

	h.send("/m/a.jpg", fsnotify.Create)
	h.send("/m/a.jpg", fsnotify.Write)
	h.send("/m/b.mp4", fsnotify.Create)

	waitFor(t, func() bool { return h.runs.Load() == 1 })
	time.Sleep(150 * time.Millisecond)
	if got := h.runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1 for one burst", got)
	}
}

func TestLoopIgnoresIrrelevantEvents(t *testing.T) {
	h := startLoop(t, 20*time.Millisecond, nil)

	h.send("/m/a.tmp.jpg", fsnotify.Create)
	h.send("/m/notes.txt", fsnotify.Write)
	h.send("/m/a.jpg", fsnotify.Remove)
	h.send("/m/a.jpg", fsnotify.Chmod)

	time.Sleep(150 * time.Millisecond)
	if got := h.runs.Load(); got != 0 {
		t.Errorf("runs = %d, want 0", got)
	}
}

func TestLoopDrainsEventsRaisedByRun(t *testing.T) {
	h := startLoop(t, 20*time.Millisecond, func(h *loopHarness) error {
		if h.runs.Load() == 1 {
			h.send("/m/a.jpg", fsnotify.Create)
			h.send("/m/a.jpg", fsnotify.Write)
		}
		return nil
	})

	h.send("/m/a.jpg", fsnotify.Write)
	waitFor(t, func() bool { return h.runs.Load() == 1 })

	time.Sleep(drainQuiet + 150*time.Millisecond)
	if got := h.runs.Load(); got != 1 {
		t.Fatalf("runs = %d, want 1; the run's own writes must not retrigger", got)
	}

	h.send("/m/c.png", fsnotify.Create)
	waitFor(t, func() bool { return h.runs.Load() == 2 })
}

func TestLoopSurvivesRunError(t *testing.T) {
	h := startLoop(t, 10*time.Millisecond, func(*loopHarness) error {
		return errors.New("disk full")
	})

	h.send("/m/a.jpg", fsnotify.Create)
	waitFor(t, func() bool { return h.runs.Load() == 1 })

	time.Sleep(drainQuiet + 50*time.Millisecond)
	h.send("/m/b.jpg", fsnotify.Create)
	waitFor(t, func() bool { return h.runs.Load() == 2 })
}

func TestLoopCountsErrors(t *testing.T) {
	before := testutil.ToFloat64(metrics.WatcherErrors)
	h := startLoop(t, time.Second, nil)

	h.errs <- errors.New("queue overflow")
	waitFor(t, func() bool { return testutil.ToFloat64(metrics.WatcherErrors)-before >= 1 })
}

func TestLoopStopsOnClosedChannels(t *testing.T) {
	events := make(chan fsnotify.Event)
	close(events)

	err := loop(context.Background(), events, make(chan error), time.Second, func(context.Context) error { return nil })
	if err != nil {
		t.Errorf("loop() = %v, want nil", err)
	}
}

func TestEventType(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want string
	}{
		{fsnotify.Create, "create"},
		{fsnotify.Write, "write"},
		{fsnotify.Remove, "remove"},
		{fsnotify.Rename, "rename"},
		{fsnotify.Chmod, "chmod"},
		{fsnotify.Create | fsnotify.Write, "create"},
		{0, "unknown"},
	}
	for _, tt := range tests {
		if got := eventType(tt.op); got != tt.want {
			t.Errorf("eventType(%v) = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestWatchRealDirectory(t *testing.T) {
	dir := t.TempDir()
	ran := make(chan struct{}, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, 20*time.Millisecond, func(context.Context) error {
			ran <- struct{}{}
			return nil
		})
	}()

	// The watcher registers asynchronously, so keep touching the file until
	// a run is observed.
	path := filepath.Join(dir, "photo.jpg")
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
wait:
	for {
		select {
		case <-ran:
			break wait
		case <-tick.C:
			if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no run after writing an eligible file")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "gone"), time.Second, func(context.Context) error { return nil })
	if err == nil {
		t.Error("Watch() on a missing directory should fail")
	}
}
