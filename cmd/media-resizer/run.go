package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"media-resizer/internal/logging"
	"media-resizer/internal/startup"
	"media-resizer/internal/watcher"

	"github.com/spf13/cobra"
)

func runResize(cmd *cobra.Command, cfg *startup.Config, folder string) error {
	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	defer trapSignals(ctx, a, stop)()

	progress, err := a.runFolder(ctx, folder, newPrinter(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	if progress.Cancelled {
		return errCancelled
	}
	return nil
}

func runWatch(cmd *cobra.Command, cfg *startup.Config, folder string) error {
	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	defer trapSignals(ctx, a, stop)()

	p := newPrinter(cmd.OutOrStdout())
	run := func(ctx context.Context) error {
		_, err := a.runFolder(ctx, folder, p)
		return err
	}

	if err := run(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return errCancelled
	}
	if err := watcher.Watch(ctx, folder, cfg.WatchDebounce, run); err != nil {
		return err
	}
	startup.LogShutdownComplete()
	return nil
}

// trapSignals routes SIGINT and SIGTERM to handleSignals until the returned
// function is called.
func trapSignals(ctx context.Context, a *app, stop context.CancelFunc) func() {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go handleSignals(ctx, sigs, stop, func() {
		if n := a.ffmpeg.Active(); n > 0 {
			logging.Warn("Killing %d running ffmpeg process(es)", n)
		}
		a.ffmpeg.Cleanup()
		os.Exit(exitInterrupted)
	})
	return func() { signal.Stop(sigs) }
}

// handleSignals cancels the run on the first signal and calls force on the
// second, which kills any running ffmpeg and exits.
func handleSignals(ctx context.Context, sigs <-chan os.Signal, cancel context.CancelFunc, force func()) {
	select {
	case <-ctx.Done():
		return
	case sig := <-sigs:
		startup.LogShutdownInitiated(sig.String())
		fmt.Fprintln(os.Stderr, "Stopping after the files in progress, interrupt again to abort")
		cancel()
	}

	sig, ok := <-sigs
	if !ok {
		return
	}
	logging.Warn("Received second %s, aborting", sig)
	force()
}
