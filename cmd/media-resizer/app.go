package main

import (
	"context"
	"time"

	"media-resizer/internal/database"
	"media-resizer/internal/filesystem"
	"media-resizer/internal/logging"
	"media-resizer/internal/media"
	"media-resizer/internal/memory"
	"media-resizer/internal/metrics"
	"media-resizer/internal/resizer"
	"media-resizer/internal/server"
	"media-resizer/internal/startup"
	"media-resizer/internal/transcoder"
	"media-resizer/internal/workers"
)

// app holds the components shared by resize and watch.
type app struct {
	cfg       *startup.Config
	processor *resizer.Processor
	ffmpeg    *transcoder.FFmpeg
	journal   *database.Database
	status    *server.Server
	monitor   *memory.Monitor
}

func newApp(ctx context.Context, cfg *startup.Config) (*app, error) {
	policy, err := media.ParseAnimationPolicy(cfg.AnimationErrors)
	if err != nil {
		return nil, err
	}

	startup.LogBanner()
	cfg.Log()

	filesystem.SetObserver(metrics.NewFilesystemObserver())
	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

	if err := media.InitVips(); err != nil {
		logging.Warn("libvips unavailable, webp/heic/ico files will be skipped: %v", err)
	}

	a := &app{cfg: cfg}

	committer := filesystem.NewCommitter()
	committer.SettleDelay = cfg.SettleDelay

	a.ffmpeg = transcoder.New(cfg.FFmpegPath, cfg.FFprobePath)
	startup.LogTranscoderInit(cfg.FFmpegPath, cfg.FFprobePath)

	pc := resizer.Config{
		Image:     media.NewImageResizer(committer, cfg.JPEGQuality),
		Animation: media.NewAnimationResizer(committer, policy),
		Video:     media.NewVideoResizer(committer, a.ffmpeg),
		Workers:   workers.ForResize(cfg.Workers, 0),
	}
	logging.Info("  Workers: %d", pc.Workers)

	memory.ConfigureLimit()
	if monitor := memory.NewMonitor(memory.DefaultConfig()); monitor.Enabled() {
		monitor.Start()
		a.monitor = monitor
		pc.Gate = monitor
	}

	if cfg.HistoryDB != "" {
		start := time.Now()
		db, err := database.New(ctx, cfg.HistoryDB)
		if err != nil {
			a.close()
			return nil, err
		}
		startup.LogDatabaseInit(db.Path(), time.Since(start))
		a.journal = db
		pc.Journal = db
	}

	a.processor, err = resizer.New(pc)
	if err != nil {
		a.close()
		return nil, err
	}

	if cfg.MetricsAddr != "" {
		a.status = server.New(cfg.MetricsAddr)
		if err := a.status.Start(); err != nil {
			a.status = nil
			a.close()
			return nil, err
		}
		startup.LogHTTPRoutes(a.status.Router())
		startup.LogServerStarted(a.status.Addr())
	}

	return a, nil
}

// close releases everything newApp opened, in reverse order.
func (a *app) close() {
	if a.status != nil {
		startup.LogShutdownStep("Stopping status server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.status.Shutdown(ctx); err != nil {
			logging.Warn("status server shutdown: %v", err)
		} else {
			startup.LogShutdownStepComplete("Status server stopped")
		}
		cancel()
	}
	if a.journal != nil {
		startup.LogShutdownStep("Closing journal")
		if err := a.journal.Close(); err != nil {
			logging.Warn("failed to close journal: %v", err)
		}
	}
	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.ffmpeg != nil {
		a.ffmpeg.Cleanup()
	}
	media.ShutdownVips()
}

// runFolder performs one pass over folder, printing events as they arrive.
func (a *app) runFolder(ctx context.Context, folder string, p *printer) (resizer.Progress, error) {
	events, err := a.processor.ProcessFolder(ctx, folder, a.cfg.PhotoResolution, a.cfg.VideoResolution)
	if err != nil {
		return resizer.Progress{}, err
	}

	if a.status != nil {
		a.status.RunStarted(folder)
		defer a.status.RunFinished()
	}

	var last resizer.Progress
	for ev := range events {
		if ev.Type == resizer.EventProgress {
			last = ev.Progress
			if a.status != nil {
				a.status.UpdateProgress(ev.Progress)
			}
		}
		p.handle(ev)
	}
	p.summary(last)
	return last, nil
}
