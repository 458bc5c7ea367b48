package resizer

import (
	"context"
	"errors"
	"sync"
	"time"

	"media-resizer/internal/database"
	"media-resizer/internal/filesystem"
	"media-resizer/internal/logging"
	"media-resizer/internal/media"
	"media-resizer/internal/mediatypes"
	"media-resizer/internal/metrics"
	"media-resizer/internal/resolution"
)

// Journal records runs and lets a run skip files that an earlier run has
// already brought to the same target. *database.Database implements it.
type Journal interface {
	StartRun(ctx context.Context, run database.Run) (string, error)
	FinishRun(ctx context.Context, runID string, totals database.RunTotals) error
	RecordOutcome(ctx context.Context, rec database.OutcomeRecord) error
	IsProcessed(ctx context.Context, path, hash, target string) (bool, error)
}

// Config wires the strategies and optional collaborators of a Processor.
type Config struct {
	Image     media.Resizer
	Animation media.Resizer
	Video     media.Resizer

	// Workers is the number of files resized at once. Values below 2 mean
	// sequential processing.
	Workers int

	// Journal is optional.
	Journal Journal

	// Gate, when set, is waited on before each file is started.
	// *memory.Monitor implements it.
	Gate Gate
}

// Gate holds back new work, for example while memory is under pressure.
// Wait returns an error only when ctx is done.
type Gate interface {
	Wait(ctx context.Context) error
}

// Processor runs folder passes.
type Processor struct {
	image     media.Resizer
	animation media.Resizer
	video     media.Resizer
	workers   int
	journal   Journal
	gate      Gate
}

// New creates a Processor. All three strategies are required.
func New(cfg Config) (*Processor, error) {
	if cfg.Image == nil || cfg.Animation == nil || cfg.Video == nil {
		return nil, errors.New("resizer: image, animation and video strategies are required")
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		image:     cfg.Image,
		animation: cfg.Animation,
		video:     cfg.Video,
		workers:   workers,
		journal:   cfg.Journal,
		gate:      cfg.Gate,
	}, nil
}

// targets holds the parsed resolutions of one run.
type targets struct {
	photo resolution.Target
	video resolution.Target
}

func (t targets) forFile(file mediatypes.MediaFile) resolution.Target {
	if file.Type == mediatypes.FileTypeVideo {
		return t.video
	}
	return t.photo
}

// parseTarget treats an unparseable resolution as Original.
func parseTarget(kind, text string) resolution.Target {
	target, err := resolution.Parse(text)
	if err != nil {
		logging.Warn("Invalid %s resolution %q, keeping original size: %v", kind, text, err)
		return resolution.Original()
	}
	return target
}

// ProcessFolder resizes every eligible file directly inside folder and
// streams log and progress events on the returned channel, which is closed
// when the run ends. The caller must drain it.
//
// A folder that cannot be read is reported as an error before any event.
// Cancelling ctx stops the run between files: a file already being resized
// is finished, then a final progress event with Cancelled set is sent.
func (p *Processor) ProcessFolder(ctx context.Context, folder, photoText, videoText string) (<-chan Event, error) {
	files, err := Enumerate(folder)
	if err != nil {
		return nil, err
	}

	t := targets{
		photo: parseTarget("photo", photoText),
		video: parseTarget("video", videoText),
	}

	events := make(chan Event, 16)
	go p.run(ctx, folder, files, t, events)
	return events, nil
}

type fileResult struct {
	outcome mediatypes.Outcome
	started bool
}

func (p *Processor) run(ctx context.Context, folder string, files []mediatypes.MediaFile, t targets, events chan<- Event) {
	defer close(events)

	start := time.Now()
	metrics.RunInProgress.Set(1)
	defer metrics.RunInProgress.Set(0)

	logging.Info("Processing %d files in %s (photo %s, video %s, %d workers)", len(files), folder, t.photo, t.video, p.workers)

	runID := p.startRun(ctx, folder, t)
	progress := Progress{FilesTotal: len(files)}

	emit := func(file mediatypes.MediaFile, res fileResult) bool {
		if !res.started {
			return false
		}
		progress.FilesDone++
		progress.OriginalBytes += res.outcome.OriginalBytes
		progress.NewBytes += res.outcome.NewBytes
		events <- logEvent("%s: %s", res.outcome.Label(), file.Name)
		events <- progressEvent(progress)
		return true
	}

	if p.workers > 1 && len(files) > 1 {
		p.runPool(ctx, files, t, runID, func(file mediatypes.MediaFile, res fileResult) bool {
			if !res.started {
				return false
			}
			events <- logEvent("Processing: %s", file.Name)
			return emit(file, res)
		})
	} else {
		for _, file := range files {
			if !p.admit(ctx) {
				break
			}
			events <- logEvent("Processing: %s", file.Name)
			emit(file, p.processFile(ctx, runID, file, t))
		}
	}

	if progress.FilesDone < progress.FilesTotal && ctx.Err() != nil {
		progress.Cancelled = true
		events <- logEvent("Cancelled after %d of %d files", progress.FilesDone, progress.FilesTotal)
		events <- progressEvent(progress)
	}

	p.finishRun(ctx, runID, progress)

	result := "completed"
	if progress.Cancelled {
		result = "cancelled"
	}
	metrics.RunsTotal.WithLabelValues(result).Inc()
	metrics.RunLastDuration.Set(time.Since(start).Seconds())
	metrics.RunLastTimestamp.Set(float64(time.Now().Unix()))

	logging.Info("Run %s in %v: %s", result, time.Since(start).Round(time.Millisecond), progress)
}

// runPool resizes files concurrently and emits their outcomes in
// enumeration order. Files are handed out one at a time, so cancellation
// stops new work without abandoning files already picked up.
func (p *Processor) runPool(ctx context.Context, files []mediatypes.MediaFile, t targets, runID string, emit func(mediatypes.MediaFile, fileResult) bool) {
	results := make([]chan fileResult, len(files))
	for i := range results {
		results[i] = make(chan fileResult, 1)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] <- p.processFile(ctx, runID, files[i], t)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range files {
			if !p.admit(ctx) {
				markNotStarted(results[i:])
				return
			}
			select {
			case jobs <- i:
			case <-ctx.Done():
				markNotStarted(results[i:])
				return
			}
		}
	}()

	for i, file := range files {
		if !emit(file, <-results[i]) {
			break
		}
	}
	wg.Wait()
}

// admit reports whether another file may be started.
func (p *Processor) admit(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if p.gate == nil {
		return true
	}
	return p.gate.Wait(ctx) == nil
}

func markNotStarted(results []chan fileResult) {
	for _, ch := range results {
		ch <- fileResult{}
	}
}

// processFile resizes one file. The strategy runs under a context that is
// never cancelled so an interrupt cannot leave a half-written temp file.
func (p *Processor) processFile(ctx context.Context, runID string, file mediatypes.MediaFile, t targets) fileResult {
	ctx = context.WithoutCancel(ctx)
	target := t.forFile(file)
	strategy := media.StrategyName(file)

	var resizer media.Resizer
	switch strategy {
	case media.StrategyVideo:
		resizer = p.video
	case media.StrategyAnimation:
		resizer = p.animation
	default:
		resizer = p.image
	}

	start := time.Now()

	hash, skip := p.alreadyProcessed(ctx, file, target)
	var outcome mediatypes.Outcome
	if skip {
		outcome = mediatypes.SkippedUnchanged(mediatypes.ReasonAlreadyProcessed, file.Size)
	} else {
		outcome = resizer.Resize(ctx, file.Path, target)
	}

	metrics.RecordFile(strategy, outcome.Status.String(), outcome.OriginalBytes, outcome.NewBytes, time.Since(start).Seconds())
	logging.Debug("%s %s: %s", strategy, file.Name, outcome.Label())

	p.recordOutcome(ctx, runID, file, strategy, target, outcome, hash)
	return fileResult{outcome: outcome, started: true}
}

// alreadyProcessed hashes file and asks the journal whether this content
// was already processed against target. It returns the hash for reuse.
func (p *Processor) alreadyProcessed(ctx context.Context, file mediatypes.MediaFile, target resolution.Target) (string, bool) {
	if p.journal == nil {
		return "", false
	}
	hash, err := filesystem.HashFile(file.Path)
	if err != nil {
		logging.Debug("Cannot hash %s: %v", file.Path, err)
		return "", false
	}
	done, err := p.journal.IsProcessed(ctx, file.Path, hash, target.String())
	if err != nil {
		logging.Warn("Journal lookup failed for %s: %v", file.Name, err)
		return hash, false
	}
	return hash, done
}

func (p *Processor) startRun(ctx context.Context, folder string, t targets) string {
	if p.journal == nil {
		return ""
	}
	id, err := p.journal.StartRun(context.WithoutCancel(ctx), database.Run{
		Folder:      folder,
		PhotoTarget: t.photo.String(),
		VideoTarget: t.video.String(),
	})
	if err != nil {
		logging.Warn("Run history disabled for this run: %v", err)
		return ""
	}
	return id
}

func (p *Processor) finishRun(ctx context.Context, runID string, progress Progress) {
	if runID == "" {
		return
	}
	err := p.journal.FinishRun(context.WithoutCancel(ctx), runID, database.RunTotals{
		FilesTotal:    progress.FilesTotal,
		FilesDone:     progress.FilesDone,
		OriginalBytes: progress.OriginalBytes,
		NewBytes:      progress.NewBytes,
		Cancelled:     progress.Cancelled,
	})
	if err != nil {
		logging.Warn("Failed to finish run %s: %v", runID, err)
	}
}

// recordOutcome journals outcome. The stored hash is that of the file now at
// the path, so only kept or replaced files can match a later lookup.
func (p *Processor) recordOutcome(ctx context.Context, runID string, file mediatypes.MediaFile, strategy string, target resolution.Target, outcome mediatypes.Outcome, hash string) {
	if runID == "" {
		return
	}

	switch {
	case outcome.Status == mediatypes.StatusFinished:
		h, err := filesystem.HashFile(file.Path)
		if err != nil {
			logging.Debug("Cannot hash %s after resize: %v", file.Path, err)
		}
		hash = h
	case outcome.Status == mediatypes.StatusSkipped &&
		(outcome.Reason == mediatypes.ReasonResizedLarger || outcome.Reason == mediatypes.ReasonAlreadyProcessed):
		// file unchanged; the hash taken before processing still applies
	default:
		hash = ""
	}

	err := p.journal.RecordOutcome(ctx, database.OutcomeRecord{
		RunID:         runID,
		Path:          file.Path,
		Kind:          string(file.Type),
		Strategy:      strategy,
		Status:        outcome.Status.String(),
		Reason:        outcome.Reason,
		OriginalBytes: outcome.OriginalBytes,
		NewBytes:      outcome.NewBytes,
		Target:        target.String(),
		ContentHash:   hash,
	})
	if err != nil {
		logging.Warn("Failed to record outcome for %s: %v", file.Name, err)
	}
}
