package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"media-resizer/internal/database"
	"media-resizer/internal/logging"
	"media-resizer/internal/resolution"
	"media-resizer/internal/startup"

	"github.com/spf13/cobra"
)

// errCancelled is returned by commands stopped by an interrupt after their
// summary has been printed.
var errCancelled = errors.New("cancelled")

// globalOptions are persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
}

// runOptions are the flags of resize and watch. Only flags the user set
// override the loaded configuration.
type runOptions struct {
	photo           string
	video           string
	workers         int
	animationErrors string
	jpegQuality     int
	historyDB       string
	metricsAddr     string
	ffmpegPath      string
	ffprobePath     string
}

func newRootCmd() *cobra.Command {
	var global globalOptions

	root := &cobra.Command{
		Use:           "media-resizer",
		Short:         "Shrink the photos, animations and videos of a folder in place",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&global.configPath, "config", "", "TOML config file (default $"+startup.ConfigEnv+")")
	root.PersistentFlags().StringVar(&global.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newResizeCmd(&global),
		newWatchCmd(&global),
		newHistoryCmd(&global),
		newPresetsCmd(),
		newVersionCmd(),
	)
	return root
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.photo, "photo", "", "photo and animation resolution, a preset or WxH (default 1080p)")
	f.StringVar(&opts.video, "video", "", "video resolution, a preset or WxH (default 720p)")
	f.IntVar(&opts.workers, "workers", 0, "files resized at once, 0 for automatic")
	f.StringVar(&opts.animationErrors, "animation-errors", "", "lenient or strict")
	f.IntVar(&opts.jpegQuality, "jpeg-quality", 0, "JPEG quality 1-100 (default 90)")
	f.StringVar(&opts.historyDB, "history-db", "", "SQLite run journal, enables skipping already processed files")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics and /progress on this address")
	f.StringVar(&opts.ffmpegPath, "ffmpeg", "", "ffmpeg binary")
	f.StringVar(&opts.ffprobePath, "ffprobe", "", "ffprobe binary")
}

// loadConfig applies the global options, the config layers and then any
// flags that were set explicitly.
func loadConfig(cmd *cobra.Command, global *globalOptions, opts *runOptions) (*startup.Config, error) {
	cfg, err := startup.LoadConfig(global.configPath)
	if err != nil {
		return nil, err
	}

	if opts != nil {
		applyRunFlags(cmd, cfg, opts)
	}
	if global.logLevel != "" {
		cfg.LogLevel = global.logLevel
	}

	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	logging.SetLevel(level)
	return cfg, nil
}

func applyRunFlags(cmd *cobra.Command, cfg *startup.Config, opts *runOptions) {
	f := cmd.Flags()
	if f.Changed("photo") {
		cfg.PhotoResolution = opts.photo
	}
	if f.Changed("video") {
		cfg.VideoResolution = opts.video
	}
	if f.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if f.Changed("animation-errors") {
		cfg.AnimationErrors = opts.animationErrors
	}
	if f.Changed("jpeg-quality") {
		cfg.JPEGQuality = opts.jpegQuality
	}
	if f.Changed("history-db") {
		cfg.HistoryDB = opts.historyDB
	}
	if f.Changed("metrics-addr") {
		cfg.MetricsAddr = opts.metricsAddr
	}
	if f.Changed("ffmpeg") {
		cfg.FFmpegPath = opts.ffmpegPath
	}
	if f.Changed("ffprobe") {
		cfg.FFprobePath = opts.ffprobePath
	}
}

func newResizeCmd(global *globalOptions) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "resize DIR",
		Short: "Resize every eligible file in DIR once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global, &opts)
			if err != nil {
				return err
			}
			return runResize(cmd, cfg, args[0])
		},
	}
	addRunFlags(cmd, &opts)
	return cmd
}

func newWatchCmd(global *globalOptions) *cobra.Command {
	var (
		opts     runOptions
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Resize DIR, then again whenever new media lands in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global, &opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debounce") {
				cfg.WatchDebounce = debounce
			}
			return runWatch(cmd, cfg, args[0])
		},
	}
	addRunFlags(cmd, &opts)
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before a re-run (default 2s)")
	return cmd
}

func newHistoryCmd(global *globalOptions) *cobra.Command {
	var (
		limit     int
		historyDB string
	)
	cmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "List recent runs, or the files of one run, from the journal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global, nil)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("history-db") {
				cfg.HistoryDB = historyDB
			}
			if cfg.HistoryDB == "" {
				return errors.New("no journal configured, set --history-db or HISTORY_DB")
			}

			db, err := database.New(cmd.Context(), cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					logging.Warn("failed to close journal: %v", err)
				}
			}()

			if len(args) == 1 {
				records, err := db.ListOutcomes(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(records) == 0 {
					return fmt.Errorf("no files recorded for run %s", args[0])
				}
				printOutcomes(cmd, records)
				return nil
			}

			runs, err := db.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printRuns(cmd, runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show, 0 for all")
	cmd.Flags().StringVar(&historyDB, "history-db", "", "SQLite run journal")
	return cmd
}

func printRuns(cmd *cobra.Command, runs []database.Run) {
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tFOLDER\tPHOTO\tVIDEO\tFILES\tSAVED MB\tSTATE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d/%d\t%.2f\t%s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Folder, r.PhotoTarget, r.VideoTarget,
			r.Totals.FilesDone, r.Totals.FilesTotal,
			float64(r.Totals.SavedBytes())/(1024*1024),
			runState(r),
		)
	}
	if err := tw.Flush(); err != nil {
		logging.Warn("failed to write history: %v", err)
	}
}

func printOutcomes(cmd *cobra.Command, records []database.OutcomeRecord) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTRATEGY\tSTATUS\tBEFORE MB\tAFTER MB\tREASON")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%s\n",
			filepath.Base(rec.Path), rec.Strategy, rec.Status,
			float64(rec.OriginalBytes)/(1024*1024),
			float64(rec.NewBytes)/(1024*1024),
			rec.Reason,
		)
	}
	if err := tw.Flush(); err != nil {
		logging.Warn("failed to write history: %v", err)
	}
}

func runState(r database.Run) string {
	switch {
	case r.FinishedAt == nil:
		return "running"
	case r.Totals.Cancelled:
		return "cancelled"
	default:
		return "completed"
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the named resolutions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			for _, p := range resolution.Presets {
				fmt.Fprintf(out, "%-9s %s\n", p.Name, p.Target)
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), startup.GetBuildInfo())
		},
	}
}
