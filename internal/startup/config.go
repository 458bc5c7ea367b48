package startup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"media-resizer/internal/filesystem"
	"media-resizer/internal/logging"

	"github.com/BurntSushi/toml"
)

// ConfigEnv names the environment variable holding the config file path.
const ConfigEnv = "MEDIA_RESIZER_CONFIG"

// Config holds all application configuration
type Config struct {
	PhotoResolution string
	VideoResolution string
	Workers         int
	AnimationErrors string
	JPEGQuality     int
	FFmpegPath      string
	FFprobePath     string
	HistoryDB       string
	MetricsAddr     string
	SettleDelay     time.Duration
	WatchDebounce   time.Duration
	LogLevel        string

	// ConfigFile is the file that was applied, empty when none was.
	ConfigFile string
}

// fileConfig mirrors Config for TOML decoding. Durations are strings so the
// file uses the same syntax as the environment.
type fileConfig struct {
	PhotoResolution string `toml:"photo_resolution"`
	VideoResolution string `toml:"video_resolution"`
	Workers         int    `toml:"workers"`
	AnimationErrors string `toml:"animation_errors"`
	JPEGQuality     int    `toml:"jpeg_quality"`
	FFmpegPath      string `toml:"ffmpeg_path"`
	FFprobePath     string `toml:"ffprobe_path"`
	HistoryDB       string `toml:"history_db"`
	MetricsAddr     string `toml:"metrics_addr"`
	SettleDelay     string `toml:"settle_delay"`
	WatchDebounce   string `toml:"watch_debounce"`
	LogLevel        string `toml:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		PhotoResolution: "1080p",
		VideoResolution: "720p",
		AnimationErrors: "lenient",
		JPEGQuality:     90,
		FFmpegPath:      "ffmpeg",
		FFprobePath:     "ffprobe",
		SettleDelay:     filesystem.DefaultSettleDelay(),
		WatchDebounce:   2 * time.Second,
		LogLevel:        "info",
	}
}

// LoadConfig layers defaults, the TOML file and the environment. An empty path
// falls back to MEDIA_RESIZER_CONFIG; a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		applied, err := cfg.applyFile(path)
		if err != nil {
			return nil, err
		}
		if applied {
			cfg.ConfigFile = path
		} else {
			logging.Debug("Config file %s not found, using defaults", path)
		}
	}

	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyFile(path string) (bool, error) {
	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		logging.Warn("Unknown keys in %s: %v", path, undecoded)
	}

	if meta.IsDefined("photo_resolution") {
		c.PhotoResolution = fc.PhotoResolution
	}
	if meta.IsDefined("video_resolution") {
		c.VideoResolution = fc.VideoResolution
	}
	if meta.IsDefined("workers") {
		c.Workers = fc.Workers
	}
	if meta.IsDefined("animation_errors") {
		c.AnimationErrors = fc.AnimationErrors
	}
	if meta.IsDefined("jpeg_quality") {
		c.JPEGQuality = fc.JPEGQuality
	}
	if meta.IsDefined("ffmpeg_path") {
		c.FFmpegPath = fc.FFmpegPath
	}
	if meta.IsDefined("ffprobe_path") {
		c.FFprobePath = fc.FFprobePath
	}
	if meta.IsDefined("history_db") {
		c.HistoryDB = fc.HistoryDB
	}
	if meta.IsDefined("metrics_addr") {
		c.MetricsAddr = fc.MetricsAddr
	}
	if meta.IsDefined("log_level") {
		c.LogLevel = fc.LogLevel
	}
	if meta.IsDefined("settle_delay") {
		d, err := time.ParseDuration(fc.SettleDelay)
		if err != nil || d < 0 {
			return false, fmt.Errorf("invalid settle_delay %q in %s", fc.SettleDelay, path)
		}
		c.SettleDelay = d
	}
	if meta.IsDefined("watch_debounce") {
		d, err := time.ParseDuration(fc.WatchDebounce)
		if err != nil || d < 0 {
			return false, fmt.Errorf("invalid watch_debounce %q in %s", fc.WatchDebounce, path)
		}
		c.WatchDebounce = d
	}
	return true, nil
}

func (c *Config) applyEnv() {
	c.PhotoResolution = getEnv("PHOTO_RESOLUTION", c.PhotoResolution)
	c.VideoResolution = getEnv("VIDEO_RESOLUTION", c.VideoResolution)
	c.Workers = getEnvInt("RESIZE_WORKERS", c.Workers)
	c.AnimationErrors = getEnv("ANIMATION_ERRORS", c.AnimationErrors)
	c.JPEGQuality = getEnvInt("JPEG_QUALITY", c.JPEGQuality)
	c.FFmpegPath = getEnv("FFMPEG_PATH", c.FFmpegPath)
	c.FFprobePath = getEnv("FFPROBE_PATH", c.FFprobePath)
	c.HistoryDB = getEnv("HISTORY_DB", c.HistoryDB)
	c.MetricsAddr = getEnv("METRICS_ADDR", c.MetricsAddr)
	c.SettleDelay = getEnvDuration("SETTLE_DELAY", c.SettleDelay)
	c.WatchDebounce = getEnvDuration("WATCH_DEBOUNCE", c.WatchDebounce)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Log writes every effective value at info level.
func (c *Config) Log() {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	if c.ConfigFile != "" {
		logging.Info("  Config file:       %s", c.ConfigFile)
	}
	logging.Info("  PHOTO_RESOLUTION:  %s", c.PhotoResolution)
	logging.Info("  VIDEO_RESOLUTION:  %s", c.VideoResolution)
	logging.Info("  RESIZE_WORKERS:    %s", workersString(c.Workers))
	logging.Info("  ANIMATION_ERRORS:  %s", c.AnimationErrors)
	logging.Info("  JPEG_QUALITY:      %d", c.JPEGQuality)
	logging.Info("  FFMPEG_PATH:       %s", c.FFmpegPath)
	logging.Info("  FFPROBE_PATH:      %s", c.FFprobePath)
	logging.Info("  HISTORY_DB:        %s", orDisabled(c.HistoryDB))
	logging.Info("  METRICS_ADDR:      %s", orDisabled(c.MetricsAddr))
	logging.Info("  SETTLE_DELAY:      %v", c.SettleDelay)
	logging.Info("  WATCH_DEBOUNCE:    %v", c.WatchDebounce)
	logging.Info("  LOG_LEVEL:         %s", strings.ToLower(c.LogLevel))
}

func workersString(n int) string {
	if n <= 0 {
		return "auto"
	}
	return fmt.Sprintf("%d", n)
}

func orDisabled(s string) string {
	if s == "" {
		return "DISABLED"
	}
	return s
}
