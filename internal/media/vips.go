package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"media-resizer/internal/logging"
	"media-resizer/internal/resolution"

	"github.com/davidbyttow/govips/v2/vips"
)

// ErrVipsUnavailable is returned for webp, heic and ico files when libvips
// has not been started.
var ErrVipsUnavailable = errors.New("libvips not available")

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// InitVips starts libvips once per process. govips cannot restart libvips
// after ShutdownVips, so call it once at startup.
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	level, handler := vipsLogging(logging.GetLevel())
	vips.LoggingSettings(handler, level)

	// Files are processed one at a time per worker, so keep vips itself narrow.
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// vipsLogging maps the application log level onto libvips messages.
func vipsLogging(appLevel logging.LogLevel) (vips.LogLevel, func(string, vips.LogLevel, string)) {
	var threshold vips.LogLevel
	switch appLevel {
	case logging.LevelDebug:
		threshold = vips.LogLevelInfo
	case logging.LevelInfo:
		threshold = vips.LogLevelWarning
	case logging.LevelWarn:
		threshold = vips.LogLevelError
	default:
		threshold = vips.LogLevelCritical
	}

	handler := func(domain string, level vips.LogLevel, msg string) {
		if level < threshold {
			return
		}
		switch level {
		case vips.LogLevelError, vips.LogLevelCritical:
			logging.Error("[%s] %s", domain, msg)
		case vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}
	return threshold, handler
}

// ShutdownVips releases libvips resources.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available.
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// resizeWithVips decodes, fits and re-encodes src into dst entirely inside
// libvips, keeping the source format.
func resizeWithVips(src, dst string, target resolution.Target, quality int) error {
	if !IsVipsAvailable() {
		return ErrVipsUnavailable
	}

	ref, err := vips.LoadImageFromFile(src, vips.NewImportParams())
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	defer ref.Close()

	if err := ref.AutoRotate(); err != nil {
		return fmt.Errorf("auto-rotate: %w", err)
	}

	if box, ok := target.Size(); ok {
		orig := resolution.Size{Width: ref.Width(), Height: ref.Height()}
		size, err := resolution.FitWithin(orig, box)
		if err != nil {
			return err
		}
		logging.Debug("Vips resizing %s from %s to %s", filepath.Base(src), orig, size)

		hscale := float64(size.Width) / float64(orig.Width)
		vscale := float64(size.Height) / float64(orig.Height)
		if err := ref.ResizeWithVScale(hscale, vscale, vips.KernelLanczos3); err != nil {
			return fmt.Errorf("resize: %w", err)
		}
	}

	buf, err := exportVips(ref, strings.ToLower(filepath.Ext(src)), quality)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if err := os.WriteFile(dst, buf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

func exportVips(ref *vips.ImageRef, ext string, quality int) ([]byte, error) {
	var (
		buf []byte
		err error
	)
	switch ext {
	case ".webp":
		params := vips.NewWebpExportParams()
		params.Quality = quality
		buf, _, err = ref.ExportWebp(params)
	case ".heic":
		params := vips.NewHeifExportParams()
		params.Quality = quality
		buf, _, err = ref.ExportHeif(params)
	case ".ico":
		// libvips has no ICO saver; ExportNative would write JPEG bytes.
		var pngData []byte
		if pngData, _, err = ref.ExportPng(vips.NewPngExportParams()); err != nil {
			return nil, err
		}
		buf, err = icoContainer(pngData, resolution.Size{Width: ref.Width(), Height: ref.Height()})
	default:
		buf, _, err = ref.ExportNative()
	}
	return buf, err
}
