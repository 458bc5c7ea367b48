package media

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"media-resizer/internal/filesystem"
	"media-resizer/internal/logging"
	"media-resizer/internal/mediatypes"
	"media-resizer/internal/resolution"

	// Image format decoders
	_ "image/jpeg"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support
)

// DefaultJPEGQuality is used when no quality is configured.
const DefaultJPEGQuality = 90

// vipsExtensions are still formats imaging cannot encode.
var vipsExtensions = map[string]bool{
	".webp": true,
	".heic": true,
	".ico":  true,
}

// ImageResizer handles still photos.
type ImageResizer struct {
	Committer   *filesystem.Committer
	JPEGQuality int
}

// NewImageResizer creates an ImageResizer. A quality outside 1..100 falls
// back to DefaultJPEGQuality.
func NewImageResizer(committer *filesystem.Committer, jpegQuality int) *ImageResizer {
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	return &ImageResizer{Committer: committer, JPEGQuality: jpegQuality}
}

// Resize decodes path, fits it inside target with Lanczos resampling, writes
// the temp artifact in the same format and commits it. An Original target
// re-encodes at the source dimensions.
func (r *ImageResizer) Resize(_ context.Context, path string, target resolution.Target) mediatypes.Outcome {
	originalSize, temp, err := prepare(r.Committer, path)
	if err != nil {
		return mediatypes.SkippedError(err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if vipsExtensions[ext] {
		err = resizeWithVips(path, temp, target, r.JPEGQuality)
	} else {
		err = r.resizeWithImaging(path, temp, target)
	}
	if err != nil {
		r.Committer.Discard(temp)
		logging.Debug("Resize failed for %s: %v", path, err)
		return mediatypes.SkippedError(err)
	}

	keepMode(path, temp)

	outcome, err := r.Committer.Commit(path, temp, originalSize)
	if err != nil {
		return mediatypes.SkippedError(err)
	}
	return outcome
}

func (r *ImageResizer) resizeWithImaging(src, dst string, target resolution.Target) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	img, err = fit(img, target)
	if err != nil {
		return err
	}

	if err := imaging.Save(img, dst,
		imaging.JPEGQuality(r.JPEGQuality),
		imaging.PNGCompressionLevel(png.BestCompression),
	); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// fit resizes img so it fits target. Original targets return img unchanged.
func fit(img image.Image, target resolution.Target) (image.Image, error) {
	box, ok := target.Size()
	if !ok {
		return img, nil
	}
	b := img.Bounds()
	size, err := resolution.FitWithin(resolution.Size{Width: b.Dx(), Height: b.Dy()}, box)
	if err != nil {
		return nil, err
	}
	logging.Debug("Resizing %dx%d to %s", b.Dx(), b.Dy(), size)
	return imaging.Resize(img, size.Width, size.Height, imaging.Lanczos), nil
}

// keepMode copies the original's permission bits onto temp so promotion does
// not change them.
func keepMode(original, temp string) {
	info, err := os.Stat(original)
	if err != nil {
		return
	}
	if err := os.Chmod(temp, info.Mode().Perm()); err != nil {
		logging.Debug("failed to copy permissions to %s: %v", temp, err)
	}
}
