package media

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"os"
	"strings"

	"media-resizer/internal/filesystem"
	"media-resizer/internal/logging"
	"media-resizer/internal/mediatypes"
	"media-resizer/internal/resolution"

	"github.com/disintegration/imaging"
	"github.com/ericpauley/go-quantize/quantize"
)

// AnimationPolicy decides how animation failures are reported.
type AnimationPolicy string

const (
	// AnimationLenient reports failures as "Finished (error ignored: ...)".
	AnimationLenient AnimationPolicy = "lenient"
	// AnimationStrict reports failures as "Skipped (error: ...)".
	AnimationStrict AnimationPolicy = "strict"
)

// ParseAnimationPolicy accepts "lenient" or "strict" in any case. Empty
// means lenient.
func ParseAnimationPolicy(s string) (AnimationPolicy, error) {
	switch AnimationPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", AnimationLenient:
		return AnimationLenient, nil
	case AnimationStrict:
		return AnimationStrict, nil
	default:
		return "", fmt.Errorf("unknown animation error policy %q (want lenient or strict)", s)
	}
}

// defaultFrameDelay is 100ms in GIF hundredths of a second.
const defaultFrameDelay = 10

// AnimationResizer handles animated GIFs frame by frame.
type AnimationResizer struct {
	Committer *filesystem.Committer
	Policy    AnimationPolicy
}

// NewAnimationResizer creates an AnimationResizer.
func NewAnimationResizer(committer *filesystem.Committer, policy AnimationPolicy) *AnimationResizer {
	if policy == "" {
		policy = AnimationLenient
	}
	return &AnimationResizer{Committer: committer, Policy: policy}
}

// Resize rewrites every frame of path at the fitted size and commits the result.
func (r *AnimationResizer) Resize(_ context.Context, path string, target resolution.Target) mediatypes.Outcome {
	originalSize, temp, err := prepare(r.Committer, path)
	if err != nil {
		return r.fail(path, err)
	}

	if err := resizeGIF(path, temp, target); err != nil {
		r.Committer.Discard(temp)
		return r.fail(path, err)
	}

	keepMode(path, temp)

	outcome, err := r.Committer.Commit(path, temp, originalSize)
	if err != nil {
		return r.fail(path, err)
	}
	return outcome
}

func (r *AnimationResizer) fail(path string, err error) mediatypes.Outcome {
	logging.Debug("Animation resize failed for %s: %v", path, err)
	if r.Policy == AnimationStrict {
		return mediatypes.SkippedError(err)
	}
	return mediatypes.ErrorIgnored(err)
}

func resizeGIF(src, dst string, target resolution.Target) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	g, err := gif.DecodeAll(bufio.NewReader(in))
	if cerr := in.Close(); cerr != nil {
		logging.Warn("failed to close %s: %v", src, cerr)
	}
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	out, err := resizeFrames(g, target)
	if err != nil {
		return err
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := gif.EncodeAll(w, out); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// screenSize is the logical screen, or the first frame's extent when the
// header leaves it empty.
func screenSize(g *gif.GIF) resolution.Size {
	if g.Config.Width > 0 && g.Config.Height > 0 {
		return resolution.Size{Width: g.Config.Width, Height: g.Config.Height}
	}
	b := g.Image[0].Bounds()
	return resolution.Size{Width: b.Max.X, Height: b.Max.Y}
}

// resizeFrames composites each frame onto a full canvas, resizes it and
// re-quantises it. Output frames all cover the full screen and are disposed
// to background.
func resizeFrames(g *gif.GIF, target resolution.Target) (*gif.GIF, error) {
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("decode: no frames")
	}

	screen := screenSize(g)
	size := screen
	if box, ok := target.Size(); ok {
		var err error
		if size, err = resolution.FitWithin(screen, box); err != nil {
			return nil, err
		}
	}

	// -1 means the source had no loop extension; the output loops forever.
	loop := g.LoopCount
	if loop < 0 {
		loop = 0
	}

	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(g.Image)),
		Delay:     make([]int, 0, len(g.Image)),
		Disposal:  make([]byte, 0, len(g.Image)),
		LoopCount: loop,
		Config:    image.Config{Width: size.Width, Height: size.Height},
	}

	canvas := image.NewRGBA(image.Rect(0, 0, screen.Width, screen.Height))
	var saved []byte

	for i, frame := range g.Image {
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			saved = append(saved[:0], canvas.Pix...)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		resized := imaging.Resize(canvas, size.Width, size.Height, imaging.Lanczos)
		out.Image = append(out.Image, quantizeFrame(resized))

		delay := defaultFrameDelay
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = g.Delay[i]
		}
		out.Delay = append(out.Delay, delay)
		out.Disposal = append(out.Disposal, gif.DisposalBackground)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			copy(canvas.Pix, saved)
		}
	}

	return out, nil
}

// quantizeFrame builds a palette for img alone, with index 0 reserved for
// full transparency, and dithers img onto it.
func quantizeFrame(img image.Image) *image.Paletted {
	palette := make(color.Palette, 1, 256)
	palette[0] = color.Transparent
	q := quantize.MedianCutQuantizer{}
	palette = q.Quantize(palette, img)

	dst := image.NewPaletted(img.Bounds(), palette)
	draw.FloydSteinberg.Draw(dst, img.Bounds(), img, img.Bounds().Min)
	return dst
}
