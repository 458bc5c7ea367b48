package media

import (
	"bufio"
	"context"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"media-resizer/internal/mediatypes"
	"media-resizer/internal/resolution"
)

// animation builds a GIF with one frame per delay, drawn from src.
func animation(width, height int, delays []int, loop int, src func(i int) image.Image) *gif.GIF {
	g := &gif.GIF{LoopCount: loop, Config: image.Config{Width: width, Height: height}}
	for i, d := range delays {
		frame := image.NewPaletted(image.Rect(0, 0, width, height), palette.Plan9)
		drawOver(frame, src(i))
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, d)
		g.Disposal = append(g.Disposal, gif.DisposalNone)
	}
	return g
}

func drawOver(dst draw.Image, src image.Image) {
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
}

func decodeGIF(t *testing.T, path string) *gif.GIF {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(bufio.NewReader(f))
	if err != nil {
		t.Fatalf("Failed to decode %s: %v", path, err)
	}
	return g
}

func TestResizeFramesPreservesTiming(t *testing.T) {
	g := animation(200, 100, []int{5, 0, 20}, 2, func(int) image.Image { return gradient(200, 100) })
	g.Disposal = []byte{gif.DisposalNone, gif.DisposalBackground, gif.DisposalPrevious}

	out, err := resizeFrames(g, resolution.Box(100, 100))
	if err != nil {
		t.Fatalf("resizeFrames() error = %v", err)
	}

	if len(out.Image) != 3 {
		t.Fatalf("got %d frames, want 3", len(out.Image))
	}
	for i, frame := range out.Image {
		if b := frame.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
			t.Errorf("frame %d is %dx%d, want 100x50", i, b.Dx(), b.Dy())
		}
		if _, _, _, a := frame.Palette[0].RGBA(); a != 0 {
			t.Errorf("frame %d palette[0] is not transparent", i)
		}
		if len(frame.Palette) > 256 {
			t.Errorf("frame %d palette has %d colors", i, len(frame.Palette))
		}
		if out.Disposal[i] != gif.DisposalBackground {
			t.Errorf("frame %d disposal = %d, want background", i, out.Disposal[i])
		}
	}

	wantDelays := []int{5, defaultFrameDelay, 20}
	for i, d := range wantDelays {
		if out.Delay[i] != d {
			t.Errorf("delay[%d] = %d, want %d", i, out.Delay[i], d)
		}
	}
	if out.LoopCount != 2 {
		t.Errorf("LoopCount = %d, want 2", out.LoopCount)
	}
	if out.Config.Width != 100 || out.Config.Height != 50 {
		t.Errorf("Config = %dx%d, want 100x50", out.Config.Width, out.Config.Height)
	}
}

func TestResizeFramesDisposal(t *testing.T) {
	pal := color.Palette{color.Transparent, color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255}}

	build := func(firstDisposal byte) *gif.GIF {
		base := image.NewPaletted(image.Rect(0, 0, 10, 10), pal)
		for i := range base.Pix {
			base.Pix[i] = 1
		}
		patch := image.NewPaletted(image.Rect(0, 0, 2, 2), pal)
		for i := range patch.Pix {
			patch.Pix[i] = 2
		}
		return &gif.GIF{
			Image:    []*image.Paletted{base, patch},
			Delay:    []int{10, 10},
			Disposal: []byte{firstDisposal, gif.DisposalNone},
			Config:   image.Config{Width: 10, Height: 10},
		}
	}

	tests := []struct {
		name            string
		disposal        byte
		wantTransparent bool
	}{
		{"none keeps previous frame", gif.DisposalNone, false},
		{"background clears previous frame", gif.DisposalBackground, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := resizeFrames(build(tt.disposal), resolution.Original())
			if err != nil {
				t.Fatalf("resizeFrames() error = %v", err)
			}
			r, _, _, a := out.Image[1].At(5, 5).RGBA()
			transparent := a < 0x8000
			if transparent != tt.wantTransparent {
				t.Errorf("pixel (5,5) transparent = %v, want %v", transparent, tt.wantTransparent)
			}
			if !tt.wantTransparent && r < 0x8000 {
				t.Errorf("pixel (5,5) should stay red, got r=%#x", r)
			}
		})
	}
}

func TestScreenSizeFallsBackToFirstFrame(t *testing.T) {
	g := &gif.GIF{Image: []*image.Paletted{image.NewPaletted(image.Rect(0, 0, 30, 20), palette.Plan9)}}
	if got := screenSize(g); got != (resolution.Size{Width: 30, Height: 20}) {
		t.Errorf("screenSize() = %v, want 30x20", got)
	}
}

func TestAnimationResizerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.gif")
	writeGIF(t, path, animation(400, 200, []int{4, 8, 12}, 0, func(i int) image.Image {
		return noise(400+i, 200)
	}))

	r := NewAnimationResizer(testCommitter(), "")
	out := r.Resize(context.Background(), path, resolution.Box(100, 100))
	if out.Status != mediatypes.StatusFinished {
		t.Fatalf("Resize() = %s, want Finished", out.Label())
	}
	if out.NewBytes >= out.OriginalBytes {
		t.Errorf("expected a smaller file, got %d -> %d", out.OriginalBytes, out.NewBytes)
	}

	g := decodeGIF(t, path)
	if len(g.Image) != 3 {
		t.Fatalf("got %d frames, want 3", len(g.Image))
	}
	if g.Config.Width != 100 || g.Config.Height != 50 {
		t.Errorf("screen = %dx%d, want 100x50", g.Config.Width, g.Config.Height)
	}
	for i, want := range []int{4, 8, 12} {
		if g.Delay[i] != want {
			t.Errorf("delay[%d] = %d, want %d", i, g.Delay[i], want)
		}
	}
	if g.LoopCount != 0 {
		t.Errorf("LoopCount = %d, want 0 (forever)", g.LoopCount)
	}
	assertNoTemp(t, path)
}

func TestAnimationResizerLoopCount(t *testing.T) {
	tests := []struct {
		name string
		loop int
		want int
	}{
		{"no loop extension loops forever", -1, 0},
		{"forever", 0, 0},
		{"explicit count", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "anim.gif")
			writeGIF(t, path, animation(400, 200, []int{10, 10, 10}, tt.loop, func(i int) image.Image {
				return noise(400+i, 200)
			}))

			out := NewAnimationResizer(testCommitter(), "").Resize(context.Background(), path, resolution.Box(100, 100))
			if out.Status != mediatypes.StatusFinished {
				t.Fatalf("Resize() = %s, want Finished", out.Label())
			}
			if g := decodeGIF(t, path); g.LoopCount != tt.want {
				t.Errorf("LoopCount = %d, want %d", g.LoopCount, tt.want)
			}
		})
	}
}

func TestAnimationResizerErrorPolicy(t *testing.T) {
	tests := []struct {
		policy     AnimationPolicy
		wantStatus mediatypes.Status
		wantPrefix string
	}{
		{AnimationLenient, mediatypes.StatusErrorIgnored, "Finished (error ignored: "},
		{AnimationStrict, mediatypes.StatusSkipped, "Skipped (error: "},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "broken.gif")
			if err := os.WriteFile(path, []byte("GIF89a garbage"), 0o644); err != nil {
				t.Fatal(err)
			}

			out := NewAnimationResizer(testCommitter(), tt.policy).Resize(context.Background(), path, resolution.Box(640, 360))
			if out.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", out.Status, tt.wantStatus)
			}
			if !strings.HasPrefix(out.Label(), tt.wantPrefix) {
				t.Errorf("Label() = %q, want prefix %q", out.Label(), tt.wantPrefix)
			}
			if out.OriginalBytes != 0 || out.NewBytes != 0 {
				t.Errorf("failed file contributed bytes: %+v", out)
			}
			data, _ := os.ReadFile(path)
			if string(data) != "GIF89a garbage" {
				t.Error("original was modified")
			}
			assertNoTemp(t, path)
		})
	}
}

func TestParseAnimationPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    AnimationPolicy
		wantErr bool
	}{
		{"", AnimationLenient, false},
		{"lenient", AnimationLenient, false},
		{" Strict ", AnimationStrict, false},
		{"STRICT", AnimationStrict, false},
		{"panic", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAnimationPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAnimationPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAnimationPolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
