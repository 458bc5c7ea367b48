package resizer

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"media-resizer/internal/filesystem"
	"media-resizer/internal/media"
)

func writeTestJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 90, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 92}); err != nil {
		t.Fatal(err)
	}
}

func folderBytes(t *testing.T, dir string) int64 {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var total int64
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			t.Fatal(err)
		}
		total += info.Size()
	}
	return total
}

func TestRunTwiceNeverGrows(t *testing.T) {
	dir := t.TempDir()
	writeTestJPEG(t, filepath.Join(dir, "wide.jpg"), 1920, 1080)
	writeTestJPEG(t, filepath.Join(dir, "tall.jpg"), 600, 1200)
	writeTestJPEG(t, filepath.Join(dir, "small.jpg"), 320, 200)

	committer := &filesystem.Committer{Retry: filesystem.DefaultRetryConfig()}
	p, err := New(Config{
		Image:     media.NewImageResizer(committer, 85),
		Animation: media.NewAnimationResizer(committer, media.AnimationLenient),
		Video:     media.NewVideoResizer(committer, nil),
	})
	if err != nil {
		t.Fatal(err)
	}

	before := folderBytes(t, dir)
	sizes := []int64{before}

	for run := 0; run < 2; run++ {
		events, err := p.ProcessFolder(context.Background(), dir, "720p", "720p")
		if err != nil {
			t.Fatal(err)
		}
		got := collect(t, events)

		ps := progresses(got)
		if len(ps) != 3 {
			t.Fatalf("run %d: %d progress events, want 3", run, len(ps))
		}
		if last := ps[2]; last.NewBytes > last.OriginalBytes {
			t.Errorf("run %d grew the folder: %+v", run, last)
		}
		sizes = append(sizes, folderBytes(t, dir))
	}

	for i := 1; i < len(sizes); i++ {
		if sizes[i] > sizes[i-1] {
			t.Errorf("folder grew on run %d: %d -> %d", i, sizes[i-1], sizes[i])
		}
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 3 {
		t.Errorf("folder has %d entries after runs, want 3", len(entries))
	}
}
