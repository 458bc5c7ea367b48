package resolution

import (
	"math"
	"testing"
)

func TestClampEven(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: -10, want: 64},
		{in: 0, want: 64},
		{in: 63, want: 64},
		{in: 64, want: 64},
		{in: 65, want: 64},
		{in: 853, want: 852},
		{in: 854, want: 854},
		{in: 1921, want: 1920},
	}

	for _, tt := range tests {
		if got := ClampEven(tt.in); got != tt.want {
			t.Errorf("ClampEven(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name string
		orig Size
		box  Size
		want Size
	}{
		{name: "1080p into 720p", orig: Size{1920, 1080}, box: Size{1280, 720}, want: Size{1280, 720}},
		{name: "portrait into landscape box", orig: Size{1080, 1920}, box: Size{1280, 720}, want: Size{404, 720}},
		{name: "4:3 into 16:9 box", orig: Size{4000, 3000}, box: Size{1920, 1080}, want: Size{1440, 1080}},
		{name: "upscale allowed", orig: Size{640, 360}, box: Size{1280, 720}, want: Size{1280, 720}},
		{name: "floor dominates", orig: Size{2000, 100}, box: Size{256, 144}, want: Size{256, 64}},
		{name: "odd rounding", orig: Size{1001, 1001}, box: Size{333, 333}, want: Size{332, 332}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FitWithin(tt.orig, tt.box)
			if err != nil {
				t.Fatalf("FitWithin returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FitWithin(%s, %s) = %s, want %s", tt.orig, tt.box, got, tt.want)
			}
		})
	}
}

func TestFitWithinRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		orig Size
		box  Size
	}{
		{Size{0, 100}, Size{100, 100}},
		{Size{100, -1}, Size{100, 100}},
		{Size{100, 100}, Size{0, 100}},
	}

	for _, c := range cases {
		if _, err := FitWithin(c.orig, c.box); err == nil {
			t.Errorf("FitWithin(%s, %s) expected error", c.orig, c.box)
		}
	}
}

// TestFitWithinProperties sweeps a grid of sources and boxes and checks the
// invariants every strategy relies on.
func TestFitWithinProperties(t *testing.T) {
	sources := []int{1, 7, 64, 99, 320, 481, 720, 1080, 1337, 1920, 3840, 7999}
	boxes := []int{64, 101, 144, 240, 426, 854, 1280, 1920, 2560}

	for _, ow := range sources {
		for _, oh := range sources {
			for _, bw := range boxes {
				for _, bh := range boxes {
					orig := Size{ow, oh}
					box := Size{bw, bh}
					got, err := FitWithin(orig, box)
					if err != nil {
						t.Fatalf("FitWithin(%s, %s): %v", orig, box, err)
					}

					if got.Width%2 != 0 || got.Height%2 != 0 {
						t.Fatalf("FitWithin(%s, %s) = %s, not even", orig, box, got)
					}
					if got.Width < MinDimension || got.Height < MinDimension {
						t.Fatalf("FitWithin(%s, %s) = %s, below floor", orig, box, got)
					}
					if got.Width > max(bw, MinDimension)+1 || got.Height > max(bh, MinDimension)+1 {
						t.Fatalf("FitWithin(%s, %s) = %s, exceeds box", orig, box, got)
					}

					r := math.Min(float64(bw)/float64(ow), float64(bh)/float64(oh))
					exactW := float64(ow) * r
					exactH := float64(oh) * r
					if exactW < 200 || exactH < 200 {
						// The floor distorts the ratio for tiny outputs.
						continue
					}
					want := float64(ow) / float64(oh)
					gotRatio := float64(got.Width) / float64(got.Height)
					tolerance := want * (2/exactW + 2/exactH)
					if math.Abs(gotRatio-want) > tolerance {
						t.Fatalf("FitWithin(%s, %s) = %s, ratio %.4f, want %.4f±%.4f",
							orig, box, got, gotRatio, want, tolerance)
					}
				}
			}
		}
	}
}
