package resolution

import (
	"fmt"
	"math"
)

// MinDimension is the smallest width or height ever produced.
const MinDimension = 64

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// ClampEven raises v to MinDimension and then drops it to the nearest even
// number at or below. Encoders such as libx264 reject odd dimensions.
func ClampEven(v int) int {
	if v < MinDimension {
		v = MinDimension
	}
	if v%2 != 0 {
		v--
	}
	return v
}

// FitWithin scales orig by the largest factor that keeps it inside box and
// returns the clamped, even result. The factor may exceed 1 when the box is
// larger than the source.
func FitWithin(orig, box Size) (Size, error) {
	if orig.Width <= 0 || orig.Height <= 0 {
		return Size{}, fmt.Errorf("invalid source dimensions %s", orig)
	}
	if box.Width <= 0 || box.Height <= 0 {
		return Size{}, fmt.Errorf("invalid target box %s", box)
	}

	r := math.Min(
		float64(box.Width)/float64(orig.Width),
		float64(box.Height)/float64(orig.Height),
	)

	return Size{
		Width:  ClampEven(int(math.Round(float64(orig.Width) * r))),
		Height: ClampEven(int(math.Round(float64(orig.Height) * r))),
	}, nil
}
