package resolution

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidResolution is wrapped by every Parse failure.
var ErrInvalidResolution = errors.New("invalid resolution")

// OriginalName is the preset meaning "keep the source dimensions".
const OriginalName = "Original"

// Target is either Original (the zero value) or a box the output must fit in.
type Target struct {
	box Size
	set bool
}

// Original returns the no-resize target.
func Original() Target {
	return Target{}
}

// Box returns a target for an already validated width and height.
func Box(width, height int) Target {
	return Target{box: Size{Width: width, Height: height}, set: true}
}

// Size returns the box and whether one is set.
func (t Target) Size() (Size, bool) {
	return t.box, t.set
}

// IsOriginal reports whether the target keeps source dimensions.
func (t Target) IsOriginal() bool {
	return !t.set
}

// String is used as the journal key and in log output.
func (t Target) String() string {
	if !t.set {
		return strings.ToLower(OriginalName)
	}
	return t.box.String()
}

// Preset is a named target box.
type Preset struct {
	Name   string
	Target Target
}

// Presets lists the named targets in display order.
var Presets = []Preset{
	{Name: OriginalName, Target: Original()},
	{Name: "1440p", Target: Box(2560, 1440)},
	{Name: "1080p", Target: Box(1920, 1080)},
	{Name: "720p", Target: Box(1280, 720)},
	{Name: "480p", Target: Box(854, 480)},
	{Name: "360p", Target: Box(640, 360)},
	{Name: "240p", Target: Box(426, 240)},
	{Name: "144p", Target: Box(256, 144)},
}

func lookupPreset(name string) (Target, bool) {
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) {
			return p.Target, true
		}
	}
	return Target{}, false
}

// Parse converts resolution text into a Target. Input is trimmed and matched
// case-insensitively. Accepted forms:
//
//	""  "original"      no resizing
//	"720p"              preset
//	"1280x720"          explicit box
//	"480"  "480p"       height; width = 16:9 rounded to the nearest even number
//
// Failures wrap ErrInvalidResolution; callers treat them as "no target".
func Parse(text string) (Target, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return Original(), nil
	}
	if t, ok := lookupPreset(s); ok {
		return t, nil
	}

	var w, h int
	if strings.Contains(s, "x") {
		parts := strings.Split(s, "x")
		if len(parts) != 2 {
			return Target{}, fmt.Errorf("%w: %q", ErrInvalidResolution, text)
		}
		var err error
		if w, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
			return Target{}, fmt.Errorf("%w: %q: bad width", ErrInvalidResolution, text)
		}
		if h, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
			return Target{}, fmt.Errorf("%w: %q: bad height", ErrInvalidResolution, text)
		}
	} else {
		var err error
		h, err = strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "p")))
		if err != nil {
			return Target{}, fmt.Errorf("%w: %q", ErrInvalidResolution, text)
		}
		w = widescreenWidth(h)
	}

	return Box(ClampEven(w), ClampEven(h)), nil
}

// widescreenWidth returns h*16/9 rounded to the nearest even integer, which
// reproduces every preset width (480 -> 854, 240 -> 426).
func widescreenWidth(h int) int {
	return 2 * int(math.Round(float64(h)*16/9/2))
}
