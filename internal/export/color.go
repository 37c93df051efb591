package export

import (
	"fmt"
	"math"

	"github.com/crazy3lf/colorconv"
)

// Heat maps t in [0, 1] from blue (0) through green to red (1). Values
// outside the range are clamped; NaN maps to black.
func Heat(t float64) (r, g, b uint8) {
	if math.IsNaN(t) {
		return 0, 0, 0
	}
	t = math.Max(0, math.Min(1, t))
	r, g, b, err := colorconv.HSVToRGB(240*(1-t), 1, 1)
	if err != nil {
		return 0, 0, 0
	}
	return r, g, b
}

// HeatHex is Heat formatted as #rrggbb.
func HeatHex(t float64) string {
	r, g, b := Heat(t)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Normalize returns a function mapping [lo, hi] onto [0, 1]. A degenerate
// range maps everything to 0.5.
func Normalize(lo, hi float64) func(float64) float64 {
	span := hi - lo
	if span == 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		return func(float64) float64 { return 0.5 }
	}
	return func(v float64) float64 { return (v - lo) / span }
}
