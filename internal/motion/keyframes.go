package motion

import (
	"fmt"
	"math"
)

// KeyframeMap maps progress through an ordered list of stops to values,
// linearly between neighbours (e.g. [0 .3 .7 1] -> [0 1 1 0] fades a
// layer in, holds it, then fades it out).
type KeyframeMap struct {
	stops  []float64
	values []float64
}

// NewKeyframeMap validates that stops are strictly increasing and the
// slices have the same non-zero length.
func NewKeyframeMap(stops, values []float64) (*KeyframeMap, error) {
	if len(stops) == 0 || len(stops) != len(values) {
		return nil, fmt.Errorf("keyframe map: %d stops for %d values", len(stops), len(values))
	}
	for i := 1; i < len(stops); i++ {
		if !(stops[i] > stops[i-1]) {
			return nil, fmt.Errorf("keyframe map: stops not increasing at %d", i)
		}
	}
	return &KeyframeMap{
		stops:  append([]float64(nil), stops...),
		values: append([]float64(nil), values...),
	}, nil
}

// At holds the first/last value outside the stop range.
func (k *KeyframeMap) At(p float64) float64 {
	if math.IsNaN(p) || p <= k.stops[0] {
		return k.values[0]
	}
	last := len(k.stops) - 1
	if p >= k.stops[last] {
		return k.values[last]
	}
	for i := 0; i < last; i++ {
		if p >= k.stops[i] && p < k.stops[i+1] {
			t := (p - k.stops[i]) / (k.stops[i+1] - k.stops[i])
			return Interpolate(k.values[i], k.values[i+1], t, None)
		}
	}
	return k.values[last]
}

// Path is a 2D route evaluated at t in [0,1]. Point(0) must be the origin
// of the route and Point(1) its destination.
type Path interface {
	Point(t float64) (x, y float64)
}

// Line is a straight offset from the origin.
type Line struct {
	DX, DY float64
}

func (l Line) Point(t float64) (float64, float64) {
	return Interpolate(0, l.DX, t, None), Interpolate(0, l.DY, t, None)
}

// Curve is a quadratic Bezier from the origin through control point C to E.
type Curve struct {
	CX, CY float64
	EX, EY float64
}

func (c Curve) Point(t float64) (float64, float64) {
	if t <= 0 {
		return 0, 0
	}
	if t >= 1 {
		return c.EX, c.EY
	}
	u := 1 - t
	x := 2*u*t*c.CX + t*t*c.EX
	y := 2*u*t*c.CY + t*t*c.EY
	return x, y
}
