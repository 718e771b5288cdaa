package motion

import (
	"fmt"
	"math"
	"strings"
)

// Ease maps linear progress t in [0,1] to eased progress. Every Ease must
// return exactly 0 at t=0 and exactly 1 at t=1.
type Ease func(t float64) float64

// None is the linear ease used for scrubbed motion, so position tracks scroll 1:1.
func None(t float64) float64 { return t }

// PowerIn returns an ease-in curve of the given power (power1 = quad).
func PowerIn(power int) Ease {
	exp := power + 1
	return func(t float64) float64 {
		return ipow(t, exp)
	}
}

// PowerOut returns the mirrored ease-out curve.
func PowerOut(power int) Ease {
	exp := power + 1
	return func(t float64) float64 {
		return 1 - ipow(1-t, exp)
	}
}

// PowerInOut returns a symmetric ease-in-out curve.
func PowerInOut(power int) Ease {
	exp := power + 1
	return func(t float64) float64 {
		if t < 0.5 {
			return ipow(2*t, exp) / 2
		}
		return 1 - ipow(-2*t+2, exp)/2
	}
}

// BackOut overshoots the target before settling. Only time-driven
// animations use it; scrubbed motion must stay monotonic.
func BackOut(overshoot float64) Ease {
	c3 := overshoot + 1
	return func(t float64) float64 {
		u := t - 1
		return 1 + c3*u*u*u + overshoot*u*u
	}
}

var (
	Power1Out   = PowerOut(1)
	Power2InOut = PowerInOut(2)
	Power3Out   = PowerOut(3)
)

// ParseEase accepts the names used in section choreography:
// "none", "linear", "power<N>.in|out|inOut", "back.out" and the
// shorthand "power<N>" (which means out).
func ParseEase(name string) (Ease, error) {
	name = strings.TrimSpace(name)
	switch name {
	case "", "none", "linear":
		return None, nil
	case "back.out", "back":
		return BackOut(1.70158), nil
	}

	base, kind, _ := strings.Cut(name, ".")
	if !strings.HasPrefix(base, "power") {
		return nil, fmt.Errorf("unknown ease %q", name)
	}
	var power int
	if _, err := fmt.Sscanf(base, "power%d", &power); err != nil || power < 1 || power > 4 {
		return nil, fmt.Errorf("unknown ease %q", name)
	}

	switch kind {
	case "in":
		return PowerIn(power), nil
	case "", "out":
		return PowerOut(power), nil
	case "inOut":
		return PowerInOut(power), nil
	}
	return nil, fmt.Errorf("unknown ease %q", name)
}

// MustEase is ParseEase for compile-time constant names.
func MustEase(name string) Ease {
	e, err := ParseEase(name)
	if err != nil {
		panic(err)
	}
	return e
}

func ipow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}

// clamp01 also maps NaN to 0.
func clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
