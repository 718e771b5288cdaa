package motion

import (
	"time"
)

// Interpolate evaluates a single eased property between from and to.
// The bounds are returned verbatim so that t=0 yields from and t=1 yields
// to with exact float equality.
func Interpolate(from, to, t float64, ease Ease) float64 {
	if t <= 0 {
		return from
	}
	if t >= 1 {
		return to
	}
	if ease == nil {
		ease = None
	}
	return from + (to-from)*ease(t)
}

// Property names a single animatable style channel.
type Property string

const (
	X        Property = "x"
	Y        Property = "y"
	XPercent Property = "xPercent"
	YPercent Property = "yPercent"
	Opacity  Property = "opacity"
	Scale    Property = "scale"
	Glow     Property = "glow"
)

// Animation is the (property, from, to, ease) part of a property animation.
// The target is supplied by whoever owns the animation.
type Animation struct {
	Property Property
	From     float64
	To       float64
	Ease     Ease
}

// At evaluates the animation at local progress t.
func (a Animation) At(t float64) float64 {
	return Interpolate(a.From, a.To, t, a.Ease)
}

// ProgressDriven animations are pure functions of an external progress
// value. Evaluating the same p twice must give the same result regardless
// of the direction the caller arrived from.
type ProgressDriven interface {
	At(p float64) float64
}

// TimeDriven animations run on elapsed wall-clock time and may overshoot.
// done reports that the final value has been reached.
type TimeDriven interface {
	AtTime(elapsed time.Duration) (value float64, done bool)
}

// Scrub binds an animation to a progress input. Clamp decides whether
// progress outside [0,1] is clamped (regions) or extrapolated (parallax
// beyond its region).
type Scrub struct {
	Animation
	Clamp bool
}

func (s Scrub) At(p float64) float64 {
	if s.Clamp {
		return s.Animation.At(clamp01(p))
	}
	if p >= 0 && p <= 1 {
		return s.Animation.At(p)
	}
	// Extrapolation only makes sense for linear motion.
	return s.From + (s.To-s.From)*p
}

// Tween is a one-shot, time-driven animation with an optional delay.
// Repeat < 0 loops forever (used by decorative marquees).
type Tween struct {
	Animation
	Delay    time.Duration
	Duration time.Duration
	Repeat   int
}

func (tw Tween) AtTime(elapsed time.Duration) (float64, bool) {
	local := elapsed - tw.Delay
	if local <= 0 {
		return tw.From, false
	}
	if tw.Duration <= 0 {
		return tw.To, tw.Repeat >= 0
	}

	if tw.Repeat < 0 {
		rem := local % tw.Duration
		return tw.Animation.At(float64(rem) / float64(tw.Duration)), false
	}
	if local >= tw.Duration*time.Duration(tw.Repeat+1) {
		return tw.To, true
	}
	rem := local % tw.Duration
	return tw.Animation.At(float64(rem) / float64(tw.Duration)), false
}

// End reports when the tween settles; loops never do.
func (tw Tween) End() (time.Duration, bool) {
	if tw.Repeat < 0 {
		return 0, false
	}
	return tw.Delay + tw.Duration*time.Duration(tw.Repeat+1), true
}
