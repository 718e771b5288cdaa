// Package reveal plays one-shot entrance animations the first time an
// element becomes visible.
package reveal

import (
	"math"
	"time"

	"github.com/ivlev/scrollreel/internal/motion"
	"github.com/ivlev/scrollreel/internal/stage"
)

// Stage is the part of the stage a trigger needs.
type Stage interface {
	Has(h stage.Handle) bool
	Layout(h stage.Handle) (stage.Box, bool)
	Viewport() stage.Viewport
	Set(h stage.Handle, p motion.Property, v float64) bool
}

// Options mirror the fade-in-up entrance: opacity 0->1 while rising Y
// pixels, power3.out.
type Options struct {
	Delay    time.Duration
	Duration time.Duration
	Stagger  time.Duration
	Y        float64
	Ease     motion.Ease
	// Threshold is the visible fraction of the target that fires it.
	Threshold float64
}

func FadeInUp() Options {
	return Options{
		Duration:  800 * time.Millisecond,
		Y:         40,
		Ease:      motion.Power3Out,
		Threshold: 0.15,
	}
}

func StaggerReveal() Options {
	o := FadeInUp()
	o.Y = 20
	o.Stagger = 80 * time.Millisecond
	return o
}

// Trigger fires at most once. After it fires the tweens are advanced by
// Advance until done; leaving and re-entering the viewport, or a resize,
// never restarts them. Geometry is read on every Check.
type Trigger struct {
	target  stage.Handle
	members []stage.Handle
	opts    Options
	tweens  []tween

	fired   bool
	firedAt time.Duration
	done    bool
	fires   int
}

type tween struct {
	target stage.Handle
	opac   motion.Tween
	rise   motion.Tween
}

// New creates a trigger that watches target and animates target itself.
func New(target stage.Handle, opts Options) *Trigger {
	return NewGroup(target, []stage.Handle{target}, opts)
}

// NewGroup watches container and staggers members in the given order:
// member i starts at t0 + Delay + i*Stagger.
func NewGroup(container stage.Handle, members []stage.Handle, opts Options) *Trigger {
	tr := &Trigger{
		target:  container,
		members: append([]stage.Handle(nil), members...),
		opts:    opts,
	}
	for i, m := range tr.members {
		delay := opts.Delay + time.Duration(i)*opts.Stagger
		tr.tweens = append(tr.tweens, tween{
			target: m,
			opac: motion.Tween{
				Animation: motion.Animation{Property: motion.Opacity, From: 0, To: 1, Ease: opts.Ease},
				Delay:     delay,
				Duration:  opts.Duration,
			},
			rise: motion.Tween{
				Animation: motion.Animation{Property: motion.Y, From: opts.Y, To: 0, Ease: opts.Ease},
				Delay:     delay,
				Duration:  opts.Duration,
			},
		})
	}
	return tr
}

func (tr *Trigger) Target() stage.Handle { return tr.target }

func (tr *Trigger) Fired() bool { return tr.fired }

// Fires counts how many times the trigger has fired; never more than one.
func (tr *Trigger) Fires() int { return tr.fires }

// Done reports whether every member has reached its final state.
func (tr *Trigger) Done() bool { return tr.done }

// Start returns member i's absolute start time; ok is false until fired.
func (tr *Trigger) Start(i int) (time.Duration, bool) {
	if !tr.fired || i < 0 || i >= len(tr.tweens) {
		return 0, false
	}
	return tr.firedAt + tr.tweens[i].opac.Delay, true
}

// Mount puts members into their hidden from-state and fires at once if
// the target is already visible. Missing members are skipped.
func (tr *Trigger) Mount(st Stage, scroll float64, now time.Duration) {
	if !tr.fired {
		for _, tw := range tr.tweens {
			st.Set(tw.target, motion.Opacity, tw.opac.From)
			st.Set(tw.target, motion.Y, tw.rise.From)
		}
	}
	tr.Check(st, scroll, now)
}

// Check fires the trigger on the first frame its target's visible
// fraction reaches the threshold. It reports whether it fired now.
func (tr *Trigger) Check(st Stage, scroll float64, now time.Duration) bool {
	if tr.fired {
		return false
	}
	if Visible(st, tr.target, scroll) < tr.threshold() {
		return false
	}
	tr.fired = true
	tr.firedAt = now
	tr.fires++
	return true
}

// Advance writes member values for now. It is a no-op before firing and
// after every tween has finished.
func (tr *Trigger) Advance(st Stage, now time.Duration) {
	if !tr.fired || tr.done {
		return
	}
	elapsed := now - tr.firedAt
	done := true
	for _, tw := range tr.tweens {
		o, d1 := tw.opac.AtTime(elapsed)
		y, d2 := tw.rise.AtTime(elapsed)
		st.Set(tw.target, motion.Opacity, o)
		st.Set(tw.target, motion.Y, y)
		done = done && d1 && d2
	}
	tr.done = done
}

func (tr *Trigger) threshold() float64 {
	if tr.opts.Threshold <= 0 {
		return 1e-9
	}
	return tr.opts.Threshold
}

// Visible returns the fraction of h's laid-out box inside the viewport.
// A zero-height element counts as fully visible when its top is on
// screen. A non-finite scroll sees nothing.
func Visible(st Stage, h stage.Handle, scroll float64) float64 {
	if math.IsNaN(scroll) || math.IsInf(scroll, 0) {
		return 0
	}
	box, ok := st.Layout(h)
	if !ok {
		return 0
	}
	vp := st.Viewport()
	top := box.Y - scroll
	if box.H <= 0 {
		if top >= 0 && top <= vp.Height {
			return 1
		}
		return 0
	}
	lo := max(top, 0)
	hi := min(top+box.H, vp.Height)
	if hi <= lo {
		return 0
	}
	return (hi - lo) / box.H
}
