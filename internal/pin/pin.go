// Package pin holds an element fixed in the viewport while its region is
// active and reserves the scrolled distance in the layout.
package pin

import (
	"github.com/ivlev/scrollreel/internal/scroll"
	"github.com/ivlev/scrollreel/internal/stage"
)

type State int

const (
	Before State = iota
	Pinned
	After
)

func (s State) String() string {
	switch s {
	case Before:
		return "before"
	case Pinned:
		return "pinned"
	case After:
		return "after"
	}
	return "unknown"
}

// Transition is one edge of the state machine.
type Transition struct {
	From, To State
}

// Target is the part of the stage a controller writes to.
type Target interface {
	SetPin(h stage.Handle, offset float64, fixed bool) bool
	SetSpacer(h stage.Handle, v float64) bool
}

type Controller struct {
	handle stage.Handle
	target Target
	state  State

	counts   map[Transition]int
	observer func(Transition)
}

func New(h stage.Handle, t Target) *Controller {
	return &Controller{
		handle: h,
		target: t,
		counts: make(map[Transition]int),
	}
}

// Observe registers a callback for every transition.
func (c *Controller) Observe(fn func(Transition)) { c.observer = fn }

func (c *Controller) State() State { return c.state }

// Count reports how many times a transition has happened.
func (c *Controller) Count(from, to State) int { return c.counts[Transition{from, to}] }

// Update advances the state machine from one frame's reading and writes
// the pin offset and spacer. Skipping over the whole range in one frame
// still passes through Pinned so observers see both edges.
func (c *Controller) Update(r scroll.Reading) []Transition {
	if !r.Valid {
		return nil
	}
	next := target(r)
	var out []Transition
	for c.state != next {
		step := c.state + 1
		if next < c.state {
			step = c.state - 1
		}
		if r.Degenerate() && step == Pinned {
			// A zero-length region cannot hold a pin; jump straight across.
			if next > c.state {
				step = After
			} else {
				step = Before
			}
		}
		tr := Transition{From: c.state, To: step}
		c.state = step
		c.counts[tr]++
		out = append(out, tr)
		if c.observer != nil {
			c.observer(tr)
		}
	}
	c.apply(r)
	return out
}

// Refresh re-applies offsets and spacer for new geometry without changing
// state, so a resize never leaves the element at a stale fixed position.
func (c *Controller) Refresh(r scroll.Reading) {
	if !r.Valid {
		return
	}
	if target(r) != c.state {
		c.Update(r)
		return
	}
	c.apply(r)
}

// Release clears the pin and spacer; used on teardown.
func (c *Controller) Release() {
	c.target.SetPin(c.handle, 0, false)
	c.target.SetSpacer(c.handle, 0)
	c.state = Before
}

func target(r scroll.Reading) State {
	switch {
	case r.Scroll < r.Start:
		return Before
	case r.Degenerate():
		return After
	case r.Scroll > r.End:
		return After
	default:
		return Pinned
	}
}

func (c *Controller) apply(r scroll.Reading) {
	distance := r.End - r.Start
	if distance < 0 {
		distance = 0
	}
	c.target.SetSpacer(c.handle, distance)

	switch c.state {
	case Pinned:
		c.target.SetPin(c.handle, r.Scroll-r.Start, true)
	case After:
		c.target.SetPin(c.handle, distance, false)
	default:
		c.target.SetPin(c.handle, 0, false)
	}
}
