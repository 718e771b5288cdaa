// Package timeline resolves a declared list of segments into absolute
// offsets once, then evaluates every property as a pure function of
// progress.
package timeline

import (
	"errors"
	"fmt"

	"github.com/ivlev/scrollreel/internal/motion"
	"github.com/ivlev/scrollreel/internal/stage"
)

var (
	ErrBadPosition = errors.New("bad segment position")
	ErrBadDuration = errors.New("bad segment duration")
)

// Stage is what a timeline reads initial values from and writes to.
type Stage interface {
	Has(h stage.Handle) bool
	Get(h stage.Handle, p motion.Property) (float64, bool)
	Set(h stage.Handle, p motion.Property, v float64) bool
}

type placement int

const (
	placeAfter placement = iota
	placeWithPrevious
	placeAt
)

// Position says where a segment starts. The zero value starts after every
// segment declared so far has finished.
type Position struct {
	kind placement
	at   float64
}

var (
	Next         = Position{}
	WithPrevious = Position{kind: placeWithPrevious}
)

// At places a segment at an absolute offset on the virtual duration axis.
func At(t float64) Position { return Position{kind: placeAt, at: t} }

// ParsePosition understands "" (after) and "<" (with previous).
func ParsePosition(s string) (Position, error) {
	switch s {
	case "", ">":
		return Next, nil
	case "<":
		return WithPrevious, nil
	}
	return Position{}, fmt.Errorf("%w: %q", ErrBadPosition, s)
}

// Tween animates one property of one target inside a segment.
type Tween struct {
	Target   stage.Handle
	Property motion.Property
	From     float64
	To       float64
	// HasFrom is false for "to" tweens: From is then taken from the
	// previous tween on the same target/property or the stage.
	HasFrom bool
	Ease    motion.Ease

	path  motion.Path
	axisY bool
}

func To(h stage.Handle, p motion.Property, to float64) Tween {
	return Tween{Target: h, Property: p, To: to}
}

func FromTo(h stage.Handle, p motion.Property, from, to float64) Tween {
	return Tween{Target: h, Property: p, From: from, To: to, HasFrom: true}
}

// Along moves h's x/y translation along path, starting from the origin.
func Along(h stage.Handle, path motion.Path) []Tween {
	ex, ey := path.Point(1)
	return []Tween{
		{Target: h, Property: motion.X, From: 0, To: ex, HasFrom: true, path: path},
		{Target: h, Property: motion.Y, From: 0, To: ey, HasFrom: true, path: path, axisY: true},
	}
}

func (tw Tween) eval(local float64, ease motion.Ease) float64 {
	if tw.Ease != nil {
		ease = tw.Ease
	}
	if tw.path == nil {
		return motion.Interpolate(tw.From, tw.To, local, ease)
	}
	if local <= 0 {
		return tw.From
	}
	if local >= 1 {
		return tw.To
	}
	if ease == nil {
		ease = motion.None
	}
	x, y := tw.path.Point(ease(local))
	if tw.axisY {
		return y
	}
	return x
}

// Spec declares one segment.
type Spec struct {
	// Label groups consecutive segments into one step.
	Label    string
	Position Position
	Duration float64
	Ease     motion.Ease
	Tweens   []Tween

	// OnActive fires when the segment starts or stops running, in either
	// scroll direction. OnUpdate fires with the local progress on every
	// seek while it runs.
	OnActive func(active bool)
	OnUpdate func(local float64)
}

// Segment is a resolved Spec.
type Segment struct {
	Label    string
	Start    float64
	End      float64
	Duration float64
	Skipped  int

	ease     motion.Ease
	onActive func(bool)
	onUpdate func(float64)
}

type key struct {
	target   stage.Handle
	property motion.Property
}

type binding struct {
	seg   int
	tween Tween
}

type Timeline struct {
	stage    Stage
	segments []Segment
	duration float64
	keys     []key
	bindings map[key][]binding
	running  []bool
	skipped  int
}

// New resolves segment offsets once. Tweens whose target is missing are
// dropped silently and counted; their segment still occupies its time.
func New(st Stage, specs []Spec) (*Timeline, error) {
	tl := &Timeline{
		stage:    st,
		bindings: make(map[key][]binding),
	}

	maxEnd, prevStart := 0.0, 0.0
	for i, sp := range specs {
		if sp.Duration < 0 {
			return nil, fmt.Errorf("%w: segment %d (%s) has %v", ErrBadDuration, i, sp.Label, sp.Duration)
		}
		var start float64
		switch sp.Position.kind {
		case placeAfter:
			start = maxEnd
		case placeWithPrevious:
			start = prevStart
		case placeAt:
			if sp.Position.at < 0 {
				return nil, fmt.Errorf("%w: segment %d at %v", ErrBadPosition, i, sp.Position.at)
			}
			start = sp.Position.at
		}
		end := start + sp.Duration
		if end > maxEnd {
			maxEnd = end
		}
		prevStart = start

		seg := Segment{
			Label:    sp.Label,
			Start:    start,
			End:      end,
			Duration: sp.Duration,
			ease:     sp.Ease,
			onActive: sp.OnActive,
			onUpdate: sp.OnUpdate,
		}
		for _, tw := range sp.Tweens {
			if !st.Has(tw.Target) {
				seg.Skipped++
				continue
			}
			k := key{tw.Target, tw.Property}
			prev, seen := tl.bindings[k]
			if !tw.HasFrom {
				if seen {
					tw.From = prev[len(prev)-1].tween.To
				} else if v, ok := st.Get(tw.Target, tw.Property); ok {
					tw.From = v
				}
				tw.HasFrom = true
			}
			if !seen {
				tl.keys = append(tl.keys, k)
			}
			tl.bindings[k] = append(prev, binding{seg: i, tween: tw})
		}
		tl.skipped += seg.Skipped
		tl.segments = append(tl.segments, seg)
	}
	tl.duration = maxEnd
	tl.running = make([]bool, len(tl.segments))
	return tl, nil
}

// Duration is the length of the virtual axis (max segment end).
func (tl *Timeline) Duration() float64 { return tl.duration }

// Segments returns the resolved segments.
func (tl *Timeline) Segments() []Segment {
	return append([]Segment(nil), tl.segments...)
}

// Skipped counts tweens dropped for missing targets.
func (tl *Timeline) Skipped() int { return tl.skipped }

// Steps counts label groups; unlabeled segments are a step each.
func (tl *Timeline) Steps() int {
	n := 0
	for i, s := range tl.segments {
		if s.Label == "" || i == 0 || tl.segments[i-1].Label != s.Label {
			n++
		}
	}
	return n
}

// Local returns segment i's local progress for the timeline progress p.
func (tl *Timeline) Local(i int, p float64) float64 {
	return tl.segments[i].local(tl.at(p))
}

func (tl *Timeline) at(p float64) float64 {
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return tl.duration
	}
	return p * tl.duration
}

func (s Segment) local(t float64) float64 {
	if s.Duration == 0 {
		if t >= s.Start {
			return 1
		}
		return 0
	}
	switch {
	case t <= s.Start:
		return 0
	case t >= s.End:
		return 1
	}
	return (t - s.Start) / s.Duration
}

// Seek writes every animated property for progress p in [0,1]. Each
// target/property takes its value from the last-declared tween whose
// segment has begun, or the first tween's From if none has. The result
// depends only on p.
func (tl *Timeline) Seek(p float64) {
	t := tl.at(p)

	for _, k := range tl.keys {
		bs := tl.bindings[k]
		chosen := bs[0]
		local := 0.0
		for _, b := range bs {
			seg := tl.segments[b.seg]
			if t >= seg.Start {
				chosen = b
				local = seg.local(t)
			}
		}
		seg := tl.segments[chosen.seg]
		tl.stage.Set(k.target, k.property, chosen.tween.eval(local, seg.ease))
	}

	for i := range tl.segments {
		seg := &tl.segments[i]
		local := seg.local(t)
		run := local > 0 && local < 1
		if run != tl.running[i] {
			tl.running[i] = run
			if seg.onActive != nil {
				seg.onActive(run)
			}
		}
		if run && seg.onUpdate != nil {
			seg.onUpdate(local)
		}
	}
}

// Reset deactivates running segments; used on teardown.
func (tl *Timeline) Reset() {
	for i := range tl.segments {
		if tl.running[i] {
			tl.running[i] = false
			if tl.segments[i].onActive != nil {
				tl.segments[i].onActive(false)
			}
		}
	}
}
