package director

import (
	"time"

	"github.com/ivlev/scrollreel/internal/engine"
	"github.com/ivlev/scrollreel/internal/motion"
	"github.com/ivlev/scrollreel/internal/pin"
	"github.com/ivlev/scrollreel/internal/reveal"
	"github.com/ivlev/scrollreel/internal/scroll"
	"github.com/ivlev/scrollreel/internal/stage"
)

// section adapts a mount function to engine.Mountable.
type section struct {
	name  string
	mount func(sc *engine.Scope) error
}

func (s section) Name() string                 { return s.name }
func (s section) Mount(sc *engine.Scope) error { return s.mount(sc) }

var styleChannels = []motion.Property{
	motion.X, motion.Y, motion.XPercent, motion.YPercent,
	motion.Opacity, motion.Scale, motion.Glow,
}

// preserve restores the current style of hs on teardown, so a remounted
// section starts from its authored state.
func preserve(sc *engine.Scope, hs ...stage.Handle) {
	st := sc.Stage()
	saved := make(map[stage.Handle]map[motion.Property]float64, len(hs))
	for _, h := range hs {
		vals := make(map[motion.Property]float64, len(styleChannels))
		for _, p := range styleChannels {
			if v, ok := st.Get(h, p); ok {
				vals[p] = v
			}
		}
		saved[h] = vals
	}
	sc.Defer(func() {
		for h, vals := range saved {
			for p, v := range vals {
				st.Set(h, p, v)
			}
		}
	})
}

func fadeInUp(delay time.Duration, y float64) reveal.Options {
	o := reveal.FadeInUp()
	o.Delay = delay
	o.Y = y
	return o
}

func staggerReveal(delay time.Duration, y float64, stagger time.Duration) reveal.Options {
	o := reveal.StaggerReveal()
	o.Delay = delay
	o.Y = y
	if stagger > 0 {
		o.Stagger = stagger
	}
	return o
}

// playReveal hides members now and lets tr fire on the first frame its
// target is visible enough.
func playReveal(sc *engine.Scope, tr *reveal.Trigger, members ...stage.Handle) {
	st := sc.Stage()
	preserve(sc, members...)
	tr.Mount(st, sc.Offset().Scroll(), sc.Now())
	sc.OnScroll(engine.PhaseTime, func(f engine.Frame) { tr.Check(st, f.Scroll, f.Now) })
	sc.OnFrame(engine.PhaseTime, func(f engine.Frame) { tr.Advance(st, f.Now) })
}

// sample is a region's reading for the current frame. It is taken once in
// PhaseProgress, so the pin and every scrub of that frame agree on it.
type sample struct {
	src *scroll.Source
	cur scroll.Reading
}

func sampleRegion(sc *engine.Scope, r scroll.Region) (*sample, error) {
	src, err := sc.Region(r)
	if err != nil {
		return nil, err
	}
	s := &sample{src: src}
	s.take()
	sc.OnScroll(engine.PhaseProgress, func(engine.Frame) { s.take() })
	return s, nil
}

func (s *sample) take() scroll.Reading {
	s.cur = s.src.Read()
	return s.cur
}

func (s *sample) Reading() scroll.Reading { return s.cur }

// pinRegion pins the region's trigger. The spacer is reserved at mount so
// sections mounted later already see the shifted layout.
func pinRegion(sc *engine.Scope, r scroll.Region) (*sample, *pin.Controller, error) {
	r.Pin = true
	s, err := sampleRegion(sc, r)
	if err != nil {
		return nil, nil, err
	}
	ctl := pin.New(r.Trigger, sc.Stage())
	ctl.Refresh(s.Reading())
	sc.OnScroll(engine.PhasePin, func(engine.Frame) { ctl.Update(s.Reading()) })
	// Resize runs before the scroll phases, so re-read here.
	sc.OnResize(func(stage.Viewport) { ctl.Refresh(s.take()) })
	sc.Defer(ctl.Release)
	return s, ctl, nil
}

// scrub applies fn for the current reading now and on every scroll change.
func scrub(sc *engine.Scope, s *sample, fn func(r scroll.Reading)) {
	fn(s.Reading())
	sc.OnScroll(engine.PhaseTimeline, func(engine.Frame) { fn(s.Reading()) })
}

// parallax scrubs yPercent of target from..to while target crosses the
// viewport.
func parallax(sc *engine.Scope, target stage.Handle, from, to float64) error {
	src, err := sampleRegion(sc, scroll.Region{
		Trigger: target,
		Start:   scroll.MustParse("top bottom"),
		End:     scroll.MustParse("bottom top"),
		Scrub:   true,
	})
	if err != nil {
		return err
	}
	preserve(sc, target)
	anim := motion.Scrub{Animation: motion.Animation{Property: motion.YPercent, From: from, To: to, Ease: motion.None}, Clamp: true}
	st := sc.Stage()
	scrub(sc, src, func(r scroll.Reading) { st.Set(target, motion.YPercent, anim.At(r.Progress)) })
	return nil
}
