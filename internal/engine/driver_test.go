package engine

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ivlev/scrollreel/internal/effects"
	"github.com/ivlev/scrollreel/internal/pin"
	"github.com/ivlev/scrollreel/internal/reveal"
	"github.com/ivlev/scrollreel/internal/scroll"
	"github.com/ivlev/scrollreel/internal/stage"
)

// section adapts a function to Mountable.
type section struct {
	name  string
	mount func(s *Scope) error
}

func (s section) Name() string          { return s.name }
func (s section) Mount(sc *Scope) error { return s.mount(sc) }

func newTestStage(t *testing.T) *stage.Stage {
	t.Helper()
	st := stage.New(stage.Viewport{Width: 1000, Height: 800})
	elems := []stage.Element{
		{ID: "intro", Kind: stage.KindSection, Rect: stage.Rect{H: stage.VHLen(100)}},
		{ID: "pinned", Kind: stage.KindSection, Rect: stage.Rect{H: stage.PxLen(800)}},
		{ID: "card", Parent: "pinned", Kind: stage.KindCard, Rect: stage.Rect{W: stage.PxLen(200), H: stage.PxLen(100)}},
		{ID: "outro", Kind: stage.KindSection, Rect: stage.Rect{H: stage.PxLen(1600)}},
		{ID: "late", Parent: "outro", Kind: stage.KindCard, Rect: stage.Rect{Y: stage.PxLen(1200), W: stage.PxLen(200), H: stage.PxLen(100)}},
	}
	for _, e := range elems {
		if err := st.Add(e); err != nil {
			t.Fatal(err)
		}
	}
	return st
}

// pinnedSection pins "pinned" for 400px and reveals "late" once.
func pinnedSection(reveals *reveal.Trigger) section {
	return section{name: "pinned", mount: func(sc *Scope) error {
		src, err := sc.Region(scroll.Region{
			Trigger: "pinned",
			Start:   scroll.MustParse("top top"),
			End:     scroll.MustParse("+=400px"),
			Pin:     true,
		})
		if err != nil {
			return err
		}
		ctl := pin.New("pinned", sc.Stage())
		sc.OnScroll(PhasePin, func(Frame) { ctl.Update(src.Read()) })
		sc.OnResize(func(stage.Viewport) { ctl.Refresh(src.Read()) })
		sc.Defer(ctl.Release)

		reveals.Mount(sc.Stage(), sc.Offset().Scroll(), sc.Now())
		sc.OnScroll(PhaseTime, func(f Frame) { reveals.Check(sc.Stage(), f.Scroll, f.Now) })
		sc.OnFrame(PhaseTime, func(f Frame) { reveals.Advance(sc.Stage(), f.Now) })
		return nil
	}}
}

func TestTeardownLeavesNoListeners(t *testing.T) {
	d := NewDriver(newTestStage(t), Prefs{})
	tr := reveal.New("late", reveal.FadeInUp())

	down, err := d.Mount(pinnedSection(tr))
	if err != nil {
		t.Fatal(err)
	}
	if d.Registry().Owned("pinned") != 4 {
		t.Fatalf("expected 4 listeners, got %d", d.Registry().Owned("pinned"))
	}
	d.Tick(0, 900)
	if d.Stage().Spacer("pinned") != 400 {
		t.Errorf("spacer = %v, want 400", d.Stage().Spacer("pinned"))
	}

	down()
	down()
	if d.Registry().Total() != 0 || d.Registry().Owned("pinned") != 0 {
		t.Errorf("listeners left after teardown: %d", d.Registry().Total())
	}
	if d.Mounted() != 0 {
		t.Errorf("Mounted = %d after double teardown", d.Mounted())
	}
	if d.Stage().Spacer("pinned") != 0 {
		t.Error("teardown should release the pin spacer")
	}
}

func TestMountErrorReverts(t *testing.T) {
	d := NewDriver(newTestStage(t), Prefs{})
	reverted := false
	boom := errors.New("boom")

	_, err := d.Mount(section{name: "broken", mount: func(sc *Scope) error {
		sc.OnScroll(PhaseTimeline, func(Frame) {})
		sc.OnFrame(PhaseAmbient, func(Frame) {})
		sc.Defer(func() { reverted = true })
		return boom
	}})
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("unexpected error %v", err)
	}
	if d.Registry().Total() != 0 || !reverted || d.Mounted() != 0 {
		t.Error("failed mount must revert everything it registered")
	}
}

func TestMountPanicReverts(t *testing.T) {
	d := NewDriver(newTestStage(t), Prefs{})
	defer func() {
		if recover() == nil {
			t.Fatal("panic should propagate")
		}
		if d.Registry().Total() != 0 {
			t.Error("panicking mount must revert listeners")
		}
	}()
	d.Mount(section{name: "panics", mount: func(sc *Scope) error {
		sc.OnScroll(PhaseTimeline, func(Frame) {})
		panic("bad section")
	}})
}

func TestResizeKeepsListenersAndReveals(t *testing.T) {
	d := NewDriver(newTestStage(t), Prefs{})
	tr := reveal.New("late", reveal.FadeInUp())
	if _, err := d.Mount(pinnedSection(tr)); err != nil {
		t.Fatal(err)
	}

	// "late" sits at 800+800+400 spacer+1200 = 3200 in the document.
	d.Tick(0, 2800)
	if tr.Fires() != 1 {
		t.Fatalf("reveal should have fired once, got %d", tr.Fires())
	}
	before := d.Registry().Total()

	for i := 0; i < 3; i++ {
		d.Resize(stage.Viewport{Width: 600 + float64(i)*100, Height: 700})
		d.Tick(time.Duration(i+1)*time.Second, 0)
		d.Tick(time.Duration(i+1)*time.Second+time.Millisecond, 2800)
	}
	if d.Registry().Total() != before {
		t.Errorf("resize changed listener count: %d -> %d", before, d.Registry().Total())
	}
	if tr.Fires() != 1 {
		t.Errorf("resize re-fired the reveal: %d", tr.Fires())
	}
}

func TestResizeRecomputesPinnedOffset(t *testing.T) {
	d := NewDriver(newTestStage(t), Prefs{})
	if _, err := d.Mount(pinnedSection(reveal.New("late", reveal.FadeInUp()))); err != nil {
		t.Fatal(err)
	}
	d.Tick(0, 1000)
	if got := d.Stage().PinOffset("pinned"); got != 200 {
		t.Fatalf("pin offset = %v, want 200", got)
	}
	// The section top is 100vh, so a taller viewport moves start to 900.
	d.Resize(stage.Viewport{Width: 1000, Height: 900})
	if got := d.Stage().PinOffset("pinned"); got != 100 {
		t.Errorf("pin offset after resize = %v, want 100", got)
	}
}

func TestTickPhaseOrder(t *testing.T) {
	d := NewDriver(newTestStage(t), Prefs{})
	var order []Phase
	record := func(ph Phase) func(Frame) { return func(Frame) { order = append(order, ph) } }

	_, err := d.Mount(section{name: "order", mount: func(sc *Scope) error {
		sc.OnFrame(PhaseAmbient, record(PhaseAmbient))
		sc.OnScroll(PhaseTimeline, record(PhaseTimeline))
		sc.OnFrame(PhaseTime, record(PhaseTime))
		sc.OnScroll(PhasePin, record(PhasePin))
		sc.OnScroll(PhaseProgress, record(PhaseProgress))
		return nil
	}})
	if err != nil {
		t.Fatal(err)
	}

	d.Tick(0, 10)
	want := []Phase{PhaseProgress, PhasePin, PhaseTimeline, PhaseTime, PhaseAmbient}
	if len(order) != len(want) {
		t.Fatalf("ran %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	for _, ph := range Phases() {
		if d.Registry().InPhase(ph) != 1 {
			t.Errorf("%s phase has %d listeners", ph, d.Registry().InPhase(ph))
		}
	}

	// Same offset: only frame listeners run.
	order = nil
	d.Tick(time.Millisecond, 10)
	if len(order) != 2 || order[0] != PhaseTime || order[1] != PhaseAmbient {
		t.Errorf("idle tick ran %v", order)
	}
}

func TestTickClampsNegativeScroll(t *testing.T) {
	d := NewDriver(newTestStage(t), Prefs{})
	d.Tick(0, -50)
	if d.Scroll() != 0 {
		t.Errorf("Scroll = %v", d.Scroll())
	}
}

func TestTickIgnoresNonFiniteScroll(t *testing.T) {
	d := NewDriver(newTestStage(t), Prefs{})
	tr := reveal.New("late", reveal.FadeInUp())
	if _, err := d.Mount(pinnedSection(tr)); err != nil {
		t.Fatal(err)
	}
	d.Tick(0, 100)

	for i, y := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		d.Tick(time.Duration(i+1)*time.Second, y)
		if d.Scroll() != 100 {
			t.Errorf("tick %v moved scroll to %v", y, d.Scroll())
		}
	}
	if tr.Fired() {
		t.Error("\"late\" is far below the fold and must not fire")
	}
	if got := d.Stage().PinOffset("pinned"); got != 0 {
		t.Errorf("pin offset = %v before the region starts", got)
	}
}

func TestCaptureIncludesLayers(t *testing.T) {
	d := NewDriver(newTestStage(t), Prefs{})
	down, _ := d.Mount(section{name: "fx", mount: func(sc *Scope) error {
		sc.Layer(func(float64) effects.Batch {
			return effects.Batch{Particles: []effects.Particle{{X: 1, Y: 1, Size: 1, Opacity: 1}}}
		})
		return nil
	}})
	d.Tick(0, 0)
	f := d.Capture()
	if len(f.Layers) != 1 || len(f.Visuals) != 5 {
		t.Errorf("capture has %d layers, %d visuals", len(f.Layers), len(f.Visuals))
	}
	down()
	if len(d.Capture().Layers) != 0 {
		t.Error("layer should be gone after teardown")
	}
}

func TestSmoother(t *testing.T) {
	s := NewSmoother(0.1)
	if s.Step(1000) != 1000 {
		t.Fatal("first step should jump")
	}
	got := s.Step(2000)
	if math.Abs(got-1100) > 1e-9 {
		t.Errorf("lerp step = %v, want 1100", got)
	}
	for i := 0; i < 200; i++ {
		got = s.Step(2000)
	}
	if got != 2000 || !s.Settled() {
		t.Errorf("smoother should settle on target, got %v", got)
	}
	if NewSmoother(0).Lerp != 1 {
		t.Error("invalid lerp should disable smoothing")
	}
}
