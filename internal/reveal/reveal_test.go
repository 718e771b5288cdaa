package reveal

import (
	"math"
	"testing"
	"time"

	"github.com/ivlev/scrollreel/internal/motion"
	"github.com/ivlev/scrollreel/internal/stage"
)

func page(t *testing.T) *stage.Stage {
	t.Helper()
	st := stage.New(stage.Viewport{Width: 1280, Height: 800})
	for _, e := range []stage.Element{
		{ID: "hero", Rect: stage.Rect{H: stage.PxLen(800)}},
		{ID: "title", Parent: "hero", Rect: stage.Rect{Y: stage.PxLen(200), H: stage.PxLen(100)}},
		{ID: "about", Rect: stage.Rect{H: stage.PxLen(1000)}},
		{ID: "card-1", Parent: "about", Rect: stage.Rect{H: stage.PxLen(200)}},
		{ID: "card-2", Parent: "about", Rect: stage.Rect{Y: stage.PxLen(200), H: stage.PxLen(200)}},
		{ID: "card-3", Parent: "about", Rect: stage.Rect{Y: stage.PxLen(400), H: stage.PxLen(200)}},
		{ID: "footer", Rect: stage.Rect{H: stage.PxLen(400)}},
	} {
		if err := st.Add(e); err != nil {
			t.Fatal(err)
		}
	}
	return st
}

func opacity(st *stage.Stage, h stage.Handle) float64 {
	v, _ := st.Get(h, motion.Opacity)
	return v
}

func TestFiresOnMountWhenVisible(t *testing.T) {
	st := page(t)
	tr := New("title", FadeInUp())
	tr.Mount(st, 0, 0)
	if !tr.Fired() {
		t.Fatal("title is on screen at mount")
	}
	if opacity(st, "title") != 0 {
		t.Errorf("from-state should be applied on mount, opacity = %v", opacity(st, "title"))
	}
	if y, _ := st.Get("title", motion.Y); y != 40 {
		t.Errorf("from-state y = %v", y)
	}

	tr.Advance(st, 400*time.Millisecond)
	if o := opacity(st, "title"); !(o > 0 && o < 1) {
		t.Errorf("mid-reveal opacity = %v", o)
	}
	tr.Advance(st, time.Second)
	if opacity(st, "title") != 1 || !tr.Done() {
		t.Errorf("reveal should settle at opacity 1, got %v", opacity(st, "title"))
	}
	if y, _ := st.Get("title", motion.Y); y != 0 {
		t.Errorf("settled y = %v", y)
	}
}

func TestFiresOnce(t *testing.T) {
	st := page(t)
	tr := New("footer", FadeInUp())
	tr.Mount(st, 0, 0)
	if tr.Fired() {
		t.Fatal("footer is far below the fold")
	}

	now := time.Duration(0)
	for cycle := 0; cycle < 3; cycle++ {
		for _, y := range []float64{0, 1500, 2200, 1500, 0} {
			now += 16 * time.Millisecond
			tr.Check(st, y, now)
			tr.Advance(st, now)
		}
		st.SetViewport(stage.Viewport{Width: 1280 - float64(cycle)*200, Height: 800})
	}
	if tr.Fires() != 1 {
		t.Errorf("fired %d times across enter/leave/re-enter, want 1", tr.Fires())
	}
}

func TestThreshold(t *testing.T) {
	st := page(t)
	opts := FadeInUp()
	opts.Threshold = 0.5
	tr := New("footer", opts) // footer spans 1800..2200

	if tr.Check(st, 1100, 0) {
		t.Error("100px of 400 visible must not fire at 0.5")
	}
	if !tr.Check(st, 1200, 0) {
		t.Error("200px of 400 visible should fire at 0.5")
	}
}

func TestStaggerArithmetic(t *testing.T) {
	st := page(t)
	opts := StaggerReveal()
	opts.Delay = 100 * time.Millisecond
	members := []stage.Handle{"card-1", "card-2", "card-3"}
	tr := NewGroup("about", members, opts)

	t0 := 5 * time.Second
	tr.Mount(st, 0, 0)
	if tr.Fired() {
		t.Fatal("about should not be visible at scroll 0")
	}
	if !tr.Check(st, 600, t0) {
		t.Fatal("about should fire once scrolled into view")
	}

	s0, _ := tr.Start(0)
	if s0 != t0+opts.Delay {
		t.Errorf("start_0 = %v", s0)
	}
	for i := range members {
		si, ok := tr.Start(i)
		if !ok || si != s0+time.Duration(i)*opts.Stagger {
			t.Errorf("start_%d = %v, want start_0 + %d*%v", i, si, i, opts.Stagger)
		}
	}

	// Right after card-2 starts, card-3 is still hidden.
	tr.Advance(st, t0+opts.Delay+opts.Stagger+time.Millisecond)
	if opacity(st, "card-1") <= opacity(st, "card-2") || opacity(st, "card-3") != 0 {
		t.Errorf("stagger order broken: %v %v %v", opacity(st, "card-1"), opacity(st, "card-2"), opacity(st, "card-3"))
	}
}

func TestMissingMembersAreSkipped(t *testing.T) {
	st := page(t)
	tr := NewGroup("about", []stage.Handle{"card-1", "ghost"}, StaggerReveal())
	tr.Mount(st, 600, 0)
	tr.Advance(st, 2*time.Second)
	if !tr.Done() || opacity(st, "card-1") != 1 {
		t.Error("existing member should finish despite a missing sibling")
	}
}

func TestVisible(t *testing.T) {
	st := page(t)
	tests := []struct {
		h      stage.Handle
		scroll float64
		want   float64
	}{
		{"hero", 0, 1},
		{"hero", 400, 0.5},
		{"about", 0, 0},
		{"about", 300, 0.3},
		{"ghost", 0, 0},
		{"hero", math.NaN(), 0},
		{"hero", math.Inf(1), 0},
	}
	for _, tt := range tests {
		if got := Visible(st, tt.h, tt.scroll); got != tt.want {
			t.Errorf("Visible(%s, %v) = %v, want %v", tt.h, tt.scroll, got, tt.want)
		}
	}
}
