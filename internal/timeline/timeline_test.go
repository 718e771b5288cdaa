package timeline

import (
	"errors"
	"math"
	"testing"

	"github.com/ivlev/scrollreel/internal/motion"
	"github.com/ivlev/scrollreel/internal/stage"
)

func newStage(t *testing.T, ids ...stage.Handle) *stage.Stage {
	t.Helper()
	st := stage.New(stage.Viewport{Width: 1280, Height: 800})
	for _, id := range ids {
		if err := st.Add(stage.Element{ID: id, Rect: stage.Rect{H: stage.PxLen(100)}}); err != nil {
			t.Fatal(err)
		}
	}
	return st
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func get(st *stage.Stage, h stage.Handle, p motion.Property) float64 {
	v, _ := st.Get(h, p)
	return v
}

func TestThreeSlidesUseFourHalfSteps(t *testing.T) {
	slides := []stage.Handle{"s0", "s1", "s2"}
	st := newStage(t, slides...)
	tl, err := New(st, SlideSequence(slides))
	if err != nil {
		t.Fatal(err)
	}
	if tl.Steps() != 4 {
		t.Fatalf("steps = %d, want 4", tl.Steps())
	}

	tests := []struct {
		p          float64
		s0, s1, s2 float64
	}{
		{0, 0, 100, 100},
		{0.25, -50, 50, 100},
		{0.5, -100, 0, 100},
		{0.75, -100, -50, 50},
		{1, -100, -100, 0},
	}
	for _, tt := range tests {
		tl.Seek(tt.p)
		got := [3]float64{get(st, "s0", motion.XPercent), get(st, "s1", motion.XPercent), get(st, "s2", motion.XPercent)}
		want := [3]float64{tt.s0, tt.s1, tt.s2}
		for i := range got {
			if !near(got[i], want[i]) {
				t.Errorf("p=%v slide %d xPercent = %v, want %v", tt.p, i, got[i], want[i])
			}
		}
	}
}

func TestSlidesReplaceOnePerStep(t *testing.T) {
	slides := []stage.Handle{"a", "b", "c", "d"}
	st := newStage(t, slides...)
	tl, _ := New(st, SlideSequence(slides))
	if tl.Steps() != 3 {
		t.Fatalf("steps = %d, want 3", tl.Steps())
	}

	tl.Seek(1.0 / 3)
	if !near(get(st, "a", motion.XPercent), -100) || !near(get(st, "b", motion.XPercent), 0) {
		t.Errorf("after step 1: a=%v b=%v", get(st, "a", motion.XPercent), get(st, "b", motion.XPercent))
	}
	if get(st, "d", motion.XPercent) != 100 {
		t.Errorf("d should still wait at 100, got %v", get(st, "d", motion.XPercent))
	}

	if SlideSequence(slides[:1]) != nil {
		t.Error("a single slide has nothing to sequence")
	}
}

func flowNodes(ids ...stage.Handle) []FlowNode {
	var out []FlowNode
	for i, id := range ids {
		out = append(out, FlowNode{
			ID:   id,
			Link: "link-" + id,
			Path: motion.Line{DX: float64(100 * (i + 1)), DY: -50},
		})
	}
	return out
}

func TestModuleFlowSizing(t *testing.T) {
	st := newStage(t, "hub", "marker", "n1", "n2", "n3", "link-n1", "link-n2", "link-n3")
	tl, err := New(st, ModuleFlow("hub", "marker", flowNodes("n1", "n2", "n3")))
	if err != nil {
		t.Fatal(err)
	}
	if !near(tl.Duration(), 4) {
		t.Errorf("duration = %v, want K+1 = 4", tl.Duration())
	}
	if tl.Steps() != 4 {
		t.Errorf("steps = %d, want 4", tl.Steps())
	}
}

func TestModuleFlowLockstep(t *testing.T) {
	st := newStage(t, "hub", "marker", "n1", "n2", "link-n1", "link-n2")
	tl, _ := New(st, ModuleFlow("hub", "marker", flowNodes("n1", "n2")))

	tl.Seek(0)
	if get(st, "hub", motion.Opacity) != 0.3 || get(st, "marker", motion.Opacity) != 0 {
		t.Errorf("initial hub=%v marker=%v", get(st, "hub", motion.Opacity), get(st, "marker", motion.Opacity))
	}
	if get(st, "n2", motion.Opacity) != 0.35 || get(st, "link-n2", motion.Opacity) != 0.15 {
		t.Error("nodes should start dimmed")
	}

	// Halfway through n1's travel segment: t = 1 + 0.375 of 3.
	tl.Seek((1 + 0.375) / 3)
	link := (get(st, "link-n1", motion.Opacity) - 0.15) / 0.85
	node := (get(st, "n1", motion.Opacity) - 0.35) / 0.65
	if !near(link, node) {
		t.Errorf("link and node should move in lockstep: %v vs %v", link, node)
	}
	if get(st, "marker", motion.Opacity) != 1 {
		t.Errorf("marker should be visible while travelling, got %v", get(st, "marker", motion.Opacity))
	}
	if x := get(st, "marker", motion.X); !(x > 0 && x < 100) {
		t.Errorf("marker x mid travel = %v", x)
	}

	// End of n1's travel.
	tl.Seek(1.75 / 3)
	if !near(get(st, "marker", motion.X), 100) || !near(get(st, "marker", motion.Y), -50) {
		t.Errorf("marker should reach n1, got %v,%v", get(st, "marker", motion.X), get(st, "marker", motion.Y))
	}
	if !near(get(st, "n1", motion.Opacity), 1) || !near(get(st, "link-n1", motion.Opacity), 1) {
		t.Error("n1 and its link should be fully lit when the marker arrives")
	}

	// Inside n1's fade the marker dims while n2 has not started.
	tl.Seek(1.9 / 3)
	if m := get(st, "marker", motion.Opacity); !(m > 0 && m < 1) {
		t.Errorf("marker should be fading, got %v", m)
	}
	if get(st, "n2", motion.Opacity) != 0.35 {
		t.Error("n2 should not have started")
	}

	tl.Seek(1)
	if get(st, "marker", motion.Opacity) != 0 {
		t.Errorf("marker should end faded out, got %v", get(st, "marker", motion.Opacity))
	}
}

func TestSeekIsReversible(t *testing.T) {
	st := newStage(t, "hub", "marker", "n1", "n2", "link-n1", "link-n2")
	tl, _ := New(st, ModuleFlow("hub", "marker", flowNodes("n1", "n2")))

	probes := []float64{0, 0.1, 0.33, 0.5, 0.61, 0.9, 1}
	snap := func() []stage.Visual { return st.Snapshot(0) }

	forward := make(map[float64][]stage.Visual)
	for _, p := range probes {
		tl.Seek(p)
		forward[p] = snap()
	}
	for i := len(probes) - 1; i >= 0; i-- {
		p := probes[i]
		tl.Seek(p)
		got := snap()
		for j := range got {
			if got[j] != forward[p][j] {
				t.Errorf("p=%v element %s differs after reverse seek: %+v vs %+v", p, got[j].ID, got[j], forward[p][j])
			}
		}
	}
}

func TestMissingTargetsAreSkipped(t *testing.T) {
	st := newStage(t, "hub", "marker", "n1", "link-n1")
	tl, err := New(st, ModuleFlow("hub", "marker", flowNodes("n1", "ghost")))
	if err != nil {
		t.Fatal(err)
	}
	if tl.Skipped() != 3 {
		t.Errorf("skipped = %d, want 3 (ghost opacity, scale and link)", tl.Skipped())
	}
	if !near(tl.Duration(), 3) {
		t.Errorf("missing nodes still occupy their step, duration = %v", tl.Duration())
	}
	tl.Seek(1)
	if get(st, "n1", motion.Opacity) != 1 {
		t.Error("existing node should still animate")
	}
}

func TestPositionsAndOverlap(t *testing.T) {
	st := newStage(t, "box")
	tl, err := New(st, []Spec{
		{Duration: 1, Tweens: []Tween{FromTo("box", motion.X, 0, 100)}},
		{Position: At(0.5), Duration: 1, Tweens: []Tween{To("box", motion.X, 50)}},
		{Position: WithPrevious, Duration: 0.5, Tweens: []Tween{To("box", motion.Opacity, 0)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	segs := tl.Segments()
	if segs[1].Start != 0.5 || segs[2].Start != 0.5 {
		t.Errorf("starts = %v, %v", segs[1].Start, segs[2].Start)
	}
	if tl.Duration() != 1.5 {
		t.Errorf("duration = %v", tl.Duration())
	}

	// Before the second tween begins the first one owns x.
	tl.Seek(0.25 / 1.5)
	if !near(get(st, "box", motion.X), 25) {
		t.Errorf("x = %v, want 25", get(st, "box", motion.X))
	}
	// Afterwards the later tween owns it and starts from the earlier To.
	tl.Seek(0.75 / 1.5)
	if !near(get(st, "box", motion.X), 87.5) {
		t.Errorf("x = %v, want 87.5", get(st, "box", motion.X))
	}
	// The opacity "to" tween inherited the stage value.
	tl.Seek(0)
	if get(st, "box", motion.Opacity) != 1 {
		t.Errorf("opacity should start from the stage value, got %v", get(st, "box", motion.Opacity))
	}
}

func TestBadSpecs(t *testing.T) {
	st := newStage(t, "box")
	if _, err := New(st, []Spec{{Duration: -1}}); !errors.Is(err, ErrBadDuration) {
		t.Errorf("negative duration: %v", err)
	}
	if _, err := New(st, []Spec{{Position: At(-2), Duration: 1}}); !errors.Is(err, ErrBadPosition) {
		t.Errorf("negative position: %v", err)
	}
	if _, err := ParsePosition("<"); err != nil {
		t.Error(err)
	}
	if _, err := ParsePosition("+=1"); !errors.Is(err, ErrBadPosition) {
		t.Errorf("ParsePosition: %v", err)
	}
}

func TestActivationHooks(t *testing.T) {
	st := newStage(t, "hub", "marker", "n1", "link-n1")
	var edges []bool
	var last float64
	nodes := flowNodes("n1")
	nodes[0].OnTravel = func(active bool) { edges = append(edges, active) }
	nodes[0].OnStep = func(local float64) { last = local }
	tl, _ := New(st, ModuleFlow("hub", "marker", nodes))

	for _, p := range []float64{0, 0.3, 0.6, 0.7, 0.95, 0.6, 0.2} {
		tl.Seek(p)
	}
	want := []bool{true, false, true, false}
	if len(edges) != len(want) {
		t.Fatalf("edges = %v", edges)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edge %d = %v", i, edges[i])
		}
	}
	if !(last > 0 && last < 1) {
		t.Errorf("OnStep local = %v", last)
	}

	tl.Seek(0.6)
	tl.Reset()
	if edges[len(edges)-1] {
		t.Error("Reset should deactivate running segments")
	}
}
