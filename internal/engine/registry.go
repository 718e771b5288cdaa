package engine

import (
	"time"

	"github.com/ivlev/scrollreel/internal/effects"
	"github.com/ivlev/scrollreel/internal/stage"
)

// Kind classifies a registered listener.
type Kind int

const (
	KindScroll Kind = iota
	KindResize
	KindFrame
	KindLayer
)

func (k Kind) String() string {
	switch k {
	case KindScroll:
		return "scroll"
	case KindResize:
		return "resize"
	case KindFrame:
		return "frame"
	case KindLayer:
		return "layer"
	}
	return "unknown"
}

// Phase задает порядок слушателей внутри одного тика.
type Phase int

const (
	// PhaseProgress снимает прогресс регионов для остальных фаз тика.
	PhaseProgress Phase = iota
	// PhasePin продвигает автоматы закрепления.
	PhasePin
	// PhaseTimeline перематывает таймлайны и параллакс.
	PhaseTimeline
	// PhaseTime продвигает анимации по времени (появления, циклы).
	PhaseTime
	// PhaseAmbient - декоративные эффекты.
	PhaseAmbient

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseProgress:
		return "progress"
	case PhasePin:
		return "pin"
	case PhaseTimeline:
		return "timeline"
	case PhaseTime:
		return "time"
	case PhaseAmbient:
		return "ambient"
	}
	return "unknown"
}

// Phases lists every tick phase in dispatch order.
func Phases() []Phase {
	out := make([]Phase, phaseCount)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

// Frame is what every tick listener sees.
type Frame struct {
	Now      time.Duration
	Scroll   float64
	Delta    float64
	Viewport stage.Viewport
}

type entry struct {
	id     int
	kind   Kind
	phase  Phase
	owner  string
	tick   func(Frame)
	resize func(stage.Viewport)
	layer  func(scroll float64) effects.Batch
}

// Registry хранит всех живых слушателей в порядке регистрации.
type Registry struct {
	next    int
	entries []entry
}

func (r *Registry) add(e entry) int {
	r.next++
	e.id = r.next
	r.entries = append(r.entries, e)
	return e.id
}

func (r *Registry) remove(id int) {
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// Len counts listeners of one kind.
func (r *Registry) Len(k Kind) int {
	n := 0
	for _, e := range r.entries {
		if e.kind == k {
			n++
		}
	}
	return n
}

// InPhase counts scroll and frame listeners dispatched in phase p.
func (r *Registry) InPhase(p Phase) int {
	n := 0
	for _, e := range r.entries {
		if (e.kind == KindScroll || e.kind == KindFrame) && e.phase == p {
			n++
		}
	}
	return n
}

// Owned counts listeners registered by owner, all kinds.
func (r *Registry) Owned(owner string) int {
	n := 0
	for _, e := range r.entries {
		if e.owner == owner {
			n++
		}
	}
	return n
}

// Total counts every listener.
func (r *Registry) Total() int { return len(r.entries) }

func (r *Registry) snapshot() []entry {
	return append([]entry(nil), r.entries...)
}
