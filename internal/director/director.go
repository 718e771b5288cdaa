package director

import (
	"math"
	"sort"
	"time"

	"github.com/ivlev/scrollreel/internal/motion"
	"github.com/ivlev/scrollreel/internal/stage"
)

// Director plans the scripted scroll-through used to render a preview.
type Director struct {
	Speed     float64 // Scroll speed in px/s between stops
	Dwell     float64 // Default pause at each stop (seconds)
	MinTravel float64 // Shortest move between stops (seconds)
	MaxDwell  float64
}

// NewDirector creates a new Director with default settings
func NewDirector(speed, dwell float64) *Director {
	if speed <= 0 {
		speed = 900
	}
	if dwell < 0 {
		dwell = 0
	}
	return &Director{
		Speed:     speed,
		Dwell:     dwell,
		MinTravel: 0.4,
		MaxDwell:  5,
	}
}

// TourKey is the scroll offset reached at a moment of the tour.
type TourKey struct {
	Time   time.Duration
	Scroll float64
	Focus  string
}

// Tour interpolates between keys with a cubic ease in and out, so the
// page settles on every stop.
type Tour struct {
	Keys []TourKey
}

func (t *Tour) Duration() time.Duration {
	if len(t.Keys) == 0 {
		return 0
	}
	return t.Keys[len(t.Keys)-1].Time
}

func (t *Tour) ScrollAt(at time.Duration) float64 {
	if len(t.Keys) == 0 {
		return 0
	}
	if at <= t.Keys[0].Time {
		return t.Keys[0].Scroll
	}
	last := t.Keys[len(t.Keys)-1]
	if at >= last.Time {
		return last.Scroll
	}
	i := sort.Search(len(t.Keys), func(i int) bool { return t.Keys[i].Time > at })
	a, b := t.Keys[i-1], t.Keys[i]
	if b.Time == a.Time {
		return b.Scroll
	}
	p := float64(at-a.Time) / float64(b.Time-a.Time)
	return motion.Interpolate(a.Scroll, b.Scroll, p, motion.Power2InOut)
}

type stop struct {
	scroll float64
	focus  string
	dwell  float64
}

// PlanTour visits every section top and, for sections taller than the
// viewport or pinned, the point where the section's end reaches the
// viewport bottom, so pinned sequences play out in full. Pin spacers must
// already be reserved on st, i.e. the page is mounted.
func (d *Director) PlanTour(st *stage.Stage, sections []Section) *Tour {
	maxScroll := st.MaxScroll()
	vp := st.Viewport()
	clampScroll := func(v float64) float64 { return math.Max(0, math.Min(maxScroll, v)) }

	var stops []stop
	for _, sec := range sections {
		h := stage.Handle(sec.ID)
		box, ok := st.Layout(h)
		if !ok {
			continue
		}
		dwell := d.dwellFor(sec)
		stops = append(stops, stop{scroll: clampScroll(box.Y), focus: sec.ID, dwell: dwell})

		end := box.Y + box.H + st.Spacer(h) - vp.Height
		if end > box.Y+1 {
			stops = append(stops, stop{scroll: clampScroll(end), focus: sec.ID + ":end", dwell: dwell / 2})
		}
	}

	tour := &Tour{}
	if len(stops) == 0 {
		return tour
	}
	now := time.Duration(0)
	prev := stops[0].scroll
	for i, s := range stops {
		if i > 0 {
			if math.Abs(s.scroll-prev) < 1 {
				// Stops that collapse after clamping only extend the dwell.
				if s.dwell > 0 {
					now += seconds(s.dwell)
					tour.Keys = append(tour.Keys, TourKey{Time: now, Scroll: prev, Focus: s.focus})
				}
				continue
			}
			now += seconds(math.Max(d.MinTravel, math.Abs(s.scroll-prev)/d.Speed))
		}
		tour.Keys = append(tour.Keys, TourKey{Time: now, Scroll: s.scroll, Focus: s.focus})
		if s.dwell > 0 {
			now += seconds(s.dwell)
			tour.Keys = append(tour.Keys, TourKey{Time: now, Scroll: s.scroll, Focus: s.focus})
		}
		prev = s.scroll
	}
	return tour
}

func (d *Director) dwellFor(sec Section) float64 {
	dwell := d.Dwell
	if sec.Dwell > 0 {
		dwell = sec.Dwell
	}
	return math.Min(dwell, d.MaxDwell)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
