package effects

import (
	"sort"

	"github.com/ivlev/scrollreel/internal/motion"
	"github.com/ivlev/scrollreel/internal/stage"
)

// Anchor resolves where a spark's path starts on screen.
type Anchor interface {
	Render(h stage.Handle, scroll float64) (stage.Visual, bool)
}

type spark struct {
	origin stage.Handle
	path   motion.Path
	local  float64
}

// Sparks is the pool of short-lived trail markers. A spark exists only
// between Spawn and Kill, which the owning timeline segment calls on its
// activation edges.
type Sparks struct {
	trail  int
	gap    float64
	live   map[string]*spark
	spawns int
}

func NewSparks(trail int) *Sparks {
	if trail < 1 {
		trail = 1
	}
	return &Sparks{
		trail: trail,
		gap:   0.04,
		live:  make(map[string]*spark),
	}
}

// Spawn creates the spark for owner; a second Spawn replaces the first.
func (s *Sparks) Spawn(owner string, origin stage.Handle, path motion.Path) {
	s.live[owner] = &spark{origin: origin, path: path}
	s.spawns++
}

func (s *Sparks) Kill(owner string) {
	delete(s.live, owner)
}

// KillAll empties the pool; used on teardown.
func (s *Sparks) KillAll() {
	for k := range s.live {
		delete(s.live, k)
	}
}

// Update records the owning segment's local progress.
func (s *Sparks) Update(owner string, local float64) {
	if sp, ok := s.live[owner]; ok {
		sp.local = local
	}
}

func (s *Sparks) Alive() int  { return len(s.live) }
func (s *Sparks) Spawns() int { return s.spawns }

// Trail returns owner's trail points relative to the path origin, head
// first. Positions depend only on the recorded local progress.
func (s *Sparks) Trail(owner string) []Particle {
	sp, ok := s.live[owner]
	if !ok {
		return nil
	}
	out := make([]Particle, 0, s.trail)
	for i := 0; i < s.trail; i++ {
		t := sp.local - float64(i)*s.gap
		if t < 0 {
			break
		}
		x, y := sp.path.Point(t)
		fade := 1 - float64(i)/float64(s.trail)
		out = append(out, Particle{X: x, Y: y, Size: 3 * fade, Opacity: fade})
	}
	return out
}

// Project places every live trail in viewport space at the origin's
// rendered centre.
func (s *Sparks) Project(a Anchor, scroll float64) []Particle {
	owners := make([]string, 0, len(s.live))
	for k := range s.live {
		owners = append(owners, k)
	}
	sort.Strings(owners)

	var out []Particle
	for _, owner := range owners {
		v, ok := a.Render(s.live[owner].origin, scroll)
		if !ok {
			continue
		}
		cx, cy := v.Box.X+v.Box.W/2, v.Box.Y+v.Box.H/2
		for _, p := range s.Trail(owner) {
			p.X += cx
			p.Y += cy
			p.Opacity *= v.Opacity
			out = append(out, p)
		}
	}
	return out
}

func (s *Sparks) Batch(a Anchor, scroll float64) Batch {
	return Batch{Particles: s.Project(a, scroll)}
}
