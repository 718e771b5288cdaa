// Package effects holds the decorative particle layers: sparks that trail
// the module-flow marker and the ambient background field.
package effects

import (
	"math"
	"math/rand"
)

// Tint picks one of the two particle colours.
type Tint int

const (
	Cyan Tint = iota
	Violet
)

// Particle is one dot in viewport space.
type Particle struct {
	X, Y    float64
	Size    float64
	Opacity float64
	Tint    Tint
}

// Link connects two nearby ambient particles.
type Link struct {
	A, B    int
	Opacity float64
}

// Line is a faint connector between two particles.
type Line struct {
	X1, Y1, X2, Y2 float64
	Opacity        float64
}

// Batch is one layer's drawing for a frame.
type Batch struct {
	Particles []Particle
	Lines     []Line
}

const (
	baseParticles = 100
	linkDistance  = 100
	// The ambient canvas sits at 30% opacity over the page.
	canvasOpacity = 0.3
	edgeSpeed     = 0.25
)

// ParticleCount is 100 with a fine pointer, half with a coarse one and
// zero when reduced motion is requested: the layer is skipped, not thinned.
func ParticleCount(coarsePointer, reducedMotion bool) int {
	switch {
	case reducedMotion:
		return 0
	case coarsePointer:
		return baseParticles / 2
	}
	return baseParticles
}

type mote struct {
	x, y   float64
	vx, vy float64
	size   float64
	tint   Tint
}

// Ambient is the drifting background field. Motes bounce off the
// viewport edges; nearby motes are linked.
type Ambient struct {
	rng   *rand.Rand
	w, h  float64
	motes []mote
}

// NewAmbient seeds a field of n motes; the same seed always gives the same
// field, which keeps rendered previews reproducible.
func NewAmbient(seed int64, n int, w, h float64) *Ambient {
	a := &Ambient{
		rng: rand.New(rand.NewSource(seed)),
		w:   w,
		h:   h,
	}
	for i := 0; i < n; i++ {
		m := mote{
			x:    a.rng.Float64() * w,
			y:    a.rng.Float64() * h,
			size: a.rng.Float64()*2 + 0.5,
			vx:   a.rng.Float64()*2*edgeSpeed - edgeSpeed,
			vy:   a.rng.Float64()*2*edgeSpeed - edgeSpeed,
		}
		if a.rng.Float64() > 0.5 {
			m.tint = Violet
		}
		a.motes = append(a.motes, m)
	}
	return a
}

func (a *Ambient) Len() int { return len(a.motes) }

// Resize changes the bounds; motes outside drift back in on their own.
func (a *Ambient) Resize(w, h float64) {
	a.w, a.h = w, h
}

// Step advances every mote by one frame.
func (a *Ambient) Step() {
	for i := range a.motes {
		m := &a.motes[i]
		m.x += m.vx
		m.y += m.vy
		switch {
		case m.x < 0:
			m.vx = math.Abs(m.vx)
		case m.x > a.w:
			m.vx = -math.Abs(m.vx)
		}
		switch {
		case m.y < 0:
			m.vy = math.Abs(m.vy)
		case m.y > a.h:
			m.vy = -math.Abs(m.vy)
		}
	}
}

func (a *Ambient) Particles() []Particle {
	out := make([]Particle, len(a.motes))
	for i, m := range a.motes {
		out[i] = Particle{X: m.x, Y: m.y, Size: m.size, Opacity: 0.5, Tint: m.tint}
	}
	return out
}

// Links returns pairs closer than 100px, fading with distance.
func (a *Ambient) Links() []Link {
	var out []Link
	for i := 0; i < len(a.motes); i++ {
		for j := i + 1; j < len(a.motes); j++ {
			d := math.Hypot(a.motes[i].x-a.motes[j].x, a.motes[i].y-a.motes[j].y)
			if d < linkDistance {
				out = append(out, Link{A: i, B: j, Opacity: 0.2 * (1 - d/linkDistance)})
			}
		}
	}
	return out
}

// Batch draws the motes and their links with the canvas opacity applied.
func (a *Ambient) Batch() Batch {
	b := Batch{Particles: a.Particles()}
	for i := range b.Particles {
		b.Particles[i].Opacity *= canvasOpacity
	}
	for _, l := range a.Links() {
		m, n := a.motes[l.A], a.motes[l.B]
		b.Lines = append(b.Lines, Line{X1: m.x, Y1: m.y, X2: n.x, Y2: n.y, Opacity: l.Opacity * canvasOpacity})
	}
	return b
}
