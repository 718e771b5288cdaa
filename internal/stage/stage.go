// Package stage holds the laid-out element tree that choreography reads
// geometry from and writes style to. Geometry is never cached: every read
// resolves lengths against the current viewport and pin spacers.
package stage

import (
	"errors"
	"fmt"

	"github.com/ivlev/scrollreel/internal/motion"
)

var (
	ErrDuplicate     = errors.New("duplicate element")
	ErrUnknownParent = errors.New("unknown parent")
)

type Handle string

type Kind string

const (
	KindSection Kind = "section"
	KindBlock   Kind = "block"
	KindText    Kind = "text"
	KindCard    Kind = "card"
	KindTrack   Kind = "track"
	KindSlide   Kind = "slide"
	KindNode    Kind = "node"
	KindHub     Kind = "hub"
	KindLink    Kind = "link"
	KindMarker  Kind = "marker"
	KindLayer   Kind = "layer"
	KindQR      Kind = "qr"
)

type Viewport struct {
	Width  float64
	Height float64
}

// Box is a rectangle in pixels; Y grows downwards.
type Box struct {
	X, Y, W, H float64
}

func (b Box) Bottom() float64 { return b.Y + b.H }
func (b Box) Right() float64  { return b.X + b.W }

// Rect is an element's position relative to its parent (or the page for
// sections, whose Y is ignored because sections stack).
type Rect struct {
	X, Y, W, H Length
}

// Style is the set of animatable channels. Translations are relative to
// the laid-out position.
type Style struct {
	X        float64
	Y        float64
	XPercent float64
	YPercent float64
	Opacity  float64
	Scale    float64
	Glow     float64
}

func DefaultStyle() Style {
	return Style{Opacity: 1, Scale: 1}
}

type Element struct {
	ID     Handle
	Parent Handle
	Kind   Kind
	Label  string
	Asset  string
	Rect   Rect
	Style  Style
	// Mirror flips a link to run from top-right to bottom-left.
	Mirror bool

	pinOffset float64
	pinned    bool
	spacer    float64
	children  []Handle
}

type Stage struct {
	vp    Viewport
	elems map[Handle]*Element
	roots []Handle
	order []Handle
}

func New(vp Viewport) *Stage {
	return &Stage{
		vp:    vp,
		elems: make(map[Handle]*Element),
	}
}

// Add appends an element in document order. Parents must be added first.
// A zero Style is replaced with DefaultStyle.
func (s *Stage) Add(e Element) error {
	if _, ok := s.elems[e.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, e.ID)
	}
	if e.Style == (Style{}) {
		e.Style = DefaultStyle()
	}
	if e.Parent != "" {
		parent, ok := s.elems[e.Parent]
		if !ok {
			return fmt.Errorf("%w: %s (child %s)", ErrUnknownParent, e.Parent, e.ID)
		}
		parent.children = append(parent.children, e.ID)
	} else {
		s.roots = append(s.roots, e.ID)
	}
	el := e
	el.children = nil
	s.elems[e.ID] = &el
	s.order = append(s.order, e.ID)
	return nil
}

func (s *Stage) Has(h Handle) bool {
	_, ok := s.elems[h]
	return ok
}

func (s *Stage) Element(h Handle) (Element, bool) {
	e, ok := s.elems[h]
	if !ok {
		return Element{}, false
	}
	return *e, true
}

func (s *Stage) Children(h Handle) []Handle {
	e, ok := s.elems[h]
	if !ok {
		return nil
	}
	return append([]Handle(nil), e.children...)
}

// Order returns every handle in document order.
func (s *Stage) Order() []Handle {
	return append([]Handle(nil), s.order...)
}

func (s *Stage) Sections() []Handle {
	return append([]Handle(nil), s.roots...)
}

func (s *Stage) Viewport() Viewport { return s.vp }

func (s *Stage) SetViewport(vp Viewport) { s.vp = vp }

// Get reads a style channel; ok is false for missing handles or unknown
// properties.
func (s *Stage) Get(h Handle, p motion.Property) (float64, bool) {
	e, ok := s.elems[h]
	if !ok {
		return 0, false
	}
	ptr := channel(&e.Style, p)
	if ptr == nil {
		return 0, false
	}
	return *ptr, true
}

// Set writes a style channel and reports whether the target existed.
func (s *Stage) Set(h Handle, p motion.Property, v float64) bool {
	e, ok := s.elems[h]
	if !ok {
		return false
	}
	ptr := channel(&e.Style, p)
	if ptr == nil {
		return false
	}
	*ptr = v
	return true
}

func channel(st *Style, p motion.Property) *float64 {
	switch p {
	case motion.X:
		return &st.X
	case motion.Y:
		return &st.Y
	case motion.XPercent:
		return &st.XPercent
	case motion.YPercent:
		return &st.YPercent
	case motion.Opacity:
		return &st.Opacity
	case motion.Scale:
		return &st.Scale
	case motion.Glow:
		return &st.Glow
	}
	return nil
}

// SetPin moves h (and its subtree) down the document by offset pixels.
// fixed marks the element as visually held in the viewport.
func (s *Stage) SetPin(h Handle, offset float64, fixed bool) bool {
	e, ok := s.elems[h]
	if !ok {
		return false
	}
	e.pinOffset = offset
	e.pinned = fixed
	return true
}

func (s *Stage) PinOffset(h Handle) float64 {
	if e, ok := s.elems[h]; ok {
		return e.pinOffset
	}
	return 0
}

// SetSpacer reserves v pixels of layout after h. Everything laid out below
// h shifts down and h's ancestors grow.
func (s *Stage) SetSpacer(h Handle, v float64) bool {
	e, ok := s.elems[h]
	if !ok {
		return false
	}
	if v < 0 {
		v = 0
	}
	e.spacer = v
	return true
}

func (s *Stage) Spacer(h Handle) float64 {
	if e, ok := s.elems[h]; ok {
		return e.spacer
	}
	return 0
}
