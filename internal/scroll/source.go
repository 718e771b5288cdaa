// Package scroll turns the page scroll offset and an element's geometry into
// a bounded progress value for one trigger region.
package scroll

import (
	"fmt"
	"math"

	"github.com/ivlev/scrollreel/internal/stage"
)

// Offset is the read-only view of the current scroll position. A single
// driver refreshes it once per frame; regions only read it.
type Offset interface {
	Scroll() float64
}

// Geometry is the slice of the stage a region needs.
type Geometry interface {
	Layout(h stage.Handle) (stage.Box, bool)
	Viewport() stage.Viewport
}

// Region binds a scroll range to one element.
type Region struct {
	Trigger stage.Handle
	Start   Descriptor
	End     Descriptor
	Scrub   bool
	Pin     bool
}

// Reading is one frame's view of a region.
type Reading struct {
	// Progress is clamped to [0,1]; Raw is not (parallax extrapolates).
	Progress float64
	Raw      float64
	Active   bool
	// Valid is false when the trigger element does not exist.
	Valid  bool
	Start  float64
	End    float64
	Scroll float64
}

// Degenerate reports a zero or negative length range.
func (r Reading) Degenerate() bool { return r.End <= r.Start }

type Source struct {
	region Region
	geom   Geometry
	offset Offset
}

// NewSource validates the region. Start must be an absolute descriptor.
func NewSource(r Region, g Geometry, o Offset) (*Source, error) {
	if r.Start.Relative {
		return nil, fmt.Errorf("%w: start of %s must not be relative", ErrBadDescriptor, r.Trigger)
	}
	return &Source{region: r, geom: g, offset: o}, nil
}

func (s *Source) Region() Region { return s.region }

// Bounds resolves the region's start and end scroll offsets from the
// current geometry. Nothing is cached: a resize or content change is
// picked up by the next call.
func (s *Source) Bounds() (start, end float64, ok bool) {
	box, ok := s.geom.Layout(s.region.Trigger)
	if !ok {
		return 0, 0, false
	}
	vp := s.geom.Viewport()

	start = s.region.Start.Element.resolve(box.Y, box.H) - s.region.Start.Viewport.resolve(0, vp.Height)

	d := s.region.End
	switch {
	case d.Relative && d.Dynamic != nil:
		end = start + d.Dynamic()
	case d.Relative && d.Percent:
		end = start + d.Distance/100*vp.Height
	case d.Relative:
		end = start + d.Distance
	default:
		end = d.Element.resolve(box.Y, box.H) - d.Viewport.resolve(0, vp.Height)
	}
	return start, end, true
}

// Read computes the progress for the current scroll offset.
func (s *Source) Read() Reading {
	pos := s.offset.Scroll()
	start, end, ok := s.Bounds()
	if !ok {
		return Reading{Scroll: pos}
	}
	r := Reading{Valid: true, Start: start, End: end, Scroll: pos}
	if end <= start || math.IsNaN(pos) || math.IsInf(pos, 0) {
		return r
	}

	r.Raw = (pos - start) / (end - start)
	switch {
	case r.Raw <= 0:
		r.Progress = 0
	case r.Raw >= 1:
		r.Progress = 1
	default:
		r.Progress = r.Raw
	}
	r.Active = pos >= start && pos <= end
	return r
}

// Value is a plain Offset, handy for tests and one-off evaluation.
type Value float64

func (v Value) Scroll() float64 { return float64(v) }
