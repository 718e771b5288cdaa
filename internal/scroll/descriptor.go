package scroll

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadDescriptor = errors.New("bad scroll descriptor")

// Anchor is a point on a box given as a fraction of its height plus a
// pixel offset: "top" is {0,0}, "center" {0.5,0}, "bottom+=20" {1,20}.
type Anchor struct {
	Fraction float64
	Offset   float64
}

// Descriptor locates one end of a trigger region. Either both anchors are
// used ("the element's Element point meets the viewport's Viewport point")
// or the descriptor is relative to the region start ("+=100%").
type Descriptor struct {
	Element  Anchor
	Viewport Anchor

	Relative bool
	// Distance is in pixels, or in viewport heights when Percent is set.
	Distance float64
	Percent  bool
	// Dynamic, when set, supplies the relative distance in pixels on every
	// read so that it follows content changes.
	Dynamic func() float64
}

// Span returns a relative descriptor computed by fn on each read.
func Span(fn func() float64) Descriptor {
	return Descriptor{Relative: true, Dynamic: fn}
}

// Parse accepts "top top", "center center", "bottom top", "top 80%",
// "top+=100 bottom-=10%", "+=200%" and "+=600".
func Parse(s string) (Descriptor, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+=") {
		rest := strings.TrimPrefix(s, "+=")
		d := Descriptor{Relative: true}
		if strings.HasSuffix(rest, "%") {
			d.Percent = true
			rest = strings.TrimSuffix(rest, "%")
		}
		rest = strings.TrimSuffix(rest, "px")
		v, err := strconv.ParseFloat(rest, 64)
		if err != nil || v < 0 {
			return Descriptor{}, fmt.Errorf("%w: %q", ErrBadDescriptor, s)
		}
		d.Distance = v
		return d, nil
	}

	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrBadDescriptor, s)
	}
	el, err := parseAnchor(fields[0])
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %q: %v", ErrBadDescriptor, s, err)
	}
	vp, err := parseAnchor(fields[1])
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %q: %v", ErrBadDescriptor, s, err)
	}
	return Descriptor{Element: el, Viewport: vp}, nil
}

// MustParse is Parse for literals in choreography code.
func MustParse(s string) Descriptor {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func parseAnchor(s string) (Anchor, error) {
	base, offset := s, ""
	sign := 1.0
	if i := strings.Index(s, "+="); i > 0 {
		base, offset = s[:i], s[i+2:]
	} else if i := strings.Index(s, "-="); i > 0 {
		base, offset, sign = s[:i], s[i+2:], -1
	}

	var a Anchor
	switch base {
	case "top":
		a.Fraction = 0
	case "center":
		a.Fraction = 0.5
	case "bottom":
		a.Fraction = 1
	default:
		switch {
		case strings.HasSuffix(base, "%"):
			v, err := strconv.ParseFloat(strings.TrimSuffix(base, "%"), 64)
			if err != nil {
				return Anchor{}, err
			}
			a.Fraction = v / 100
		default:
			v, err := strconv.ParseFloat(strings.TrimSuffix(base, "px"), 64)
			if err != nil {
				return Anchor{}, err
			}
			a.Offset = v
		}
	}

	if offset != "" {
		// Percent offsets are kept as fractions of the same box.
		if strings.HasSuffix(offset, "%") {
			v, err := strconv.ParseFloat(strings.TrimSuffix(offset, "%"), 64)
			if err != nil {
				return Anchor{}, err
			}
			a.Fraction += sign * v / 100
		} else {
			v, err := strconv.ParseFloat(strings.TrimSuffix(offset, "px"), 64)
			if err != nil {
				return Anchor{}, err
			}
			a.Offset += sign * v
		}
	}
	return a, nil
}

func (a Anchor) resolve(top, height float64) float64 {
	return top + a.Fraction*height + a.Offset
}
