package stage

import (
	"fmt"
	"strconv"
	"strings"
)

type Unit string

const (
	Px      Unit = "px"
	VH      Unit = "vh"
	VW      Unit = "vw"
	Percent Unit = "%"
)

// Length is a layout dimension that is resolved against the viewport or
// the parent box each time geometry is read.
type Length struct {
	Value float64
	Unit  Unit
}

func PxLen(v float64) Length      { return Length{Value: v, Unit: Px} }
func VHLen(v float64) Length      { return Length{Value: v, Unit: VH} }
func VWLen(v float64) Length      { return Length{Value: v, Unit: VW} }
func PercentLen(v float64) Length { return Length{Value: v, Unit: Percent} }

// ParseLength accepts "120", "120px", "80vh", "100vw" and "50%".
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Length{}, nil
	}
	for _, u := range []Unit{Px, VH, VW, Percent} {
		if strings.HasSuffix(s, string(u)) {
			v, err := strconv.ParseFloat(strings.TrimSuffix(s, string(u)), 64)
			if err != nil {
				return Length{}, fmt.Errorf("bad length %q: %w", s, err)
			}
			return Length{Value: v, Unit: u}, nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Length{}, fmt.Errorf("bad length %q: %w", s, err)
	}
	return PxLen(v), nil
}

// Resolve converts to pixels; base is the parent dimension percentages refer to.
func (l Length) Resolve(base float64, vp Viewport) float64 {
	switch l.Unit {
	case VH:
		return l.Value / 100 * vp.Height
	case VW:
		return l.Value / 100 * vp.Width
	case Percent:
		return l.Value / 100 * base
	default:
		return l.Value
	}
}

func (l Length) IsZero() bool { return l.Value == 0 }

func (l Length) String() string {
	if l.Unit == "" {
		return strconv.FormatFloat(l.Value, 'f', -1, 64)
	}
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + string(l.Unit)
}
