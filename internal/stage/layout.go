package stage

const layoutEpsilon = 0.5

// raw resolves the box of h ignoring pin spacers.
func (s *Stage) raw(h Handle) (Box, bool) {
	e, ok := s.elems[h]
	if !ok {
		return Box{}, false
	}
	if e.Parent == "" {
		y := 0.0
		for _, r := range s.roots {
			if r == h {
				break
			}
			y += s.elems[r].Rect.H.Resolve(s.vp.Height, s.vp)
		}
		w := s.vp.Width
		if !e.Rect.W.IsZero() {
			w = e.Rect.W.Resolve(s.vp.Width, s.vp)
		}
		return Box{
			X: e.Rect.X.Resolve(s.vp.Width, s.vp),
			Y: y,
			W: w,
			H: e.Rect.H.Resolve(s.vp.Height, s.vp),
		}, true
	}

	p, _ := s.raw(e.Parent)
	return Box{
		X: p.X + e.Rect.X.Resolve(p.W, s.vp),
		Y: p.Y + e.Rect.Y.Resolve(p.H, s.vp),
		W: e.Rect.W.Resolve(p.W, s.vp),
		H: e.Rect.H.Resolve(p.H, s.vp),
	}, true
}

func (s *Stage) isAncestor(a, h Handle) bool {
	for cur := s.elems[h].Parent; cur != ""; cur = s.elems[cur].Parent {
		if cur == a {
			return true
		}
	}
	return false
}

// Layout returns the document-space box of h in normal flow: spacers of
// every element laid out above h push it down, spacers inside h grow it.
func (s *Stage) Layout(h Handle) (Box, bool) {
	box, ok := s.raw(h)
	if !ok {
		return Box{}, false
	}
	shift, grow := 0.0, 0.0
	for _, id := range s.order {
		e := s.elems[id]
		if e.spacer == 0 || id == h || s.isAncestor(id, h) {
			continue
		}
		if s.isAncestor(h, id) {
			grow += e.spacer
			continue
		}
		other, _ := s.raw(id)
		if other.Bottom() <= box.Y+layoutEpsilon {
			shift += e.spacer
		}
	}
	box.Y += shift
	box.H += grow
	return box, true
}

// ContentExtent is the furthest right/bottom edge of h's children relative
// to h, i.e. its scrollWidth/scrollHeight.
func (s *Stage) ContentExtent(h Handle) (w, hgt float64, ok bool) {
	box, ok := s.raw(h)
	if !ok {
		return 0, 0, false
	}
	w, hgt = box.W, box.H
	for _, c := range s.elems[h].children {
		cb, _ := s.raw(c)
		if r := cb.Right() - box.X; r > w {
			w = r
		}
		if b := cb.Bottom() - box.Y; b > hgt {
			hgt = b
		}
	}
	return w, hgt, true
}

// DocumentHeight is the total scrollable height including pin spacers.
func (s *Stage) DocumentHeight() float64 {
	if len(s.roots) == 0 {
		return 0
	}
	last, _ := s.Layout(s.roots[len(s.roots)-1])
	return last.Bottom() + s.elems[s.roots[len(s.roots)-1]].spacer
}

// MaxScroll is the largest meaningful scroll offset.
func (s *Stage) MaxScroll() float64 {
	m := s.DocumentHeight() - s.vp.Height
	if m < 0 {
		return 0
	}
	return m
}

// Visual is an element's render state in viewport space.
type Visual struct {
	ID      Handle  `json:"id"`
	Kind    Kind    `json:"kind"`
	Label   string  `json:"label,omitempty"`
	Asset   string  `json:"asset,omitempty"`
	Depth   int     `json:"depth"`
	Box     Box     `json:"box"`
	Opacity float64 `json:"opacity"`
	Scale   float64 `json:"scale"`
	Glow    float64 `json:"glow,omitempty"`
	Pinned  bool    `json:"pinned,omitempty"`
	Mirror  bool    `json:"mirror,omitempty"`
}

// Render composes layout, pin offsets and transforms of h and its
// ancestors at the given scroll offset.
func (s *Stage) Render(h Handle, scroll float64) (Visual, bool) {
	box, ok := s.Layout(h)
	if !ok {
		return Visual{}, false
	}
	e := s.elems[h]
	v := Visual{
		ID:      h,
		Kind:    e.Kind,
		Label:   e.Label,
		Asset:   e.Asset,
		Opacity: 1,
		Scale:   e.Style.Scale,
		Glow:    e.Style.Glow,
		Mirror:  e.Mirror,
	}

	for cur := h; cur != ""; cur = s.elems[cur].Parent {
		c := s.elems[cur]
		cb, _ := s.raw(cur)
		box.X += c.Style.X + c.Style.XPercent/100*cb.W
		box.Y += c.Style.Y + c.Style.YPercent/100*cb.H + c.pinOffset
		v.Opacity *= c.Style.Opacity
		if c.pinned {
			v.Pinned = true
		}
		if cur != h {
			v.Depth++
		}
	}
	box.Y -= scroll
	v.Box = box
	return v, true
}

// Snapshot renders every element in document order.
func (s *Stage) Snapshot(scroll float64) []Visual {
	out := make([]Visual, 0, len(s.order))
	for _, h := range s.order {
		if v, ok := s.Render(h, scroll); ok {
			out = append(out, v)
		}
	}
	return out
}
