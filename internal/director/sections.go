package director

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ivlev/scrollreel/internal/effects"
	"github.com/ivlev/scrollreel/internal/engine"
	"github.com/ivlev/scrollreel/internal/motion"
	"github.com/ivlev/scrollreel/internal/reveal"
	"github.com/ivlev/scrollreel/internal/scroll"
	"github.com/ivlev/scrollreel/internal/stage"
	"github.com/ivlev/scrollreel/internal/timeline"
)

const (
	caseTop     = 160.0
	caseHeight  = 360.0
	caseGap     = 64.0
	visualWidth = 640.0

	// flowUnit is the scroll distance of one module-flow step as a
	// fraction of the viewport height.
	flowUnit   = 0.6
	sparkTrail = 6

	marqueeLoop = 30 * time.Second

	skillColumns = 6
	skillTile    = 120.0
)

var (
	px   = stage.PxLen
	vh   = stage.VHLen
	vw   = stage.VWLen
	pct  = stage.PercentLen
	full = stage.PercentLen(100)
)

func hid(sec Section, parts ...string) stage.Handle {
	return stage.Handle(sec.ID + "-" + strings.Join(parts, "-"))
}

func sectionRoot(sec Section, def string) (stage.Element, error) {
	h := sec.Height
	if h == "" {
		h = def
	}
	l, err := stage.ParseLength(h)
	if err != nil {
		return stage.Element{}, err
	}
	return stage.Element{ID: stage.Handle(sec.ID), Kind: stage.KindSection, Label: sec.Title, Rect: stage.Rect{H: l}}, nil
}

func titleElement(sec Section) stage.Element {
	return stage.Element{
		ID:     hid(sec, "title"),
		Parent: stage.Handle(sec.ID),
		Kind:   stage.KindText,
		Label:  sec.Title,
		Rect:   stage.Rect{X: vw(8), Y: px(60), W: vw(84), H: px(48)},
	}
}

// row lays items out side by side across their parent.
func row(sec Section, parent stage.Handle, prefix string, list []Item) ([]stage.Element, []stage.Handle) {
	var elems []stage.Element
	var hs []stage.Handle
	n := float64(len(list))
	for i, it := range list {
		h := hid(sec, prefix, it.ID)
		elems = append(elems, stage.Element{
			ID:     h,
			Parent: parent,
			Kind:   stage.KindCard,
			Label:  it.Label,
			Rect:   stage.Rect{X: pct(float64(i) * 100 / n), W: pct(100/n - 2), H: full},
		})
		hs = append(hs, h)
	}
	return elems, hs
}

func buildHero(b *pageBuilder, sec Section) (engine.Mountable, error) {
	root, err := sectionRoot(sec, "100vh")
	if err != nil {
		return nil, err
	}
	var (
		bg      = hid(sec, "background")
		content = hid(sec, "content")
		name    = hid(sec, "name")
		role    = hid(sec, "role")
		tagline = hid(sec, "tagline")
		cta     = hid(sec, "cta")
	)
	elems := []stage.Element{
		root,
		{ID: bg, Parent: root.ID, Kind: stage.KindLayer, Rect: stage.Rect{W: full, H: full}},
		{ID: content, Parent: root.ID, Kind: stage.KindBlock, Rect: stage.Rect{X: vw(8), Y: vh(25), W: vw(84), H: vh(50)}},
		{ID: name, Parent: content, Kind: stage.KindText, Label: sec.Title, Rect: stage.Rect{X: px(32), Y: px(32), W: full, H: px(72)}},
		{ID: role, Parent: content, Kind: stage.KindText, Label: sec.Subtitle, Rect: stage.Rect{X: px(32), Y: px(120), W: full, H: px(32)}},
		{ID: tagline, Parent: content, Kind: stage.KindText, Label: sec.Body, Rect: stage.Rect{X: px(32), Y: px(160), W: full, H: px(24)}},
		{ID: cta, Parent: content, Kind: stage.KindText, Rect: stage.Rect{X: px(32), Y: px(220), W: pct(60), H: px(48)}},
	}
	buttons, ctas := row(sec, cta, "cta", sec.Items)
	if err := b.add(append(elems, buttons...)...); err != nil {
		return nil, err
	}

	return section{name: sec.ID, mount: func(sc *engine.Scope) error {
		playReveal(sc, reveal.New(name, fadeInUp(100*time.Millisecond, 40)), name)
		playReveal(sc, reveal.New(role, fadeInUp(250*time.Millisecond, 30)), role)
		playReveal(sc, reveal.New(tagline, fadeInUp(350*time.Millisecond, 30)), tagline)
		playReveal(sc, reveal.NewGroup(cta, ctas, staggerReveal(450*time.Millisecond, 24, 120*time.Millisecond)), ctas...)
		if err := parallax(sc, content, 0, -10); err != nil {
			return err
		}
		return parallax(sc, bg, 0, -5)
	}}, nil
}

func buildCaseStudies(b *pageBuilder, sec Section) (engine.Mountable, error) {
	n := len(sec.Cases)
	root, err := sectionRoot(sec, fmt.Sprintf("%.0fpx", caseTop+float64(n)*(caseHeight+caseGap)))
	if err != nil {
		return nil, err
	}
	heading := hid(sec, "heading")
	elems := []stage.Element{
		root,
		{ID: heading, Parent: root.ID, Kind: stage.KindText, Label: sec.Title, Rect: stage.Rect{X: vw(8), Y: px(60), W: vw(84), H: px(64)}},
	}

	var mains, visuals []stage.Handle
	slides := make(map[stage.Handle][]stage.Handle)
	for i, c := range sec.Cases {
		main := hid(sec, c.ID)
		visual := hid(sec, c.ID, "visual")
		elems = append(elems,
			stage.Element{ID: main, Parent: root.ID, Kind: stage.KindBlock,
				Rect: stage.Rect{X: vw(8), Y: px(caseTop + float64(i)*(caseHeight+caseGap)), W: vw(84), H: px(caseHeight)}},
			stage.Element{ID: visual, Parent: main, Kind: stage.KindBlock, Rect: stage.Rect{W: px(visualWidth), H: full}},
		)
		for j, asset := range c.Slides {
			h := hid(sec, c.ID, "slide", fmt.Sprint(j+1))
			elems = append(elems, stage.Element{ID: h, Parent: visual, Kind: stage.KindSlide, Asset: asset, Rect: stage.Rect{W: full, H: full}})
			slides[visual] = append(slides[visual], h)
		}
		elems = append(elems, stage.Element{
			ID: hid(sec, c.ID, "copy"), Parent: main, Kind: stage.KindText, Label: c.Title,
			Rect: stage.Rect{X: px(visualWidth + 40), Y: px(40), W: px(360), H: px(48)},
		})
		mains = append(mains, main)
		visuals = append(visuals, visual)
	}
	if err := b.add(elems...); err != nil {
		return nil, err
	}
	end, err := scroll.Parse(fmt.Sprintf("+=%d%%", 200*n))
	if err != nil {
		return nil, err
	}

	return section{name: sec.ID, mount: func(sc *engine.Scope) error {
		st := sc.Stage()
		if _, _, err := pinRegion(sc, scroll.Region{Trigger: root.ID, Start: scroll.MustParse("top top"), End: end, Scrub: true}); err != nil {
			return err
		}
		playReveal(sc, reveal.New(heading, fadeInUp(0, 40)), heading)
		for _, m := range mains {
			playReveal(sc, reveal.New(m, fadeInUp(200*time.Millisecond, 40)), m)
		}

		for _, v := range visuals {
			if len(slides[v]) < 2 {
				continue
			}
			tl, err := timeline.New(st, timeline.SlideSequence(slides[v]))
			if err != nil {
				return err
			}
			src, err := sampleRegion(sc, scroll.Region{
				Trigger: v,
				Start:   scroll.MustParse("top top"),
				End:     scroll.MustParse("bottom top"),
				Scrub:   true,
			})
			if err != nil {
				return err
			}
			preserve(sc, slides[v]...)
			scrub(sc, src, func(r scroll.Reading) { tl.Seek(r.Progress) })
			sc.Defer(tl.Reset)
		}
		return nil
	}}, nil
}

// buildSkills lays the items out as a tile grid that staggers in once.
func buildSkills(b *pageBuilder, sec Section) (engine.Mountable, error) {
	rows := (len(sec.Items) + skillColumns - 1) / skillColumns
	gridH := float64(rows) * skillTile
	root, err := sectionRoot(sec, fmt.Sprintf("%gpx", 140+gridH+120))
	if err != nil {
		return nil, err
	}
	grid := hid(sec, "grid")
	elems := []stage.Element{
		root,
		titleElement(sec),
		{ID: grid, Parent: root.ID, Kind: stage.KindBlock, Rect: stage.Rect{X: vw(8), Y: px(140), W: vw(84), H: px(gridH)}},
	}
	tiles := make([]stage.Handle, 0, len(sec.Items))
	for i, it := range sec.Items {
		h := hid(sec, "tile", it.ID)
		col, row := i%skillColumns, i/skillColumns
		elems = append(elems, stage.Element{
			ID: h, Parent: grid, Kind: stage.KindCard, Label: it.Label,
			Rect: stage.Rect{
				X: pct(float64(col) * 100 / skillColumns),
				Y: px(float64(row) * skillTile),
				W: pct(100.0 / skillColumns),
				H: px(skillTile),
			},
		})
		tiles = append(tiles, h)
	}
	if sec.Body != "" {
		elems = append(elems, stage.Element{
			ID: hid(sec, "cta"), Parent: root.ID, Kind: stage.KindText, Label: sec.Body,
			Rect: stage.Rect{X: vw(8), Y: px(140 + gridH + 40), W: vw(84), H: px(32)},
		})
	}
	if err := b.add(elems...); err != nil {
		return nil, err
	}

	return section{name: sec.ID, mount: func(sc *engine.Scope) error {
		if len(tiles) > 0 {
			playReveal(sc, reveal.NewGroup(grid, tiles, staggerReveal(100*time.Millisecond, 30, 60*time.Millisecond)), tiles...)
		}
		return nil
	}}, nil
}

func buildAbout(b *pageBuilder, sec Section) (engine.Mountable, error) {
	root, err := sectionRoot(sec, "150vh")
	if err != nil {
		return nil, err
	}
	var (
		cards     = hid(sec, "cards")
		container = hid(sec, "pinned")
		rail      = hid(sec, "rail")
		track     = hid(sec, "track")
	)
	elems := []stage.Element{
		root,
		titleElement(sec),
		{ID: cards, Parent: root.ID, Kind: stage.KindText, Rect: stage.Rect{X: vw(8), Y: px(140), W: vw(84), H: px(140)}},
		{ID: container, Parent: root.ID, Kind: stage.KindBlock, Rect: stage.Rect{X: vw(8), Y: px(320), W: vw(84), H: vh(90)}},
		{ID: rail, Parent: container, Kind: stage.KindBlock, Rect: stage.Rect{X: px(24), Y: px(24), W: pct(40), H: pct(90)}},
		{ID: track, Parent: rail, Kind: stage.KindTrack, Rect: stage.Rect{W: full, H: full}},
	}
	cardElems, cardHs := row(sec, cards, "card", sec.Items)
	elems = append(elems, cardElems...)
	for i, it := range sec.Track {
		elems = append(elems, stage.Element{
			ID: hid(sec, "entry", it.ID), Parent: track, Kind: stage.KindCard, Label: it.Label,
			Rect: stage.Rect{X: px(16), Y: px(16 + float64(i)*140), W: pct(90), H: px(120)},
		})
	}
	if err := b.add(elems...); err != nil {
		return nil, err
	}

	return section{name: sec.ID, mount: func(sc *engine.Scope) error {
		playReveal(sc, reveal.NewGroup(cards, cardHs, staggerReveal(100*time.Millisecond, 30, 80*time.Millisecond)), cardHs...)
		return pinnedTrack(sc, container, rail, track, true)
	}}, nil
}

func buildServices(b *pageBuilder, sec Section) (engine.Mountable, error) {
	root, err := sectionRoot(sec, "100vh")
	if err != nil {
		return nil, err
	}
	var (
		container = hid(sec, "pinned")
		outer     = hid(sec, "outer")
		track     = hid(sec, "track")
	)
	elems := []stage.Element{
		root,
		titleElement(sec),
		{ID: container, Parent: root.ID, Kind: stage.KindText, Rect: stage.Rect{X: vw(8), Y: px(140), W: vw(84), H: px(420)}},
		{ID: outer, Parent: container, Kind: stage.KindText, Rect: stage.Rect{W: full, H: full}},
		{ID: track, Parent: outer, Kind: stage.KindTrack, Rect: stage.Rect{W: full, H: full}},
	}
	var cardHs []stage.Handle
	for i, it := range sec.Items {
		h := hid(sec, "card", it.ID)
		elems = append(elems, stage.Element{
			ID: h, Parent: track, Kind: stage.KindCard, Label: it.Label,
			Rect: stage.Rect{X: px(float64(i) * 340), W: px(320), H: full},
		})
		cardHs = append(cardHs, h)
	}
	if err := b.add(elems...); err != nil {
		return nil, err
	}

	return section{name: sec.ID, mount: func(sc *engine.Scope) error {
		playReveal(sc, reveal.NewGroup(track, cardHs, staggerReveal(100*time.Millisecond, 40, 0)), cardHs...)
		return pinnedTrack(sc, container, outer, track, false)
	}}, nil
}

// pinnedTrack pins container at "center center" and scrolls track through
// its clipping window: distance = max(0, content - window), the region
// lasting max(400, distance). Geometry is re-read on every frame so a
// resize changes both.
func pinnedTrack(sc *engine.Scope, container, window, track stage.Handle, vertical bool) error {
	st := sc.Stage()
	distance := func() float64 {
		w, h, ok := st.ContentExtent(track)
		box, ok2 := st.Layout(window)
		if !ok || !ok2 {
			return 0
		}
		if vertical {
			return math.Max(0, h-box.H)
		}
		return math.Max(0, w-box.W)
	}
	src, _, err := pinRegion(sc, scroll.Region{
		Trigger: container,
		Start:   scroll.MustParse("center center"),
		End:     scroll.Span(func() float64 { return math.Max(400, distance()) }),
		Scrub:   true,
	})
	if err != nil {
		return err
	}
	prop := motion.X
	if vertical {
		prop = motion.Y
	}
	preserve(sc, track)
	scrub(sc, src, func(r scroll.Reading) {
		st.Set(track, prop, motion.Interpolate(0, -distance(), r.Progress, motion.None))
	})
	return nil
}

func buildHowIWork(b *pageBuilder, sec Section) (engine.Mountable, error) {
	root, err := sectionRoot(sec, "100vh")
	if err != nil {
		return nil, err
	}
	var (
		title   = hid(sec, "title")
		cards   = hid(sec, "cards")
		wrap    = hid(sec, "marquee-window")
		marquee = hid(sec, "marquee")
	)
	elems := []stage.Element{
		root,
		titleElement(sec),
		{ID: cards, Parent: root.ID, Kind: stage.KindText, Rect: stage.Rect{X: vw(8), Y: px(140), W: vw(84), H: px(220)}},
		{ID: wrap, Parent: root.ID, Kind: stage.KindText, Rect: stage.Rect{Y: vh(75), W: full, H: px(56)}},
		{ID: marquee, Parent: wrap, Kind: stage.KindTrack, Rect: stage.Rect{W: pct(200), H: full}},
	}
	cardElems, cardHs := row(sec, cards, "card", sec.Items)
	elems = append(elems, cardElems...)

	// The pill list is rendered twice so shifting by half its width loops
	// seamlessly.
	n := len(sec.Track)
	for pass := 0; pass < 2; pass++ {
		for i, it := range sec.Track {
			slot := float64(pass*n + i)
			elems = append(elems, stage.Element{
				ID: hid(sec, "pill", fmt.Sprint(pass+1), it.ID), Parent: marquee, Kind: stage.KindCard, Label: it.Label,
				Rect: stage.Rect{X: pct(slot * 100 / float64(2*n)), W: pct(100/float64(2*n) - 0.5), H: full},
			})
		}
	}
	if err := b.add(elems...); err != nil {
		return nil, err
	}

	return section{name: sec.ID, mount: func(sc *engine.Scope) error {
		st := sc.Stage()
		playReveal(sc, reveal.New(title, fadeInUp(0, 40)), title)
		playReveal(sc, reveal.NewGroup(cards, cardHs, staggerReveal(200*time.Millisecond, 30, 0)), cardHs...)

		if sc.Prefs().ReducedMotion || n == 0 {
			return nil
		}
		preserve(sc, marquee)
		start := sc.Now()
		loop := motion.Tween{
			Animation: motion.Animation{Property: motion.XPercent, From: 0, To: -50, Ease: motion.None},
			Duration:  marqueeLoop,
			Repeat:    -1,
		}
		sc.OnFrame(engine.PhaseTime, func(f engine.Frame) {
			v, _ := loop.AtTime(f.Now - start)
			st.Set(marquee, motion.XPercent, v)
		})
		return nil
	}}, nil
}

func buildModuleFlow(b *pageBuilder, sec Section) (engine.Mountable, error) {
	root, err := sectionRoot(sec, "100vh")
	if err != nil {
		return nil, err
	}
	var (
		diagram = hid(sec, "diagram")
		hub     = hid(sec, "hub")
		marker  = hid(sec, "marker")
	)
	hubLabel := sec.Subtitle
	if hubLabel == "" {
		hubLabel = "Core"
	}
	centre := stage.Rect{X: pct(50), Y: pct(50)}
	elems := []stage.Element{
		root,
		titleElement(sec),
		{ID: diagram, Parent: root.ID, Kind: stage.KindText, Rect: stage.Rect{X: vw(10), Y: vh(15), W: vw(80), H: vh(75)}},
	}

	type flowNode struct {
		node, link stage.Handle
		path       motion.Path
	}
	var nodes []flowNode
	for _, n := range sec.Nodes {
		link := hid(sec, "link", n.ID)
		r := centre
		r.W, r.H = px(math.Abs(n.X)), px(math.Abs(n.Y))
		elems = append(elems, stage.Element{
			ID: link, Parent: diagram, Kind: stage.KindLink, Rect: r,
			Style:  stage.Style{X: math.Min(0, n.X), Y: math.Min(0, n.Y), Opacity: 0.15, Scale: 1},
			Mirror: (n.X < 0) != (n.Y < 0),
		})
		var path motion.Path = motion.Line{DX: n.X, DY: n.Y}
		if n.Curve != nil {
			path = motion.Curve{CX: n.Curve.X, CY: n.Curve.Y, EX: n.X, EY: n.Y}
		}
		nodes = append(nodes, flowNode{node: hid(sec, "node", n.ID), link: link, path: path})
	}
	hubRect := centre
	hubRect.W, hubRect.H = px(80), px(80)
	elems = append(elems, stage.Element{
		ID: hub, Parent: diagram, Kind: stage.KindHub, Label: hubLabel, Rect: hubRect,
		Style: stage.Style{X: -40, Y: -40, Opacity: 0.3, Scale: 0.85},
	})
	for i, n := range sec.Nodes {
		r := centre
		r.W, r.H = px(60), px(60)
		elems = append(elems, stage.Element{
			ID: nodes[i].node, Parent: diagram, Kind: stage.KindNode, Label: n.Label, Rect: r,
			Style: stage.Style{X: n.X - 30, Y: n.Y - 30, Opacity: 0.35, Scale: 0.8},
		})
	}
	elems = append(elems, stage.Element{
		ID: marker, Parent: diagram, Kind: stage.KindMarker, Rect: centre,
		Style: stage.Style{Opacity: 0, Scale: 1},
	})
	if err := b.add(elems...); err != nil {
		return nil, err
	}

	steps := len(nodes) + 1
	return section{name: sec.ID, mount: func(sc *engine.Scope) error {
		st := sc.Stage()
		src, _, err := pinRegion(sc, scroll.Region{
			Trigger: root.ID,
			Start:   scroll.MustParse("top top"),
			End:     scroll.Span(func() float64 { return float64(steps) * flowUnit * st.Viewport().Height }),
			Scrub:   true,
		})
		if err != nil {
			return err
		}

		sparks := effects.NewSparks(sparkTrail)
		flow := make([]timeline.FlowNode, len(nodes))
		touched := []stage.Handle{hub, marker}
		for i, n := range nodes {
			owner, path := string(n.node), n.path
			flow[i] = timeline.FlowNode{
				ID:   n.node,
				Link: n.link,
				Path: path,
				OnTravel: func(active bool) {
					if active {
						sparks.Spawn(owner, hub, path)
					} else {
						sparks.Kill(owner)
					}
				},
				OnStep: func(local float64) { sparks.Update(owner, local) },
			}
			touched = append(touched, n.node, n.link)
		}
		tl, err := timeline.New(st, timeline.ModuleFlow(hub, marker, flow))
		if err != nil {
			return err
		}

		preserve(sc, touched...)
		scrub(sc, src, func(r scroll.Reading) { tl.Seek(r.Progress) })
		sc.Layer(func(y float64) effects.Batch { return sparks.Batch(st, y) })
		sc.Defer(func() {
			tl.Reset()
			sparks.KillAll()
		})
		return nil
	}}, nil
}

func buildAscent(b *pageBuilder, sec Section) (engine.Mountable, error) {
	root, err := sectionRoot(sec, "80vh")
	if err != nil {
		return nil, err
	}
	elems := []stage.Element{root}
	var layers []stage.Handle
	for i := 1; i <= 3; i++ {
		h := hid(sec, "stars", fmt.Sprint(i))
		elems = append(elems, stage.Element{ID: h, Parent: root.ID, Kind: stage.KindLayer, Rect: stage.Rect{W: full, H: full}})
		layers = append(layers, h)
	}
	copyH := hid(sec, "copy")
	elems = append(elems, stage.Element{
		ID: copyH, Parent: root.ID, Kind: stage.KindText, Label: sec.Title,
		Rect: stage.Rect{X: pct(20), Y: pct(40), W: pct(60), H: pct(20)},
	})
	if err := b.add(elems...); err != nil {
		return nil, err
	}

	fade, err := motion.NewKeyframeMap([]float64{0, 0.3, 0.7, 1}, []float64{0, 1, 1, 0})
	if err != nil {
		return nil, err
	}
	return section{name: sec.ID, mount: func(sc *engine.Scope) error {
		st := sc.Stage()
		src, err := sampleRegion(sc, scroll.Region{
			Trigger: root.ID,
			Start:   scroll.MustParse("top bottom"),
			End:     scroll.MustParse("bottom top"),
			Scrub:   true,
		})
		if err != nil {
			return err
		}
		preserve(sc, append(layers, copyH)...)
		scrub(sc, src, func(r scroll.Reading) {
			o := fade.At(r.Progress)
			for i, h := range layers {
				st.Set(h, motion.Y, motion.Interpolate(0, -150*float64(i+1), r.Progress, motion.None))
				st.Set(h, motion.Opacity, o)
			}
			st.Set(copyH, motion.Opacity, o)
		})
		return nil
	}}, nil
}

func buildContact(b *pageBuilder, sec Section) (engine.Mountable, error) {
	root, err := sectionRoot(sec, "100vh")
	if err != nil {
		return nil, err
	}
	var (
		left   = hid(sec, "left")
		right  = hid(sec, "right")
		qr     = hid(sec, "qr")
		footer = hid(sec, "footer")
	)
	asset := "qr:" + sec.ID
	if sec.URL != "" {
		b.qr[asset] = sec.URL
	}
	err = b.add(
		root,
		stage.Element{ID: left, Parent: root.ID, Kind: stage.KindText, Label: sec.Title, Rect: stage.Rect{X: vw(8), Y: vh(30), W: vw(40), H: px(120)}},
		stage.Element{ID: right, Parent: root.ID, Kind: stage.KindBlock, Rect: stage.Rect{X: vw(56), Y: vh(20), W: px(280), H: px(280)}},
		stage.Element{ID: qr, Parent: right, Kind: stage.KindQR, Asset: asset, Rect: stage.Rect{X: px(20), Y: px(20), W: px(240), H: px(240)}},
		stage.Element{ID: footer, Parent: root.ID, Kind: stage.KindText, Label: sec.Body, Rect: stage.Rect{X: vw(8), Y: vh(85), W: vw(84), H: px(32)}},
	)
	if err != nil {
		return nil, err
	}

	return section{name: sec.ID, mount: func(sc *engine.Scope) error {
		playReveal(sc, reveal.New(left, fadeInUp(0, 30)), left)
		playReveal(sc, reveal.New(right, fadeInUp(100*time.Millisecond, 30)), right)
		playReveal(sc, reveal.New(footer, fadeInUp(200*time.Millisecond, 20)), footer)
		return nil
	}}, nil
}
