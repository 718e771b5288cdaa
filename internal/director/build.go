package director

import (
	"fmt"

	"github.com/ivlev/scrollreel/internal/effects"
	"github.com/ivlev/scrollreel/internal/engine"
	"github.com/ivlev/scrollreel/internal/stage"
)

type pageBuilder struct {
	st *stage.Stage
	qr map[string]string
}

func (b *pageBuilder) add(elems ...stage.Element) error {
	for _, e := range elems {
		if err := b.st.Add(e); err != nil {
			return err
		}
	}
	return nil
}

// builder lays out one section on the stage and returns its choreography.
type builder func(b *pageBuilder, sec Section) (engine.Mountable, error)

var builders = map[string]builder{
	KindHero:        buildHero,
	KindCaseStudies: buildCaseStudies,
	KindAbout:       buildAbout,
	KindServices:    buildServices,
	KindHowIWork:    buildHowIWork,
	KindSkills:      buildSkills,
	KindModuleFlow:  buildModuleFlow,
	KindAscent:      buildAscent,
	KindContact:     buildContact,
}

// Page is a built scenario: the stage plus one mountable per section.
type Page struct {
	Scenario *Scenario
	Stage    *stage.Stage
	Sections []engine.Mountable
	Ambient  engine.Mountable
	// QRCodes maps QR asset keys to the content they encode.
	QRCodes map[string]string
}

func Build(sc *Scenario) (*Page, error) {
	if sc == nil {
		return nil, ErrNoSections
	}
	sc.applyDefaults()
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	b := &pageBuilder{
		st: stage.New(stage.Viewport{Width: sc.Viewport.Width, Height: sc.Viewport.Height}),
		qr: make(map[string]string),
	}
	p := &Page{Scenario: sc, Stage: b.st, QRCodes: b.qr}
	for _, sec := range sc.Sections {
		m, err := builders[sec.Kind](b, sec)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", sec.ID, err)
		}
		p.Sections = append(p.Sections, m)
	}
	p.Ambient = ambientLayer(sc.Seed)
	return p, nil
}

func (p *Page) Prefs() engine.Prefs {
	return engine.Prefs{
		ReducedMotion: p.Scenario.ReducedMotion,
		CoarsePointer: p.Scenario.Pointer == "coarse",
	}
}

// Mount mounts every section in document order and then the ambient
// layer. On failure everything mounted so far is torn down.
func (p *Page) Mount(d *engine.Driver) (engine.Teardown, error) {
	var downs []engine.Teardown
	teardown := func() {
		for i := len(downs) - 1; i >= 0; i-- {
			downs[i]()
		}
	}
	all := append(append([]engine.Mountable(nil), p.Sections...), p.Ambient)
	for _, m := range all {
		down, err := d.Mount(m)
		if err != nil {
			teardown()
			return func() {}, err
		}
		downs = append(downs, down)
	}
	return teardown, nil
}

// ambientLayer is the drifting particle field behind the page. Under
// reduced motion it registers nothing.
func ambientLayer(seed int64) engine.Mountable {
	return section{name: "ambient", mount: func(sc *engine.Scope) error {
		prefs := sc.Prefs()
		n := effects.ParticleCount(prefs.CoarsePointer, prefs.ReducedMotion)
		if n == 0 {
			return nil
		}
		vp := sc.Stage().Viewport()
		field := effects.NewAmbient(seed, n, vp.Width, vp.Height)
		sc.OnFrame(engine.PhaseAmbient, func(engine.Frame) { field.Step() })
		sc.OnResize(func(vp stage.Viewport) { field.Resize(vp.Width, vp.Height) })
		sc.Layer(func(float64) effects.Batch { return field.Batch() })
		return nil
	}}
}
