// Package engine runs the page: a single driver owns the scroll offset and
// dispatches every section's listeners once per frame in a fixed order.
package engine

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ivlev/scrollreel/internal/effects"
	"github.com/ivlev/scrollreel/internal/renderer"
	"github.com/ivlev/scrollreel/internal/scroll"
	"github.com/ivlev/scrollreel/internal/stage"
)

// Prefs - платформенные настройки пользователя, читаются один раз при старте.
type Prefs struct {
	ReducedMotion bool
	CoarsePointer bool
}

// Mountable is a section that registers its behaviour on a scope.
type Mountable interface {
	Name() string
	Mount(s *Scope) error
}

// Teardown откатывает все, что зарегистрировал mount. Повторный вызов
// ничего не делает.
type Teardown func()

type Driver struct {
	stage *stage.Stage
	prefs Prefs
	reg   Registry

	scroll  float64
	now     time.Duration
	ticked  bool
	dirty   bool
	mounted int
}

func NewDriver(st *stage.Stage, prefs Prefs) *Driver {
	return &Driver{stage: st, prefs: prefs, dirty: true}
}

// Scroll implements scroll.Offset. It is the only scroll value regions
// ever read.
func (d *Driver) Scroll() float64 { return d.scroll }

func (d *Driver) Now() time.Duration { return d.now }

func (d *Driver) Stage() *stage.Stage { return d.stage }

func (d *Driver) Prefs() Prefs { return d.prefs }

func (d *Driver) Registry() *Registry { return &d.reg }

// Mounted counts live mounts.
func (d *Driver) Mounted() int { return d.mounted }

// Mount запускает m в новом scope. Если m вернул ошибку или упал с
// паникой, все уже зарегистрированное откатывается.
func (d *Driver) Mount(m Mountable) (Teardown, error) {
	sc := &Scope{driver: d, owner: m.Name()}
	defer func() {
		if r := recover(); r != nil {
			sc.revert()
			panic(r)
		}
	}()
	if err := m.Mount(sc); err != nil {
		sc.revert()
		return func() {}, fmt.Errorf("mount %s: %w", m.Name(), err)
	}
	d.mounted++
	d.dirty = true

	var once sync.Once
	return func() {
		once.Do(func() {
			sc.revert()
			d.mounted--
			d.dirty = true
		})
	}, nil
}

// Tick продвигает страницу к смещению y в момент now. Scroll-слушатели
// вызываются только если смещение или геометрия изменились, frame-слушатели
// вызываются каждый тик. Отрицательное смещение прижимается к нулю,
// NaN и бесконечность оставляют текущее.
func (d *Driver) Tick(now time.Duration, y float64) {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		y = d.scroll
	}
	if y < 0 {
		y = 0
	}
	f := Frame{
		Now:      now,
		Scroll:   y,
		Delta:    y - d.scroll,
		Viewport: d.stage.Viewport(),
	}
	moved := !d.ticked || y != d.scroll || d.dirty
	d.scroll = y
	d.now = now
	d.ticked = true
	d.dirty = false

	// Снимок: слушатель может отписаться прямо во время тика
	entries := d.reg.snapshot()
	for ph := Phase(0); ph < phaseCount; ph++ {
		for _, e := range entries {
			if e.phase != ph || e.tick == nil {
				continue
			}
			if e.kind == KindScroll && !moved {
				continue
			}
			e.tick(f)
		}
	}
}

// Resize применяет новый viewport, дает resize-слушателям пересчитаться и
// повторно вызывает scroll-слушателей на текущем смещении, чтобы
// закрепленные элементы не остались на старой позиции. Число слушателей
// не меняется.
func (d *Driver) Resize(vp stage.Viewport) {
	d.stage.SetViewport(vp)
	entries := d.reg.snapshot()
	for _, e := range entries {
		if e.kind == KindResize {
			e.resize(vp)
		}
	}
	f := Frame{Now: d.now, Scroll: d.scroll, Viewport: vp}
	for ph := Phase(0); ph < phaseCount; ph++ {
		for _, e := range entries {
			if e.kind == KindScroll && e.phase == ph {
				e.tick(f)
			}
		}
	}
}

// Capture снимает текущее состояние в описание кадра.
func (d *Driver) Capture() renderer.Frame {
	f := renderer.Frame{
		Viewport: d.stage.Viewport(),
		Scroll:   d.scroll,
		Visuals:  d.stage.Snapshot(d.scroll),
	}
	for _, e := range d.reg.entries {
		if e.kind == KindLayer {
			f.Layers = append(f.Layers, e.layer(d.scroll))
		}
	}
	return f
}

// Scope запоминает все, что регистрирует один mount.
type Scope struct {
	driver   *Driver
	owner    string
	ids      []int
	cleanups []func()
}

func (s *Scope) Owner() string         { return s.owner }
func (s *Scope) Stage() *stage.Stage   { return s.driver.stage }
func (s *Scope) Prefs() Prefs          { return s.driver.prefs }
func (s *Scope) Now() time.Duration    { return s.driver.now }
func (s *Scope) Offset() scroll.Offset { return s.driver }

// Region creates a progress source bound to the driver's scroll value.
func (s *Scope) Region(r scroll.Region) (*scroll.Source, error) {
	return scroll.NewSource(r, s.driver.stage, s.driver)
}

func (s *Scope) OnScroll(ph Phase, fn func(Frame)) {
	s.ids = append(s.ids, s.driver.reg.add(entry{kind: KindScroll, phase: ph, owner: s.owner, tick: fn}))
}

func (s *Scope) OnFrame(ph Phase, fn func(Frame)) {
	s.ids = append(s.ids, s.driver.reg.add(entry{kind: KindFrame, phase: ph, owner: s.owner, tick: fn}))
}

func (s *Scope) OnResize(fn func(stage.Viewport)) {
	s.ids = append(s.ids, s.driver.reg.add(entry{kind: KindResize, owner: s.owner, resize: fn}))
}

// Layer добавляет декоративный слой к захваченным кадрам.
func (s *Scope) Layer(fn func(scroll float64) effects.Batch) {
	s.ids = append(s.ids, s.driver.reg.add(entry{kind: KindLayer, owner: s.owner, layer: fn}))
}

// Defer выполняет fn при teardown после снятия слушателей, в порядке LIFO.
func (s *Scope) Defer(fn func()) {
	s.cleanups = append(s.cleanups, fn)
}

func (s *Scope) revert() {
	for i := len(s.ids) - 1; i >= 0; i-- {
		s.driver.reg.remove(s.ids[i])
	}
	s.ids = nil
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
}
