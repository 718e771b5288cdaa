// Package renderer rasterizes a captured page state into an RGBA frame.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/ivlev/scrollreel/internal/effects"
	"github.com/ivlev/scrollreel/internal/stage"
)

// Frame is everything needed to draw one moment of the page.
type Frame struct {
	Viewport stage.Viewport
	Scroll   float64
	Visuals  []stage.Visual
	Layers   []effects.Batch
}

var (
	Background = color.RGBA{5, 5, 10, 255}
	Cyan       = color.RGBA{0, 245, 255, 255}
	Violet     = color.RGBA{124, 58, 237, 255}
	Ink        = color.RGBA{229, 231, 235, 255}
	Panel      = color.RGBA{17, 17, 27, 255}
)

type Renderer struct {
	ttf  *truetype.Font
	opts truetype.Options

	mu     sync.RWMutex
	assets map[string]image.Image
	scaled map[scaledKey]*image.RGBA
}

type scaledKey struct {
	asset string
	w, h  int
}

// New prepares the label font.
func New(fontSize float64) (*Renderer, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	if fontSize <= 0 {
		fontSize = 14
	}
	return &Renderer{
		ttf: ttf,
		opts: truetype.Options{
			Size:    fontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		},
		assets: make(map[string]image.Image),
		scaled: make(map[scaledKey]*image.RGBA),
	}, nil
}

// SetAsset registers artwork referenced by stage elements' Asset field.
func (r *Renderer) SetAsset(key string, img image.Image) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[key] = img
	for k := range r.scaled {
		if k.asset == key {
			delete(r.scaled, k)
		}
	}
}

func (r *Renderer) HasAsset(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.assets[key]
	return ok
}

// Rasterize draws f into dst. dst is cleared first, so pooled buffers can
// be reused. Safe for concurrent use with distinct dst.
func (r *Renderer) Rasterize(dst *image.RGBA, f Frame) error {
	if dst == nil {
		return fmt.Errorf("nil destination")
	}
	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(Background)
	dc.Clear()
	// Faces cache glyphs and are not safe to share between goroutines.
	dc.SetFontFace(truetype.NewFace(r.ttf, &r.opts))

	w, h := float64(dst.Bounds().Dx()), float64(dst.Bounds().Dy())
	sx, sy := 1.0, 1.0
	if f.Viewport.Width > 0 && f.Viewport.Height > 0 {
		sx, sy = w/f.Viewport.Width, h/f.Viewport.Height
	}

	for _, layer := range f.Layers {
		r.drawLayer(dc, layer, sx, sy)
	}
	for _, v := range f.Visuals {
		if v.Opacity <= 0 {
			continue
		}
		box := scaleBox(v.Box, v.Scale, sx, sy)
		if box.Bottom() < 0 || box.Y > h || box.Right() < 0 || box.X > w {
			continue
		}
		r.drawVisual(dc, v, box)
	}
	return nil
}

func scaleBox(b stage.Box, scale, sx, sy float64) stage.Box {
	if scale <= 0 {
		scale = 1
	}
	cx, cy := b.X+b.W/2, b.Y+b.H/2
	w, h := b.W*scale, b.H*scale
	return stage.Box{X: (cx - w/2) * sx, Y: (cy - h/2) * sy, W: w * sx, H: h * sy}
}

func withAlpha(c color.RGBA, a float64) color.Color {
	a = math.Max(0, math.Min(1, a))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(a * 255))}
}

func (r *Renderer) drawVisual(dc *gg.Context, v stage.Visual, b stage.Box) {
	a := v.Opacity
	switch v.Kind {
	case stage.KindSection:
		dc.SetColor(withAlpha(Panel, 0.35*a))
		dc.DrawRectangle(b.X, b.Y, b.W, b.H)
		dc.Fill()
	case stage.KindCard, stage.KindBlock, stage.KindTrack:
		dc.SetColor(withAlpha(Panel, a))
		dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, 12)
		dc.FillPreserve()
		dc.SetColor(withAlpha(Cyan, 0.3*a))
		dc.SetLineWidth(1)
		dc.Stroke()
	case stage.KindSlide:
		r.drawSlide(dc, v, b)
	case stage.KindHub, stage.KindNode:
		r.drawNode(dc, v, b)
	case stage.KindLink:
		dc.SetColor(withAlpha(Cyan, 0.8*a))
		dc.SetLineWidth(2)
		if v.Mirror {
			dc.DrawLine(b.Right(), b.Y, b.X, b.Bottom())
		} else {
			dc.DrawLine(b.X, b.Y, b.Right(), b.Bottom())
		}
		dc.Stroke()
	case stage.KindMarker:
		dc.SetColor(withAlpha(Cyan, a))
		dc.DrawCircle(b.X+b.W/2, b.Y+b.H/2, math.Max(3, b.W/2))
		dc.Fill()
	case stage.KindLayer:
		dc.SetColor(withAlpha(Violet, 0.25*a))
		dc.DrawRectangle(b.X, b.Y, b.W, b.H)
		dc.Fill()
	case stage.KindQR:
		if !r.drawAsset(dc, v.Asset, b) {
			r.placeholder(dc, b, a)
		}
	}
	if v.Label != "" && v.Kind != stage.KindSection {
		dc.SetColor(withAlpha(Ink, a))
		dc.DrawStringAnchored(v.Label, b.X+b.W/2, b.Y+b.H/2, 0.5, 0.5)
	}
}

func (r *Renderer) drawNode(dc *gg.Context, v stage.Visual, b stage.Box) {
	cx, cy := b.X+b.W/2, b.Y+b.H/2
	rad := math.Min(b.W, b.H) / 2
	if v.Glow > 0 {
		for i := 3; i >= 1; i-- {
			dc.SetColor(withAlpha(Cyan, 0.08*v.Glow*v.Opacity))
			dc.DrawCircle(cx, cy, rad+float64(i)*6*v.Glow)
			dc.Fill()
		}
	}
	fill := Violet
	if v.Kind == stage.KindHub {
		fill = Cyan
	}
	dc.SetColor(withAlpha(Panel, v.Opacity))
	dc.DrawCircle(cx, cy, rad)
	dc.FillPreserve()
	dc.SetColor(withAlpha(fill, v.Opacity))
	dc.SetLineWidth(2)
	dc.Stroke()
}

func (r *Renderer) drawSlide(dc *gg.Context, v stage.Visual, b stage.Box) {
	if v.Opacity >= 1 && r.drawAsset(dc, v.Asset, b) {
		return
	}
	r.placeholder(dc, b, v.Opacity)
}

func (r *Renderer) placeholder(dc *gg.Context, b stage.Box, a float64) {
	dc.SetColor(withAlpha(Violet, 0.4*a))
	dc.DrawRectangle(b.X, b.Y, b.W, b.H)
	dc.Fill()
}

// drawAsset blits artwork scaled to the box; scaled copies are cached per
// size since the same slide is drawn on many frames.
func (r *Renderer) drawAsset(dc *gg.Context, key string, b stage.Box) bool {
	if key == "" {
		return false
	}
	w, h := int(math.Round(b.W)), int(math.Round(b.H))
	if w <= 0 || h <= 0 {
		return false
	}
	k := scaledKey{key, w, h}

	r.mu.RLock()
	img, cached := r.scaled[k]
	src, ok := r.assets[key]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if !cached {
		img = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(img, img.Bounds(), src, src.Bounds(), draw.Src, nil)
		r.mu.Lock()
		r.scaled[k] = img
		r.mu.Unlock()
	}
	dc.DrawImage(img, int(math.Round(b.X)), int(math.Round(b.Y)))
	return true
}

func (r *Renderer) drawLayer(dc *gg.Context, layer effects.Batch, sx, sy float64) {
	dc.SetLineWidth(0.5)
	for _, l := range layer.Lines {
		dc.SetColor(withAlpha(Cyan, l.Opacity))
		dc.DrawLine(l.X1*sx, l.Y1*sy, l.X2*sx, l.Y2*sy)
		dc.Stroke()
	}
	for _, p := range layer.Particles {
		c := Cyan
		if p.Tint == effects.Violet {
			c = Violet
		}
		dc.SetColor(withAlpha(c, p.Opacity))
		dc.DrawCircle(p.X*sx, p.Y*sy, math.Max(0.5, p.Size))
		dc.Fill()
	}
}
