// Package server exposes a mounted page over HTTP for previewing: its
// scenario, the choreography state at any scroll offset and rendered
// frames.
package server

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ivlev/scrollreel/internal/director"
	"github.com/ivlev/scrollreel/internal/engine"
	"github.com/ivlev/scrollreel/internal/renderer"
	"github.com/ivlev/scrollreel/internal/stage"
)

const qrSize = 256

// Server owns the shared driver. The engine is single-threaded, so every
// request that touches it holds mu.
type Server struct {
	mu     sync.Mutex
	page   *director.Page
	driver *engine.Driver
	start  time.Time

	render     *renderer.Renderer
	contactURL string
	router     *gin.Engine
}

func New(page *director.Page, d *engine.Driver, r *renderer.Renderer, contactURL string) *Server {
	s := &Server{
		page:       page,
		driver:     d,
		start:      time.Now(),
		render:     r,
		contactURL: contactURL,
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/api/scenario", s.scenario)
	router.GET("/api/state", s.state)
	router.POST("/api/resize", s.resize)
	router.GET("/frame.png", s.frame)
	router.GET("/qr.png", s.qr)
	s.router = router
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Run blocks serving on addr.
func (s *Server) Run(addr string) error { return s.router.Run(addr) }

// SectionState is one section's place in the document at the current
// offset. Progress runs 0..1 while the section, spacer included, scrolls
// past the top of the viewport.
type SectionState struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	Top      float64 `json:"top"`
	Height   float64 `json:"height"`
	Spacer   float64 `json:"spacer"`
	Progress float64 `json:"progress"`
}

type State struct {
	Scroll    float64        `json:"scroll"`
	MaxScroll float64        `json:"max_scroll"`
	Viewport  stage.Viewport `json:"viewport"`
	Sections  []SectionState `json:"sections"`
	Visuals   []stage.Visual `json:"visuals"`
	Layers    int            `json:"layers"`
	Listeners map[string]int `json:"listeners"`
	Phases    map[string]int `json:"phases"`
}

func (s *Server) scenario(c *gin.Context) {
	c.JSON(http.StatusOK, s.page.Scenario)
}

// scrollParam reads ?scroll=, falling back to the current offset.
func (s *Server) scrollParam(c *gin.Context) (float64, bool) {
	raw := c.Query("scroll")
	if raw == "" {
		return s.driver.Scroll(), true
	}
	y, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(y) || math.IsInf(y, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scroll must be a finite number"})
		return 0, false
	}
	return y, true
}

func (s *Server) state(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	y, ok := s.scrollParam(c)
	if !ok {
		return
	}
	s.driver.Tick(time.Since(s.start), y)
	c.JSON(http.StatusOK, s.snapshot())
}

func (s *Server) snapshot() State {
	st := s.driver.Stage()
	f := s.driver.Capture()
	out := State{
		Scroll:    f.Scroll,
		MaxScroll: st.MaxScroll(),
		Viewport:  f.Viewport,
		Visuals:   f.Visuals,
		Layers:    len(f.Layers),
		Listeners: make(map[string]int),
		Phases:    make(map[string]int),
	}
	for _, k := range []engine.Kind{engine.KindScroll, engine.KindFrame, engine.KindResize, engine.KindLayer} {
		out.Listeners[k.String()] = s.driver.Registry().Len(k)
	}
	for _, p := range engine.Phases() {
		out.Phases[p.String()] = s.driver.Registry().InPhase(p)
	}
	for _, sec := range s.page.Scenario.Sections {
		h := stage.Handle(sec.ID)
		box, ok := st.Layout(h)
		if !ok {
			continue
		}
		ss := SectionState{ID: sec.ID, Kind: sec.Kind, Top: box.Y, Height: box.H, Spacer: st.Spacer(h)}
		if span := box.H + ss.Spacer; span > 0 {
			ss.Progress = min(1, max(0, (f.Scroll-box.Y)/span))
		}
		out.Sections = append(out.Sections, ss)
	}
	return out
}

type resizeRequest struct {
	Width  float64 `json:"width" binding:"required,gt=0"`
	Height float64 `json:"height" binding:"required,gt=0"`
}

func (s *Server) resize(c *gin.Context) {
	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.driver.Resize(stage.Viewport{Width: req.Width, Height: req.Height})
	c.JSON(http.StatusOK, s.snapshot())
}

func (s *Server) frame(c *gin.Context) {
	s.mu.Lock()
	y, ok := s.scrollParam(c)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.driver.Tick(time.Since(s.start), y)
	f := s.driver.Capture()
	s.mu.Unlock()

	dst := image.NewRGBA(image.Rect(0, 0, int(f.Viewport.Width), int(f.Viewport.Height)))
	if err := s.render.Rasterize(dst, f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) qr(c *gin.Context) {
	if s.contactURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no contact url configured"})
		return
	}
	size := qrSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > 2048 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be between 64 and 2048"})
			return
		}
		size = n
	}
	data, err := renderer.QRPNG(s.contactURL, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}
