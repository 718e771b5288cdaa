package server

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ivlev/scrollreel/internal/director"
	"github.com/ivlev/scrollreel/internal/engine"
	"github.com/ivlev/scrollreel/internal/motion"
	"github.com/ivlev/scrollreel/internal/renderer"
	"github.com/ivlev/scrollreel/internal/stage"
)

func newTestServer(t *testing.T, contact string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sc := director.DefaultScenario()
	sc.Viewport = director.Viewport{Width: 320, Height: 200}
	page, err := director.Build(sc)
	if err != nil {
		t.Fatal(err)
	}
	d := engine.NewDriver(page.Stage, page.Prefs())
	down, err := page.Mount(d)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(down)
	d.Tick(0, 0)

	r, err := renderer.New(10)
	if err != nil {
		t.Fatal(err)
	}
	return New(page, d, r, contact)
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthAndScenario(t *testing.T) {
	s := newTestServer(t, "")

	w := do(s, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Errorf("healthz: %d %s", w.Code, w.Body.String())
	}

	w = do(s, http.MethodGet, "/api/scenario", "")
	var sc director.Scenario
	if err := json.Unmarshal(w.Body.Bytes(), &sc); err != nil {
		t.Fatal(err)
	}
	if len(sc.Sections) != 9 {
		t.Errorf("scenario has %d sections", len(sc.Sections))
	}
}

func TestState(t *testing.T) {
	s := newTestServer(t, "")

	if w := do(s, http.MethodGet, "/api/state?scroll=abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad scroll: %d", w.Code)
	}

	w := do(s, http.MethodGet, "/api/state?scroll=450", "")
	if w.Code != http.StatusOK {
		t.Fatalf("state: %d %s", w.Code, w.Body.String())
	}
	var st State
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Scroll != 450 || len(st.Visuals) == 0 || len(st.Sections) != 9 {
		t.Errorf("unexpected state: scroll %v, %d visuals, %d sections", st.Scroll, len(st.Visuals), len(st.Sections))
	}
	if st.Sections[0].ID != "hero" || st.Sections[0].Progress != 1 {
		t.Errorf("hero should be scrolled past: %+v", st.Sections[0])
	}
	if st.Listeners["scroll"] == 0 || st.Layers == 0 {
		t.Errorf("listeners %v, layers %d", st.Listeners, st.Layers)
	}
	if st.Phases["progress"] == 0 || st.Phases["pin"] == 0 {
		t.Errorf("phases %v", st.Phases)
	}

	// Without a scroll parameter the current offset is kept.
	w = do(s, http.MethodGet, "/api/state", "")
	json.Unmarshal(w.Body.Bytes(), &st)
	if st.Scroll != 450 {
		t.Errorf("scroll should stay at 450, got %v", st.Scroll)
	}
}

func TestStateRejectsNonFiniteScroll(t *testing.T) {
	s := newTestServer(t, "")
	footer := stage.Handle("contact-footer")

	for _, raw := range []string{"NaN", "nan", "Inf", "-Inf", "+Infinity"} {
		if w := do(s, http.MethodGet, "/api/state?scroll="+raw, ""); w.Code != http.StatusBadRequest {
			t.Errorf("scroll=%s: %d %s", raw, w.Code, w.Body.String())
		}
		if w := do(s, http.MethodGet, "/frame.png?scroll="+raw, ""); w.Code != http.StatusBadRequest {
			t.Errorf("frame scroll=%s: %d", raw, w.Code)
		}
	}
	if s.driver.Scroll() != 0 {
		t.Errorf("rejected requests moved scroll to %v", s.driver.Scroll())
	}

	if w := do(s, http.MethodGet, "/api/state?scroll=0", ""); w.Code != http.StatusOK {
		t.Fatalf("state: %d", w.Code)
	}
	for now := time.Second; now <= 4*time.Second; now += 100 * time.Millisecond {
		s.driver.Tick(now, 0)
	}
	if o, _ := s.driver.Stage().Get(footer, motion.Opacity); o != 0 {
		t.Errorf("contact footer below the fold has opacity %v", o)
	}
}

func TestFramePNG(t *testing.T) {
	s := newTestServer(t, "")
	w := do(s, http.MethodGet, "/frame.png?scroll=100", "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("frame: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Errorf("frame is %v", b)
	}
}

func TestQRPNG(t *testing.T) {
	if w := do(newTestServer(t, ""), http.MethodGet, "/qr.png", ""); w.Code != http.StatusNotFound {
		t.Errorf("qr without contact: %d", w.Code)
	}

	s := newTestServer(t, "mailto:hello@example.com")
	w := do(s, http.MethodGet, "/qr.png?size=128", "")
	if w.Code != http.StatusOK {
		t.Fatalf("qr: %d", w.Code)
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 128 {
		t.Errorf("qr size %v", img.Bounds())
	}
	if w := do(s, http.MethodGet, "/qr.png?size=9", ""); w.Code != http.StatusBadRequest {
		t.Errorf("tiny qr: %d", w.Code)
	}
}

func TestResize(t *testing.T) {
	s := newTestServer(t, "")
	before := s.driver.Registry().Total()

	if w := do(s, http.MethodPost, "/api/resize", `{"width":0}`); w.Code != http.StatusBadRequest {
		t.Errorf("invalid resize: %d", w.Code)
	}

	w := do(s, http.MethodPost, "/api/resize", `{"width":640,"height":360}`)
	if w.Code != http.StatusOK {
		t.Fatalf("resize: %d %s", w.Code, w.Body.String())
	}
	var st State
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Viewport.Width != 640 || st.Viewport.Height != 360 {
		t.Errorf("viewport = %+v", st.Viewport)
	}
	if s.driver.Registry().Total() != before {
		t.Errorf("resize changed listener count: %d -> %d", before, s.driver.Registry().Total())
	}
}
