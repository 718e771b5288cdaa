package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ScenarioPath     string
	ScenarioOutput   string
	GenerateScenario bool
	OutputVideo      string
	SlidesPath       string

	Width   int
	Height  int
	FPS     int
	Workers int
	DPI     int
	Preset  string

	VideoEncoder string
	Quality      int
	ShowStats    bool
	BuildVersion string

	// Lerp is the smooth-scroll factor per frame; 1 disables smoothing.
	Lerp        float64
	Dwell       float64
	ScrollSpeed float64

	ReducedMotion bool
	CoarsePointer bool
	Seed          int64

	Serve      bool
	Addr       string
	ContactURL string
}

// Default mirrors the CLI flag defaults.
func Default() *Config {
	return &Config{
		Width:       1280,
		Height:      720,
		FPS:         30,
		Workers:     0,
		DPI:         150,
		Lerp:        0.1,
		Dwell:       1.5,
		ScrollSpeed: 900,
		Seed:        1,
		Addr:        ":8080",
		ContactURL:  "mailto:hello@example.com",
	}
}

// Preset returns the output size for a named aspect preset.
func Preset(name string) (width, height int, ok bool) {
	switch name {
	case "16:9":
		return 1280, 720, true
	case "9:16":
		return 720, 1280, true
	case "4:5":
		return 1080, 1350, true
	}
	return 0, 0, false
}

// ApplyPreset overrides Width and Height when Preset names a known format.
func (c *Config) ApplyPreset() {
	if w, h, ok := Preset(c.Preset); ok {
		c.Width, c.Height = w, h
	}
}

// LoadEnv reads an optional .env file and picks up the server address and
// contact URL. Flags set explicitly win; call it before flag defaults are
// copied in.
func (c *Config) LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env: %w", err)
	}
	if addr := os.Getenv("SCROLLREEL_ADDR"); addr != "" {
		c.Addr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	if url := os.Getenv("CONTACT_URL"); url != "" {
		c.ContactURL = url
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("size %dx%d must be even for yuv420p", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("invalid fps %d", c.FPS)
	}
	if c.Lerp <= 0 || c.Lerp > 1 {
		return fmt.Errorf("lerp %.2f out of (0,1]", c.Lerp)
	}
	if c.ScrollSpeed <= 0 {
		return fmt.Errorf("invalid scroll speed %.1f", c.ScrollSpeed)
	}
	return nil
}
