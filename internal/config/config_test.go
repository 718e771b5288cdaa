package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPresets(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		wantOK bool
	}{
		{"16:9", 1280, 720, true},
		{"9:16", 720, 1280, true},
		{"4:5", 1080, 1350, true},
		{"1:1", 0, 0, false},
	}
	for _, tt := range tests {
		w, h, ok := Preset(tt.name)
		if w != tt.w || h != tt.h || ok != tt.wantOK {
			t.Errorf("Preset(%q) = %d,%d,%v", tt.name, w, h, ok)
		}
	}

	c := Default()
	c.Preset = "9:16"
	c.ApplyPreset()
	if c.Width != 720 || c.Height != 1280 {
		t.Errorf("ApplyPreset gave %dx%d", c.Width, c.Height)
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	bad := []func(*Config){
		func(c *Config) { c.Width = 0 },
		func(c *Config) { c.Width = 1281 },
		func(c *Config) { c.FPS = 0 },
		func(c *Config) { c.Lerp = 0 },
		func(c *Config) { c.ScrollSpeed = -1 },
	}
	for i, mutate := range bad {
		c := Default()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("case %d should fail", i)
		}
	}
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("PORT=9090\nCONTACT_URL=https://example.org/hi\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCROLLREEL_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("CONTACT_URL", "")
	os.Unsetenv("PORT")
	os.Unsetenv("CONTACT_URL")

	c := Default()
	if err := c.LoadEnv(path); err != nil {
		t.Fatal(err)
	}
	if c.Addr != ":9090" {
		t.Errorf("Addr = %q", c.Addr)
	}
	if c.ContactURL != "https://example.org/hi" {
		t.Errorf("ContactURL = %q", c.ContactURL)
	}
}

func TestLoadEnvMissingFile(t *testing.T) {
	c := Default()
	if err := c.LoadEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}
}
