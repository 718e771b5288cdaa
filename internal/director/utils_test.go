package director

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerateScenarioPath(t *testing.T) {
	path := GenerateScenarioPath(ScenarioDir)

	if filepath.Dir(path) != ScenarioDir {
		t.Errorf("Path should be in %s: %s", ScenarioDir, path)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "scenario_") || !strings.HasSuffix(base, ".yaml") {
		t.Errorf("unexpected name %s", base)
	}

	t.Logf("Generated path: %s", path)
}

func TestFindLatestScenario(t *testing.T) {
	dir := t.TempDir()

	files := []string{
		filepath.Join(dir, "scenario_2026-02-12_10-00-00.yaml"),
		filepath.Join(dir, "scenario_2026-02-13_01-00-00.yml"),
		filepath.Join(dir, "scenario_2026-02-11_15-30-00.yaml"),
	}
	for i, f := range files {
		if err := os.WriteFile(f, []byte("version: \"1.0\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(f, modTime, modTime); err != nil {
			t.Fatal(err)
		}
	}
	// Newer but not a scenario.
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	latest, err := FindLatestScenario(dir)
	if err != nil {
		t.Fatalf("FindLatestScenario failed: %v", err)
	}
	t.Logf("Latest scenario: %s", latest)

	if latest != files[len(files)-1] {
		t.Errorf("Expected latest to be %s, got %s", files[len(files)-1], latest)
	}
}

func TestFindLatestScenarioEmpty(t *testing.T) {
	if _, err := FindLatestScenario(t.TempDir()); err == nil {
		t.Error("empty directory should fail")
	}
}

func TestScenarioRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	want := DefaultScenario()
	if err := WriteScenario(want, path); err != nil {
		t.Fatal(err)
	}

	got, err := ReadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Sections) != len(want.Sections) {
		t.Fatalf("read %d sections, want %d", len(got.Sections), len(want.Sections))
	}
	for i := range want.Sections {
		if got.Sections[i].ID != want.Sections[i].ID || got.Sections[i].Kind != want.Sections[i].Kind {
			t.Errorf("section %d: got %s/%s", i, got.Sections[i].ID, got.Sections[i].Kind)
		}
	}
	var flow Section
	for _, sec := range got.Sections {
		if sec.Kind == KindModuleFlow {
			flow = sec
		}
	}
	if len(flow.Nodes) != 4 || flow.Nodes[2].Curve == nil || flow.Nodes[0].Curve != nil {
		t.Errorf("module-flow nodes not preserved: %+v", flow.Nodes)
	}
}

func TestReadScenarioDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "min.yaml")
	src := "sections:\n  - id: top\n    kind: hero\n    title: Hi\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := ReadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Version != "1.0" || sc.Viewport.Width != 1280 || sc.Viewport.Height != 800 || sc.Pointer != "fine" {
		t.Errorf("defaults not applied: %+v", sc)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("sections:\n  - id: x\n    kind: carousel\n"), 0644)
	if _, err := ReadScenario(bad); err == nil || !strings.Contains(err.Error(), "carousel") {
		t.Errorf("unknown kind should be reported, got %v", err)
	}
}
