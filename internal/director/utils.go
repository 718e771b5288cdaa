package director

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/scrollreel/internal/system"
)

// ScenarioDir is where generated scenarios are written by default.
const ScenarioDir = "scenarios"

// GenerateScenarioPath creates a timestamped scenario filename in dir.
func GenerateScenarioPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("scenario_%s.yaml", timestamp))
}

// FindLatestScenario finds the most recently modified scenario in dir.
func FindLatestScenario(dir string) (string, error) {
	path, err := system.FindLatest(dir, system.YAMLExtensions...)
	if err != nil {
		return "", fmt.Errorf("no scenario files found: %w", err)
	}
	return path, nil
}
