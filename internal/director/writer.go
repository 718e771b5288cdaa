package director

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownSection = errors.New("unknown section kind")
	ErrNoSections     = errors.New("scenario has no sections")
)

// WriteScenario writes a scenario to a YAML file
func WriteScenario(scenario *Scenario, path string) error {
	data, err := yaml.Marshal(scenario)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScenario reads a scenario from a YAML file and fills defaults.
func ReadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	scenario.applyDefaults()
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) applyDefaults() {
	if s.Version == "" {
		s.Version = "1.0"
	}
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		s.Viewport = Viewport{Width: 1280, Height: 800}
	}
	if s.Pointer == "" {
		s.Pointer = "fine"
	}
}

// Validate checks section kinds and ids before anything is built.
func (s *Scenario) Validate() error {
	if len(s.Sections) == 0 {
		return ErrNoSections
	}
	seen := make(map[string]bool, len(s.Sections))
	for i, sec := range s.Sections {
		if _, ok := builders[sec.Kind]; !ok {
			return fmt.Errorf("%w: %q (section %d)", ErrUnknownSection, sec.Kind, i+1)
		}
		if sec.ID == "" {
			return fmt.Errorf("section %d (%s) has no id", i+1, sec.Kind)
		}
		if seen[sec.ID] {
			return fmt.Errorf("duplicate section id %q", sec.ID)
		}
		seen[sec.ID] = true
	}
	return nil
}
