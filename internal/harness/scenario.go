package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: a model fixture, the backends
// to translate for, and the expected lint findings.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files derive from it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Model is the path to the CUE model fixture, relative to the
	// scenario file location.
	Model string `yaml:"model"`

	// Backends lists the backends to translate for.
	Backends []string `yaml:"backends"`

	// Diagnostics lists the expected lint findings, in source order.
	Diagnostics []ExpectedDiagnostic `yaml:"diagnostics,omitempty"`

	// Refused marks scenarios whose translation must be refused
	// (error-severity findings present).
	Refused bool `yaml:"refused,omitempty"`

	// dir is the directory of the scenario file, for resolving Model.
	dir string
}

// ExpectedDiagnostic is the asserted shape of one lint finding.
type ExpectedDiagnostic struct {
	Code     string `yaml:"code"`
	Severity string `yaml:"severity"`
	Line     int    `yaml:"line,omitempty"`
	Backend  string `yaml:"backend,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so a typo in a scenario fails loudly instead of silently
// weakening an assertion.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var scenario Scenario
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if scenario.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if scenario.Model == "" {
		return nil, fmt.Errorf("scenario %s: model is required", path)
	}
	if len(scenario.Backends) == 0 {
		return nil, fmt.Errorf("scenario %s: at least one backend is required", path)
	}

	scenario.dir = filepath.Dir(path)
	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario under dir, sorted by filename
// so test order is stable.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// ModelPath returns the model fixture path resolved against the scenario
// file's directory.
func (s *Scenario) ModelPath() string {
	if filepath.IsAbs(s.Model) || s.dir == "" {
		return s.Model
	}
	return filepath.Join(s.dir, s.Model)
}
