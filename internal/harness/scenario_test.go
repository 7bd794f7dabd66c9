package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
name: basic
description: a scenario
model: models/basic.cue
backends:
  - turing
  - pyro
diagnostics:
  - code: L301
    severity: error
    backend: pyro
refused: true
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "basic", s.Name)
	assert.Equal(t, []string{"turing", "pyro"}, s.Backends)
	assert.True(t, s.Refused)
	require.Len(t, s.Diagnostics, 1)
	assert.Equal(t, "L301", s.Diagnostics[0].Code)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "models", "basic.cue"), s.ModelPath())
}

func TestLoadScenarioValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown field",
			content: "name: x\nmodel: m.cue\nbackends: [turing]\ngolden: stale.golden\n",
		},
		{
			name:    "missing name",
			content: "model: m.cue\nbackends: [turing]\n",
		},
		{
			name:    "missing model",
			content: "name: x\nbackends: [turing]\n",
		},
		{
			name:    "no backends",
			content: "name: x\nmodel: m.cue\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoadScenariosSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yaml"} {
		content := "name: " + name + "\nmodel: m.cue\nbackends: [turing]\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "a.yaml", scenarios[0].Name)
	assert.Equal(t, "b.yaml", scenarios[1].Name)
}
