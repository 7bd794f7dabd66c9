package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pythia-ppl/pythia/internal/cli"
)

const coinDoc = `
package models

model: coin: {
	params: ["data", "n"]
	body: [
		{
			kind: "sample"
			line: 2
			target: {kind: "var", name: "p"}
			dist: {
				kind: "call"
				name: "Beta"
				args: [{kind: "float", value: 1.0}, {kind: "float", value: 1.0}]
			}
		},
		{
			kind:  "for"
			line:  3
			var:   "i"
			start: {kind: "int", value: 0}
			stop: {kind: "var", name: "n"}
			body: [
				{
					kind: "observe"
					line: 4
					value: {
						kind: "index"
						base: {kind: "var", name: "data"}
						indices: [{kind: "var", name: "i"}]
					}
					dist: {kind: "call", name: "Bernoulli", args: [{kind: "var", name: "p"}]}
				},
			]
		},
	]
}
`

func writeModelDir(t *testing.T, docs ...string) string {
	t.Helper()
	dir := t.TempDir()
	for i, doc := range docs {
		name := filepath.Join(dir, "models.cue")
		if i > 0 {
			name = filepath.Join(dir, "extra.cue")
		}
		require.NoError(t, os.WriteFile(name, []byte(doc), 0o644))
	}
	return dir
}

func loadErrorCodes(t *testing.T, errs []error) []string {
	t.Helper()
	codes := make([]string, len(errs))
	for i, err := range errs {
		var lerr *cli.LoadError
		require.ErrorAs(t, err, &lerr)
		codes[i] = lerr.Code
	}
	return codes
}

func TestLoadModels(t *testing.T) {
	dir := writeModelDir(t, coinDoc)

	result, errs := cli.LoadModels(dir, cli.LoadModeCollectAll)
	require.Empty(t, errs)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.FileCount)
	assert.NotEmpty(t, result.Source)
	require.Len(t, result.Programs, 1)
	assert.Equal(t, "coin", result.Programs[0].Name)
	assert.Len(t, result.Programs[0].Body, 2)
}

func TestLoadModelsMissingDir(t *testing.T) {
	result, errs := cli.LoadModels(filepath.Join(t.TempDir(), "absent"), cli.LoadModeCollectAll)
	assert.Nil(t, result)
	assert.Equal(t, []string{cli.ErrCodeNotFound}, loadErrorCodes(t, errs))
}

func TestLoadModelsNotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.cue")
	require.NoError(t, os.WriteFile(path, []byte(coinDoc), 0o644))

	result, errs := cli.LoadModels(path, cli.LoadModeCollectAll)
	assert.Nil(t, result)
	assert.Equal(t, []string{cli.ErrCodeNotFound}, loadErrorCodes(t, errs))
}

func TestLoadModelsEmptyDir(t *testing.T) {
	result, errs := cli.LoadModels(t.TempDir(), cli.LoadModeCollectAll)
	assert.Nil(t, result)
	assert.Equal(t, []string{cli.ErrCodeNoFiles}, loadErrorCodes(t, errs))
}

func TestLoadModelsNoModels(t *testing.T) {
	dir := writeModelDir(t, "package models\n\nconfig: {threads: 4}")

	result, errs := cli.LoadModels(dir, cli.LoadModeCollectAll)
	require.NotNil(t, result)
	assert.Empty(t, result.Programs)
	assert.Equal(t, []string{cli.ErrCodeGeneric}, loadErrorCodes(t, errs))
}

func TestLoadModelsCollectAll(t *testing.T) {
	// One malformed model must not hide the healthy one.
	dir := writeModelDir(t, coinDoc+`
model: broken: {
	body: [{kind: "loop"}]
}
`)

	result, errs := cli.LoadModels(dir, cli.LoadModeCollectAll)
	require.NotNil(t, result)
	require.Len(t, result.Programs, 1)
	assert.Equal(t, "coin", result.Programs[0].Name)
	assert.Equal(t, []string{cli.ErrCodeCompile}, loadErrorCodes(t, errs))
}

func TestLoadModelsFailFast(t *testing.T) {
	dir := writeModelDir(t, `
package models

model: a: {body: [{kind: "loop"}]}
model: b: {body: [{kind: "loop"}]}
`)

	_, errs := cli.LoadModels(dir, cli.LoadModeFailFast)
	assert.Len(t, errs, 1)

	_, errs = cli.LoadModels(dir, cli.LoadModeCollectAll)
	assert.Len(t, errs, 2)
}

func TestFindCUEFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"), []byte("x: 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.cue"), []byte("y: 2"), 0o644))

	files, err := cli.FindCUEFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.cue", filepath.Base(files[0]))
	assert.Equal(t, "b.cue", filepath.Base(files[1]))
}

func TestLoadErrorFormat(t *testing.T) {
	err := &cli.LoadError{Code: cli.ErrCodeNoFiles, Message: "no CUE files found in models/"}
	assert.Equal(t, "E003: no CUE files found in models/", err.Error())
}
