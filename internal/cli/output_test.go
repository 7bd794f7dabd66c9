package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pythia-ppl/pythia/internal/cli"
)

func TestExitError(t *testing.T) {
	err := cli.NewExitError(cli.ExitCommandError, "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Nil(t, err.Unwrap())

	inner := errors.New("disk full")
	wrapped := cli.WrapExitError(cli.ExitCommandError, "writing output", inner)
	assert.Equal(t, "writing output: disk full", wrapped.Error())
	assert.ErrorIs(t, wrapped, inner)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(cli.NewExitError(cli.ExitCommandError, "x")))
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(cli.NewExitError(cli.ExitFailure, "x")))

	// ExitErrors survive wrapping.
	wrapped := fmt.Errorf("running command: %w", cli.NewExitError(cli.ExitCommandError, "x"))
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(wrapped))

	// Anything else is a plain failure.
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(errors.New("boom")))
}

func TestFormatterSuccessText(t *testing.T) {
	var buf bytes.Buffer
	f := &cli.OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Success("done"))
	assert.Equal(t, "done\n", buf.String())
}

func TestFormatterSuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &cli.OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]int{"models": 3}))

	var resp cli.CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), data["models"])
}

func TestFormatterErrorText(t *testing.T) {
	var buf bytes.Buffer
	f := &cli.OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Error(cli.ErrCodeNotFound, "model directory not found", []string{"models/"}))
	assert.Equal(t, "Error [E005]: model directory not found\n", buf.String())

	// Verbose mode includes the details payload.
	buf.Reset()
	f.Verbose = true
	require.NoError(t, f.Error(cli.ErrCodeNotFound, "model directory not found", []string{"models/"}))
	assert.Contains(t, buf.String(), "Details: [models/]")
}

func TestFormatterErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &cli.OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Error(cli.ErrCodeBadBackend, `unknown backend "stan"`, nil))

	var resp cli.CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, cli.ErrCodeBadBackend, resp.Error.Code)
	assert.Equal(t, `unknown backend "stan"`, resp.Error.Message)
}

func TestVerboseLog(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &cli.OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errOut}

	f.VerboseLog("translating %s", "coin")
	assert.Empty(t, errOut.String(), "silent unless verbose")

	f.Verbose = true
	f.VerboseLog("translating %s", "coin")
	assert.Equal(t, "translating coin\n", errOut.String())
	assert.Empty(t, out.String(), "verbose output must not touch the data stream")

	// Without a dedicated error writer the message falls back to Writer.
	f.ErrWriter = nil
	f.VerboseLog("done")
	assert.Equal(t, "done\n", out.String())
}

func TestGetErrWriter(t *testing.T) {
	var out, errOut bytes.Buffer

	f := &cli.OutputFormatter{Writer: &out, ErrWriter: &errOut}
	assert.Same(t, &errOut, f.GetErrWriter())

	f.ErrWriter = nil
	assert.Same(t, &out, f.GetErrWriter())
}
