package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenariosDir = filepath.Join("..", "harness", "testdata", "scenarios")

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentDir(t *testing.T) {
	out, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "scenarios not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandRunsSuite(t *testing.T) {
	out, err := execute(t, "test", scenariosDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ impure_call")
	assert.Contains(t, out, "6 passed, 0 failed, 6 total")
}

func TestTestCommandFilter(t *testing.T) {
	out, err := execute(t, "test", scenariosDir, "--filter", "counter_*", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Passed)
	for _, s := range resp.Data.Scenarios {
		assert.Contains(t, s.Scenario, "counter")
	}
}

func TestTestCommandInvalidFilter(t *testing.T) {
	_, err := execute(t, "test", scenariosDir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandReportsFailure(t *testing.T) {
	dir := t.TempDir()
	programPath, err := filepath.Abs(program("pure.cue"))
	require.NoError(t, err)
	scenario := `name: wrong_text
description: "expects text the translation never produces"
program: ` + programPath + `
assertions:
  - type: contains
    member: double
    text: "method double"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(scenario), 0o644))

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_text")
	assert.Contains(t, out, "Assertion failed: contains (double)")
	assert.Contains(t, out, "0 passed, 1 failed, 1 total")
}
