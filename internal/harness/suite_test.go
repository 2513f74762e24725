package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarios(t *testing.T) {
	paths, err := FindScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	assert.Len(t, paths, 6)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "contract.yaml"), paths[0])

	single := filepath.Join("testdata", "scenarios", "invalid.yaml")
	paths, err = FindScenarios(single)
	require.NoError(t, err)
	assert.Equal(t, []string{single}, paths)

	_, err = FindScenarios(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRunSuite_AllPass(t *testing.T) {
	var seen []string
	res, err := RunSuite(context.Background(), filepath.Join("testdata", "scenarios"),
		func(o ScenarioOutcome) { seen = append(seen, o.Scenario) })
	require.NoError(t, err)

	assert.Equal(t, 6, res.Total)
	assert.Equal(t, 6, res.Passed)
	assert.Zero(t, res.Failed)
	assert.Empty(t, res.Failures)
	assert.Len(t, seen, 6)
	assert.Contains(t, seen, "impure_call")
}

func TestRunSuite_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_fails.yaml"), []byte(`
name: fails
description: "expects a member that does not exist"
program: prog.cue
assertions:
  - type: translates
    member: nope
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_broken.yml"), []byte("name: [\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c_passes.yaml"), []byte(`
name: passes
description: "f translates"
program: prog.cue
assertions:
  - type: translates
    member: f
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	res, err := RunSuite(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Passed)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, "fails", res.Failures[0].Scenario)
	assert.Contains(t, res.Failures[0].Errors[0], "member not in program")
	assert.Contains(t, res.Failures[1].Errors[0], "failed to load scenario")
	assert.Empty(t, res.Failures[1].Scenario)
	assert.False(t, res.Failures[0].Pass)
}

func TestRunPaths_SingleFile(t *testing.T) {
	path := filepath.Join("testdata", "scenarios", "impure_call.yaml")
	res, err := RunPaths(context.Background(), []string{path}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.Passed)
}

func TestRunSuite_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := RunSuite(ctx, filepath.Join("testdata", "scenarios"), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Total)
}
