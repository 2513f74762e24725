package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{"contract", "counter_base", "counter_sif", "impure_call", "pure_function", "invalid"} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(context.Background(), loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_UsesRunToken(t *testing.T) {
	result, err := Run(context.Background(), loadTestScenario(t, "impure_call"))
	require.NoError(t, err)
	assert.Equal(t, "impure-run", result.RunID)

	result, err = Run(context.Background(), loadTestScenario(t, "contract"))
	require.NoError(t, err)
	assert.Equal(t, "test-run-default", result.RunID)
}

func TestRun_MemberOutcomes(t *testing.T) {
	result, err := Run(context.Background(), loadTestScenario(t, "invalid"))
	require.NoError(t, err)

	require.Len(t, result.Members, 4)
	g, ok := result.Member("g")
	require.True(t, ok)
	assert.Empty(t, g.Error)
	assert.NotEmpty(t, g.Hash)

	sub, ok := result.Member("subscript")
	require.True(t, ok)
	assert.Equal(t, "unsupported", sub.ErrorKind)
	assert.Empty(t, sub.Tag)
	assert.Contains(t, sub.Error, "TRANSLATION_FAILED")
}

func TestRun_FailingAssertions(t *testing.T) {
	s := loadTestScenario(t, "impure_call")
	s.Assertions = []Assertion{
		{Type: AssertContains, Member: "f", Text: "this is not emitted"},
		{Type: AssertError, Member: "g"},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 2)
}

func TestRun_BadProgram(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte(`program: functions: f: body: [{loop: true}]`), 0o644))

	_, err := Run(context.Background(), &Scenario{Name: "bad", Program: path})
	assert.ErrorContains(t, err, "failed to load program")
}
