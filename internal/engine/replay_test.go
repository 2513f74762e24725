package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sif/internal/ast"
	tu "github.com/roach88/sif/internal/testutil"
	"github.com/roach88/sif/internal/translator"
)

func TestReplay_Clean(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, WithStore(s), WithRunTokens(NewFixedGenerator("run-1")))
	ctx := context.Background()

	_, err := e.Translate(ctx, branchProgram(), "")
	require.NoError(t, err)

	report, err := e.Replay(ctx, "run-1", branchProgram())
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, "sif", report.Mode)
	assert.Empty(t, report.Diffs)
	assert.Empty(t, report.Integrity)
}

func TestReplay_UsesRecordedMode(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	prog := tu.Program(tu.Func("f", tu.Params("x", "int"), ast.TypeInt, tu.Return(tu.Name("x"))))

	base := newTestEngine(t, WithStore(s), WithMode(translator.ModeBase), WithRunTokens(NewFixedGenerator("run-1")))
	_, err := base.Translate(ctx, prog, "")
	require.NoError(t, err)

	sif := newTestEngine(t, WithStore(s))
	report, err := sif.Replay(ctx, "run-1", prog)
	require.NoError(t, err)
	assert.Equal(t, "base", report.Mode)
	assert.True(t, report.OK())
}

func TestReplay_DetectsChangedSource(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, WithStore(s), WithRunTokens(NewFixedGenerator("run-1")))
	ctx := context.Background()

	_, err := e.Translate(ctx, branchProgram(), "")
	require.NoError(t, err)

	changed := branchProgram()
	changed.Functions[1].Requires = nil
	changed.Functions = append(changed.Functions,
		tu.Func("extra", nil, ast.TypeInt, tu.Return(tu.Int(1))))

	report, err := e.Replay(ctx, "run-1", changed)
	require.Error(t, err)
	assert.True(t, IsReplayMismatch(err))
	require.Len(t, report.Diffs, 2)
	assert.Equal(t, "f", report.Diffs[0].Name)
	assert.NotEmpty(t, report.Diffs[0].Stored)
	assert.NotEqual(t, report.Diffs[0].Stored, report.Diffs[0].Replayed)
	assert.Equal(t, MemberDiff{Name: "extra", Replayed: report.Diffs[1].Replayed}, report.Diffs[1])
}

func TestReplay_DetectsTamperedLog(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, WithStore(s), WithRunTokens(NewFixedGenerator("run-1")))
	ctx := context.Background()

	_, err := e.Translate(ctx, branchProgram(), "")
	require.NoError(t, err)
	_, err = s.DB().ExecContext(ctx, `UPDATE members SET ir_json = '{"kind":"function"}' WHERE name = 'double'`)
	require.NoError(t, err)

	report, err := e.Replay(ctx, "run-1", branchProgram())
	assert.True(t, IsReplayMismatch(err))
	require.Len(t, report.Integrity, 1)
	assert.Equal(t, "double", report.Integrity[0].Name)
	assert.Empty(t, report.Diffs)
}

func TestReplay_RunNotFound(t *testing.T) {
	e := newTestEngine(t, WithStore(setupTestStore(t)))
	_, err := e.Replay(context.Background(), "missing", branchProgram())
	assert.True(t, IsRunNotFound(err))
}

func TestReplay_NeedsStore(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Replay(context.Background(), "run-1", branchProgram())

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeNoStore, re.Code)
}
