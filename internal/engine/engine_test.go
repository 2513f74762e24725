package engine

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/ir"
	"github.com/roach88/sif/internal/store"
	tu "github.com/roach88/sif/internal/testutil"
	"github.com/roach88/sif/internal/translator"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))}, opts...)
	e, err := New(context.Background(), opts...)
	require.NoError(t, err)
	return e
}

// branchProgram has a pure helper and a method that branches on a call.
func branchProgram() *ast.Program {
	double := tu.PureFunc("double", tu.Params("x", "int"), ast.TypeInt,
		tu.Return(tu.Bin("*", tu.Name("x"), tu.Int(2))))
	f := tu.Func("f", tu.Params("x", "int"), ast.TypeInt,
		tu.If(tu.Cmp(">", tu.Name("x"), tu.Int(0)),
			tu.Stmts(tu.Return(tu.Call("double", tu.Name("x")))),
			tu.Stmts(tu.Return(tu.Int(0)))))
	f.Requires = []ast.Expr{tu.Call("Low", tu.Name("x"))}
	return tu.Program(double, f)
}

func brokenProgram() *ast.Program {
	ok := tu.Func("ok", nil, ast.TypeInt, tu.Return(tu.Int(1)))
	bad := tu.Func("bad", nil, ast.TypeNone, tu.Assert(tu.Name("q")))
	last := tu.Func("last", nil, ast.TypeInt, tu.Return(tu.Int(2)))
	return tu.Program(ok, bad, last)
}

func TestNew_Defaults(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, translator.ModeSIF, e.Mode())
	assert.Equal(t, int64(0), e.Clock().Current())
}

func TestNew_UnknownMode(t *testing.T) {
	_, err := New(context.Background(), WithMode("quantum"))
	assert.ErrorContains(t, err, "unknown translation mode")
}

func TestTranslate_Members(t *testing.T) {
	e := newTestEngine(t, WithRunTokens(NewFixedGenerator("run-1")))

	res, err := e.Translate(context.Background(), branchProgram(), "branch.cue")
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.False(t, res.Recorded, "no store, nothing recorded")
	require.Len(t, res.Members, 2)
	assert.Equal(t, store.KindFunction, res.Members[0].Kind)
	assert.Equal(t, store.KindMethod, res.Members[1].Kind)
	assert.Contains(t, res.Members[1].Text, "method f(x: Int, x_p: Int, _tl: Bool)")
	assert.Contains(t, res.Members[1].Text, "requires !_tl ==> x == x_p")

	require.Len(t, res.Program.Methods, 1)
	require.Len(t, res.Program.Functions, 1)
	h, err := ir.ProgramHash(res.Program)
	require.NoError(t, err)
	assert.Equal(t, h, res.ProgramHash)
}

func TestTranslate_IsDeterministic(t *testing.T) {
	e := newTestEngine(t, WithRunTokens(NewFixedGenerator("run-1", "run-2")))
	ctx := context.Background()

	first, err := e.Translate(ctx, branchProgram(), "")
	require.NoError(t, err)
	second, err := e.Translate(ctx, branchProgram(), "")
	require.NoError(t, err)

	assert.Equal(t, first.ProgramHash, second.ProgramHash)
	assert.Equal(t, first.Members[1].Text, second.Members[1].Text)
}

func TestTranslate_BaseMode(t *testing.T) {
	prog := tu.Program(tu.Func("f", tu.Params("x", "int"), ast.TypeInt, tu.Return(tu.Name("x"))))
	e := newTestEngine(t, WithMode(translator.ModeBase))

	res, err := e.Translate(context.Background(), prog, "")
	require.NoError(t, err)
	assert.Contains(t, res.Members[0].Text, "method f(x: Int) returns (_res: Int)")
	assert.NotContains(t, res.Members[0].Text, "x_p")
}

func TestTranslate_StopsAtFirstFailure(t *testing.T) {
	e := newTestEngine(t, WithRunTokens(NewFixedGenerator("run-1")))

	res, err := e.Translate(context.Background(), brokenProgram(), "")
	require.Error(t, err)
	assert.True(t, IsTranslationError(err))

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "bad", re.Member)
	assert.Equal(t, "run-1", re.RunID)

	require.NotNil(t, res)
	require.Len(t, res.Members, 2, "translation stops at bad")
	assert.Empty(t, res.ProgramHash)
	assert.Len(t, res.Failed(), 1)
}

func TestTranslate_KeepGoing(t *testing.T) {
	e := newTestEngine(t, WithKeepGoing(true))

	res, err := e.Translate(context.Background(), brokenProgram(), "")
	require.Error(t, err)
	require.Len(t, res.Members, 3)
	assert.NoError(t, res.Members[2].Err)
	assert.Equal(t, []string{"bad"}, names(res.Failed()))
}

func TestTranslate_CancelledContext(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Translate(ctx, branchProgram(), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTranslate_RecordsRun(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, WithStore(s), WithRunTokens(NewFixedGenerator("run-1")))
	ctx := context.Background()

	res, err := e.Translate(ctx, branchProgram(), "branch.cue")
	require.NoError(t, err)
	assert.True(t, res.Recorded)

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusOK, run.Status)
	assert.Equal(t, "sif", run.Mode)
	assert.Equal(t, "branch.cue", run.Source)
	assert.Equal(t, res.ProgramHash, run.ProgramHash)
	assert.Equal(t, int64(1), run.Seq)

	members, err := s.ReadMembers(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "double", members[0].Name)
	assert.Equal(t, res.Members[1].Hash, members[1].Hash)
	assert.Equal(t, res.Members[1].Text, members[1].Text)
	assert.Equal(t, []int64{2, 3}, []int64{members[0].Seq, members[1].Seq})
}

func TestTranslate_RecordsFailedRun(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, WithStore(s), WithRunTokens(NewFixedGenerator("run-1")))
	ctx := context.Background()

	_, err := e.Translate(ctx, brokenProgram(), "")
	require.Error(t, err)

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, run.Status)
	assert.Contains(t, run.Error, "TRANSLATION_FAILED")

	members, err := s.ReadMembers(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, memberNames(members))
}

func TestNew_ResumesClockFromStore(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := newTestEngine(t, WithStore(s), WithRunTokens(NewFixedGenerator("run-1")))
	_, err := first.Translate(ctx, branchProgram(), "")
	require.NoError(t, err)

	second := newTestEngine(t, WithStore(s), WithRunTokens(NewFixedGenerator("run-2")))
	assert.Equal(t, int64(3), second.Clock().Current())
	_, err = second.Translate(ctx, branchProgram(), "")
	require.NoError(t, err)

	run, err := s.ReadRun(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, int64(4), run.Seq)
}

func TestTranslate_DuplicateRunIDIsNotRecordedTwice(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, WithStore(s), WithRunTokens(tu.NewFixedRunGenerator("same")))
	ctx := context.Background()

	_, err := e.Translate(ctx, branchProgram(), "")
	require.NoError(t, err)
	res, err := e.Translate(ctx, branchProgram(), "")
	require.NoError(t, err)
	assert.False(t, res.Recorded)
}

func names(ms []MemberResult) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

func memberNames(ms []store.Member) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}
