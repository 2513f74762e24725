package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sif/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testMethod(name string, lit int64) *ir.Method {
	b := ir.NewNodeBuilder()
	res := b.LocalVar("_res", ir.Int, ir.NoPosition, ir.NoInfo)
	return &ir.Method{
		Name:    name,
		Returns: []*ir.LocalVar{res},
		Body: b.Seqn([]ir.Stmt{
			b.LocalVarAssign(res, b.IntLit(lit, ir.NoPosition, ir.NoInfo), ir.NoPosition, ir.NoInfo),
		}, ir.NoPosition, ir.NoInfo),
	}
}

func testRun(id string, seq int64) Run {
	return Run{
		ID:            id,
		ProgramHash:   "prog-hash",
		Mode:          "sif",
		Source:        "programs/branch.cue",
		Status:        StatusOK,
		IRVersion:     ir.IRVersion,
		EngineVersion: ir.TranslatorVersion,
		Seq:           seq,
	}
}

func TestOpenAppliesPragmas(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("user_version", strconv.Itoa(schemaVersion())))
}

func TestOpenInMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	_, err = s.WriteRun(context.Background(), testRun("run-1", 1), nil)
	require.NoError(t, err)
	runs, err := s.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	assert.NoError(t, s2.verifyPragma("user_version", strconv.Itoa(schemaVersion())))
}

func TestWriteAndReadRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	m1, err := MethodMember("run-1", testMethod("f", 1), 2)
	require.NoError(t, err)
	m2, err := MethodMember("run-1", testMethod("g", 2), 3)
	require.NoError(t, err)

	inserted, err := s.WriteRun(ctx, testRun("run-1", 1), []Member{m2, m1})
	require.NoError(t, err)
	assert.True(t, inserted)

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, testRun("run-1", 1), run)

	members, err := s.ReadMembers(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "f", members[0].Name, "members come back in seq order")
	assert.Equal(t, m1, members[0])
	assert.Contains(t, members[1].Text, "method g()")
}

func TestWriteRunIsIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	m, err := MethodMember("run-1", testMethod("f", 1), 2)
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, testRun("run-1", 1), []Member{m})
	require.NoError(t, err)

	inserted, err := s.WriteRun(ctx, testRun("run-1", 1), []Member{m})
	require.NoError(t, err)
	assert.False(t, inserted)

	members, err := s.ReadMembers(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestWriteRunRejectsForeignMember(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	m, err := MethodMember("other", testMethod("f", 1), 2)
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, testRun("run-1", 1), []Member{m})
	require.Error(t, err)

	_, err = s.ReadRun(ctx, "run-1")
	assert.ErrorIs(t, err, sql.ErrNoRows, "failed write rolls back the run")
}

func TestWriteRunRejectsDuplicateSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, testRun("run-1", 1), nil)
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, testRun("run-2", 1), nil)
	assert.Error(t, err)
}

func TestReadRunNotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "missing")
	assert.Equal(t, sql.ErrNoRows, err)
}

func TestListRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	for i, id := range []string{"run-c", "run-a", "run-b"} {
		_, err := s.WriteRun(ctx, testRun(id, int64(i+1)), nil)
		require.NoError(t, err)
	}

	runs, err = s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-c", "run-a", "run-b"}, runIDs(runs))

	runs, err = s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-a", "run-b"}, runIDs(runs))
}

func TestRunsForProgram(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r1 := testRun("run-1", 1)
	r2 := testRun("run-2", 2)
	r2.ProgramHash = "other"
	r3 := testRun("run-3", 3)
	for _, r := range []Run{r1, r2, r3} {
		_, err := s.WriteRun(ctx, r, nil)
		require.NoError(t, err)
	}

	runs, err := s.RunsForProgram(ctx, "prog-hash")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1", "run-3"}, runIDs(runs))
}

func TestRunsWithMember(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"run-1", "run-2"} {
		m, err := MethodMember(id, testMethod("f", int64(i+1)), int64(10*i+2))
		require.NoError(t, err)
		shared, err := MethodMember(id, testMethod("g", 9), int64(10*i+3))
		require.NoError(t, err)
		_, err = s.WriteRun(ctx, testRun(id, int64(10*i+1)), []Member{m, shared})
		require.NoError(t, err)
	}

	runs, err := s.RunsWithMember(ctx, ir.MustMethodHash(testMethod("g", 9)))
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1", "run-2"}, runIDs(runs))

	runs, err = s.RunsWithMember(ctx, ir.MustMethodHash(testMethod("f", 1)))
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1"}, runIDs(runs))

	runs, err = s.RunsWithMember(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestMaxSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	m, err := MethodMember("run-1", testMethod("f", 1), 7)
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, testRun("run-1", 6), []Member{m})
	require.NoError(t, err)

	seq, err = s.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}

func TestVerifyRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	b := ir.NewNodeBuilder()
	x := b.LocalVar("x", ir.Int, ir.NoPosition, ir.NoInfo)
	fn := &ir.Function{Name: "id", Args: []*ir.LocalVar{x}, Result: ir.Int, Body: x}

	m1, err := MethodMember("run-1", testMethod("f", 1), 2)
	require.NoError(t, err)
	m2, err := FunctionMember("run-1", fn, 3)
	require.NoError(t, err)
	assert.Equal(t, "function id(x: Int): Int\n{\n  x\n}\n", m2.Text)

	_, err = s.WriteRun(ctx, testRun("run-1", 1), []Member{m1, m2})
	require.NoError(t, err)

	mismatches, err := s.VerifyRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	_, err = s.DB().ExecContext(ctx, `UPDATE members SET ir_json = ? WHERE name = 'f'`,
		`{"kind":"method","name":"tampered"}`)
	require.NoError(t, err)

	mismatches, err = s.VerifyRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "f", mismatches[0].Name)
	assert.Equal(t, m1.Hash, mismatches[0].Stored)
	assert.NotEqual(t, m1.Hash, mismatches[0].Computed)
}

func TestVerifyRunNotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.VerifyRun(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMemberHashesMatchIR(t *testing.T) {
	m := testMethod("f", 1)
	member, err := MethodMember("r", m, 1)
	require.NoError(t, err)
	assert.Equal(t, ir.MustMethodHash(m), member.Hash)
	assert.Equal(t, KindMethod, member.Kind)
	assert.Equal(t, ir.PrintMethod(m), member.Text)
}

func runIDs(runs []Run) []string {
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}
