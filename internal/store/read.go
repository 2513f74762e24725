package store

import (
	"context"
	"database/sql"
	"fmt"
)

const runColumns = `id, program_hash, mode, source, status, error, ir_version, engine_version, seq`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.ProgramHash, &r.Mode, &r.Source, &r.Status,
		&r.Error, &r.IRVersion, &r.EngineVersion, &r.Seq)
	return r, err
}

// ReadRun returns the run with the given ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return r, nil
}

// ListRuns returns runs in seq order. A positive limit keeps only the most
// recent runs, still in seq order.
//
// Returns an empty slice (not nil) if the log is empty.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY seq ASC, id COLLATE BINARY ASC`
	args := []any{}
	if limit > 0 {
		query = `SELECT * FROM (
			SELECT ` + runColumns + ` FROM runs ORDER BY seq DESC, id COLLATE BINARY DESC LIMIT ?
		) ORDER BY seq ASC, id COLLATE BINARY ASC`
		args = append(args, limit)
	}
	return s.queryRuns(ctx, query, args...)
}

// RunsForProgram returns every run of a program hash in seq order.
func (s *Store) RunsForProgram(ctx context.Context, programHash string) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE program_hash = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, programHash)
}

// RunsWithMember returns, in seq order, every run that produced a member
// with the given hash.
func (s *Store) RunsWithMember(ctx context.Context, irHash string) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE id IN (SELECT run_id FROM members WHERE ir_hash = ?)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, irHash)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadMembers returns the members of a run in translation order.
//
// Returns an empty slice (not nil) if the run has no members.
func (s *Store) ReadMembers(ctx context.Context, runID string) ([]Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, name, kind, ir_hash, ir_json, ir_text, seq
		FROM members
		WHERE run_id = ?
		ORDER BY seq ASC, name COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.RunID, &m.Name, &m.Kind, &m.Hash, &m.JSON, &m.Text, &m.Seq); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

// MaxSeq returns the highest seq in the log, or 0 if it is empty.
// The engine resumes its clock from here.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM (
			SELECT seq FROM runs
			UNION ALL
			SELECT seq FROM members
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq.Int64, nil
}
