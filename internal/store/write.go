package store

import (
	"context"
	"fmt"
)

// WriteRun inserts a run and its members in one transaction.
// Returns inserted=false, and writes nothing, if the run ID already exists.
func (s *Store) WriteRun(ctx context.Context, run Run, members []Member) (inserted bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, program_hash, mode, source, status, error, ir_version, engine_version, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.ProgramHash,
		run.Mode,
		run.Source,
		run.Status,
		run.Error,
		run.IRVersion,
		run.EngineVersion,
		run.Seq,
	)
	if err != nil {
		return false, fmt.Errorf("write run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write run: rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	for _, m := range members {
		if m.RunID != run.ID {
			return false, fmt.Errorf("write run: member %s belongs to run %q", m.Name, m.RunID)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO members
			(run_id, name, kind, ir_hash, ir_json, ir_text, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			m.RunID,
			m.Name,
			m.Kind,
			m.Hash,
			m.JSON,
			m.Text,
			m.Seq,
		)
		if err != nil {
			return false, fmt.Errorf("write member %s: %w", m.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write run: commit: %w", err)
	}
	return true, nil
}
