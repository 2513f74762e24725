package store

import (
	"context"
	"fmt"

	"github.com/roach88/sif/internal/ir"
)

// HashMismatch reports a stored member whose canonical JSON no longer
// hashes to its recorded ir_hash.
type HashMismatch struct {
	Name     string `json:"name"`
	Stored   string `json:"stored"`
	Computed string `json:"computed"`
}

// VerifyRun re-hashes the stored canonical JSON of every member of a run.
// A clean run returns an empty slice. Only the log is consulted; comparing
// against a fresh translation is the engine's Replay.
func (s *Store) VerifyRun(ctx context.Context, runID string) ([]HashMismatch, error) {
	if _, err := s.ReadRun(ctx, runID); err != nil {
		return nil, err
	}
	members, err := s.ReadMembers(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("verify run: %w", err)
	}

	mismatches := []HashMismatch{}
	for _, m := range members {
		d, err := domain(m.Kind)
		if err != nil {
			return nil, fmt.Errorf("verify member %s: %w", m.Name, err)
		}
		v, err := ir.UnmarshalValue([]byte(m.JSON))
		if err != nil {
			return nil, fmt.Errorf("verify member %s: decode: %w", m.Name, err)
		}
		h, err := ir.ValueHash(d, v)
		if err != nil {
			return nil, fmt.Errorf("verify member %s: %w", m.Name, err)
		}
		if h != m.Hash {
			mismatches = append(mismatches, HashMismatch{Name: m.Name, Stored: m.Hash, Computed: h})
		}
	}
	return mismatches, nil
}
