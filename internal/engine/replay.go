package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/store"
	"github.com/roach88/sif/internal/translator"
)

// MemberDiff describes a member whose replayed hash differs from the log.
// An empty Stored means the member is new; an empty Replayed means it is
// gone.
type MemberDiff struct {
	Name     string `json:"name"`
	Stored   string `json:"stored,omitempty"`
	Replayed string `json:"replayed,omitempty"`
}

// ReplayReport is the outcome of replaying a recorded run.
type ReplayReport struct {
	RunID     string               `json:"run_id"`
	Mode      string               `json:"mode"`
	Integrity []store.HashMismatch `json:"integrity"`
	Diffs     []MemberDiff         `json:"diffs"`
}

// OK reports whether the log is intact and the replay matched it.
func (r *ReplayReport) OK() bool {
	return len(r.Integrity) == 0 && len(r.Diffs) == 0
}

// Replay re-translates prog in the mode of a recorded run and compares
// every member hash against the log. The stored canonical JSON is also
// re-hashed, so a tampered log is reported even when the source is
// unchanged. Nothing is written.
//
// Returns a RuntimeError with ErrCodeReplayMismatch, alongside the report,
// when anything differs.
func (e *Engine) Replay(ctx context.Context, runID string, prog *ast.Program) (*ReplayReport, error) {
	if e.store == nil {
		return nil, &RuntimeError{Code: ErrCodeNoStore, Message: "replay needs a store", RunID: runID}
	}

	run, err := e.store.ReadRun(ctx, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &RuntimeError{Code: ErrCodeRunNotFound, Message: fmt.Sprintf("run %q not found", runID), RunID: runID}
	}
	if err != nil {
		return nil, err
	}

	report := &ReplayReport{RunID: runID, Mode: run.Mode}
	report.Integrity, err = e.store.VerifyRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	stored, err := e.store.ReadMembers(ctx, runID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	res := &Result{RunID: runID, Mode: translator.Mode(run.Mode)}
	log := e.logger.With("run_id", runID, "mode", run.Mode)
	transErr := e.translate(ctx, prog, res, log)
	e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if transErr != nil && run.Status == store.StatusOK {
		return nil, transErr
	}

	report.Diffs = diffMembers(stored, res.Members)
	if !report.OK() {
		log.Warn("replay mismatch", "integrity", len(report.Integrity), "diffs", len(report.Diffs))
		return report, &RuntimeError{
			Code:    ErrCodeReplayMismatch,
			Message: fmt.Sprintf("%d integrity failures, %d member differences", len(report.Integrity), len(report.Diffs)),
			RunID:   runID,
		}
	}
	log.Info("replay matched", "members", len(stored))
	return report, nil
}

// diffMembers compares by name, in stored order followed by new members in
// translation order.
func diffMembers(stored []store.Member, replayed []MemberResult) []MemberDiff {
	fresh := make(map[string]string, len(replayed))
	for _, m := range replayed {
		if m.Err == nil {
			fresh[m.Name] = m.Hash
		}
	}
	diffs := []MemberDiff{}
	seen := make(map[string]bool, len(stored))
	for _, m := range stored {
		seen[m.Name] = true
		if h := fresh[m.Name]; h != m.Hash {
			diffs = append(diffs, MemberDiff{Name: m.Name, Stored: m.Hash, Replayed: h})
		}
	}
	for _, m := range replayed {
		if m.Err == nil && !seen[m.Name] {
			diffs = append(diffs, MemberDiff{Name: m.Name, Replayed: m.Hash})
		}
	}
	return diffs
}
