package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/sif/internal/compiler"
	"github.com/roach88/sif/internal/engine"
	"github.com/roach88/sif/internal/store"
	"github.com/roach88/sif/internal/testutil"
	"github.com/roach88/sif/internal/translator"
)

// Run executes a scenario in a fresh in-memory store and returns the
// result. An error means the scenario could not run; failed assertions are
// reported in the result.
//
// Execution flow:
//  1. Load and validate the program
//  2. Translate it with a fixed run token, past failing members
//  3. Replay the recorded run, which must match
//  4. Evaluate the assertions
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	prog, err := compiler.LoadFile(scenario.Program)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	mode := translator.Mode(scenario.Mode)
	if mode == "" {
		mode = translator.ModeSIF
	}
	eng, err := engine.New(ctx,
		engine.WithStore(st),
		engine.WithMode(mode),
		engine.WithRunTokens(testutil.NewFixedRunGenerator(scenario.RunToken)),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithKeepGoing(true),
	)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.Validation = compiler.ValidateProgram(prog)

	tres, err := eng.Translate(ctx, prog, scenario.Program)
	if err != nil && !engine.IsTranslationError(err) {
		return nil, fmt.Errorf("failed to translate: %w", err)
	}
	result.RunID = tres.RunID
	for _, m := range tres.Members {
		result.Members = append(result.Members, outcome(m))
	}

	if _, err := eng.Replay(ctx, tres.RunID, prog); err != nil {
		if !engine.IsReplayMismatch(err) {
			return nil, fmt.Errorf("failed to replay: %w", err)
		}
		result.AddError(fmt.Sprintf("replay: %v", err))
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func outcome(m engine.MemberResult) MemberOutcome {
	out := MemberOutcome{
		Name: m.Name,
		Kind: m.Kind,
		Hash: m.Hash,
		Text: m.Text,
	}
	if m.Err == nil {
		return out
	}
	out.Error = m.Err.Error()
	switch {
	case translator.IsInvalidProgram(m.Err):
		out.ErrorKind = "invalid"
		out.Tag = translator.InvalidTag(m.Err)
	case translator.IsUnsupported(m.Err):
		out.ErrorKind = "unsupported"
	default:
		out.ErrorKind = "error"
	}
	return out
}
