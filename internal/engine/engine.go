package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/ir"
	"github.com/roach88/sif/internal/store"
	"github.com/roach88/sif/internal/translator"
)

// Engine translates programs and records each translation as a run.
//
// Translation is serialized: fresh names come from a process-wide counter
// that is reset at the start of every run, so a program always translates
// to the same text.
type Engine struct {
	mu sync.Mutex

	store     *store.Store
	mode      translator.Mode
	tokens    RunTokenGenerator
	clock     *Clock
	logger    *slog.Logger
	keepGoing bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore records every run in s.
func WithStore(s *store.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithMode selects the translator. Defaults to translator.ModeSIF.
func WithMode(m translator.Mode) Option {
	return func(e *Engine) { e.mode = m }
}

// WithRunTokens sets the run ID generator. Defaults to UUIDv7Generator.
func WithRunTokens(g RunTokenGenerator) Option {
	return func(e *Engine) { e.tokens = g }
}

// WithClock sets the logical clock. Without it the engine resumes from the
// store's highest seq, or starts at 0 when there is no store.
func WithClock(c *Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithKeepGoing continues past a failed member instead of stopping at the
// first one. Every failure is still reported.
func WithKeepGoing(keep bool) Option {
	return func(e *Engine) { e.keepGoing = keep }
}

// New creates an engine.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	e := &Engine{
		mode:   translator.ModeSIF,
		tokens: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if _, err := translator.New(e.mode, ir.NewNodeBuilder(), nil); err != nil {
		return nil, err
	}
	if e.clock == nil {
		start := int64(0)
		if e.store != nil {
			seq, err := e.store.MaxSeq(ctx)
			if err != nil {
				return nil, fmt.Errorf("resume clock: %w", err)
			}
			start = seq
		}
		e.clock = NewClockAt(start)
	}
	return e, nil
}

// Mode returns the translation mode.
func (e *Engine) Mode() translator.Mode { return e.mode }

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock { return e.clock }

// MemberResult is the outcome of translating one source function.
type MemberResult struct {
	Name string
	Kind string
	Hash string
	Text string

	// Exactly one of Method and Function is set on success.
	Method   *ir.Method
	Function *ir.Function

	Err error
}

// Result is the outcome of one Translate call.
type Result struct {
	RunID       string
	Mode        translator.Mode
	Source      string
	ProgramHash string
	Program     *ir.Program
	Members     []MemberResult

	// Recorded is false when there is no store or the run ID already
	// existed.
	Recorded bool
}

// Failed returns the members that did not translate.
func (r *Result) Failed() []MemberResult {
	var out []MemberResult
	for _, m := range r.Members {
		if m.Err != nil {
			out = append(out, m)
		}
	}
	return out
}

// Translate translates every function of prog in declaration order and
// records the run. source names the program in the log.
//
// A failed member yields a RuntimeError with ErrCodeTranslationFailed. The
// Result is returned alongside it, holding whatever did translate; the run
// is recorded with status failed.
func (e *Engine) Translate(ctx context.Context, prog *ast.Program, source string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := &Result{
		RunID:  e.tokens.Generate(),
		Mode:   e.mode,
		Source: source,
	}
	runSeq := e.clock.Next()
	log := e.logger.With("run_id", res.RunID, "mode", string(e.mode))
	log.Debug("translating program", "source", source, "functions", len(prog.Functions))

	firstErr := e.translate(ctx, prog, res, log)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if firstErr == nil {
		h, err := ir.ProgramHash(res.Program)
		if err != nil {
			return res, fmt.Errorf("program hash: %w", err)
		}
		res.ProgramHash = h
	}

	if e.store != nil {
		if err := e.record(ctx, res, runSeq, firstErr); err != nil {
			return res, err
		}
	}

	if firstErr != nil {
		log.Warn("translation failed", "failed", len(res.Failed()), "error", firstErr)
		return res, firstErr
	}
	log.Info("translation complete", "members", len(res.Members), "program_hash", res.ProgramHash)
	return res, nil
}

// translate fills res and returns the first member failure.
func (e *Engine) translate(ctx context.Context, prog *ast.Program, res *Result, log *slog.Logger) error {
	translator.Names.Reset()
	t, err := translator.New(res.Mode, ir.NewNodeBuilder(), translator.NewProgramResolver(prog))
	if err != nil {
		return err
	}

	res.Program = &ir.Program{}
	var firstErr error
	for _, fn := range prog.Functions {
		if ctx.Err() != nil {
			return firstErr
		}
		mr := translateMember(t, fn)
		if mr.Err != nil {
			mr.Err = translationError(res.RunID, fn.Name, mr.Err)
			log.Debug("member failed", "member", fn.Name, "error", mr.Err)
			res.Members = append(res.Members, mr)
			if firstErr == nil {
				firstErr = mr.Err
			}
			if !e.keepGoing {
				return firstErr
			}
			continue
		}
		if mr.Method != nil {
			res.Program.Methods = append(res.Program.Methods, mr.Method)
		} else {
			res.Program.Functions = append(res.Program.Functions, mr.Function)
		}
		log.Debug("member translated", "member", fn.Name, "kind", mr.Kind, "hash", mr.Hash)
		res.Members = append(res.Members, mr)
	}
	return firstErr
}

func translateMember(t translator.Translator, fn *ast.Function) MemberResult {
	mr := MemberResult{Name: fn.Name}
	if fn.Pure {
		mr.Kind = store.KindFunction
		f, err := t.TranslatePure(fn)
		if err != nil {
			mr.Err = err
			return mr
		}
		mr.Function = f
		mr.Hash, mr.Err = ir.FunctionHash(f)
		mr.Text = ir.Print(&ir.Program{Functions: []*ir.Function{f}})
		return mr
	}
	mr.Kind = store.KindMethod
	m, err := t.TranslateMethod(fn)
	if err != nil {
		mr.Err = err
		return mr
	}
	mr.Method = m
	mr.Hash, mr.Err = ir.MethodHash(m)
	mr.Text = ir.PrintMethod(m)
	return mr
}

// record writes the run and its translated members. Failed members are
// named in the run's error but not stored.
func (e *Engine) record(ctx context.Context, res *Result, runSeq int64, runErr error) error {
	run := store.Run{
		ID:            res.RunID,
		ProgramHash:   res.ProgramHash,
		Mode:          string(res.Mode),
		Source:        res.Source,
		Status:        store.StatusOK,
		IRVersion:     ir.IRVersion,
		EngineVersion: ir.TranslatorVersion,
		Seq:           runSeq,
	}
	if runErr != nil {
		run.Status = store.StatusFailed
		run.Error = runErr.Error()
	}

	var members []store.Member
	for _, mr := range res.Members {
		if mr.Err != nil {
			continue
		}
		var (
			m   store.Member
			err error
		)
		if mr.Method != nil {
			m, err = store.MethodMember(res.RunID, mr.Method, e.clock.Next())
		} else {
			m, err = store.FunctionMember(res.RunID, mr.Function, e.clock.Next())
		}
		if err != nil {
			return fmt.Errorf("record run %s: %w", res.RunID, err)
		}
		members = append(members, m)
	}

	inserted, err := e.store.WriteRun(ctx, run, members)
	if err != nil {
		return fmt.Errorf("record run %s: %w", res.RunID, err)
	}
	res.Recorded = inserted
	if !inserted {
		e.logger.Warn("run already recorded", "run_id", res.RunID)
	}
	return nil
}
