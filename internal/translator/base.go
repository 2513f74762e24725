package translator

import (
	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/ir"
)

// EndLabel is the label at the end of every method body. Returns jump to it.
const EndLabel = "__end"

// handler is the dispatch root for nested statements. Base uses itself;
// SIF installs itself so nested statements get SIF treatment.
type handler interface {
	TranslateStmt(ctx *Context, s ast.Stmt) ([]ir.Stmt, error)
	translateReturn(ctx *Context, r *ast.Return) ([]ir.Stmt, error)
}

// Base is the plain statement and expression translator. With dual set,
// method signatures and call sites carry prime arguments and timelevels.
type Base struct {
	b        ir.Builder
	resolver PurityResolver
	dual     bool
	self     handler
}

// NewBase returns a plain (single execution) translator.
func NewBase(b ir.Builder, resolver PurityResolver) *Base {
	base := &Base{b: b, resolver: resolver}
	base.self = base
	return base
}

// Builder returns the IR builder in use.
func (b *Base) Builder() ir.Builder { return b.b }

// TranslateStmt translates one statement.
func (b *Base) TranslateStmt(ctx *Context, s ast.Stmt) ([]ir.Stmt, error) {
	return b.dispatch(ctx, s)
}

// TranslateStmts translates stmts through the dispatch root and
// concatenates the results.
func (b *Base) TranslateStmts(ctx *Context, stmts []ast.Stmt) ([]ir.Stmt, error) {
	var out []ir.Stmt
	for _, s := range stmts {
		r, err := b.self.TranslateStmt(ctx, s)
		if err != nil {
			return nil, err
		}
		out = append(out, r...)
	}
	return out, nil
}

func (b *Base) block(ctx *Context, stmts []ast.Stmt, p ir.Pos) (*ir.Seqn, error) {
	body, err := b.TranslateStmts(ctx, stmts)
	if err != nil {
		return nil, err
	}
	return b.b.Seqn(body, p, ir.NoInfo), nil
}

// dispatch is the generic per-kind translation.
func (b *Base) dispatch(ctx *Context, s ast.Stmt) ([]ir.Stmt, error) {
	switch s := s.(type) {
	case *ast.Assign:
		return b.assign(ctx, s)
	case *ast.If:
		return b.ifStmt(ctx, s)
	case *ast.While:
		return b.whileStmt(ctx, s)
	case *ast.Return:
		return b.returnStmt(ctx, s)
	case *ast.ExprStmt:
		return b.exprStmt(ctx, s)
	case *ast.Assert:
		return b.assert(ctx, s)
	case *ast.Pass:
		return nil, nil
	case *ast.Break:
		loop, ok := ctx.Fn.innermostLoop()
		if !ok {
			return nil, invalid(s, TagInvalidBreak)
		}
		return []ir.Stmt{b.b.Goto(loop.post, pos(s), ir.NoInfo)}, nil
	case *ast.Continue:
		loop, ok := ctx.Fn.innermostLoop()
		if !ok {
			return nil, invalid(s, TagInvalidBreak)
		}
		return []ir.Stmt{b.b.Goto(loop.end, pos(s), ir.NoInfo)}, nil
	default:
		return nil, unsupported(s, "statement kind")
	}
}

// assignTarget checks the target shape shared by every assignment
// translation: one plain name.
func assignTarget(a *ast.Assign) (*ast.Name, error) {
	if len(a.Targets) != 1 {
		return nil, unsupported(a, "multiple assignment targets")
	}
	switch t := a.Targets[0].(type) {
	case *ast.Name:
		return t, nil
	case *ast.Subscript:
		return nil, unsupported(a, "subscript assignment target")
	default:
		return nil, unsupported(a, "assignment target")
	}
}

// assign translates a single-target assignment in the mode of ctx.
func (b *Base) assign(ctx *Context, a *ast.Assign) ([]ir.Stmt, error) {
	name, err := assignTarget(a)
	if err != nil {
		return nil, err
	}
	v, ok := ctx.Var(name.ID)
	if !ok {
		return nil, invalid(name, TagUndefinedVariable)
	}
	stmts, rhs, err := b.TranslateExpr(ctx, a.Value, boolWant(v.Type))
	if err != nil {
		return nil, err
	}
	ctx.Fn.markDefined(name.ID)
	return append(stmts, b.b.LocalVarAssign(v.Ref(), rhs, pos(a), ir.NoInfo)), nil
}

func boolWant(t ir.Type) ir.Type {
	if t == ir.Bool {
		return ir.Bool
	}
	return ""
}

func (b *Base) ifStmt(ctx *Context, s *ast.If) ([]ir.Stmt, error) {
	stmts, cond, err := b.TranslateExpr(ctx, s.Test, ir.Bool)
	if err != nil {
		return nil, err
	}
	p := pos(s)
	then, err := b.block(ctx, s.Body, p)
	if err != nil {
		return nil, err
	}
	els, err := b.block(ctx, s.OrElse, p)
	if err != nil {
		return nil, err
	}
	return append(stmts, b.b.If(cond, then, els, p, ir.NoInfo)), nil
}

// loopInvariants consumes the registered invariants of w.
func (b *Base) loopInvariants(ctx *Context, w *ast.While) ([]ir.Expr, error) {
	entries := ctx.Fn.LoopInvariants[w]
	delete(ctx.Fn.LoopInvariants, w)

	invs := make([]ir.Expr, 0, len(entries))
	for _, inv := range entries {
		restore := ctx.WithAliases(inv.Aliases)
		ctx.SetCurrentTL(nil)
		x, err := b.translateContract(ctx, inv.Expr, true)
		restore()
		if err != nil {
			return nil, err
		}
		invs = append(invs, x)
	}
	return invs, nil
}

func (b *Base) whileStmt(ctx *Context, w *ast.While) ([]ir.Stmt, error) {
	post, end := Names.Fresh("post_loop"), Names.Fresh("loop_end")
	ctx.Fn.EnterLoop(post, end)
	defer ctx.Fn.LeaveLoop()

	cond, err := b.pureExpr(ctx, w.Test, ir.Bool)
	if err != nil {
		return nil, err
	}
	invs, err := b.loopInvariants(ctx, w)
	if err != nil {
		return nil, err
	}
	p := pos(w)
	body, err := b.TranslateStmts(ctx, w.Body[BodyStartIndex(w.Body):])
	if err != nil {
		return nil, err
	}
	body = append(body, b.b.Label(end, p, ir.NoInfo))
	loop := b.b.While(cond, invs, b.b.Seqn(body, p, ir.NoInfo), p, ir.NoInfo)
	return []ir.Stmt{loop, b.b.Label(post, p, ir.NoInfo)}, nil
}

// returnStmt assigns the result through the dispatch root's
// translateReturn and leaves the method.
func (b *Base) returnStmt(ctx *Context, r *ast.Return) ([]ir.Stmt, error) {
	stmts, err := b.self.translateReturn(ctx, r)
	if err != nil {
		return nil, err
	}
	return append(stmts, b.b.Goto(EndLabel, pos(r), ir.NoInfo)), nil
}

func (b *Base) translateReturn(ctx *Context, r *ast.Return) ([]ir.Stmt, error) {
	if r.Value == nil {
		return nil, nil
	}
	res, err := resultVar(ctx, r)
	if err != nil {
		return nil, err
	}
	if ctx.IsPrime() {
		res = res.Prime
	}
	stmts, rhs, err := b.TranslateExpr(ctx, r.Value, boolWant(res.Type))
	if err != nil {
		return nil, err
	}
	return append(stmts, b.b.LocalVarAssign(res.Ref(), rhs, pos(r), ir.NoInfo)), nil
}

func resultVar(ctx *Context, r *ast.Return) (*Var, error) {
	if ctx.Fn.Result == nil {
		return nil, unsupported(r, "return value from procedure")
	}
	return ctx.Fn.Result, nil
}

// exprStmt keeps the side effects of X and drops its value.
func (b *Base) exprStmt(ctx *Context, s *ast.ExprStmt) ([]ir.Stmt, error) {
	stmts, _, err := b.TranslateExpr(ctx, s.X, "")
	if err != nil {
		return nil, err
	}
	return stmts, nil
}

// assert checks the condition in every execution being translated.
func (b *Base) assert(ctx *Context, s *ast.Assert) ([]ir.Stmt, error) {
	p := pos(s)
	x, err := b.pureExpr(ctx, s.Test, ir.Bool)
	if err != nil {
		return nil, err
	}
	out := []ir.Stmt{b.b.Assert(x, p, ir.NoInfo)}
	if !b.dual || ctx.IsPrime() {
		return out, nil
	}
	var xp ir.Expr
	err = ctx.WithPrime(func() error {
		var err error
		xp, err = b.pureExpr(ctx, s.Test, ir.Bool)
		return err
	})
	if err != nil {
		return nil, err
	}
	if ir.PrintExpr(xp) != ir.PrintExpr(x) {
		out = append(out, b.b.Assert(xp, p, ir.NoInfo))
	}
	return out, nil
}
