package translator

import (
	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/ir"
)

// SIF is the secure-information-flow translator. It extends Base and
// overrides assignment, if, while and return with dual-execution
// translations that track the timelevel.
type SIF struct {
	*Base
}

// NewSIF returns a SIF translator.
func NewSIF(b ir.Builder, resolver PurityResolver) *SIF {
	base := &Base{b: b, resolver: resolver, dual: true}
	s := &SIF{Base: base}
	base.self = s
	return s
}

// TranslateStmt clears the timelevel override, so every statement reads the
// freshest _new_tl, then dispatches.
func (s *SIF) TranslateStmt(ctx *Context, st ast.Stmt) ([]ir.Stmt, error) {
	ctx.SetCurrentTL(nil)
	switch st := st.(type) {
	case *ast.Assign:
		return s.assign(ctx, st)
	case *ast.If:
		return s.ifStmt(ctx, st)
	case *ast.While:
		return s.whileStmt(ctx, st)
	case *ast.Return:
		return s.returnStmt(ctx, st)
	default:
		return s.dispatch(ctx, st)
	}
}

// conditionAndTimelevel translates a branch or loop condition in both
// modes and returns the real condition plus the statement
//
//	_new_tl := tl || cond != cond_p
//
// Both translations must be pure.
func (s *SIF) conditionAndTimelevel(ctx *Context, cond ast.Expr) ([]ir.Stmt, ir.Expr, error) {
	p := pos(cond)
	stmts, c, err := s.TranslateExpr(ctx, cond, ir.Bool)
	if err != nil {
		return nil, nil, err
	}
	var stmtsP []ir.Stmt
	var cp ir.Expr
	err = ctx.WithPrime(func() error {
		var err error
		stmtsP, cp, err = s.TranslateExpr(ctx, cond, ir.Bool)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if len(stmts) > 0 || len(stmtsP) > 0 {
		return nil, nil, invalid(cond, TagPurityViolated)
	}

	cmp := s.b.NeCmp(c, cp, p, ir.NoInfo)
	update := s.b.Or(ctx.CurrentTL(), cmp, p, ir.NoInfo)
	tl := s.b.LocalVarAssign(ctx.Fn.NewTL.Ref(), update, p, ir.NoInfo)
	return []ir.Stmt{tl}, c, nil
}

// ifStmt updates the timelevel before the branch, outside both arms.
func (s *SIF) ifStmt(ctx *Context, st *ast.If) ([]ir.Stmt, error) {
	tl, cond, err := s.conditionAndTimelevel(ctx, st.Test)
	if err != nil {
		return nil, err
	}
	p := pos(st)
	then, err := s.block(ctx, st.Body, p)
	if err != nil {
		return nil, err
	}
	els, err := s.block(ctx, st.OrElse, p)
	if err != nil {
		return nil, err
	}
	return append(tl, s.b.If(cond, then, els, p, ir.NoInfo)), nil
}

// assign emits the real assignment, then the prime assignment, then a
// timelevel update when the value is a subscript read. Impure calls have
// already folded their timelevel where they were emitted.
func (s *SIF) assign(ctx *Context, a *ast.Assign) ([]ir.Stmt, error) {
	if _, err := assignTarget(a); err != nil {
		return nil, err
	}

	stmts, err := s.Base.assign(ctx, a)
	if err != nil {
		return nil, err
	}
	var primeStmts []ir.Stmt
	err = ctx.WithPrime(func() error {
		var err error
		primeStmts, err = s.Base.assign(ctx, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	stmts = append(stmts, primeStmts...)

	if !s.assignUpdatesTL(a.Value) {
		return stmts, nil
	}
	tl, err := s.timelevelFromProxy(ctx, a.Value, pos(a))
	if err != nil {
		return nil, err
	}
	return append(stmts, tl), nil
}

func (s *SIF) assignUpdatesTL(value ast.Expr) bool {
	_, ok := value.(*ast.Subscript)
	return ok
}

// folded reports whether value is a method call whose timelevel was
// already merged into _new_tl.
func folded(ctx *Context, value ast.Expr) bool {
	c, ok := value.(*ast.Call)
	if !ok {
		return false
	}
	res, ok := ctx.Fn.calls[c]
	return ok && res.tl != nil
}

// divergenceProxy returns the boolean that stands for possible divergence
// caused by value: value re-translated in real mode as a boolean. It must
// be pure.
func (s *SIF) divergenceProxy(ctx *Context, value ast.Expr) (ir.Expr, error) {
	defer ctx.Real()()
	return s.pureExpr(ctx, value, ir.Bool)
}

// timelevelFromProxy builds _new_tl := tl || proxy. Or-ing with the
// current timelevel, instead of assigning proxy alone, keeps it monotonic.
func (s *SIF) timelevelFromProxy(ctx *Context, value ast.Expr, p ir.Pos) (ir.Stmt, error) {
	proxy, err := s.divergenceProxy(ctx, value)
	if err != nil {
		return nil, err
	}
	update := s.b.Or(ctx.CurrentTL(), proxy, p, ir.NoInfo)
	return s.b.LocalVarAssign(ctx.Fn.NewTL.Ref(), update, p, ir.NoInfo), nil
}

// whileStmt translates a loop. The timelevel update runs before the loop
// and again at the end of every iteration, after the loop_end label so
// that continue reaches it.
func (s *SIF) whileStmt(ctx *Context, w *ast.While) ([]ir.Stmt, error) {
	post, end := Names.Fresh("post_loop"), Names.Fresh("loop_end")
	ctx.Fn.EnterLoop(post, end)
	defer ctx.Fn.LeaveLoop()

	tl, cond, err := s.conditionAndTimelevel(ctx, w.Test)
	if err != nil {
		return nil, err
	}
	invs, err := s.loopInvariants(ctx, w)
	if err != nil {
		return nil, err
	}

	rest := w.Body[BodyStartIndex(w.Body):]
	invs = append(s.havocedTypeInfo(ctx, rest), invs...)

	p := pos(w)
	body, err := s.TranslateStmts(ctx, rest)
	if err != nil {
		return nil, err
	}
	body = append(body, s.b.Label(end, p, ir.NoInfo))
	body = append(body, tl...)

	loop := s.b.While(cond, invs, s.b.Seqn(body, p, ir.NoInfo), p, ir.NoInfo)
	return append(tl, loop, s.b.Label(post, p, ir.NoInfo)), nil
}

// translateReturn assigns _res and _res_p. When the value is a pure call
// the timelevel is updated too; an impure call folded it already.
func (s *SIF) translateReturn(ctx *Context, r *ast.Return) ([]ir.Stmt, error) {
	if r.Value == nil {
		return nil, nil
	}
	res, err := resultVar(ctx, r)
	if err != nil {
		return nil, err
	}
	p := pos(r)
	want := boolWant(res.Type)

	stmts, rhs, err := s.TranslateExpr(ctx, r.Value, want)
	if err != nil {
		return nil, err
	}
	stmts = append(stmts, s.b.LocalVarAssign(res.Ref(), rhs, p, ir.NoInfo))

	err = ctx.WithPrime(func() error {
		primeStmts, rhsP, err := s.TranslateExpr(ctx, r.Value, want)
		if err != nil {
			return err
		}
		stmts = append(stmts, primeStmts...)
		stmts = append(stmts, s.b.LocalVarAssign(res.Prime.Ref(), rhsP, p, ir.NoInfo))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, ok := r.Value.(*ast.Call); ok && !folded(ctx, r.Value) {
		tl, err := s.timelevelFromProxy(ctx, r.Value, p)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, tl)
	}
	return stmts, nil
}
