package translator

import (
	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/ir"
)

// contractOnly names builtins that are meaningless outside contracts.
var contractOnly = map[string]bool{
	"Result": true,
	"Old":    true,
	"Low":    true,
}

// builtin translates a call to the contract vocabulary.
func (b *Base) builtin(ctx *Context, c *ast.Call) ([]ir.Stmt, ir.Expr, error) {
	p := pos(c)
	if contractOnly[c.Func] && !ctx.InContract() {
		return nil, nil, invalid(c, TagInvalidContractPosition)
	}
	switch c.Func {
	case "Invariant":
		// Invariant(...) is loop bookkeeping and is consumed by
		// ExtractContracts; reaching it here means it is misplaced.
		return nil, nil, invalid(c, TagInvalidContractPosition)
	case "Result":
		if len(c.Args) != 0 {
			return nil, nil, invalid(c, TagArityMismatch)
		}
		if ctx.Fn.Result == nil {
			return nil, nil, invalid(c, TagUndefinedVariable)
		}
		if ctx.IsPrime() {
			return nil, ctx.Fn.Result.Prime.Ref(), nil
		}
		return nil, ctx.Fn.Result.Ref(), nil
	case "Old":
		x, err := b.oneArg(ctx, c)
		if err != nil {
			return nil, nil, err
		}
		return nil, b.b.Old(x, p, ir.NoInfo), nil
	case "Low":
		return b.low(ctx, c)
	case "len":
		stmts, args, err := b.args(ctx, c.Args)
		if err != nil {
			return nil, nil, err
		}
		if len(args) != 1 {
			return nil, nil, invalid(c, TagArityMismatch)
		}
		return stmts, b.b.Length(args[0], p, ir.NoInfo), nil
	case "PSet":
		stmts, elems, err := b.args(ctx, c.Args)
		if err != nil {
			return nil, nil, err
		}
		elem := ir.Int
		if len(elems) > 0 {
			elem = elems[0].Type()
		}
		return stmts, b.b.SetLit(elems, ir.SetOf(elem), p, ir.NoInfo), nil
	case "Implies":
		stmts, args, err := b.args(ctx, c.Args)
		if err != nil {
			return nil, nil, err
		}
		if len(args) != 2 {
			return nil, nil, invalid(c, TagArityMismatch)
		}
		return stmts, b.b.Implies(b.toBool(args[0], p), b.toBool(args[1], p), p, ir.NoInfo), nil
	default:
		// token, ctoken, MustTerminate, MustRelease
		stmts, args, err := b.args(ctx, c.Args)
		if err != nil {
			return nil, nil, err
		}
		return stmts, b.b.FuncApp(c.Func, args, ir.Bool, p, ir.NoInfo), nil
	}
}

func (b *Base) oneArg(ctx *Context, c *ast.Call) (ir.Expr, error) {
	if len(c.Args) != 1 {
		return nil, invalid(c, TagArityMismatch)
	}
	return b.pureExpr(ctx, c.Args[0], "")
}

// low translates Low(e) to !tl ==> e == e_p: while the executions have
// not diverged, e agrees between them.
func (b *Base) low(ctx *Context, c *ast.Call) ([]ir.Stmt, ir.Expr, error) {
	if !b.dual || ctx.Fn.Func.Pure {
		return nil, nil, unsupported(c, "Low outside a SIF method")
	}
	if len(c.Args) != 1 {
		return nil, nil, invalid(c, TagArityMismatch)
	}
	p := pos(c)

	restore := ctx.Real()
	realX, err := b.pureExpr(ctx, c.Args[0], "")
	restore()
	if err != nil {
		return nil, nil, err
	}

	var primeX ir.Expr
	err = ctx.WithPrime(func() error {
		var err error
		primeX, err = b.pureExpr(ctx, c.Args[0], "")
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	eq := b.b.EqCmp(realX, primeX, p, ir.NoInfo)
	return nil, b.b.Implies(b.b.Not(ctx.CurrentTL(), p, ir.NoInfo), eq, p, ir.NoInfo), nil
}

// mentionsLow reports whether e contains a Low(...) call.
func mentionsLow(e ast.Expr) bool {
	found := false
	ast.InspectExpr(e, func(x ast.Expr) bool {
		if c, ok := x.(*ast.Call); ok && c.Func == "Low" {
			found = true
		}
		return !found
	})
	return found
}

// translateContract translates a precondition, postcondition or invariant.
// Contracts must be pure. In relational mode a contract without Low holds
// in both executions, so the real and prime translations are conjoined;
// a contract mentioning Low is already relational and is translated once.
func (b *Base) translateContract(ctx *Context, e ast.Expr, relational bool) (ir.Expr, error) {
	defer ctx.enterContract()()
	defer ctx.Real()()

	realX, err := b.pureExpr(ctx, e, ir.Bool)
	if err != nil {
		return nil, err
	}
	if !relational || !b.dual || mentionsLow(e) {
		return realX, nil
	}

	var primeX ir.Expr
	err = ctx.WithPrime(func() error {
		var err error
		primeX, err = b.pureExpr(ctx, e, ir.Bool)
		return err
	})
	if err != nil {
		return nil, err
	}
	if ir.PrintExpr(realX) == ir.PrintExpr(primeX) {
		return realX, nil
	}
	return b.b.And(realX, primeX, pos(e), ir.NoInfo), nil
}

// isInvariantCall reports whether s is an Invariant(...) bookkeeping
// statement.
func isInvariantCall(s ast.Stmt) (*ast.Call, bool) {
	es, ok := s.(*ast.ExprStmt)
	if !ok {
		return nil, false
	}
	c, ok := es.X.(*ast.Call)
	if !ok || c.Func != "Invariant" {
		return nil, false
	}
	return c, true
}

// BodyStartIndex returns the index of the first loop body statement after
// the Invariant(...) prologue.
func BodyStartIndex(body []ast.Stmt) int {
	for i, s := range body {
		if _, ok := isInvariantCall(s); !ok {
			return i
		}
	}
	return len(body)
}

// ExtractContracts builds the loop invariant registry of fn. For each loop
// the Invariant(...) prologue comes first, in source order, followed by
// the invariants declared on the loop node.
func ExtractContracts(fn *ast.Function) (map[*ast.While][]ast.LoopInvariant, error) {
	reg := make(map[*ast.While][]ast.LoopInvariant)
	var err error
	ast.InspectStmts(fn.Body, func(s ast.Stmt) bool {
		if err != nil {
			return false
		}
		w, ok := s.(*ast.While)
		if !ok {
			return true
		}
		var invs []ast.LoopInvariant
		for _, st := range w.Body[:BodyStartIndex(w.Body)] {
			c, _ := isInvariantCall(st)
			if len(c.Args) != 1 {
				err = invalid(c, TagArityMismatch)
				return false
			}
			invs = append(invs, ast.LoopInvariant{Expr: c.Args[0]})
		}
		invs = append(invs, w.Invariants...)
		reg[w] = invs
		return true
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}
