package translator

import (
	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/ir"
)

// TranslateExpr translates e in the mode of ctx. It returns the auxiliary
// statements that must run before the expression (method calls) and the
// expression itself. A want of ir.Bool coerces the result to a boolean.
func (b *Base) TranslateExpr(ctx *Context, e ast.Expr, want ir.Type) ([]ir.Stmt, ir.Expr, error) {
	stmts, x, err := b.expr(ctx, e)
	if err != nil {
		return nil, nil, err
	}
	if want == ir.Bool {
		x = b.toBool(x, pos(e))
	}
	return stmts, x, nil
}

// pureExpr translates e and fails if it needs auxiliary statements.
func (b *Base) pureExpr(ctx *Context, e ast.Expr, want ir.Type) (ir.Expr, error) {
	stmts, x, err := b.TranslateExpr(ctx, e, want)
	if err != nil {
		return nil, err
	}
	if len(stmts) > 0 {
		return nil, invalid(e, TagPurityViolated)
	}
	return x, nil
}

func pos(n ast.Node) ir.Pos {
	p := n.Position()
	return ir.Pos{File: p.File, Line: p.Line, Col: p.Col}
}

// toBool applies truthiness: non-zero ints, non-null references and
// non-empty collections are true.
func (b *Base) toBool(x ir.Expr, p ir.Pos) ir.Expr {
	t := x.Type()
	switch {
	case t == ir.Bool:
		return x
	case t == ir.Int:
		return b.b.NeCmp(x, b.b.IntLit(0, p, ir.NoInfo), p, ir.NoInfo)
	case t.IsSet() || t.IsSeq():
		return b.b.NeCmp(b.b.Length(x, p, ir.NoInfo), b.b.IntLit(0, p, ir.NoInfo), p, ir.NoInfo)
	default:
		return b.b.NeCmp(x, b.b.NullLit(p, ir.NoInfo), p, ir.NoInfo)
	}
}

func (b *Base) expr(ctx *Context, e ast.Expr) ([]ir.Stmt, ir.Expr, error) {
	p := pos(e)
	switch e := e.(type) {
	case *ast.Name:
		return b.name(ctx, e)
	case *ast.IntLit:
		return nil, b.b.IntLit(e.Value, p, ir.NoInfo), nil
	case *ast.BoolLit:
		return nil, b.b.BoolLit(e.Value, p, ir.NoInfo), nil
	case *ast.NoneLit:
		return nil, b.b.NullLit(p, ir.NoInfo), nil
	case *ast.BinOp:
		return b.binOp(ctx, e)
	case *ast.Compare:
		return b.compare(ctx, e)
	case *ast.BoolOp:
		return b.boolOp(ctx, e)
	case *ast.UnaryOp:
		return b.unary(ctx, e)
	case *ast.Subscript:
		return b.subscript(ctx, e)
	case *ast.Call:
		return b.call(ctx, e)
	default:
		return nil, nil, unsupported(e, "expression kind")
	}
}

func (b *Base) name(ctx *Context, n *ast.Name) ([]ir.Stmt, ir.Expr, error) {
	if sub, depth, ok := ctx.alias(n.ID); ok {
		saved := ctx.aliases
		ctx.aliases = ctx.aliases[:depth]
		defer func() { ctx.aliases = saved }()
		return b.expr(ctx, sub)
	}
	v, ok := ctx.Var(n.ID)
	if !ok {
		return nil, nil, invalid(n, TagUndefinedVariable)
	}
	// Locals are declared up front; in code they must be assigned before
	// they are read. Contracts may name any variable.
	if !ctx.InContract() && !ctx.Fn.Defined(n.ID) {
		return nil, nil, invalid(n, TagUndefinedVariable)
	}
	return nil, v.Ref(), nil
}

func (b *Base) operands(ctx *Context, l, r ast.Expr) ([]ir.Stmt, ir.Expr, ir.Expr, error) {
	ls, lx, err := b.expr(ctx, l)
	if err != nil {
		return nil, nil, nil, err
	}
	rs, rx, err := b.expr(ctx, r)
	if err != nil {
		return nil, nil, nil, err
	}
	return append(ls, rs...), lx, rx, nil
}

func (b *Base) binOp(ctx *Context, e *ast.BinOp) ([]ir.Stmt, ir.Expr, error) {
	stmts, l, r, err := b.operands(ctx, e.Left, e.Right)
	if err != nil {
		return nil, nil, err
	}
	p := pos(e)
	if l.Type().IsSet() {
		switch e.Op {
		case "+":
			return stmts, b.b.BinExpr(ir.OpUnion, l, r, l.Type(), p, ir.NoInfo), nil
		case "-":
			return stmts, b.b.BinExpr(ir.OpSetminus, l, r, l.Type(), p, ir.NoInfo), nil
		}
		return nil, nil, unsupported(e, "set operator "+e.Op)
	}
	var op string
	switch e.Op {
	case "+":
		op = ir.OpAdd
	case "-":
		op = ir.OpSub
	case "*":
		op = ir.OpMul
	case "/", "//":
		op = ir.OpDiv
	case "%":
		op = ir.OpMod
	default:
		return nil, nil, unsupported(e, "operator "+e.Op)
	}
	return stmts, b.b.BinExpr(op, l, r, ir.Int, p, ir.NoInfo), nil
}

func (b *Base) compare(ctx *Context, e *ast.Compare) ([]ir.Stmt, ir.Expr, error) {
	stmts, l, r, err := b.operands(ctx, e.Left, e.Right)
	if err != nil {
		return nil, nil, err
	}
	p := pos(e)
	var op string
	switch e.Op {
	case "==", "is":
		op = ir.OpEq
	case "!=", "is not":
		op = ir.OpNe
	case "<":
		op = ir.OpLt
	case "<=":
		op = ir.OpLe
	case ">":
		op = ir.OpGt
	case ">=":
		op = ir.OpGe
	case "in":
		op = ir.OpIn
	case "not in":
		in := b.b.BinExpr(ir.OpIn, l, r, ir.Bool, p, ir.NoInfo)
		return stmts, b.b.Not(in, p, ir.NoInfo), nil
	default:
		return nil, nil, unsupported(e, "comparison "+e.Op)
	}
	return stmts, b.b.BinExpr(op, l, r, ir.Bool, p, ir.NoInfo), nil
}

// boolOp folds and/or left to right. Operands after the first may not need
// auxiliary statements: they would run unconditionally, breaking
// short-circuit evaluation.
func (b *Base) boolOp(ctx *Context, e *ast.BoolOp) ([]ir.Stmt, ir.Expr, error) {
	if len(e.Values) == 0 {
		return nil, nil, unsupported(e, "empty boolean operation")
	}
	p := pos(e)
	stmts, acc, err := b.TranslateExpr(ctx, e.Values[0], ir.Bool)
	if err != nil {
		return nil, nil, err
	}
	for _, v := range e.Values[1:] {
		vs, x, err := b.TranslateExpr(ctx, v, ir.Bool)
		if err != nil {
			return nil, nil, err
		}
		if len(vs) > 0 {
			return nil, nil, unsupported(v, "call in short-circuit operand")
		}
		switch e.Op {
		case "and":
			acc = b.b.And(acc, x, p, ir.NoInfo)
		case "or":
			acc = b.b.Or(acc, x, p, ir.NoInfo)
		default:
			return nil, nil, unsupported(e, "boolean operator "+e.Op)
		}
	}
	return stmts, acc, nil
}

func (b *Base) unary(ctx *Context, e *ast.UnaryOp) ([]ir.Stmt, ir.Expr, error) {
	p := pos(e)
	switch e.Op {
	case "not":
		stmts, x, err := b.TranslateExpr(ctx, e.Operand, ir.Bool)
		if err != nil {
			return nil, nil, err
		}
		return stmts, b.b.Not(x, p, ir.NoInfo), nil
	case "-":
		stmts, x, err := b.expr(ctx, e.Operand)
		if err != nil {
			return nil, nil, err
		}
		return stmts, b.b.Neg(x, p, ir.NoInfo), nil
	case "+":
		return b.expr(ctx, e.Operand)
	}
	return nil, nil, unsupported(e, "unary operator "+e.Op)
}

// subscript reads a list element, or a PSet element through the
// PSet___getitem__ function.
func (b *Base) subscript(ctx *Context, e *ast.Subscript) ([]ir.Stmt, ir.Expr, error) {
	stmts, v, i, err := b.operands(ctx, e.Value, e.Index)
	if err != nil {
		return nil, nil, err
	}
	p := pos(e)
	t := v.Type()
	switch {
	case t.IsSeq():
		return stmts, b.b.SeqIndex(v, i, p, ir.NoInfo), nil
	case t.IsSet():
		return stmts, b.b.FuncApp("PSet___getitem__", []ir.Expr{v, i}, t.Elem(), p, ir.NoInfo), nil
	}
	return nil, nil, unsupported(e, "subscript of "+string(t))
}

func (b *Base) call(ctx *Context, c *ast.Call) ([]ir.Stmt, ir.Expr, error) {
	target, ok := b.resolver.Resolve(c)
	if !ok {
		return nil, nil, invalid(c, TagUndefinedFunction)
	}
	if target.Builtin {
		return b.builtin(ctx, c)
	}
	if len(c.Args) != len(target.Params) {
		return nil, nil, invalid(c, TagArityMismatch)
	}
	if target.Pure {
		stmts, args, err := b.args(ctx, c.Args)
		if err != nil {
			return nil, nil, err
		}
		return stmts, b.b.FuncApp(target.Name, args, irType(target.Result), pos(c), ir.NoInfo), nil
	}
	if ctx.InContract() {
		return nil, nil, invalid(c, TagPurityViolated)
	}
	return b.methodCall(ctx, c, target)
}

func (b *Base) args(ctx *Context, args []ast.Expr) ([]ir.Stmt, []ir.Expr, error) {
	var stmts []ir.Stmt
	out := make([]ir.Expr, len(args))
	for i, a := range args {
		s, x, err := b.expr(ctx, a)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, s...)
		out[i] = x
	}
	return stmts, out, nil
}

// methodCall emits the call of an impure function into temporaries. Under
// SIF one call serves both executions: it passes the real and prime
// arguments plus the current timelevel and binds the real result, the
// prime result and the callee's timelevel. The binding is remembered per
// call site, so translating the same site in the other mode reuses it
// without a second call.
func (b *Base) methodCall(ctx *Context, c *ast.Call, target Target) ([]ir.Stmt, ir.Expr, error) {
	fn := ctx.Fn
	if res, ok := fn.calls[c]; ok {
		return nil, res.valueExpr(ctx, b.b), nil
	}

	stmts, args, err := b.args(ctx, c.Args)
	if err != nil {
		return nil, nil, err
	}

	name := Names.Fresh(c.Func)
	res := &callResult{}
	var targets []*ir.LocalVar
	if target.Result != ast.TypeNone {
		typ := irType(target.Result)
		res.res = newVar(b.b, name, typ)
		targets = append(targets, res.res.Ref())
		fn.temps = append(fn.temps, res.res)
	}

	if b.dual {
		if ctx.IsPrime() {
			return nil, nil, unsupported(c, "call first reached in prime mode")
		}
		var primeStmts []ir.Stmt
		var primeArgs []ir.Expr
		err := ctx.WithPrime(func() error {
			var err error
			primeStmts, primeArgs, err = b.args(ctx, c.Args)
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, primeStmts...)
		args = append(append(args, primeArgs...), ctx.CurrentTL())

		if res.res != nil {
			res.resP = newVar(b.b, name+"_p", res.res.Type)
			targets = append(targets, res.resP.Ref())
			fn.temps = append(fn.temps, res.resP)
		}
		res.tl = newVar(b.b, name+"_tl", ir.Bool)
		targets = append(targets, res.tl.Ref())
		fn.temps = append(fn.temps, res.tl)
	}

	p := pos(c)
	stmts = append(stmts, b.b.MethodCall(target.Name, args, targets, p, ir.NoInfo))
	if res.tl != nil {
		// Fold the callee's timelevel at the call, wherever it is nested.
		update := b.b.Or(ctx.CurrentTL(), res.tl.Ref(), p, ir.NoInfo)
		stmts = append(stmts, b.b.LocalVarAssign(fn.NewTL.Ref(), update, p, ir.NoInfo))
	}
	fn.calls[c] = res
	return stmts, res.valueExpr(ctx, b.b), nil
}

// valueExpr returns the result temporary for the mode of ctx, or null for
// procedures.
func (r *callResult) valueExpr(ctx *Context, b ir.Builder) ir.Expr {
	switch {
	case r.res == nil:
		return b.NullLit(ir.NoPosition, ir.NoInfo)
	case ctx.IsPrime() && r.resP != nil:
		return r.resP.Ref()
	default:
		return r.res.Ref()
	}
}
