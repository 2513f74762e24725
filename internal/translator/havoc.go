package translator

import (
	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/ir"
)

// havocedVars returns the variables assigned in body that already existed
// before the loop, in order of first assignment.
func havocedVars(ctx *Context, body []ast.Stmt) []*Var {
	var vars []*Var
	for _, name := range ast.AssignedNames(body) {
		if !ctx.Fn.Defined(name) {
			continue
		}
		if v, ok := ctx.Fn.Lookup(name); ok {
			vars = append(vars, v)
		}
	}
	return vars
}

// havocedTypeInfo re-states the type of every havoced variable and its
// prime twin. The verifier drops these facts at the loop head once the
// variable is written in the body.
func (b *Base) havocedTypeInfo(ctx *Context, body []ast.Stmt) []ir.Expr {
	vars := havocedVars(ctx, body)
	out := make([]ir.Expr, 0, 2*len(vars))
	for _, v := range vars {
		out = append(out,
			b.b.TypeCheck(v.Ref(), v.Type, ir.NoPosition, ir.NoInfo),
			b.b.TypeCheck(v.Prime.Ref(), v.Type, ir.NoPosition, ir.NoInfo),
		)
	}
	return out
}
