package testutil

import "github.com/roach88/sif/internal/ast"

// Short constructors for building source ASTs in tests.

func Name(id string) *ast.Name { return &ast.Name{ID: id} }

func Int(v int64) *ast.IntLit { return &ast.IntLit{Value: v} }

func Bool(v bool) *ast.BoolLit { return &ast.BoolLit{Value: v} }

func None() *ast.NoneLit { return &ast.NoneLit{} }

func Bin(op string, l, r ast.Expr) *ast.BinOp { return &ast.BinOp{Op: op, Left: l, Right: r} }

func Cmp(op string, l, r ast.Expr) *ast.Compare { return &ast.Compare{Op: op, Left: l, Right: r} }

func And(values ...ast.Expr) *ast.BoolOp { return &ast.BoolOp{Op: "and", Values: values} }

func Or(values ...ast.Expr) *ast.BoolOp { return &ast.BoolOp{Op: "or", Values: values} }

func Not(x ast.Expr) *ast.UnaryOp { return &ast.UnaryOp{Op: "not", Operand: x} }

func Call(fn string, args ...ast.Expr) *ast.Call { return &ast.Call{Func: fn, Args: args} }

func Index(v, i ast.Expr) *ast.Subscript { return &ast.Subscript{Value: v, Index: i} }

func Assign(target, value ast.Expr) *ast.Assign {
	return &ast.Assign{Targets: []ast.Expr{target}, Value: value}
}

func If(test ast.Expr, body, orelse []ast.Stmt) *ast.If {
	return &ast.If{Test: test, Body: body, OrElse: orelse}
}

func While(test ast.Expr, body ...ast.Stmt) *ast.While {
	return &ast.While{Test: test, Body: body}
}

func Return(v ast.Expr) *ast.Return { return &ast.Return{Value: v} }

func ExprStmt(x ast.Expr) *ast.ExprStmt { return &ast.ExprStmt{X: x} }

func Assert(x ast.Expr) *ast.Assert { return &ast.Assert{Test: x} }

func Stmts(s ...ast.Stmt) []ast.Stmt { return s }

// Params builds parameters from name/type pairs:
// Params("x", "int", "b", "bool").
func Params(pairs ...string) []ast.Param {
	out := make([]ast.Param, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, ast.Param{Name: pairs[i], Type: ast.Type(pairs[i+1])})
	}
	return out
}

// Func builds an impure function.
func Func(name string, params []ast.Param, result ast.Type, body ...ast.Stmt) *ast.Function {
	return &ast.Function{Name: name, Params: params, Result: result, Body: body}
}

// PureFunc builds a pure function.
func PureFunc(name string, params []ast.Param, result ast.Type, body ...ast.Stmt) *ast.Function {
	fn := Func(name, params, result, body...)
	fn.Pure = true
	return fn
}

// Program builds a program from functions.
func Program(fns ...*ast.Function) *ast.Program {
	return &ast.Program{Functions: fns}
}
