package ast

import (
	"fmt"
	"strings"
)

// InspectStmts calls fn for every statement in stmts in source order,
// descending into if and while bodies. If fn returns false the children of
// that statement are skipped.
func InspectStmts(stmts []Stmt, fn func(Stmt) bool) {
	for _, s := range stmts {
		if !fn(s) {
			continue
		}
		switch s := s.(type) {
		case *If:
			InspectStmts(s.Body, fn)
			InspectStmts(s.OrElse, fn)
		case *While:
			InspectStmts(s.Body, fn)
		}
	}
}

// InspectExpr calls fn for e and every sub-expression of e in pre-order.
func InspectExpr(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch e := e.(type) {
	case *BinOp:
		InspectExpr(e.Left, fn)
		InspectExpr(e.Right, fn)
	case *Compare:
		InspectExpr(e.Left, fn)
		InspectExpr(e.Right, fn)
	case *BoolOp:
		for _, v := range e.Values {
			InspectExpr(v, fn)
		}
	case *UnaryOp:
		InspectExpr(e.Operand, fn)
	case *Call:
		for _, a := range e.Args {
			InspectExpr(a, fn)
		}
	case *Subscript:
		InspectExpr(e.Value, fn)
		InspectExpr(e.Index, fn)
	}
}

// AssignedNames returns the names assigned anywhere in stmts, in order of
// first assignment. Subscript targets are not names and are skipped.
func AssignedNames(stmts []Stmt) []string {
	var names []string
	seen := make(map[string]bool)
	InspectStmts(stmts, func(s Stmt) bool {
		a, ok := s.(*Assign)
		if !ok {
			return true
		}
		for _, t := range a.Targets {
			if n, ok := t.(*Name); ok && !seen[n.ID] {
				seen[n.ID] = true
				names = append(names, n.ID)
			}
		}
		return true
	})
	return names
}

// ExprString renders e in source-like syntax for diagnostics.
func ExprString(e Expr) string {
	switch e := e.(type) {
	case nil:
		return "<nil>"
	case *Name:
		return e.ID
	case *IntLit:
		return fmt.Sprintf("%d", e.Value)
	case *BoolLit:
		if e.Value {
			return "True"
		}
		return "False"
	case *NoneLit:
		return "None"
	case *BinOp:
		return fmt.Sprintf("(%s %s %s)", ExprString(e.Left), e.Op, ExprString(e.Right))
	case *Compare:
		return fmt.Sprintf("(%s %s %s)", ExprString(e.Left), e.Op, ExprString(e.Right))
	case *BoolOp:
		parts := make([]string, len(e.Values))
		for i, v := range e.Values {
			parts[i] = ExprString(v)
		}
		return "(" + strings.Join(parts, " "+e.Op+" ") + ")"
	case *UnaryOp:
		if e.Op == "not" {
			return "not " + ExprString(e.Operand)
		}
		return e.Op + ExprString(e.Operand)
	case *Call:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = ExprString(a)
		}
		return e.Func + "(" + strings.Join(args, ", ") + ")"
	case *Subscript:
		return ExprString(e.Value) + "[" + ExprString(e.Index) + "]"
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

// NodeString renders a statement or expression header for diagnostics.
func NodeString(n Node) string {
	switch n := n.(type) {
	case Expr:
		return ExprString(n)
	case *Assign:
		targets := make([]string, len(n.Targets))
		for i, t := range n.Targets {
			targets[i] = ExprString(t)
		}
		return strings.Join(targets, " = ") + " = " + ExprString(n.Value)
	case *If:
		return "if " + ExprString(n.Test)
	case *While:
		return "while " + ExprString(n.Test)
	case *Return:
		if n.Value == nil {
			return "return"
		}
		return "return " + ExprString(n.Value)
	case *ExprStmt:
		return ExprString(n.X)
	case *Assert:
		return "assert " + ExprString(n.Test)
	case *Pass:
		return "pass"
	case *Break:
		return "break"
	case *Continue:
		return "continue"
	case *Function:
		return "def " + n.Name
	default:
		return fmt.Sprintf("<%T>", n)
	}
}
