package translator

import (
	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/ir"
)

// irType maps a source type to its IR type. Unknown and empty types map to
// Ref, the type of None.
func irType(t ast.Type) ir.Type {
	switch {
	case t == ast.TypeInt:
		return ir.Int
	case t == ast.TypeBool:
		return ir.Bool
	case t.IsList():
		return ir.SeqOf(irType(t.Elem()))
	case t.IsPSet():
		return ir.SetOf(irType(t.Elem()))
	default:
		return ir.Ref
	}
}

// inferType guesses the source type of e from literals, known variables and
// callee results. It returns TypeNone when nothing is known.
func inferType(e ast.Expr, known func(string) ast.Type, prog *ast.Program) ast.Type {
	switch e := e.(type) {
	case *ast.IntLit:
		return ast.TypeInt
	case *ast.BoolLit, *ast.Compare, *ast.BoolOp:
		return ast.TypeBool
	case *ast.NoneLit:
		return ast.TypeObject
	case *ast.UnaryOp:
		if e.Op == "not" {
			return ast.TypeBool
		}
		return inferType(e.Operand, known, prog)
	case *ast.BinOp:
		if t := inferType(e.Left, known, prog); t != ast.TypeNone {
			return t
		}
		return inferType(e.Right, known, prog)
	case *ast.Name:
		return known(e.ID)
	case *ast.Subscript:
		return inferType(e.Value, known, prog).Elem()
	case *ast.Call:
		switch e.Func {
		case "len":
			return ast.TypeInt
		case "PSet":
			elem := ast.TypeInt
			if len(e.Args) > 0 {
				if t := inferType(e.Args[0], known, prog); t != ast.TypeNone {
					elem = t
				}
			}
			return ast.Type("PSet[" + string(elem) + "]")
		case "token", "ctoken", "MustTerminate", "MustRelease", "Low", "Implies":
			return ast.TypeBool
		}
		if prog != nil {
			if fn := prog.Lookup(e.Func); fn != nil {
				return fn.Result
			}
		}
	}
	return ast.TypeNone
}
