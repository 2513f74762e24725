package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeElem(t *testing.T) {
	assert.Equal(t, TypeInt, Type("list").Elem())
	assert.Equal(t, TypeObject, Type("PSet[object]").Elem())
	assert.Equal(t, TypeNone, TypeInt.Elem())
	assert.Equal(t, TypeNone, Type("list[int").Elem())
}

func TestTypeValid(t *testing.T) {
	for _, ty := range []Type{"int", "bool", "object", "list", "list[bool]", "PSet", "PSet[object]"} {
		assert.True(t, ty.Valid(), ty)
	}
	for _, ty := range []Type{"", "float", "list[float]", "PSet[list]"} {
		assert.False(t, ty.Valid(), ty)
	}
}

func TestAssignedNamesOrderAndNesting(t *testing.T) {
	body := []Stmt{
		&Assign{Targets: []Expr{&Name{ID: "b"}}, Value: &IntLit{Value: 1}},
		&If{
			Test: &Name{ID: "c"},
			Body: []Stmt{&Assign{Targets: []Expr{&Name{ID: "a"}}, Value: &IntLit{Value: 2}}},
			OrElse: []Stmt{
				&While{
					Test: &BoolLit{Value: true},
					Body: []Stmt{&Assign{Targets: []Expr{&Name{ID: "b"}}, Value: &IntLit{Value: 3}}},
				},
			},
		},
		&Assign{
			Targets: []Expr{&Subscript{Value: &Name{ID: "xs"}, Index: &IntLit{}}},
			Value:   &IntLit{Value: 4},
		},
	}

	assert.Equal(t, []string{"b", "a"}, AssignedNames(body))
}

func TestInspectExprVisitsCallArgs(t *testing.T) {
	e := &Call{Func: "f", Args: []Expr{
		&BinOp{Op: "+", Left: &Name{ID: "x"}, Right: &Subscript{Value: &Name{ID: "ys"}, Index: &Name{ID: "i"}}},
	}}

	var names []string
	InspectExpr(e, func(e Expr) bool {
		if n, ok := e.(*Name); ok {
			names = append(names, n.ID)
		}
		return true
	})
	assert.Equal(t, []string{"x", "ys", "i"}, names)
}

func TestNodeString(t *testing.T) {
	assign := &Assign{
		Targets: []Expr{&Subscript{Value: &Name{ID: "x"}, Index: &IntLit{Value: 0}}},
		Value:   &IntLit{Value: 1},
	}
	assert.Equal(t, "x[0] = 1", NodeString(assign))
	assert.Equal(t, "return f(a, None)", NodeString(&Return{Value: &Call{Func: "f", Args: []Expr{&Name{ID: "a"}, &NoneLit{}}}}))
	assert.Equal(t, "while not (a and b)", NodeString(&While{Test: &UnaryOp{Op: "not", Operand: &BoolOp{Op: "and", Values: []Expr{&Name{ID: "a"}, &Name{ID: "b"}}}}}))
}

func TestPosString(t *testing.T) {
	assert.Equal(t, "-", Pos{}.String())
	assert.Equal(t, "3:4", Pos{Line: 3, Col: 4}.String())
	assert.Equal(t, "p.cue:3:4", Pos{File: "p.cue", Line: 3, Col: 4}.String())
}
