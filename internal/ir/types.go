package ir

import (
	"fmt"
	"strings"
)

// Type is an IR type name: Int, Bool, Ref, Set[T] or Seq[T].
type Type string

// Primitive IR types.
const (
	Int  Type = "Int"
	Bool Type = "Bool"
	Ref  Type = "Ref"
)

// SetOf returns the set type with element type elem.
func SetOf(elem Type) Type { return Type("Set[" + string(elem) + "]") }

// SeqOf returns the sequence type with element type elem.
func SeqOf(elem Type) Type { return Type("Seq[" + string(elem) + "]") }

// IsSet reports whether t is a set type.
func (t Type) IsSet() bool { return strings.HasPrefix(string(t), "Set[") }

// IsSeq reports whether t is a sequence type.
func (t Type) IsSeq() bool { return strings.HasPrefix(string(t), "Seq[") }

// Elem returns the element type of a set or sequence type.
func (t Type) Elem() Type {
	s := string(t)
	if !(t.IsSet() || t.IsSeq()) || !strings.HasSuffix(s, "]") {
		return ""
	}
	return Type(s[4 : len(s)-1])
}

// Pos is the source position attached to an IR node.
type Pos struct {
	File string
	Line int
	Col  int
}

// NoPosition marks synthesized nodes.
var NoPosition = Pos{}

// IsValid reports whether p carries a line number.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Info is a diagnostic annotation. The empty string is "no info".
type Info string

// NoInfo is the empty annotation.
const NoInfo Info = ""

// Meta is embedded in every node.
type Meta struct {
	Pos  Pos
	Info Info
}

func (m Meta) meta() Meta { return m }

// Node is implemented by all IR nodes.
type Node interface {
	meta() Meta
}

// PosOf returns the position attached to n.
func PosOf(n Node) Pos { return n.meta().Pos }

// InfoOf returns the diagnostic annotation attached to n.
func InfoOf(n Node) Info { return n.meta().Info }

// Expr is an IR expression. Every expression knows its type.
type Expr interface {
	Node
	Type() Type
	exprNode()
}

// LocalVar is both a variable declaration and a reference to it.
type LocalVar struct {
	Meta
	Name string
	Typ  Type
}

// IntLit is an integer literal.
type IntLit struct {
	Meta
	Value int64
}

// BoolLit is true or false.
type BoolLit struct {
	Meta
	Value bool
}

// NullLit is the null reference.
type NullLit struct{ Meta }

// Binary operators. Set operators are spelled out to keep Print unambiguous.
const (
	OpAdd      = "+"
	OpSub      = "-"
	OpMul      = "*"
	OpDiv      = "\\"
	OpMod      = "%"
	OpEq       = "=="
	OpNe       = "!="
	OpLt       = "<"
	OpLe       = "<="
	OpGt       = ">"
	OpGe       = ">="
	OpAnd      = "&&"
	OpOr       = "||"
	OpImplies  = "==>"
	OpIn       = "in"
	OpUnion    = "union"
	OpSetminus = "setminus"
)

// BinExpr is a binary operation.
type BinExpr struct {
	Meta
	Op    string
	Left  Expr
	Right Expr
	Typ   Type
}

// Not is boolean negation.
type Not struct {
	Meta
	X Expr
}

// Neg is integer negation.
type Neg struct {
	Meta
	X Expr
}

// FuncApp applies a pure function.
type FuncApp struct {
	Meta
	Name string
	Args []Expr
	Typ  Type
}

// SeqIndex is Seq[Idx].
type SeqIndex struct {
	Meta
	Seq Expr
	Idx Expr
}

// SetLit is a set literal.
type SetLit struct {
	Meta
	Elems []Expr
	Typ   Type
}

// Length is the cardinality of a set or the length of a sequence.
type Length struct {
	Meta
	X Expr
}

// Old refers to the value of X in the method pre-state.
type Old struct {
	Meta
	X Expr
}

// TypeCheck asserts that X has type Want.
type TypeCheck struct {
	Meta
	X    Expr
	Want Type
}

func (e *LocalVar) Type() Type  { return e.Typ }
func (e *IntLit) Type() Type    { return Int }
func (e *BoolLit) Type() Type   { return Bool }
func (e *NullLit) Type() Type   { return Ref }
func (e *BinExpr) Type() Type   { return e.Typ }
func (e *Not) Type() Type       { return Bool }
func (e *Neg) Type() Type       { return Int }
func (e *FuncApp) Type() Type   { return e.Typ }
func (e *SeqIndex) Type() Type  { return e.Seq.Type().Elem() }
func (e *SetLit) Type() Type    { return e.Typ }
func (e *Length) Type() Type    { return Int }
func (e *Old) Type() Type       { return e.X.Type() }
func (e *TypeCheck) Type() Type { return Bool }

func (*LocalVar) exprNode()  {}
func (*IntLit) exprNode()    {}
func (*BoolLit) exprNode()   {}
func (*NullLit) exprNode()   {}
func (*BinExpr) exprNode()   {}
func (*Not) exprNode()       {}
func (*Neg) exprNode()       {}
func (*FuncApp) exprNode()   {}
func (*SeqIndex) exprNode()  {}
func (*SetLit) exprNode()    {}
func (*Length) exprNode()    {}
func (*Old) exprNode()       {}
func (*TypeCheck) exprNode() {}
