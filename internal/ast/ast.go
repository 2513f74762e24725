package ast

import "fmt"

// Pos is a source position. The zero value means "no position".
type Pos struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
}

// Position returns p. Embedding Pos gives every node a Position method.
func (p Pos) Position() Pos { return p }

// IsValid reports whether the position carries a line number.
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

// Node is implemented by all statements and expressions.
type Node interface {
	Position() Pos
}

// Stmt is a sealed interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is a sealed interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Statements

// Assign is `targets = value`. Only single-target assignments are
// translatable; the slice exists so the translator can reject the rest.
type Assign struct {
	Pos
	Targets []Expr
	Value   Expr
}

// If is a two-armed conditional. OrElse may be empty.
type If struct {
	Pos
	Test   Expr
	Body   []Stmt
	OrElse []Stmt
}

// While is a loop. Invariants holds invariants declared out of line; the
// body may additionally start with Invariant(...) expression statements.
type While struct {
	Pos
	Test       Expr
	Body       []Stmt
	Invariants []LoopInvariant
}

// LoopInvariant is an invariant with an explicit alias substitution map.
type LoopInvariant struct {
	Expr    Expr
	Aliases map[string]Expr
}

// Return returns Value from the enclosing function. Value is nil for a
// bare return.
type Return struct {
	Pos
	Value Expr
}

// ExprStmt evaluates X for its effects.
type ExprStmt struct {
	Pos
	X Expr
}

// Assert checks Test.
type Assert struct {
	Pos
	Test Expr
}

// Pass does nothing.
type Pass struct{ Pos }

// Break leaves the innermost loop.
type Break struct{ Pos }

// Continue jumps to the end of the innermost loop body.
type Continue struct{ Pos }

func (*Assign) stmtNode()   {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*Return) stmtNode()   {}
func (*ExprStmt) stmtNode() {}
func (*Assert) stmtNode()   {}
func (*Pass) stmtNode()     {}
func (*Break) stmtNode()    {}
func (*Continue) stmtNode() {}

// Expressions

// Name references a variable.
type Name struct {
	Pos
	ID string
}

// IntLit is an integer literal.
type IntLit struct {
	Pos
	Value int64
}

// BoolLit is True or False.
type BoolLit struct {
	Pos
	Value bool
}

// NoneLit is None.
type NoneLit struct{ Pos }

// BinOp is an arithmetic or set operator: + - * / %.
type BinOp struct {
	Pos
	Op    string
	Left  Expr
	Right Expr
}

// Compare is a binary comparison: == != < <= > >= in "not in" is "is not".
type Compare struct {
	Pos
	Op    string
	Left  Expr
	Right Expr
}

// BoolOp is a short-circuit "and" / "or" over two or more values.
type BoolOp struct {
	Pos
	Op     string
	Values []Expr
}

// UnaryOp is "not" or "-".
type UnaryOp struct {
	Pos
	Op      string
	Operand Expr
}

// Call calls the function named Func. Targets are resolved by name against
// the program and the contract vocabulary.
type Call struct {
	Pos
	Func string
	Args []Expr
}

// Subscript is Value[Index].
type Subscript struct {
	Pos
	Value Expr
	Index Expr
}

func (*Name) exprNode()      {}
func (*IntLit) exprNode()    {}
func (*BoolLit) exprNode()   {}
func (*NoneLit) exprNode()   {}
func (*BinOp) exprNode()     {}
func (*Compare) exprNode()   {}
func (*BoolOp) exprNode()    {}
func (*UnaryOp) exprNode()   {}
func (*Call) exprNode()      {}
func (*Subscript) exprNode() {}
