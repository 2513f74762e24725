package ir

// Builder is the node-construction capability the translator depends on.
//
// Every operation takes the position and diagnostic annotation to attach to
// the new node. Implementations must not retain or mutate their operands
// beyond storing them in the returned node.
type Builder interface {
	// Declarations
	LocalVar(name string, typ Type, pos Pos, info Info) *LocalVar

	// Statements
	LocalVarAssign(target *LocalVar, value Expr, pos Pos, info Info) Stmt
	MethodCall(name string, args []Expr, targets []*LocalVar, pos Pos, info Info) Stmt
	Seqn(stmts []Stmt, pos Pos, info Info) *Seqn
	If(cond Expr, then, els *Seqn, pos Pos, info Info) Stmt
	While(cond Expr, invariants []Expr, body *Seqn, pos Pos, info Info) Stmt
	Label(name string, pos Pos, info Info) Stmt
	Goto(target string, pos Pos, info Info) Stmt
	Assert(e Expr, pos Pos, info Info) Stmt

	// Literals
	IntLit(v int64, pos Pos, info Info) Expr
	BoolLit(v bool, pos Pos, info Info) Expr
	NullLit(pos Pos, info Info) Expr

	// Comparison and logic
	EqCmp(left, right Expr, pos Pos, info Info) Expr
	NeCmp(left, right Expr, pos Pos, info Info) Expr
	And(left, right Expr, pos Pos, info Info) Expr
	Or(left, right Expr, pos Pos, info Info) Expr
	Implies(left, right Expr, pos Pos, info Info) Expr
	Not(e Expr, pos Pos, info Info) Expr

	// Arithmetic, sets and sequences
	BinExpr(op string, left, right Expr, typ Type, pos Pos, info Info) Expr
	Neg(e Expr, pos Pos, info Info) Expr
	SetLit(elems []Expr, typ Type, pos Pos, info Info) Expr
	SeqIndex(seq, idx Expr, pos Pos, info Info) Expr
	Length(e Expr, pos Pos, info Info) Expr

	// Functions and contract constructs
	FuncApp(name string, args []Expr, typ Type, pos Pos, info Info) Expr
	Old(e Expr, pos Pos, info Info) Expr
	TypeCheck(e Expr, want Type, pos Pos, info Info) Expr
}

// NodeBuilder builds the node types of this package.
//
// Thread-safety: NodeBuilder is stateless and safe for concurrent use.
type NodeBuilder struct{}

// NewNodeBuilder returns a NodeBuilder.
func NewNodeBuilder() NodeBuilder { return NodeBuilder{} }

var _ Builder = NodeBuilder{}

func meta(pos Pos, info Info) Meta { return Meta{Pos: pos, Info: info} }

func (NodeBuilder) LocalVar(name string, typ Type, pos Pos, info Info) *LocalVar {
	return &LocalVar{Meta: meta(pos, info), Name: name, Typ: typ}
}

func (NodeBuilder) LocalVarAssign(target *LocalVar, value Expr, pos Pos, info Info) Stmt {
	return &LocalVarAssign{Meta: meta(pos, info), Target: target, Value: value}
}

func (NodeBuilder) MethodCall(name string, args []Expr, targets []*LocalVar, pos Pos, info Info) Stmt {
	return &MethodCall{Meta: meta(pos, info), Name: name, Args: args, Targets: targets}
}

func (NodeBuilder) Seqn(stmts []Stmt, pos Pos, info Info) *Seqn {
	return &Seqn{Meta: meta(pos, info), Stmts: stmts}
}

func (NodeBuilder) If(cond Expr, then, els *Seqn, pos Pos, info Info) Stmt {
	return &If{Meta: meta(pos, info), Cond: cond, Then: then, Else: els}
}

func (NodeBuilder) While(cond Expr, invariants []Expr, body *Seqn, pos Pos, info Info) Stmt {
	return &While{Meta: meta(pos, info), Cond: cond, Invariants: invariants, Body: body}
}

func (NodeBuilder) Label(name string, pos Pos, info Info) Stmt {
	return &Label{Meta: meta(pos, info), Name: name}
}

func (NodeBuilder) Goto(target string, pos Pos, info Info) Stmt {
	return &Goto{Meta: meta(pos, info), Target: target}
}

func (NodeBuilder) Assert(e Expr, pos Pos, info Info) Stmt {
	return &Assert{Meta: meta(pos, info), Expr: e}
}

func (NodeBuilder) IntLit(v int64, pos Pos, info Info) Expr {
	return &IntLit{Meta: meta(pos, info), Value: v}
}

func (NodeBuilder) BoolLit(v bool, pos Pos, info Info) Expr {
	return &BoolLit{Meta: meta(pos, info), Value: v}
}

func (NodeBuilder) NullLit(pos Pos, info Info) Expr {
	return &NullLit{Meta: meta(pos, info)}
}

func (b NodeBuilder) EqCmp(left, right Expr, pos Pos, info Info) Expr {
	return b.BinExpr(OpEq, left, right, Bool, pos, info)
}

func (b NodeBuilder) NeCmp(left, right Expr, pos Pos, info Info) Expr {
	return b.BinExpr(OpNe, left, right, Bool, pos, info)
}

func (b NodeBuilder) And(left, right Expr, pos Pos, info Info) Expr {
	return b.BinExpr(OpAnd, left, right, Bool, pos, info)
}

func (b NodeBuilder) Or(left, right Expr, pos Pos, info Info) Expr {
	return b.BinExpr(OpOr, left, right, Bool, pos, info)
}

func (b NodeBuilder) Implies(left, right Expr, pos Pos, info Info) Expr {
	return b.BinExpr(OpImplies, left, right, Bool, pos, info)
}

func (NodeBuilder) Not(e Expr, pos Pos, info Info) Expr {
	return &Not{Meta: meta(pos, info), X: e}
}

func (NodeBuilder) BinExpr(op string, left, right Expr, typ Type, pos Pos, info Info) Expr {
	return &BinExpr{Meta: meta(pos, info), Op: op, Left: left, Right: right, Typ: typ}
}

func (NodeBuilder) Neg(e Expr, pos Pos, info Info) Expr {
	return &Neg{Meta: meta(pos, info), X: e}
}

func (NodeBuilder) SetLit(elems []Expr, typ Type, pos Pos, info Info) Expr {
	return &SetLit{Meta: meta(pos, info), Elems: elems, Typ: typ}
}

func (NodeBuilder) SeqIndex(seq, idx Expr, pos Pos, info Info) Expr {
	return &SeqIndex{Meta: meta(pos, info), Seq: seq, Idx: idx}
}

func (NodeBuilder) Length(e Expr, pos Pos, info Info) Expr {
	return &Length{Meta: meta(pos, info), X: e}
}

func (NodeBuilder) FuncApp(name string, args []Expr, typ Type, pos Pos, info Info) Expr {
	return &FuncApp{Meta: meta(pos, info), Name: name, Args: args, Typ: typ}
}

func (NodeBuilder) Old(e Expr, pos Pos, info Info) Expr {
	return &Old{Meta: meta(pos, info), X: e}
}

func (NodeBuilder) TypeCheck(e Expr, want Type, pos Pos, info Info) Expr {
	return &TypeCheck{Meta: meta(pos, info), X: e, Want: want}
}
