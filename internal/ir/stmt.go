package ir

// Stmt is an IR statement.
type Stmt interface {
	Node
	stmtNode()
}

// LocalVarAssign is Target := Value.
type LocalVarAssign struct {
	Meta
	Target *LocalVar
	Value  Expr
}

// MethodCall is Targets := Name(Args).
type MethodCall struct {
	Meta
	Name    string
	Args    []Expr
	Targets []*LocalVar
}

// Seqn is a block of statements.
type Seqn struct {
	Meta
	Stmts []Stmt
}

// If is a conditional with both branches present (possibly empty).
type If struct {
	Meta
	Cond Expr
	Then *Seqn
	Else *Seqn
}

// While is a loop with its invariants.
type While struct {
	Meta
	Cond       Expr
	Invariants []Expr
	Body       *Seqn
}

// Label marks a jump target.
type Label struct {
	Meta
	Name string
}

// Goto jumps to a label.
type Goto struct {
	Meta
	Target string
}

// Assert checks Expr at this program point.
type Assert struct {
	Meta
	Expr Expr
}

func (*LocalVarAssign) stmtNode() {}
func (*MethodCall) stmtNode()     {}
func (*Seqn) stmtNode()           {}
func (*If) stmtNode()             {}
func (*While) stmtNode()          {}
func (*Label) stmtNode()          {}
func (*Goto) stmtNode()           {}
func (*Assert) stmtNode()         {}

// Method is a translated procedure.
type Method struct {
	Meta
	Name    string
	Args    []*LocalVar
	Returns []*LocalVar
	Pre     []Expr
	Post    []Expr
	Locals  []*LocalVar
	Body    *Seqn
}

// Function is a translated pure function. Body is nil for abstract
// functions.
type Function struct {
	Meta
	Name   string
	Args   []*LocalVar
	Result Type
	Pre    []Expr
	Post   []Expr
	Body   Expr
}

// Program is the translation unit handed to a verifier.
type Program struct {
	Functions []*Function
	Methods   []*Method
}

// Method returns the method named name, or nil.
func (p *Program) Method(name string) *Method {
	for _, m := range p.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Function returns the function named name, or nil.
func (p *Program) Function(name string) *Function {
	for _, f := range p.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// StmtKind returns a short lowercase name for s, used by tests and scenario
// expectations ("assign", "call", "if", "while", "label", "goto", "assert",
// "seqn").
func StmtKind(s Stmt) string {
	switch s.(type) {
	case *LocalVarAssign:
		return "assign"
	case *MethodCall:
		return "call"
	case *If:
		return "if"
	case *While:
		return "while"
	case *Label:
		return "label"
	case *Goto:
		return "goto"
	case *Assert:
		return "assert"
	case *Seqn:
		return "seqn"
	default:
		return "unknown"
	}
}

// StmtKinds maps StmtKind over stmts.
func StmtKinds(stmts []Stmt) []string {
	kinds := make([]string, len(stmts))
	for i, s := range stmts {
		kinds[i] = StmtKind(s)
	}
	return kinds
}
