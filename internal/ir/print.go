package ir

import (
	"fmt"
	"strings"
)

// Print renders a program in a verifier-style text syntax. Output is
// deterministic: functions first, then methods, each in program order.
func Print(p *Program) string {
	var pr printer
	for i, f := range p.Functions {
		if i > 0 {
			pr.nl()
		}
		pr.function(f)
	}
	for i, m := range p.Methods {
		if i > 0 || len(p.Functions) > 0 {
			pr.nl()
		}
		pr.method(m)
	}
	return pr.String()
}

// PrintMethod renders a single method.
func PrintMethod(m *Method) string {
	var pr printer
	pr.method(m)
	return pr.String()
}

// PrintStmts renders statements one per line at indentation zero.
func PrintStmts(stmts []Stmt) string {
	var pr printer
	for _, s := range stmts {
		pr.stmt(s)
	}
	return pr.String()
}

// PrintStmt renders one statement without a trailing newline.
func PrintStmt(s Stmt) string {
	return strings.TrimSuffix(PrintStmts([]Stmt{s}), "\n")
}

// PrintExpr renders an expression with minimal parentheses.
func PrintExpr(e Expr) string {
	return exprString(e)
}

type printer struct {
	sb     strings.Builder
	indent int
}

func (p *printer) String() string { return p.sb.String() }

func (p *printer) nl() { p.sb.WriteByte('\n') }

func (p *printer) line(format string, args ...any) {
	p.sb.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.sb, format, args...)
	p.nl()
}

func (p *printer) function(f *Function) {
	p.line("function %s(%s): %s", f.Name, declList(f.Args), f.Result)
	p.contracts(f.Pre, f.Post)
	if f.Body == nil {
		return
	}
	p.line("{")
	p.indent++
	p.line("%s", exprString(f.Body))
	p.indent--
	p.line("}")
}

func (p *printer) method(m *Method) {
	if len(m.Returns) > 0 {
		p.line("method %s(%s) returns (%s)", m.Name, declList(m.Args), declList(m.Returns))
	} else {
		p.line("method %s(%s)", m.Name, declList(m.Args))
	}
	p.contracts(m.Pre, m.Post)
	p.line("{")
	p.indent++
	for _, l := range m.Locals {
		p.line("var %s: %s", l.Name, l.Typ)
	}
	if m.Body != nil {
		for _, s := range m.Body.Stmts {
			p.stmt(s)
		}
	}
	p.indent--
	p.line("}")
}

func (p *printer) contracts(pre, post []Expr) {
	p.indent++
	for _, e := range pre {
		p.line("requires %s", exprString(e))
	}
	for _, e := range post {
		p.line("ensures %s", exprString(e))
	}
	p.indent--
}

func (p *printer) block(s *Seqn) {
	p.indent++
	if s != nil {
		for _, st := range s.Stmts {
			p.stmt(st)
		}
	}
	p.indent--
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *LocalVarAssign:
		p.line("%s := %s", s.Target.Name, exprString(s.Value))
	case *MethodCall:
		call := fmt.Sprintf("%s(%s)", s.Name, exprList(s.Args))
		if len(s.Targets) == 0 {
			p.line("%s", call)
			return
		}
		names := make([]string, len(s.Targets))
		for i, t := range s.Targets {
			names[i] = t.Name
		}
		p.line("%s := %s", strings.Join(names, ", "), call)
	case *Seqn:
		p.line("{")
		p.block(s)
		p.line("}")
	case *If:
		p.line("if (%s) {", exprString(s.Cond))
		p.block(s.Then)
		if s.Else != nil && len(s.Else.Stmts) > 0 {
			p.line("} else {")
			p.block(s.Else)
		}
		p.line("}")
	case *While:
		p.line("while (%s)", exprString(s.Cond))
		p.indent++
		for _, inv := range s.Invariants {
			p.line("invariant %s", exprString(inv))
		}
		p.indent--
		p.line("{")
		p.block(s.Body)
		p.line("}")
	case *Label:
		p.line("label %s", s.Name)
	case *Goto:
		p.line("goto %s", s.Target)
	case *Assert:
		p.line("assert %s", exprString(s.Expr))
	default:
		p.line("<unknown %T>", s)
	}
}

func declList(vars []*LocalVar) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = fmt.Sprintf("%s: %s", v.Name, v.Typ)
	}
	return strings.Join(parts, ", ")
}

func exprList(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = exprString(e)
	}
	return strings.Join(parts, ", ")
}

const (
	precImplies = 1 + iota
	precOr
	precAnd
	precEq
	precCmp
	precAdd
	precMul
	precUnary
	precAtom
)

func binPrec(op string) int {
	switch op {
	case OpImplies:
		return precImplies
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpEq, OpNe:
		return precEq
	case OpLt, OpLe, OpGt, OpGe, OpIn:
		return precCmp
	case OpAdd, OpSub, OpUnion, OpSetminus:
		return precAdd
	default:
		return precMul
	}
}

func exprPrec(e Expr) int {
	switch e := e.(type) {
	case *BinExpr:
		return binPrec(e.Op)
	case *Not, *Neg:
		return precUnary
	default:
		return precAtom
	}
}

// operand renders a child of a binary operator, parenthesising when the
// child binds looser, or equally loose on the non-associative side.
func operand(e Expr, parent int, right bool) string {
	s := exprString(e)
	child := exprPrec(e)
	switch {
	case child < parent:
		return "(" + s + ")"
	case child == parent && parent == precImplies && !right:
		return "(" + s + ")"
	case child == parent && parent != precImplies && (right || parent == precEq || parent == precCmp):
		return "(" + s + ")"
	}
	return s
}

func exprString(e Expr) string {
	switch e := e.(type) {
	case nil:
		return "<nil>"
	case *LocalVar:
		return e.Name
	case *IntLit:
		return fmt.Sprintf("%d", e.Value)
	case *BoolLit:
		if e.Value {
			return "true"
		}
		return "false"
	case *NullLit:
		return "null"
	case *BinExpr:
		prec := binPrec(e.Op)
		return operand(e.Left, prec, false) + " " + e.Op + " " + operand(e.Right, prec, true)
	case *Not:
		return "!" + unaryOperand(e.X)
	case *Neg:
		return "-" + unaryOperand(e.X)
	case *FuncApp:
		return fmt.Sprintf("%s(%s)", e.Name, exprList(e.Args))
	case *SeqIndex:
		return unaryOperand(e.Seq) + "[" + exprString(e.Idx) + "]"
	case *SetLit:
		if len(e.Elems) == 0 {
			return fmt.Sprintf("Set[%s]()", e.Typ.Elem())
		}
		return fmt.Sprintf("Set(%s)", exprList(e.Elems))
	case *Length:
		return "|" + exprString(e.X) + "|"
	case *Old:
		return "old(" + exprString(e.X) + ")"
	case *TypeCheck:
		return fmt.Sprintf("issubtype(typeof(%s), %s)", exprString(e.X), e.Want)
	default:
		return fmt.Sprintf("<unknown %T>", e)
	}
}

func unaryOperand(e Expr) string {
	if exprPrec(e) < precAtom {
		return "(" + exprString(e) + ")"
	}
	return exprString(e)
}
