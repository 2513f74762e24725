package translator

import (
	"fmt"

	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/ir"
)

// Reserved IR names.
const (
	ResultName = "_res"
	TLName     = "_tl"
	NewTLName  = "_new_tl"
	PureResult = "result"
)

// Translator turns source functions into IR members.
type Translator interface {
	TranslateMethod(fn *ast.Function) (*ir.Method, error)
	TranslatePure(fn *ast.Function) (*ir.Function, error)
}

// Mode selects the translator.
type Mode string

const (
	ModeSIF  Mode = "sif"
	ModeBase Mode = "base"
)

// New returns the translator for mode.
func New(mode Mode, b ir.Builder, resolver PurityResolver) (Translator, error) {
	switch mode {
	case ModeSIF, "":
		return NewSIF(b, resolver), nil
	case ModeBase:
		return NewBase(b, resolver), nil
	}
	return nil, fmt.Errorf("unknown translation mode %q", mode)
}

var (
	_ Translator = (*Base)(nil)
	_ Translator = (*SIF)(nil)
)

// NewFunctionCtx creates the variables of fn: parameters, the result,
// the timelevels and every assigned local, each with its prime twin.
// Locals without a declaration get the type of their first assigned value.
func (b *Base) NewFunctionCtx(fn *ast.Function) (*FunctionCtx, error) {
	fc := &FunctionCtx{
		Func:    fn,
		Vars:    make(map[string]*Var),
		defined: make(map[string]bool),
		calls:   make(map[*ast.Call]*callResult),
	}
	srcTypes := make(map[string]ast.Type)
	declare := func(name string, t ast.Type) *Var {
		v := newDualVar(b.b, name, irType(t))
		fc.Vars[name] = v
		srcTypes[name] = t
		return v
	}

	for _, p := range fn.Params {
		fc.Params = append(fc.Params, declare(p.Name, p.Type))
		fc.markDefined(p.Name)
	}
	for _, l := range fn.Locals {
		if _, ok := fc.Vars[l.Name]; !ok {
			fc.Locals = append(fc.Locals, declare(l.Name, l.Type))
		}
	}

	var prog *ast.Program
	if pr, ok := b.resolver.(*ProgramResolver); ok {
		prog = pr.Program()
	}
	known := func(name string) ast.Type { return srcTypes[name] }
	first := firstAssignments(fn.Body)
	for _, name := range ast.AssignedNames(fn.Body) {
		if _, ok := fc.Vars[name]; ok {
			continue
		}
		a := first[name]
		t := inferType(a.Value, known, prog)
		if t == ast.TypeNone {
			return nil, invalid(a, TagUntypedVariable)
		}
		fc.Locals = append(fc.Locals, declare(name, t))
	}

	if fn.Result != ast.TypeNone {
		if fn.Pure {
			fc.Result = newVar(b.b, PureResult, irType(fn.Result))
			fc.Result.Prime = fc.Result
		} else {
			fc.Result = newDualVar(b.b, ResultName, irType(fn.Result))
		}
	}
	fc.TL = newVar(b.b, TLName, ir.Bool)
	fc.NewTL = newVar(b.b, NewTLName, ir.Bool)

	invs, err := ExtractContracts(fn)
	if err != nil {
		return nil, err
	}
	fc.LoopInvariants = invs
	return fc, nil
}

func firstAssignments(body []ast.Stmt) map[string]*ast.Assign {
	first := make(map[string]*ast.Assign)
	ast.InspectStmts(body, func(s ast.Stmt) bool {
		if a, ok := s.(*ast.Assign); ok {
			for _, t := range a.Targets {
				if n, ok := t.(*ast.Name); ok {
					if _, seen := first[n.ID]; !seen {
						first[n.ID] = a
					}
				}
			}
		}
		return true
	})
	return first
}

// TranslateMethod translates an impure function into a method.
//
// Under SIF the signature is
//
//	method f(params, params_p, _tl) returns (_res, _res_p, _new_tl)
//
// and the body starts with _new_tl := _tl. Preconditions read _tl,
// postconditions read _new_tl. Every body ends with the __end label.
func (b *Base) TranslateMethod(fn *ast.Function) (*ir.Method, error) {
	if fn.Pure {
		return nil, unsupported(fn, "pure function translated as method")
	}
	fc, err := b.NewFunctionCtx(fn)
	if err != nil {
		return nil, err
	}
	ctx := NewContext(fc)
	p := pos(fn)

	m := &ir.Method{Meta: ir.Meta{Pos: p}, Name: fn.Name}
	if m.Pre, err = b.contracts(ctx, fn.Requires, fc.TL.Ref()); err != nil {
		return nil, err
	}
	if m.Post, err = b.contracts(ctx, fn.Ensures, nil); err != nil {
		return nil, err
	}

	var body []ir.Stmt
	if b.dual {
		body = append(body, b.b.LocalVarAssign(fc.NewTL.Ref(), fc.TL.Ref(), p, ir.NoInfo))
	}
	stmts, err := b.TranslateStmts(ctx, fn.Body)
	if err != nil {
		return nil, err
	}
	body = append(body, stmts...)
	body = append(body, b.b.Label(EndLabel, p, ir.NoInfo))
	m.Body = b.b.Seqn(body, p, ir.NoInfo)

	m.Args = b.decls(fc.Params)
	m.Locals = b.decls(fc.Locals)
	for _, t := range fc.temps {
		m.Locals = append(m.Locals, t.Ref())
	}
	if fc.Result != nil {
		m.Returns = b.decls([]*Var{fc.Result})
	}
	if b.dual {
		m.Args = append(m.Args, fc.TL.Ref())
		m.Returns = append(m.Returns, fc.NewTL.Ref())
	}
	return m, nil
}

// decls lists vars, followed by their prime twins under SIF.
func (b *Base) decls(vars []*Var) []*ir.LocalVar {
	out := make([]*ir.LocalVar, 0, 2*len(vars))
	for _, v := range vars {
		out = append(out, v.Ref())
	}
	if b.dual {
		for _, v := range vars {
			out = append(out, v.Prime.Ref())
		}
	}
	return out
}

func (b *Base) contracts(ctx *Context, exprs []ast.Expr, tl ir.Expr) ([]ir.Expr, error) {
	out := make([]ir.Expr, 0, len(exprs))
	for _, e := range exprs {
		ctx.SetCurrentTL(tl)
		x, err := b.translateContract(ctx, e, !ctx.Fn.Func.Pure)
		ctx.SetCurrentTL(nil)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

// TranslatePure translates a pure function. Its body is empty (abstract)
// or a single return.
func (b *Base) TranslatePure(fn *ast.Function) (*ir.Function, error) {
	if !fn.Pure {
		return nil, unsupported(fn, "impure function translated as function")
	}
	fc, err := b.NewFunctionCtx(fn)
	if err != nil {
		return nil, err
	}
	ctx := NewContext(fc)

	f := &ir.Function{
		Meta:   ir.Meta{Pos: pos(fn)},
		Name:   fn.Name,
		Result: irType(fn.Result),
	}
	for _, v := range fc.Params {
		f.Args = append(f.Args, v.Ref())
	}
	if f.Pre, err = b.contracts(ctx, fn.Requires, nil); err != nil {
		return nil, err
	}
	if f.Post, err = b.contracts(ctx, fn.Ensures, nil); err != nil {
		return nil, err
	}

	switch {
	case len(fn.Body) == 0:
	case len(fn.Body) == 1:
		r, ok := fn.Body[0].(*ast.Return)
		if !ok || r.Value == nil {
			return nil, unsupported(fn, "pure function body must be a single return")
		}
		if f.Body, err = b.pureExpr(ctx, r.Value, boolWant(f.Result)); err != nil {
			return nil, err
		}
	default:
		return nil, unsupported(fn, "pure function body must be a single return")
	}
	return f, nil
}

// TranslateProgram translates every function of prog in declaration order.
func TranslateProgram(t Translator, prog *ast.Program) (*ir.Program, error) {
	out := &ir.Program{}
	for _, fn := range prog.Functions {
		if fn.Pure {
			f, err := t.TranslatePure(fn)
			if err != nil {
				return nil, fmt.Errorf("translate %s: %w", fn.Name, err)
			}
			out.Functions = append(out.Functions, f)
			continue
		}
		m, err := t.TranslateMethod(fn)
		if err != nil {
			return nil, fmt.Errorf("translate %s: %w", fn.Name, err)
		}
		out.Methods = append(out.Methods, m)
	}
	return out, nil
}
