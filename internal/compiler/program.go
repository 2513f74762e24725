package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/sif/internal/ast"
)

// LoadFile compiles a single CUE file and returns the program found under
// its top-level `program` field.
func LoadFile(path string) (*ast.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	v := cuecontext.New().CompileBytes(src, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	pv := v.LookupPath(cue.ParsePath("program"))
	if !pv.Exists() {
		return nil, &CompileError{
			Field:   "program",
			Message: "program is required",
			Pos:     v.Pos(),
		}
	}
	return CompileProgram(pv)
}

// CompileProgram parses a CUE value into a source program.
//
// The value is the program struct itself:
//
//	program: functions: {
//		double: {
//			pure:   true
//			params: [{name: "x", type: "int"}]
//			result: "int"
//			body: [{return: {binop: {op: "*", left: {name: "x"}, right: {int: 2}}}}]
//		}
//	}
//
// Functions keep their declaration order.
func CompileProgram(v cue.Value) (*ast.Program, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	prog := &ast.Program{}

	fv := v.LookupPath(cue.ParsePath("functions"))
	if !fv.Exists() {
		return prog, nil
	}
	iter, err := fv.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		fn, err := CompileFunction(iter.Value())
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog, nil
}

// CompileFunction parses one function. Its name is the last label of the
// value's path.
func CompileFunction(v cue.Value) (*ast.Function, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	fn := &ast.Function{Pos: position(v)}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		fn.Name = sels[len(sels)-1].Unquoted()
	}

	var err error
	if pv := lookup(v, "pure"); pv.Exists() {
		if fn.Pure, err = pv.Bool(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	if fn.Params, err = parseParams(v, "params"); err != nil {
		return nil, err
	}
	if fn.Locals, err = parseParams(v, "locals"); err != nil {
		return nil, err
	}
	if rv := lookup(v, "result"); rv.Exists() {
		s, err := rv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		fn.Result = ast.Type(s)
	}
	if fn.Requires, err = parseExprList(lookup(v, "requires")); err != nil {
		return nil, err
	}
	if fn.Ensures, err = parseExprList(lookup(v, "ensures")); err != nil {
		return nil, err
	}
	if fn.Body, err = parseBody(lookup(v, "body")); err != nil {
		return nil, err
	}
	return fn, nil
}

func parseParams(v cue.Value, field string) ([]ast.Param, error) {
	lv := lookup(v, field)
	if !lv.Exists() {
		return nil, nil
	}
	iter, err := lv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var params []ast.Param
	for iter.Next() {
		pv := iter.Value()
		name, err := requiredString(pv, "name", field)
		if err != nil {
			return nil, err
		}
		typ, err := requiredString(pv, "type", field)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: name, Type: ast.Type(typ)})
	}
	return params, nil
}

func parseBody(v cue.Value) ([]ast.Stmt, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var stmts []ast.Stmt
	for iter.Next() {
		s, err := parseStmt(iter.Value())
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// parseStmt decodes a statement. Each statement is a struct with exactly
// one kind key.
func parseStmt(v cue.Value) (ast.Stmt, error) {
	kind, body, err := singleKey(v, "statement")
	if err != nil {
		return nil, err
	}
	p := position(v)

	switch kind {
	case "assign":
		a := &ast.Assign{Pos: p}
		if tv := lookup(body, "target"); tv.Exists() {
			t, err := parseExpr(tv)
			if err != nil {
				return nil, err
			}
			a.Targets = []ast.Expr{t}
		} else if a.Targets, err = parseExprList(lookup(body, "targets")); err != nil {
			return nil, err
		}
		if len(a.Targets) == 0 {
			return nil, &CompileError{Field: "assign.target", Message: "assignment needs a target", Pos: body.Pos()}
		}
		if a.Value, err = requiredExpr(body, "value", "assign"); err != nil {
			return nil, err
		}
		return a, nil

	case "if":
		s := &ast.If{Pos: p}
		if s.Test, err = requiredExpr(body, "test", "if"); err != nil {
			return nil, err
		}
		if s.Body, err = parseBody(lookup(body, "body")); err != nil {
			return nil, err
		}
		if s.OrElse, err = parseBody(lookup(body, "orelse")); err != nil {
			return nil, err
		}
		return s, nil

	case "while":
		w := &ast.While{Pos: p}
		if w.Test, err = requiredExpr(body, "test", "while"); err != nil {
			return nil, err
		}
		if w.Body, err = parseBody(lookup(body, "body")); err != nil {
			return nil, err
		}
		if w.Invariants, err = parseInvariants(lookup(body, "invariants")); err != nil {
			return nil, err
		}
		return w, nil

	case "return":
		r := &ast.Return{Pos: p}
		if body.IsNull() {
			return r, nil
		}
		if r.Value, err = parseExpr(body); err != nil {
			return nil, err
		}
		return r, nil

	case "expr":
		x, err := parseExpr(body)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Pos: p, X: x}, nil

	case "assert":
		x, err := parseExpr(body)
		if err != nil {
			return nil, err
		}
		return &ast.Assert{Pos: p, Test: x}, nil

	case "pass":
		return &ast.Pass{Pos: p}, nil
	case "break":
		return &ast.Break{Pos: p}, nil
	case "continue":
		return &ast.Continue{Pos: p}, nil
	}
	return nil, &CompileError{
		Field:   "statement",
		Message: fmt.Sprintf("unknown statement kind %q", kind),
		Pos:     v.Pos(),
	}
}

func parseInvariants(v cue.Value) ([]ast.LoopInvariant, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var invs []ast.LoopInvariant
	for iter.Next() {
		iv := iter.Value()
		e, err := requiredExpr(iv, "expr", "invariant")
		if err != nil {
			return nil, err
		}
		inv := ast.LoopInvariant{Expr: e}

		if av := lookup(iv, "aliases"); av.Exists() {
			fields, err := av.Fields()
			if err != nil {
				return nil, formatCUEError(err)
			}
			inv.Aliases = make(map[string]ast.Expr)
			for fields.Next() {
				sub, err := parseExpr(fields.Value())
				if err != nil {
					return nil, err
				}
				inv.Aliases[fields.Selector().Unquoted()] = sub
			}
		}
		invs = append(invs, inv)
	}
	return invs, nil
}

func parseExprList(v cue.Value) ([]ast.Expr, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []ast.Expr
	for iter.Next() {
		e, err := parseExpr(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// parseExpr decodes an expression. Like statements, each expression is a
// struct with exactly one kind key.
func parseExpr(v cue.Value) (ast.Expr, error) {
	kind, body, err := singleKey(v, "expression")
	if err != nil {
		return nil, err
	}
	p := position(v)

	switch kind {
	case "name":
		id, err := body.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.Name{Pos: p, ID: id}, nil

	case "int":
		n, err := body.Int64()
		if err != nil {
			return nil, &CompileError{Field: "int", Message: "integer literal required", Pos: body.Pos()}
		}
		return &ast.IntLit{Pos: p, Value: n}, nil

	case "bool":
		b, err := body.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.BoolLit{Pos: p, Value: b}, nil

	case "none":
		return &ast.NoneLit{Pos: p}, nil

	case "binop":
		op, l, r, err := binaryParts(body, kind)
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Pos: p, Op: op, Left: l, Right: r}, nil

	case "compare":
		op, l, r, err := binaryParts(body, kind)
		if err != nil {
			return nil, err
		}
		return &ast.Compare{Pos: p, Op: op, Left: l, Right: r}, nil

	case "boolop":
		op, err := requiredString(body, "op", kind)
		if err != nil {
			return nil, err
		}
		values, err := parseExprList(lookup(body, "values"))
		if err != nil {
			return nil, err
		}
		return &ast.BoolOp{Pos: p, Op: op, Values: values}, nil

	case "unary":
		op, err := requiredString(body, "op", kind)
		if err != nil {
			return nil, err
		}
		x, err := requiredExpr(body, "operand", kind)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Pos: p, Op: op, Operand: x}, nil

	case "call":
		name, err := requiredString(body, "func", kind)
		if err != nil {
			return nil, err
		}
		args, err := parseExprList(lookup(body, "args"))
		if err != nil {
			return nil, err
		}
		return &ast.Call{Pos: p, Func: name, Args: args}, nil

	case "subscript":
		val, err := requiredExpr(body, "value", kind)
		if err != nil {
			return nil, err
		}
		idx, err := requiredExpr(body, "index", kind)
		if err != nil {
			return nil, err
		}
		return &ast.Subscript{Pos: p, Value: val, Index: idx}, nil
	}
	return nil, &CompileError{
		Field:   "expression",
		Message: fmt.Sprintf("unknown expression kind %q", kind),
		Pos:     v.Pos(),
	}
}

func binaryParts(v cue.Value, kind string) (string, ast.Expr, ast.Expr, error) {
	op, err := requiredString(v, "op", kind)
	if err != nil {
		return "", nil, nil, err
	}
	l, err := requiredExpr(v, "left", kind)
	if err != nil {
		return "", nil, nil, err
	}
	r, err := requiredExpr(v, "right", kind)
	if err != nil {
		return "", nil, nil, err
	}
	return op, l, r, nil
}

// singleKey returns the only field of a node struct.
func singleKey(v cue.Value, what string) (string, cue.Value, error) {
	if v.IncompleteKind() != cue.StructKind {
		return "", cue.Value{}, &CompileError{
			Field:   what,
			Message: fmt.Sprintf("%s must be a struct, got %v", what, v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
	iter, err := v.Fields()
	if err != nil {
		return "", cue.Value{}, formatCUEError(err)
	}
	var kind string
	var body cue.Value
	n := 0
	for iter.Next() {
		kind, body = iter.Selector().Unquoted(), iter.Value()
		n++
	}
	if n != 1 {
		return "", cue.Value{}, &CompileError{
			Field:   what,
			Message: fmt.Sprintf("%s must have exactly one kind key, got %d", what, n),
			Pos:     v.Pos(),
		}
	}
	return kind, body, nil
}

func requiredString(v cue.Value, field, parent string) (string, error) {
	fv := lookup(v, field)
	if !fv.Exists() {
		return "", &CompileError{
			Field:   parent + "." + field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func requiredExpr(v cue.Value, field, parent string) (ast.Expr, error) {
	fv := lookup(v, field)
	if !fv.Exists() {
		return nil, &CompileError{
			Field:   parent + "." + field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	return parseExpr(fv)
}

// lookup reads a field by literal name. Statement kinds such as `if` are
// CUE keywords, so paths are built from string selectors rather than parsed.
func lookup(v cue.Value, field string) cue.Value {
	return v.LookupPath(cue.MakePath(cue.Str(field)))
}

func position(v cue.Value) ast.Pos {
	tp := v.Pos()
	if !tp.IsValid() {
		return ast.Pos{}
	}
	return ast.Pos{File: tp.Filename(), Line: tp.Line(), Col: tp.Column()}
}
