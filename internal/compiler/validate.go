package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/translator"
)

// Validation error codes (E200-E299)
const (
	ErrInvalidName        = "E201" // function or variable name is not an identifier
	ErrDuplicateFunction  = "E202" // two functions share a name
	ErrDuplicateVariable  = "E203" // parameter or local declared twice
	ErrInvalidType        = "E204" // unknown type string
	ErrReservedName       = "E205" // name collides with a translator name
	ErrPureBody           = "E206" // pure function body is not a single return
	ErrUndefinedFunction  = "E207" // call to unknown function
	ErrArityMismatch      = "E208" // call with wrong argument count
	ErrBreakOutsideLoop   = "E209" // break or continue outside a loop
	ErrMisplacedInvariant = "E210" // Invariant(...) outside a loop prologue
	ErrShadowedBuiltin    = "E211" // function named like a contract builtin
)

// ValidationError represents a program validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var identRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// reserved names are produced by the translator and may not appear in
// source programs.
var reserved = map[string]bool{
	translator.ResultName: true,
	translator.TLName:     true,
	translator.NewTLName:  true,
	translator.PureResult: true,
}

// ValidateProgram checks the structural rules a program must meet before
// translation. Returns all errors found (does not fail-fast).
func ValidateProgram(prog *ast.Program) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for i, fn := range prog.Functions {
		field := fmt.Sprintf("functions[%d]", i)
		if fn.Name != "" {
			field = "functions." + fn.Name
		}

		// E201/E211/E202: function names
		switch {
		case !identRe.MatchString(fn.Name):
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("invalid function name %q", fn.Name),
				Code:    ErrInvalidName,
				Line:    fn.Line,
			})
		case translator.IsBuiltin(fn.Name):
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("function %q shadows a contract builtin", fn.Name),
				Code:    ErrShadowedBuiltin,
				Line:    fn.Line,
			})
		}
		if seen[fn.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate function name: %q", fn.Name),
				Code:    ErrDuplicateFunction,
				Line:    fn.Line,
			})
		}
		seen[fn.Name] = true

		errs = append(errs, validateSignature(fn, field)...)

		// E206: pure bodies
		if fn.Pure && !pureBodyOK(fn.Body) {
			errs = append(errs, ValidationError{
				Field:   field + ".body",
				Message: "pure function body must be empty or a single return of a value",
				Code:    ErrPureBody,
				Line:    fn.Line,
			})
		}

		errs = append(errs, validateBody(prog, fn, field)...)
	}
	return errs
}

func validateSignature(fn *ast.Function, field string) []ValidationError {
	var errs []ValidationError
	vars := make(map[string]bool)

	check := func(kind string, i int, p ast.Param) {
		f := fmt.Sprintf("%s.%s[%d]", field, kind, i)
		switch {
		case !identRe.MatchString(p.Name):
			errs = append(errs, ValidationError{
				Field: f + ".name", Message: fmt.Sprintf("invalid variable name %q", p.Name),
				Code: ErrInvalidName, Line: fn.Line,
			})
		case reserved[p.Name]:
			errs = append(errs, ValidationError{
				Field: f + ".name", Message: fmt.Sprintf("%q is reserved", p.Name),
				Code: ErrReservedName, Line: fn.Line,
			})
		}
		if vars[p.Name] {
			errs = append(errs, ValidationError{
				Field: f + ".name", Message: fmt.Sprintf("duplicate variable: %q", p.Name),
				Code: ErrDuplicateVariable, Line: fn.Line,
			})
		}
		vars[p.Name] = true
		if !p.Type.Valid() {
			errs = append(errs, ValidationError{
				Field: f + ".type", Message: fmt.Sprintf("invalid type %q", p.Type),
				Code: ErrInvalidType, Line: fn.Line,
			})
		}
	}
	for i, p := range fn.Params {
		check("params", i, p)
	}
	for i, l := range fn.Locals {
		check("locals", i, l)
	}

	// E205: x_p collides with the prime twin of x
	for name := range vars {
		if base, ok := strings.CutSuffix(name, "_p"); ok && vars[base] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%q collides with the prime copy of %q", name, base),
				Code:    ErrReservedName,
				Line:    fn.Line,
			})
		}
	}

	if fn.Result != ast.TypeNone && !fn.Result.Valid() {
		errs = append(errs, ValidationError{
			Field:   field + ".result",
			Message: fmt.Sprintf("invalid type %q", fn.Result),
			Code:    ErrInvalidType,
			Line:    fn.Line,
		})
	}
	return errs
}

func pureBodyOK(body []ast.Stmt) bool {
	switch len(body) {
	case 0:
		return true
	case 1:
		r, ok := body[0].(*ast.Return)
		return ok && r.Value != nil
	}
	return false
}

// validateBody walks statements keeping the loop depth, and every
// expression for calls.
func validateBody(prog *ast.Program, fn *ast.Function, field string) []ValidationError {
	var errs []ValidationError

	checkExpr := func(e ast.Expr) {
		ast.InspectExpr(e, func(x ast.Expr) bool {
			c, ok := x.(*ast.Call)
			if !ok {
				return true
			}
			target := prog.Lookup(c.Func)
			switch {
			case target != nil:
				if len(c.Args) != len(target.Params) {
					errs = append(errs, ValidationError{
						Field:   field + ".body",
						Message: fmt.Sprintf("%s expects %d arguments, got %d", c.Func, len(target.Params), len(c.Args)),
						Code:    ErrArityMismatch,
						Line:    c.Line,
					})
				}
			case c.Func == "Invariant":
				errs = append(errs, ValidationError{
					Field:   field + ".body",
					Message: "Invariant(...) is only allowed at the start of a loop body",
					Code:    ErrMisplacedInvariant,
					Line:    c.Line,
				})
			case !translator.IsBuiltin(c.Func):
				errs = append(errs, ValidationError{
					Field:   field + ".body",
					Message: fmt.Sprintf("call to undefined function %q", c.Func),
					Code:    ErrUndefinedFunction,
					Line:    c.Line,
				})
			}
			return true
		})
	}

	for _, e := range fn.Requires {
		checkExpr(e)
	}
	for _, e := range fn.Ensures {
		checkExpr(e)
	}

	var walk func(stmts []ast.Stmt, loops int)
	walk = func(stmts []ast.Stmt, loops int) {
		for _, s := range stmts {
			switch s := s.(type) {
			case *ast.Assign:
				for _, t := range s.Targets {
					checkExpr(t)
				}
				checkExpr(s.Value)
			case *ast.If:
				checkExpr(s.Test)
				walk(s.Body, loops)
				walk(s.OrElse, loops)
			case *ast.While:
				checkExpr(s.Test)
				start := translator.BodyStartIndex(s.Body)
				for _, inv := range s.Body[:start] {
					for _, a := range inv.(*ast.ExprStmt).X.(*ast.Call).Args {
						checkExpr(a)
					}
				}
				for _, inv := range s.Invariants {
					checkExpr(inv.Expr)
				}
				walk(s.Body[start:], loops+1)
			case *ast.Return:
				if s.Value != nil {
					checkExpr(s.Value)
				}
			case *ast.ExprStmt:
				checkExpr(s.X)
			case *ast.Assert:
				checkExpr(s.Test)
			case *ast.Break, *ast.Continue:
				if loops == 0 {
					errs = append(errs, ValidationError{
						Field:   field + ".body",
						Message: fmt.Sprintf("%s outside a loop", ast.NodeString(s)),
						Code:    ErrBreakOutsideLoop,
						Line:    s.Position().Line,
					})
				}
			}
		}
	}
	walk(fn.Body, 0)
	return errs
}
