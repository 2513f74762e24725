package translator

import "github.com/roach88/sif/internal/ast"

// Target is the resolved callee of a call site.
type Target struct {
	Name    string
	Pure    bool
	Builtin bool
	Params  []ast.Param
	Result  ast.Type
}

// PurityResolver resolves call sites to their targets.
type PurityResolver interface {
	Resolve(call *ast.Call) (Target, bool)
}

// builtins is the contract vocabulary. All of it is pure.
var builtins = map[string]ast.Type{
	"PSet":          ast.Type("PSet"),
	"len":           ast.TypeInt,
	"token":         ast.TypeBool,
	"ctoken":        ast.TypeBool,
	"MustTerminate": ast.TypeBool,
	"MustRelease":   ast.TypeBool,
	"Implies":       ast.TypeBool,
	"Low":           ast.TypeBool,
	"Result":        ast.TypeNone,
	"Old":           ast.TypeNone,
	"Invariant":     ast.TypeBool,
}

// IsBuiltin reports whether name belongs to the contract vocabulary.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// ProgramResolver resolves calls against the functions of a program and
// the contract vocabulary.
type ProgramResolver struct {
	prog *ast.Program
}

// NewProgramResolver returns a resolver over prog.
func NewProgramResolver(prog *ast.Program) *ProgramResolver {
	return &ProgramResolver{prog: prog}
}

// Resolve implements PurityResolver. Program functions shadow builtins.
func (r *ProgramResolver) Resolve(call *ast.Call) (Target, bool) {
	if r.prog != nil {
		if fn := r.prog.Lookup(call.Func); fn != nil {
			return Target{
				Name:   fn.Name,
				Pure:   fn.Pure,
				Params: fn.Params,
				Result: fn.Result,
			}, true
		}
	}
	if res, ok := builtins[call.Func]; ok {
		return Target{Name: call.Func, Pure: true, Builtin: true, Result: res}, true
	}
	return Target{}, false
}

// Program returns the program the resolver was built over.
func (r *ProgramResolver) Program() *ast.Program {
	return r.prog
}
