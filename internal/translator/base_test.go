package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/ir"
	tu "github.com/roach88/sif/internal/testutil"
)

func TestBaseMethodHasNoTimelevel(t *testing.T) {
	fn := tu.Func("f", tu.Params("n", "int"), ast.TypeInt,
		tu.Assign(tu.Name("i"), tu.Int(0)),
		tu.While(tu.Cmp("<", tu.Name("i"), tu.Name("n")),
			tu.ExprStmt(tu.Call("Invariant", tu.Cmp("<=", tu.Name("i"), tu.Name("n")))),
			tu.Assign(tu.Name("i"), tu.Bin("+", tu.Name("i"), tu.Int(1))),
		),
		tu.Return(tu.Name("i")),
	)
	fn.Requires = []ast.Expr{tu.Cmp(">=", tu.Name("n"), tu.Int(0))}
	Names.Reset()
	b := NewBase(ir.NewNodeBuilder(), NewProgramResolver(tu.Program(fn)))

	m, err := b.TranslateMethod(fn)
	require.NoError(t, err)

	want := `method f(n: Int) returns (_res: Int)
  requires n >= 0
{
  var i: Int
  i := 0
  while (i < n)
    invariant i <= n
  {
    i := i + 1
    label loop_end_2
  }
  label post_loop_1
  _res := i
  goto __end
  label __end
}
`
	assert.Equal(t, want, ir.PrintMethod(m))
}

func TestBaseImpureCallHasSingleResult(t *testing.T) {
	g := tu.Func("g", tu.Params("a", "int"), ast.TypeInt, tu.Return(tu.Name("a")))
	stmt := tu.Assign(tu.Name("y"), tu.Call("g", tu.Int(3)))
	fn := tu.Func("f", nil, ast.TypeNone, stmt)
	Names.Reset()
	b := NewBase(ir.NewNodeBuilder(), NewProgramResolver(tu.Program(fn, g)))
	fc, err := b.NewFunctionCtx(fn)
	require.NoError(t, err)

	out, err := b.TranslateStmt(NewContext(fc), stmt)
	require.NoError(t, err)
	assert.Equal(t, []string{"g_1 := g(3)", "y := g_1"}, lines(out))
}

func TestBaseLowIsUnsupported(t *testing.T) {
	fn := tu.Func("f", tu.Params("x", "int"), ast.TypeNone)
	fn.Requires = []ast.Expr{tu.Call("Low", tu.Name("x"))}
	b := NewBase(ir.NewNodeBuilder(), NewProgramResolver(tu.Program(fn)))

	_, err := b.TranslateMethod(fn)
	assert.True(t, IsUnsupported(err))
}

func TestTranslatePure(t *testing.T) {
	fn := tu.PureFunc("double", tu.Params("x", "int"), ast.TypeInt,
		tu.Return(tu.Bin("*", tu.Name("x"), tu.Int(2))))
	fn.Ensures = []ast.Expr{tu.Cmp("==", tu.Call("Result"), tu.Bin("+", tu.Name("x"), tu.Name("x")))}
	s := NewSIF(ir.NewNodeBuilder(), NewProgramResolver(tu.Program(fn)))

	f, err := s.TranslatePure(fn)
	require.NoError(t, err)

	want := `function double(x: Int): Int
  ensures result == x + x
{
  x * 2
}
`
	assert.Equal(t, want, ir.Print(&ir.Program{Functions: []*ir.Function{f}}))
}

func TestTranslatePureAbstract(t *testing.T) {
	fn := tu.PureFunc("p", tu.Params("x", "int"), ast.TypeBool)
	s := NewSIF(ir.NewNodeBuilder(), NewProgramResolver(tu.Program(fn)))

	f, err := s.TranslatePure(fn)
	require.NoError(t, err)
	assert.Nil(t, f.Body)
	assert.Equal(t, ir.Bool, f.Result)
}

func TestTranslatePureRejectsStatements(t *testing.T) {
	fn := tu.PureFunc("p", tu.Params("x", "int"), ast.TypeInt,
		tu.Assign(tu.Name("y"), tu.Int(1)),
		tu.Return(tu.Name("y")),
	)
	s := NewSIF(ir.NewNodeBuilder(), NewProgramResolver(tu.Program(fn)))

	_, err := s.TranslatePure(fn)
	assert.True(t, IsUnsupported(err))
}

func TestPureFunctionCannotCallImpure(t *testing.T) {
	g := tu.Func("g", nil, ast.TypeInt, tu.Return(tu.Int(1)))
	fn := tu.PureFunc("p", nil, ast.TypeInt, tu.Return(tu.Call("g")))
	s := NewSIF(ir.NewNodeBuilder(), NewProgramResolver(tu.Program(fn, g)))

	_, err := s.TranslatePure(fn)
	assert.Equal(t, TagPurityViolated, InvalidTag(err))
}

func TestContractCallingImpureIsInvalid(t *testing.T) {
	g := tu.Func("g", nil, ast.TypeBool, tu.Return(tu.Bool(true)))
	fn := tu.Func("f", nil, ast.TypeNone)
	fn.Requires = []ast.Expr{tu.Call("g")}
	s := NewSIF(ir.NewNodeBuilder(), NewProgramResolver(tu.Program(fn, g)))

	_, err := s.TranslateMethod(fn)
	assert.Equal(t, TagPurityViolated, InvalidTag(err))
}

func TestCallArityAndUnknownFunction(t *testing.T) {
	g := tu.Func("g", tu.Params("a", "int"), ast.TypeInt, tu.Return(tu.Name("a")))

	tests := []struct {
		name string
		call *ast.Call
		tag  string
	}{
		{"too few args", tu.Call("g"), TagArityMismatch},
		{"unknown", tu.Call("nope"), TagUndefinedFunction},
		{"len arity", tu.Call("len"), TagArityMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := tu.ExprStmt(tt.call)
			fn := tu.Func("f", nil, ast.TypeNone, stmt)
			s, ctx := newSIFCtx(t, fn, g)

			_, err := s.TranslateStmt(ctx, stmt)
			assert.Equal(t, tt.tag, InvalidTag(err))
		})
	}
}

func TestContractDedupesIdenticalExecutions(t *testing.T) {
	fn := tu.Func("f", nil, ast.TypeNone)
	fn.Requires = []ast.Expr{tu.Bool(true), tu.Call("MustTerminate", tu.Int(2))}
	s := NewSIF(ir.NewNodeBuilder(), NewProgramResolver(tu.Program(fn)))

	m, err := s.TranslateMethod(fn)
	require.NoError(t, err)
	require.Len(t, m.Pre, 2)
	assert.Equal(t, "true", ir.PrintExpr(m.Pre[0]))
	assert.Equal(t, "MustTerminate(2)", ir.PrintExpr(m.Pre[1]))
}

func TestContractOldAndImplies(t *testing.T) {
	fn := tu.Func("f", tu.Params("x", "int"), ast.TypeInt, tu.Return(tu.Name("x")))
	fn.Ensures = []ast.Expr{
		tu.Call("Implies", tu.Cmp(">", tu.Name("x"), tu.Int(0)), tu.Cmp("==", tu.Call("Result"), tu.Call("Old", tu.Name("x")))),
	}
	s := NewSIF(ir.NewNodeBuilder(), NewProgramResolver(tu.Program(fn)))

	m, err := s.TranslateMethod(fn)
	require.NoError(t, err)
	require.Len(t, m.Post, 1)
	assert.Equal(t,
		"(x > 0 ==> _res == old(x)) && (x_p > 0 ==> _res_p == old(x_p))",
		ir.PrintExpr(m.Post[0]))
}

func TestInvariantOutsideLoopIsInvalid(t *testing.T) {
	stmt := tu.ExprStmt(tu.Call("Invariant", tu.Bool(true)))
	fn := tu.Func("f", nil, ast.TypeNone, stmt)
	s, ctx := newSIFCtx(t, fn)

	_, err := s.TranslateStmt(ctx, stmt)
	assert.Equal(t, TagInvalidContractPosition, InvalidTag(err))
}

func TestNewTranslatorModes(t *testing.T) {
	b := ir.NewNodeBuilder()
	r := NewProgramResolver(nil)

	tr, err := New(ModeSIF, b, r)
	require.NoError(t, err)
	assert.IsType(t, &SIF{}, tr)

	tr, err = New(ModeBase, b, r)
	require.NoError(t, err)
	assert.IsType(t, &Base{}, tr)

	_, err = New("quantum", b, r)
	assert.Error(t, err)
}
