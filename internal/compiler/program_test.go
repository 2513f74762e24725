package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sif/internal/ast"
)

func compile(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src, cue.Filename("prog.cue"))
	require.NoError(t, v.Err())
	return CompileProgram(v.LookupPath(cue.ParsePath("program")))
}

func TestCompileProgramBasic(t *testing.T) {
	prog, err := compile(t, `
		program: functions: {
			double: {
				pure: true
				params: [{name: "x", type: "int"}]
				result: "int"
				body: [{return: {binop: {op: "*", left: {name: "x"}, right: {int: 2}}}}]
			}
			choose: {
				params: [{name: "c", type: "bool"}, {name: "x", type: "int"}]
				result: "int"
				requires: [{call: {func: "Low", args: [{name: "c"}]}}]
				ensures: [{call: {func: "Low", args: [{call: {func: "Result"}}]}}]
				body: [
					{"if": {
						test: {name: "c"}
						body: [{assign: {target: {name: "y"}, value: {call: {func: "double", args: [{name: "x"}]}}}}]
						orelse: [{assign: {target: {name: "y"}, value: {int: 0}}}]
					}},
					{return: {name: "y"}},
				]
			}
		}
	`)
	require.NoError(t, err)
	require.Len(t, prog.Functions, 2)

	double := prog.Functions[0]
	assert.Equal(t, "double", double.Name)
	assert.True(t, double.Pure)
	assert.Equal(t, []ast.Param{{Name: "x", Type: "int"}}, double.Params)
	assert.Equal(t, ast.TypeInt, double.Result)
	require.Len(t, double.Body, 1)
	assert.Equal(t, "return (x * 2)", ast.NodeString(double.Body[0]))

	choose := prog.Functions[1]
	assert.False(t, choose.Pure)
	assert.Equal(t, "Low(c)", ast.ExprString(choose.Requires[0]))
	assert.Equal(t, "Low(Result())", ast.ExprString(choose.Ensures[0]))

	s, ok := choose.Body[0].(*ast.If)
	require.True(t, ok)
	assert.Equal(t, "y = double(x)", ast.NodeString(s.Body[0]))
	assert.Equal(t, "y = 0", ast.NodeString(s.OrElse[0]))
	assert.Equal(t, "prog.cue", s.File)
	assert.Greater(t, s.Line, 0)
}

func TestCompileStatementKinds(t *testing.T) {
	prog, err := compile(t, `
		program: functions: f: {
			params: [{name: "n", type: "int"}]
			locals: [{name: "i", type: "int"}]
			body: [
				{assign: {target: {name: "i"}, value: {int: 0}}},
				{while: {
					test: {compare: {op: "<", left: {name: "i"}, right: {name: "n"}}}
					invariants: [{
						expr: {compare: {op: "<=", left: {name: "k"}, right: {name: "n"}}}
						aliases: {k: {name: "i"}}
					}]
					body: [
						{expr: {call: {func: "Invariant", args: [{compare: {op: ">=", left: {name: "i"}, right: {int: 0}}}]}}},
						{"if": {test: {bool: true}, body: [{"break": true}], orelse: [{"continue": true}]}},
						{assign: {target: {name: "i"}, value: {binop: {op: "+", left: {name: "i"}, right: {int: 1}}}}},
					]
				}},
				{assert: {unary: {op: "not", operand: {boolop: {op: "or", values: [{bool: false}, {none: true}]}}}}},
				{pass: true},
				{return: null},
			]
		}
	`)
	require.NoError(t, err)
	fn := prog.Functions[0]
	assert.Equal(t, []ast.Param{{Name: "i", Type: "int"}}, fn.Locals)
	require.Len(t, fn.Body, 5)

	w := fn.Body[1].(*ast.While)
	require.Len(t, w.Invariants, 1)
	assert.Equal(t, "(k <= n)", ast.ExprString(w.Invariants[0].Expr))
	assert.Equal(t, "i", ast.ExprString(w.Invariants[0].Aliases["k"]))
	require.Len(t, w.Body, 3)
	assert.IsType(t, &ast.ExprStmt{}, w.Body[0])
	inner := w.Body[1].(*ast.If)
	assert.IsType(t, &ast.Break{}, inner.Body[0])
	assert.IsType(t, &ast.Continue{}, inner.OrElse[0])

	assert.Equal(t, "not (False or None)", ast.ExprString(fn.Body[2].(*ast.Assert).Test))
	assert.IsType(t, &ast.Pass{}, fn.Body[3])
	assert.Nil(t, fn.Body[4].(*ast.Return).Value)
}

func TestCompileSubscriptAndTargets(t *testing.T) {
	prog, err := compile(t, `
		program: functions: f: {
			params: [{name: "xs", type: "list[int]"}]
			body: [
				{assign: {target: {subscript: {value: {name: "xs"}, index: {int: 0}}}, value: {int: 1}}},
				{assign: {targets: [{name: "a"}, {name: "b"}], value: {int: 2}}},
			]
		}
	`)
	require.NoError(t, err)
	body := prog.Functions[0].Body
	assert.Equal(t, "xs[0] = 1", ast.NodeString(body[0]))
	assert.Len(t, body[1].(*ast.Assign).Targets, 2)
}

func TestCompileProgramErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "two kind keys",
			src:  `program: functions: f: body: [{pass: true, "break": true}]`,
			want: "exactly one kind key",
		},
		{
			name: "unknown statement",
			src:  `program: functions: f: body: [{loop: true}]`,
			want: `unknown statement kind "loop"`,
		},
		{
			name: "unknown expression",
			src:  `program: functions: f: body: [{expr: {lambda: 1}}]`,
			want: `unknown expression kind "lambda"`,
		},
		{
			name: "missing value",
			src:  `program: functions: f: body: [{assign: {target: {name: "x"}}}]`,
			want: "assign.value",
		},
		{
			name: "missing param type",
			src:  `program: functions: f: params: [{name: "x"}]`,
			want: "params.type",
		},
		{
			name: "float literal",
			src:  `program: functions: f: body: [{expr: {int: 1.5}}]`,
			want: "integer literal required",
		},
		{
			name: "expression not a struct",
			src:  `program: functions: f: body: [{expr: 3}]`,
			want: "must be a struct",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var ce *CompileError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestCompileEmptyProgram(t *testing.T) {
	prog, err := compile(t, `program: {}`)
	require.NoError(t, err)
	assert.Empty(t, prog.Functions)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
program: functions: id: {
	params: [{name: "x", type: "int"}]
	result: "int"
	body: [{return: {name: "x"}}]
}
`), 0o644))

	prog, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, prog.Functions, 1)
	assert.Equal(t, path, prog.Functions[0].File)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.cue"))
	assert.Error(t, err)

	noProgram := filepath.Join(dir, "np.cue")
	require.NoError(t, os.WriteFile(noProgram, []byte(`other: 1`), 0o644))
	_, err = LoadFile(noProgram)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "program is required")

	bad := filepath.Join(dir, "bad.cue")
	require.NoError(t, os.WriteFile(bad, []byte(`program: {a: 1, a: 2}`), 0o644))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}
