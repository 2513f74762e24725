package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sif/internal/compiler"
)

func sampleResult() *Result {
	r := NewResult()
	r.Members = []MemberOutcome{
		{Name: "f", Kind: "method", Text: "method f()\n{\n  a := 1\n  b := 2\n  c := 3\n}\n"},
		{Name: "bad", Kind: "method", Error: "invalid program", ErrorKind: "invalid", Tag: "purity.violated"},
	}
	r.Validation = []compiler.ValidationError{{Code: compiler.ErrBreakOutsideLoop}}
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertTranslates, Member: "f"},
		{Type: AssertError, Member: "bad"},
		{Type: AssertError, Member: "bad", Kind: "invalid", Tag: "purity.violated"},
		{Type: AssertContains, Member: "f", Text: "b := 2"},
		{Type: AssertNotContains, Member: "f", Text: "d := 4"},
		{Type: AssertLineOrder, Member: "f", Lines: []string{"a := 1", "c := 3"}},
		{Type: AssertMemberCount, Count: 1},
		{Type: AssertValidation, Code: "E209"},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name string
		a    Assertion
		want string
	}{
		{"missing member", Assertion{Type: AssertTranslates, Member: "zz"}, "member not in program"},
		{"failed member", Assertion{Type: AssertTranslates, Member: "bad"}, "invalid program"},
		{"no error", Assertion{Type: AssertError, Member: "f"}, "Actual: translated"},
		{"wrong kind", Assertion{Type: AssertError, Member: "bad", Kind: "unsupported"}, "Expected: kind unsupported"},
		{"wrong tag", Assertion{Type: AssertError, Member: "bad", Tag: "invalid.break"}, "Expected: tag invalid.break"},
		{"not contained", Assertion{Type: AssertContains, Member: "f", Text: "z := 9"}, "Actual: not found"},
		{"contained", Assertion{Type: AssertNotContains, Member: "f", Text: "a := 1"}, "Actual: found"},
		{"out of order", Assertion{Type: AssertLineOrder, Member: "f", Lines: []string{"c := 3", "a := 1"}}, `"a := 1" missing or out of order`},
		{"partial line", Assertion{Type: AssertLineOrder, Member: "f", Lines: []string{"a :="}}, "missing or out of order"},
		{"count", Assertion{Type: AssertMemberCount, Count: 2}, "Actual: 1 translated members"},
		{"validation", Assertion{Type: AssertValidation, Code: "E201"}, "codes [E209]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.a})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestEvaluateAssertions_CollectsAll(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertTranslates, Member: "bad"},
		{Type: AssertMemberCount, Count: 5},
		{Type: AssertTranslates, Member: "f"},
	})
	assert.Len(t, errs, 2)
}

func TestAssertionErrorIncludesOutput(t *testing.T) {
	err := &AssertionError{
		Type:     AssertContains,
		Member:   "f",
		Expected: `output contains "x"`,
		Actual:   "not found",
		Output:   "line one\nline two\n",
	}
	want := "Assertion failed: contains (f)\n" +
		"  Expected: output contains \"x\"\n" +
		"  Actual: not found\n" +
		"\nOutput:\n" +
		"  line one\n" +
		"  line two\n"
	assert.Equal(t, want, err.Error())
}

func TestResultOutputSkipsFailedMembers(t *testing.T) {
	r := sampleResult()
	r.Members = append(r.Members, MemberOutcome{Name: "g", Text: "method g()\n"})
	assert.Equal(t, "method f()\n{\n  a := 1\n  b := 2\n  c := 3\n}\n\nmethod g()\n", r.Output())
}

func TestResultAddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
