package harness

import (
	"fmt"
	"strings"
)

// AssertionError is a failed assertion with enough context to debug it.
type AssertionError struct {
	Type     string
	Member   string
	Expected string
	Actual   string

	// Output is the member's printed text, if it translated.
	Output string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Member != "" {
		fmt.Fprintf(&buf, " (%s)", e.Member)
	}
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Output != "" {
		fmt.Fprintf(&buf, "\nOutput:\n")
		for _, line := range strings.Split(strings.TrimRight(e.Output, "\n"), "\n") {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns
// the failure messages. It does not stop at the first failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertTranslates:
		return assertTranslates(result, a)
	case AssertError:
		return assertError(result, a)
	case AssertContains:
		return assertContains(result, a, true)
	case AssertNotContains:
		return assertContains(result, a, false)
	case AssertLineOrder:
		return assertLineOrder(result, a)
	case AssertMemberCount:
		return assertMemberCount(result, a)
	case AssertValidation:
		return assertValidation(result, a)
	}
	return fmt.Errorf("unknown assertion type: %s", a.Type)
}

// translated returns the member's outcome, or an AssertionError if it is
// missing or failed.
func translated(result *Result, a Assertion) (MemberOutcome, error) {
	m, ok := result.Member(a.Member)
	if !ok {
		return m, &AssertionError{Type: a.Type, Member: a.Member,
			Expected: "member translated", Actual: "member not in program"}
	}
	if m.Error != "" {
		return m, &AssertionError{Type: a.Type, Member: a.Member,
			Expected: "member translated", Actual: m.Error}
	}
	return m, nil
}

func assertTranslates(result *Result, a Assertion) error {
	_, err := translated(result, a)
	return err
}

func assertError(result *Result, a Assertion) error {
	m, ok := result.Member(a.Member)
	if !ok {
		return &AssertionError{Type: a.Type, Member: a.Member,
			Expected: "translation error", Actual: "member not in program"}
	}
	if m.Error == "" {
		return &AssertionError{Type: a.Type, Member: a.Member,
			Expected: "translation error", Actual: "translated", Output: m.Text}
	}
	if a.Kind != "" && a.Kind != m.ErrorKind {
		return &AssertionError{Type: a.Type, Member: a.Member,
			Expected: "kind " + a.Kind, Actual: fmt.Sprintf("kind %s: %s", m.ErrorKind, m.Error)}
	}
	if a.Tag != "" && a.Tag != m.Tag {
		return &AssertionError{Type: a.Type, Member: a.Member,
			Expected: "tag " + a.Tag, Actual: fmt.Sprintf("tag %q: %s", m.Tag, m.Error)}
	}
	return nil
}

func assertContains(result *Result, a Assertion, want bool) error {
	m, err := translated(result, a)
	if err != nil {
		return err
	}
	if strings.Contains(m.Text, a.Text) == want {
		return nil
	}
	expected, actual := fmt.Sprintf("output contains %q", a.Text), "not found"
	if !want {
		expected, actual = fmt.Sprintf("output without %q", a.Text), "found"
	}
	return &AssertionError{Type: a.Type, Member: a.Member,
		Expected: expected, Actual: actual, Output: m.Text}
}

// assertLineOrder matches each expected line against a whole, trimmed
// output line. Other lines may come between them.
func assertLineOrder(result *Result, a Assertion) error {
	m, err := translated(result, a)
	if err != nil {
		return err
	}
	lines := strings.Split(m.Text, "\n")
	pos := 0
	for _, want := range a.Lines {
		found := false
		for pos < len(lines) {
			got := strings.TrimSpace(lines[pos])
			pos++
			if got == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{Type: a.Type, Member: a.Member,
				Expected: fmt.Sprintf("lines in order: %q", a.Lines),
				Actual:   fmt.Sprintf("%q missing or out of order", want),
				Output:   m.Text}
		}
	}
	return nil
}

func assertMemberCount(result *Result, a Assertion) error {
	n := 0
	for _, m := range result.Members {
		if m.Error == "" {
			n++
		}
	}
	if n != a.Count {
		return &AssertionError{Type: a.Type,
			Expected: fmt.Sprintf("%d translated members", a.Count),
			Actual:   fmt.Sprintf("%d translated members", n)}
	}
	return nil
}

func assertValidation(result *Result, a Assertion) error {
	var codes []string
	for _, v := range result.Validation {
		if v.Code == a.Code {
			return nil
		}
		codes = append(codes, v.Code)
	}
	return &AssertionError{Type: a.Type,
		Expected: "validation error " + a.Code,
		Actual:   fmt.Sprintf("codes %v", codes)}
}
