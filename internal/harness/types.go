package harness

import (
	"strings"

	"github.com/roach88/sif/internal/compiler"
)

// MemberOutcome is the translation of one source function.
type MemberOutcome struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Hash string `json:"hash,omitempty"`
	Text string `json:"text,omitempty"`

	// Error is set when the member failed to translate. ErrorKind is
	// "invalid", "unsupported" or "error"; Tag is the diagnostic tag of an
	// invalid program.
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Tag       string `json:"tag,omitempty"`
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true if every assertion held and the run replayed clean.
	Pass bool `json:"pass"`

	RunID      string                     `json:"run_id"`
	Members    []MemberOutcome            `json:"members"`
	Validation []compiler.ValidationError `json:"validation,omitempty"`

	// Errors holds assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Members: []MemberOutcome{},
		Errors:  []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Member returns the outcome for name.
func (r *Result) Member(name string) (MemberOutcome, bool) {
	for _, m := range r.Members {
		if m.Name == name {
			return m, true
		}
	}
	return MemberOutcome{}, false
}

// Output is the printed text of every translated member in declaration
// order, separated by blank lines.
func (r *Result) Output() string {
	var texts []string
	for _, m := range r.Members {
		if m.Error == "" {
			texts = append(texts, m.Text)
		}
	}
	return strings.Join(texts, "\n")
}
