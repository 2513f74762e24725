package store

import (
	"fmt"

	"github.com/roach88/sif/internal/ir"
)

// Member kinds.
const (
	KindMethod   = "method"
	KindFunction = "function"
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one engine translation of a program.
type Run struct {
	ID            string `json:"id"`
	ProgramHash   string `json:"program_hash"`
	Mode          string `json:"mode"`
	Source        string `json:"source,omitempty"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
	IRVersion     string `json:"ir_version"`
	EngineVersion string `json:"engine_version"`
	Seq           int64  `json:"seq"`
}

// Member is a translated method or function of a run.
type Member struct {
	RunID string `json:"run_id"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Hash  string `json:"ir_hash"`
	JSON  string `json:"-"`
	Text  string `json:"ir_text"`
	Seq   int64  `json:"seq"`
}

// MethodMember builds the stored form of a translated method.
func MethodMember(runID string, m *ir.Method, seq int64) (Member, error) {
	data, err := ir.MarshalCanonical(ir.EncodeMethod(m))
	if err != nil {
		return Member{}, fmt.Errorf("marshal method %s: %w", m.Name, err)
	}
	h, err := ir.MethodHash(m)
	if err != nil {
		return Member{}, err
	}
	return Member{
		RunID: runID,
		Name:  m.Name,
		Kind:  KindMethod,
		Hash:  h,
		JSON:  string(data),
		Text:  ir.PrintMethod(m),
		Seq:   seq,
	}, nil
}

// FunctionMember builds the stored form of a translated pure function.
func FunctionMember(runID string, f *ir.Function, seq int64) (Member, error) {
	data, err := ir.MarshalCanonical(ir.EncodeFunction(f))
	if err != nil {
		return Member{}, fmt.Errorf("marshal function %s: %w", f.Name, err)
	}
	h, err := ir.FunctionHash(f)
	if err != nil {
		return Member{}, err
	}
	return Member{
		RunID: runID,
		Name:  f.Name,
		Kind:  KindFunction,
		Hash:  h,
		JSON:  string(data),
		Text:  ir.Print(&ir.Program{Functions: []*ir.Function{f}}),
		Seq:   seq,
	}, nil
}

// domain returns the hash domain of a member kind.
func domain(kind string) (string, error) {
	switch kind {
	case KindMethod:
		return ir.DomainMethod, nil
	case KindFunction:
		return ir.DomainFunction, nil
	}
	return "", fmt.Errorf("unknown member kind %q", kind)
}
