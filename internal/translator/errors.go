package translator

import (
	"errors"
	"fmt"

	"github.com/roach88/sif/internal/ast"
)

// Diagnostic tags carried by InvalidProgramError.
const (
	TagPurityViolated          = "purity.violated"
	TagInvalidContractPosition = "invalid.contract.position"
	TagUndefinedVariable       = "undefined.variable"
	TagUndefinedFunction       = "undefined.function"
	TagUntypedVariable         = "untyped.variable"
	TagInvalidBreak            = "invalid.break"
	TagArityMismatch           = "call.arity"
)

// UnsupportedError reports a source construct that cannot be soundly
// translated, such as a subscript assignment target.
type UnsupportedError struct {
	Node   ast.Node
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported construct at %s: %s (%s)",
		e.Node.Position(), ast.NodeString(e.Node), e.Reason)
}

// InvalidProgramError reports a violated structural precondition, such as
// a branch condition with side effects.
type InvalidProgramError struct {
	Node ast.Node
	Tag  string
}

func (e *InvalidProgramError) Error() string {
	return fmt.Sprintf("invalid program at %s: %s: %s",
		e.Node.Position(), e.Tag, ast.NodeString(e.Node))
}

func unsupported(n ast.Node, reason string) error {
	return &UnsupportedError{Node: n, Reason: reason}
}

func invalid(n ast.Node, tag string) error {
	return &InvalidProgramError{Node: n, Tag: tag}
}

// IsUnsupported reports whether err wraps an UnsupportedError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}

// IsInvalidProgram reports whether err wraps an InvalidProgramError.
func IsInvalidProgram(err error) bool {
	var ie *InvalidProgramError
	return errors.As(err, &ie)
}

// InvalidTag returns the tag of a wrapped InvalidProgramError, or "".
func InvalidTag(err error) string {
	var ie *InvalidProgramError
	if errors.As(err, &ie) {
		return ie.Tag
	}
	return ""
}
