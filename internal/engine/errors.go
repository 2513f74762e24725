package engine

import (
	"errors"
	"fmt"
)

// RuntimeErrorCode categorizes engine errors.
type RuntimeErrorCode string

const (
	// ErrCodeTranslationFailed indicates a member could not be translated.
	ErrCodeTranslationFailed RuntimeErrorCode = "TRANSLATION_FAILED"

	// ErrCodeReplayMismatch indicates a replayed run no longer matches its log.
	ErrCodeReplayMismatch RuntimeErrorCode = "REPLAY_MISMATCH"

	// ErrCodeRunNotFound indicates the requested run is not in the store.
	ErrCodeRunNotFound RuntimeErrorCode = "RUN_NOT_FOUND"

	// ErrCodeNoStore indicates an operation that needs a store was called
	// on an engine without one.
	ErrCodeNoStore RuntimeErrorCode = "NO_STORE"
)

// RuntimeError is an engine error with structured fields for diagnostics.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string

	// RunID identifies the affected run, if one was assigned.
	RunID string

	// Member names the function being translated or compared.
	Member string

	// Err is the underlying cause, such as a translator error.
	Err error
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Member != "" {
		msg += fmt.Sprintf(" (member=%s)", e.Member)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RuntimeError) Unwrap() error { return e.Err }

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsTranslationError reports whether err is a failed member translation.
// The translator cause stays reachable through errors.As.
func IsTranslationError(err error) bool { return hasCode(err, ErrCodeTranslationFailed) }

// IsReplayMismatch reports whether err is a replay mismatch.
func IsReplayMismatch(err error) bool { return hasCode(err, ErrCodeReplayMismatch) }

// IsRunNotFound reports whether err is a missing run.
func IsRunNotFound(err error) bool { return hasCode(err, ErrCodeRunNotFound) }

func translationError(runID, member string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeTranslationFailed,
		Message: "member translation failed",
		RunID:   runID,
		Member:  member,
		Err:     err,
	}
}
