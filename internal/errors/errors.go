// Package errors defines the typed error taxonomy of the core: validation,
// resolution, transient I/O, and fatal errors, plus the opaque error codes
// surfaced to external callers (spec.md §6/§7).
//
// Grounded on the teacher's internal/errors package (IndexingError,
// ParseError, struct-with-Unwrap convention) generalized to this domain's
// four error kinds.
package errors

import (
	"fmt"
	"time"
)

// Code is one of the opaque, stable error codes spec.md §6 lists.
type Code string

const (
	CodeAmbiguousMatch    Code = "AMBIGUOUS_MATCH"
	CodeNoMatch           Code = "NO_MATCH"
	CodeHashMismatch      Code = "HASH_MISMATCH"
	CodeLevenshteinBlocked Code = "LEVENSHTEIN_BLOCKED"
	CodeBatchDryRunFailed Code = "BatchDryRunFailed"
	CodeBatchApplyFailed  Code = "BatchApplyFailed"
	CodeNoUndoHistory     Code = "NoUndoHistory"
	CodeNoRedoHistory     Code = "NoRedoHistory"
	CodeSecurityViolation Code = "SecurityViolation"
	CodeInternalError     Code = "InternalError"
)

// Kind classifies an error for propagation-policy purposes (spec.md §7).
type Kind string

const (
	KindValidation Kind = "validation"
	KindResolution Kind = "resolution"
	KindTransient  Kind = "transient"
	KindFatal      Kind = "fatal"
)

// CoreError is the common shape every error in this module implements:
// a stable opaque Code, a Kind for propagation policy, and an optional
// Suggestion payload for resolution errors (candidate lineRange, etc.).
type CoreError struct {
	Code       Code
	Kind       Kind
	Message    string
	Suggestion interface{}
	Underlying error
	Timestamp  time.Time
}

func (e *CoreError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CoreError) Unwrap() error { return e.Underlying }

// New creates a CoreError with the given code/kind/message.
func New(code Code, kind Kind, msg string) *CoreError {
	return &CoreError{Code: code, Kind: kind, Message: msg, Timestamp: time.Now()}
}

// Wrap creates a CoreError wrapping an underlying error.
func Wrap(code Code, kind Kind, msg string, err error) *CoreError {
	return &CoreError{Code: code, Kind: kind, Message: msg, Underlying: err, Timestamp: time.Now()}
}

// WithSuggestion attaches a resolution suggestion payload and returns e for
// chaining, mirroring the teacher's WithFile/WithRecoverable builder style.
func (e *CoreError) WithSuggestion(s interface{}) *CoreError {
	e.Suggestion = s
	return e
}

// SecurityViolation builds the error spec.md §3/§8 (P8) requires whenever
// path normalization cannot produce a root-relative path.
func SecurityViolation(path string) *CoreError {
	return New(CodeSecurityViolation, KindValidation, fmt.Sprintf("path %q resolves outside project root", path))
}

// Internal wraps an unexpected/corrupt-state error as the opaque
// InternalError code (spec.md §7 "Fatal").
func Internal(op string, err error) *CoreError {
	return Wrap(CodeInternalError, KindFatal, fmt.Sprintf("%s failed", op), err)
}

// IsCode reports whether err (or any error it wraps) carries the given code.
func IsCode(err error, code Code) bool {
	var ce *CoreError
	for err != nil {
		if c, ok := err.(*CoreError); ok {
			ce = c
			break
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	return ce != nil && ce.Code == code
}
