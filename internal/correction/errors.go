package correction

import (
	"errors"
	"fmt"
)

// Common correction errors
var (
	// ErrRequestFailed is returned when the remote service could not be reached
	// or answered with a non-success status.
	ErrRequestFailed = errors.New("correction request failed")

	// ErrNoCandidates is returned when the service answered without any candidate.
	ErrNoCandidates = errors.New("correction service returned no candidates")

	// ErrEmptyReply is returned when the first candidate contains no text.
	ErrEmptyReply = errors.New("correction service returned an empty reply")

	// ErrMalformedReply is returned when the reply is not the expected JSON object.
	ErrMalformedReply = errors.New("correction reply is not valid JSON")
)

// Error wraps correction failures with the operation and provider involved.
type Error struct {
	// Op is the operation that failed (e.g., "Generate", "ParseReply").
	Op string

	// Provider is the backend in use, such as "gemini" or "openai".
	Provider string

	// Err is the underlying error.
	Err error

	// Details provides additional context, such as a truncated reply.
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := "correction"
	if e.Provider != "" {
		prefix += " (" + e.Provider + ")"
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s failed: %s: %v", prefix, e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", prefix, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error.
func NewError(op, provider string, err error, details string) *Error {
	return &Error{
		Op:       op,
		Provider: provider,
		Err:      err,
		Details:  details,
	}
}
