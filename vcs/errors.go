package vcs

import (
	"errors"
	"fmt"
)

// Severity classifies a problem reported by a backend.
type Severity int

const (
	// SeverityError means the commit failed for the associated change(s).
	SeverityError Severity = iota
	// SeverityWarning is a non-fatal issue; the commit still counts as successful.
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// CommitError is a classified problem returned by Backend.Commit.
// Change is the originating change when the backend knows it.
type CommitError struct {
	Severity Severity
	Message  string
	Change   *Change
	Err      error
}

// NewError returns an Error-severity problem.
func NewError(message string) *CommitError {
	return &CommitError{Severity: SeverityError, Message: message}
}

// NewWarning returns a Warning-severity problem.
func NewWarning(message string) *CommitError {
	return &CommitError{Severity: SeverityWarning, Message: message}
}

// WrapError converts err into an Error-severity problem. An err that already
// is a *CommitError is returned unchanged.
func WrapError(err error) *CommitError {
	var ce *CommitError
	if errors.As(err, &ce) {
		return ce
	}
	return &CommitError{Severity: SeverityError, Message: err.Error(), Err: err}
}

// ForChange attaches the originating change and returns e.
func (e *CommitError) ForChange(c Change) *CommitError {
	e.Change = &c
	return e
}

// IsWarning reports whether the backend flagged the problem as non-fatal.
func (e *CommitError) IsWarning() bool {
	return e.Severity == SeverityWarning
}

func (e *CommitError) Error() string {
	if e.Change != nil {
		return fmt.Sprintf("%s: %s", e.Change.Path, e.Message)
	}
	return e.Message
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
