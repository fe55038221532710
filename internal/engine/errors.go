package engine

import (
	"errors"
	"fmt"
)

// RunError is a failure that stops a repair run.
//
// Fixes recorded before the failure stay recorded; the next run resumes at
// the first document not in its range's fixed docs.
type RunError struct {
	// Code identifies the error category.
	Code RunErrorCode

	// Message is a human-readable description.
	Message string

	// Namespace and ID locate the document being processed, when there is one.
	Namespace string
	ID        string

	// Err is the underlying cause.
	Err error
}

// RunErrorCode categorizes run errors.
type RunErrorCode string

const (
	// ErrCodeCatalogUnavailable means the store could not be reached or the
	// range catalog could not be read. Nothing has been repaired.
	ErrCodeCatalogUnavailable RunErrorCode = "CATALOG_UNAVAILABLE"

	// ErrCodeReadFailed means a scan source could not be read.
	ErrCodeReadFailed RunErrorCode = "READ_FAILED"

	// ErrCodeWriteFailed means a repair write failed. Re-running repeats
	// both write steps for the document.
	ErrCodeWriteFailed RunErrorCode = "WRITE_FAILED"

	// ErrCodeProgressFailed means the writes succeeded but the fix could not
	// be recorded. Re-running repeats the document.
	ErrCodeProgressFailed RunErrorCode = "PROGRESS_FAILED"

	// ErrCodePromptClosed means operator input ended mid-run.
	ErrCodePromptClosed RunErrorCode = "PROMPT_CLOSED"
)

// Error implements the error interface.
func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Namespace != "" && e.ID != "" {
		msg = fmt.Sprintf("%s (ns=%s, id=%s)", msg, e.Namespace, e.ID)
	} else if e.Namespace != "" {
		msg = fmt.Sprintf("%s (ns=%s)", msg, e.Namespace)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is a RunError with the given code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code RunErrorCode) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsCatalogUnavailable reports whether the run failed before repairing anything.
func IsCatalogUnavailable(err error) bool {
	return HasCode(err, ErrCodeCatalogUnavailable)
}

// IsPromptClosed reports whether the run stopped because operator input ended.
func IsPromptClosed(err error) bool {
	return HasCode(err, ErrCodePromptClosed)
}

func newRunError(code RunErrorCode, message, ns, id string, err error) *RunError {
	return &RunError{Code: code, Message: message, Namespace: ns, ID: id, Err: err}
}
