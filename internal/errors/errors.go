package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a binder error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"            // 404
	ErrDuplicateName      ErrorCode = "DUPLICATE_NAME"       // 409
	ErrDuplicateTitle     ErrorCode = "DUPLICATE_TITLE"      // 409
	ErrAmbiguousReference ErrorCode = "AMBIGUOUS_REFERENCE"  // 409
	ErrNotebookArchived   ErrorCode = "NOTEBOOK_ARCHIVED"    // 409
	ErrConstraint         ErrorCode = "CONSTRAINT_VIOLATION" // 409
	ErrInternal           ErrorCode = "INTERNAL"             // 500
)

// BinderError represents a structured error with code, status, and details.
type BinderError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *BinderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *BinderError {
	return &BinderError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing entity of the given kind.
func NewNotFound(kind, identifier string) *BinderError {
	return &BinderError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewDuplicateName creates a 409 error for notebook or tag name collisions.
func NewDuplicateName(kind, name string) *BinderError {
	return &BinderError{
		Code:    ErrDuplicateName,
		Status:  409,
		Message: fmt.Sprintf("%s with name %q already exists", kind, name),
		Details: map[string]any{"kind": kind, "name": name},
	}
}

// NewDuplicateTitle creates a 409 error for entry title collisions within a notebook.
func NewDuplicateTitle(notebook, title string) *BinderError {
	return &BinderError{
		Code:    ErrDuplicateTitle,
		Status:  409,
		Message: fmt.Sprintf("entry with title %q already exists in notebook %q", title, notebook),
		Details: map[string]any{"notebook": notebook, "title": title},
	}
}

// NewAmbiguousReference creates a 409 error when an entry title matches more than one entry.
func NewAmbiguousReference(title string, count int) *BinderError {
	return &BinderError{
		Code:    ErrAmbiguousReference,
		Status:  409,
		Message: fmt.Sprintf("entry title %q matches %d entries; scope it with a notebook", title, count),
		Details: map[string]any{"title": title, "matches": count},
	}
}

// NewNotebookArchived creates a 409 error for writes against an archived notebook.
func NewNotebookArchived(name string) *BinderError {
	return &BinderError{
		Code:    ErrNotebookArchived,
		Status:  409,
		Message: fmt.Sprintf("notebook %q is archived", name),
		Details: map[string]any{"name": name},
	}
}

// NewConstraint creates a 409 error for store-level integrity failures.
func NewConstraint(msg string) *BinderError {
	return &BinderError{
		Code:    ErrConstraint,
		Status:  409,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the underlying error is kept in Details
// for logging, never for client display.
func NewInternal(err error) *BinderError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &BinderError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error is a BinderError with the given code. Wrapped
// errors are unwrapped.
func Is(err error, code ErrorCode) bool {
	bErr, ok := As(err)
	return ok && bErr.Code == code
}

// As extracts the BinderError from err, unwrapping as needed.
func As(err error) (*BinderError, bool) {
	var bErr *BinderError
	if errors.As(err, &bErr) {
		return bErr, true
	}
	return nil, false
}
