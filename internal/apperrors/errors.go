package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConcurrency indicates that optimistic version checks failed repeatedly
// and the operation gave up. The caller may retry the whole operation.
var ErrConcurrency = errors.New("concurrent modification conflict")

// ErrImmutability indicates that a code path attempted to update or delete a
// ledger entry. This is always a programming error, never expected in normal
// operation.
var ErrImmutability = errors.New("ledger entries are immutable")

// ErrIntegrity indicates a checksum mismatch or reconciliation discrepancy.
// It is never auto-corrected and must be escalated for investigation.
var ErrIntegrity = errors.New("ledger integrity violation")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside a message and the
// wrapped cause. Used mainly by the repository layer.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
