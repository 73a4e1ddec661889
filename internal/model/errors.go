package model

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes failures surfaced by the ledger.
type ErrorCode string

const (
	// ErrCodeValidation indicates an input outside the enumerated or
	// accepted set. Nothing was written.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeNotFound indicates a query for an identity with no record.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeStoreUnavailable indicates the backing store could not be
	// opened, queried or committed. It is not retried.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// Error is the structured error returned by ledger, projection and
// analysis operations.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Op names the operation that failed (for store errors).
	Op string

	// Field names the offending input (for validation errors).
	Field string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates an Error for a rejected input field.
func NewValidationError(field, message string) *Error {
	return &Error{Code: ErrCodeValidation, Field: field, Message: message}
}

// NewNotFoundError creates an Error for a missing record.
func NewNotFoundError(kind, id string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("%s %q not found", kind, id)}
}

// NewStoreError wraps a persistence failure. Errors that are already an
// *Error pass through unchanged.
func NewStoreError(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Code: ErrCodeStoreUnavailable, Op: op, Message: "store unavailable", Err: err}
}

// IsValidation reports whether err is a validation error.
// Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsStoreUnavailable reports whether err is a store failure.
func IsStoreUnavailable(err error) bool {
	return hasCode(err, ErrCodeStoreUnavailable)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
