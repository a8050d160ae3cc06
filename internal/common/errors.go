// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Marketplace errors.
	ErrRateLimited = errors.New("marketplace rate limit exceeded")
	ErrTimeout     = errors.New("marketplace call timed out")

	// Scan errors.
	ErrScanInProgress = errors.New("scan already in progress")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError indicates malformed scan parameters, rejected before any
// state change.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid scan parameters: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps err as a parameter-validation failure.
func NewValidationError(err error) error {
	return &ValidationError{Err: err}
}

// ConflictError indicates an operation was rejected because it would race a
// scan that is already running. No state is mutated.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	return ErrScanInProgress
}

// ExternalServiceError wraps a failure talking to the marketplace. These are
// contained at the per-phrase or per-seller level and never fail a scan.
type ExternalServiceError struct {
	Err       error
	Operation string
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// NewExternalServiceError tags err with the marketplace operation that failed.
func NewExternalServiceError(operation string, err error) error {
	return &ExternalServiceError{Operation: operation, Err: err}
}

// PersistenceError wraps a storage or transaction failure. These are
// scan-fatal: the enclosing transaction rolls back and the scan transitions
// to its error state.
type PersistenceError struct {
	Err       error
	Operation string
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError tags err with the storage operation that failed.
func NewPersistenceError(operation string, err error) error {
	return &PersistenceError{Operation: operation, Err: err}
}

// IsPersistence reports whether err is (or wraps) a persistence failure.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
