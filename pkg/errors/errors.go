// Package errors provides custom error types for the recoil sync engine.
// These errors enable programmatic error checking across the reconciliation
// pipeline and keep row-level failures distinguishable from pass-level ones.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is, As, and Unwrap are aliases for their standard library counterparts
// so callers only need this package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// Common sentinel errors for the recoil system
var (
	// ErrMalformedInput indicates that required free-text input could not be parsed
	ErrMalformedInput = errors.New("malformed input")

	// ErrIdentityMismatch indicates an authoritative merge was attempted on
	// two records that do not refer to the same event
	ErrIdentityMismatch = errors.New("identity mismatch")

	// ErrGeocodeUnavailable indicates an address could not be geocoded
	ErrGeocodeUnavailable = errors.New("geocode unavailable")

	// ErrTransportFailure indicates the remote store rejected or failed a request
	ErrTransportFailure = errors.New("transport failure")

	// ErrSyncInProgress indicates a reconciliation pass is already running
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrSnapshotOrder indicates a snapshot violated the most-recent-first ordering
	ErrSnapshotOrder = errors.New("snapshot out of order")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")
)

// MalformedInputError represents an unparseable required field in a feed row.
// The offending row is skipped and logged; the pass continues.
type MalformedInputError struct {
	Row   int    // source row number, 0 when unknown
	Field string // textual column name
	Value string // the raw text that failed to parse
}

// Error implements the error interface
func (e *MalformedInputError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("malformed %s %q in feed row %d", e.Field, e.Value, e.Row)
	}
	return fmt.Sprintf("malformed %s %q", e.Field, e.Value)
}

// Is implements errors.Is support
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// NewMalformedInputError creates a new MalformedInputError
func NewMalformedInputError(row int, field, value string) *MalformedInputError {
	return &MalformedInputError{Row: row, Field: field, Value: value}
}

// IdentityMismatchError represents an authoritative merge attempted on two
// records that fail the same-event test. Fatal to the pairing only: it halts
// positional alignment early, but the pass still emits everything computed
// so far.
type IdentityMismatchError struct {
	Index    int    // positional pair index at which alignment broke
	Target   string // short description of the target record
	Incoming string // short description of the incoming record
}

// Error implements the error interface
func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("records at pair %d do not describe the same event (target %s, incoming %s)", e.Index, e.Target, e.Incoming)
}

// Is implements errors.Is support
func (e *IdentityMismatchError) Is(target error) bool {
	return target == ErrIdentityMismatch
}

// SnapshotOrderError indicates a snapshot was not ordered most-recent-first.
// Positional pairing depends on parallel ordering of both snapshots, so this
// fails the pass fast instead of silently misaligning records.
type SnapshotOrderError struct {
	Snapshot string // "feed" or "store"
	Index    int    // first index that violates the ordering
}

// Error implements the error interface
func (e *SnapshotOrderError) Error() string {
	return fmt.Sprintf("%s snapshot not ordered most-recent-first at index %d", e.Snapshot, e.Index)
}

// Is implements errors.Is support
func (e *SnapshotOrderError) Is(target error) bool {
	return target == ErrSnapshotOrder
}

// TransportError represents a failure reported by the remote store.
// The pass does not retry internally; retry policy belongs to the caller.
type TransportError struct {
	Operation  string // "snapshot", "batch", "push"
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error during %s (status %d): %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transport error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *TransportError) Is(target error) bool {
	return target == ErrTransportFailure
}

// NewTransportError creates a new TransportError
func NewTransportError(operation string, statusCode int, err error) *TransportError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &TransportError{
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// Helper functions for error checking

// IsMalformedInput checks if an error is a malformed input error
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

// IsIdentityMismatch checks if an error is an identity mismatch error
func IsIdentityMismatch(err error) bool {
	return errors.Is(err, ErrIdentityMismatch)
}

// IsTransportFailure checks if an error is a transport failure
func IsTransportFailure(err error) bool {
	return errors.Is(err, ErrTransportFailure)
}

// IsSnapshotOrder checks if an error is a snapshot ordering error
func IsSnapshotOrder(err error) bool {
	return errors.Is(err, ErrSnapshotOrder)
}

// IsSyncInProgress checks if an error indicates an overlapping pass
func IsSyncInProgress(err error) bool {
	return errors.Is(err, ErrSyncInProgress)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapTransport wraps an error as a TransportError
func WrapTransport(operation string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return NewTransportError(operation, statusCode, err)
}
