package errors

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ValidationError   ErrorType = "VALIDATION_ERROR"
	NotFoundError     ErrorType = "NOT_FOUND"
	RuntimeError      ErrorType = "RUNTIME_ERROR"
	DomainConfigError ErrorType = "DOMAIN_CONFIG_ERROR"
	PersistenceError  ErrorType = "PERSISTENCE_ERROR"
	ConflictError     ErrorType = "CONFLICT_ERROR"
	TimeoutError      ErrorType = "TIMEOUT_ERROR"
	InternalError     ErrorType = "INTERNAL_ERROR"
)

// AppError represents a custom application error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"` // Internal error, not exposed in JSON
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Helper functions to create specific error types
func NewValidationError(msg string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:    ValidationError,
		Message: msg,
		Details: details,
	}
}

func NewNotFoundError(msg string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:    NotFoundError,
		Message: msg,
		Details: details,
	}
}

// NewRuntimeError reports a failure of the container runtime or of a command
// executed inside a container.
func NewRuntimeError(msg string, err error, details map[string]interface{}) *AppError {
	return &AppError{
		Type:    RuntimeError,
		Message: msg,
		Details: details,
		Err:     err,
	}
}

// NewDomainConfigError reports a request that conflicts with the network's
// configuration or state, such as a stopped node or insufficient funds.
func NewDomainConfigError(msg string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:    DomainConfigError,
		Message: msg,
		Details: details,
	}
}

func NewPersistenceError(msg string, err error, details map[string]interface{}) *AppError {
	return &AppError{
		Type:    PersistenceError,
		Message: msg,
		Details: details,
		Err:     err,
	}
}

func NewConflictError(msg string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:    ConflictError,
		Message: msg,
		Details: details,
	}
}

func NewTimeoutError(msg string, err error, details map[string]interface{}) *AppError {
	return &AppError{
		Type:    TimeoutError,
		Message: msg,
		Details: details,
		Err:     err,
	}
}

func NewInternalError(msg string, err error, details map[string]interface{}) *AppError {
	return &AppError{
		Type:    InternalError,
		Message: msg,
		Details: details,
		Err:     err,
	}
}

// IsType reports whether the first AppError in err's chain has the given
// type. An AppError wrapped inside another one is not consulted.
func IsType(err error, target ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == target
	}
	return false
}

// TypeOf returns the type of the first AppError in err's chain, or
// InternalError when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return InternalError
}

// AsAppError returns the first AppError in err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
