// Package errors provides typed errors for greener-reporter
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// ErrConfig indicates a configuration error
	ErrConfig ErrorType = iota
	// ErrValidation indicates a malformed session or testcase argument
	ErrValidation
	// ErrTransport indicates a failed exchange with the ingestion service
	ErrTransport
	// ErrLifecycle indicates an operation attempted after shutdown
	ErrLifecycle
)

// ReporterError is the base error type for validation, lifecycle and config errors
type ReporterError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns the error message
func (e *ReporterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *ReporterError) Unwrap() error {
	return e.Cause
}

// New creates a new ReporterError
func New(errType ErrorType, message string, cause error) *ReporterError {
	return &ReporterError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *ReporterError) WithContext(key string, value interface{}) *ReporterError {
	e.Context[key] = value
	return e
}

// IngressError is a failed exchange with the ingestion service.
// Code is the service-defined error code (1 when the service gave none),
// StatusCode the HTTP status (0 when no response was received).
type IngressError struct {
	Code       int
	StatusCode int
	Message    string
}

// Error renders the error in the form shared by every greener reporter
func (e *IngressError) Error() string {
	return fmt.Sprintf("GreenerReporterError %d/%d: %s", e.Code, e.StatusCode, e.Message)
}

// IsConnection reports whether no HTTP response was received
func (e *IngressError) IsConnection() bool {
	return e.StatusCode == 0
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}
	if errType == ErrTransport {
		var ingressErr *IngressError
		if errors.As(err, &ingressErr) {
			return true
		}
	}
	var repErr *ReporterError
	if errors.As(err, &repErr) {
		return repErr.Type == errType
	}
	return false
}

// AsIngress extracts the IngressError from err, if any
func AsIngress(err error) (*IngressError, bool) {
	var ingressErr *IngressError
	if errors.As(err, &ingressErr) {
		return ingressErr, true
	}
	return nil, false
}

func errorTypeString(et ErrorType) string {
	switch et {
	case ErrConfig:
		return "CONFIG"
	case ErrValidation:
		return "VALIDATION"
	case ErrTransport:
		return "TRANSPORT"
	case ErrLifecycle:
		return "LIFECYCLE"
	default:
		return "UNKNOWN"
	}
}

// String returns the upper-case name of the error type
func (et ErrorType) String() string {
	return errorTypeString(et)
}

// Convenience functions for common errors

// ConfigError creates a configuration error
func ConfigError(message string, cause error) *ReporterError {
	return New(ErrConfig, message, cause)
}

// ValidationError creates a validation error naming the offending field
func ValidationError(field, message string, cause error) *ReporterError {
	return New(ErrValidation, message, cause).WithContext("field", field)
}

// LifecycleError creates a lifecycle error
func LifecycleError(message string) *ReporterError {
	return New(ErrLifecycle, message, nil)
}

// TransportError creates an IngressError
func TransportError(code, statusCode int, message string) *IngressError {
	return &IngressError{Code: code, StatusCode: statusCode, Message: message}
}
