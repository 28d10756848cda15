package shared

import "errors"

// Error codes shared by every bounded context
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodePersistence         = "PERSISTENCE_ERROR"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidState        = "INVALID_STATE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches domain errors by code so sentinel comparisons survive wrapping
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates an input rule violation. The code is specific
// (e.g. SALE_CAP_EXCEEDED) so clients can react to it.
func NewValidationError(code, message string) *DomainError {
	if code == "" {
		code = CodeValidation
	}
	return &DomainError{Code: code, Message: message}
}

// NewNotFoundError creates an error for a missing record
func NewNotFoundError(resource, id string) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: resource + " not found: " + id,
	}
}

// NewPersistenceError wraps a storage failure
func NewPersistenceError(message string, cause error) *DomainError {
	return &DomainError{
		Code:    CodePersistence,
		Message: message,
		Cause:   cause,
	}
}

// IsValidation reports whether err is a validation error of any specific code
func IsValidation(err error) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	switch de.Code {
	case CodeNotFound, CodePersistence, CodeConcurrencyConflict, CodeUnauthorized, CodeAlreadyExists:
		return false
	}
	return true
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrPersistence         = NewDomainError(CodePersistence, "Storage operation failed")
)
