package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeMissingCredential ErrorType = "missing_credential"
	ErrorTypeInvalidCredential ErrorType = "invalid_credential"
	ErrorTypeTenantNotDefined  ErrorType = "tenant_not_defined"
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeConflict          ErrorType = "conflict"
	ErrorTypeDataAccess        ErrorType = "data_access"
	ErrorTypeAuditWrite        ErrorType = "audit_write"
	ErrorTypeInternal          ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is; two domain errors match when their types match
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Domain error variables

var (
	ErrTicketNotFound  = NewDomainError(ErrorTypeNotFound, "ticket not found", nil)
	ErrEmpresaNotFound = NewDomainError(ErrorTypeNotFound, "empresa not found", nil)
	ErrUsuarioNotFound = NewDomainError(ErrorTypeNotFound, "usuario not found", nil)

	ErrInvalidInput = NewDomainError(ErrorTypeValidation, "invalid input", nil)

	ErrMissingCredential = NewDomainError(ErrorTypeMissingCredential, "missing or malformed credential", nil)
	ErrInvalidCredential = NewDomainError(ErrorTypeInvalidCredential, "invalid or expired credential", nil)
	ErrTenantNotDefined  = NewDomainError(ErrorTypeTenantNotDefined, "no company associated with the authenticated user", nil)

	ErrTicketCerrado      = NewDomainError(ErrorTypeConflict, "ticket is closed; no further transitions allowed", nil)
	ErrInvalidCredentials = NewDomainError(ErrorTypeInvalidCredential, "invalid email or password", nil)

	ErrDataAccess = NewDomainError(ErrorTypeDataAccess, "database operation failed", nil)
	ErrAuditWrite = NewDomainError(ErrorTypeAuditWrite, "audit record could not be written", nil)
	ErrInternal   = NewDomainError(ErrorTypeInternal, "internal server error", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// IsAuditWriteError checks if an error is an audit write error
func IsAuditWriteError(err error) bool {
	return GetErrorType(err) == ErrorTypeAuditWrite
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// WrapDataAccess wraps an underlying database failure. The driver error is
// preserved for logging but never surfaced to clients.
func WrapDataAccess(message string, err error) error {
	return NewDomainError(ErrorTypeDataAccess, message, err)
}

// WrapAuditWrite wraps a failed audit insert. Operations that carry an audit
// record treat this as overall failure.
func WrapAuditWrite(message string, err error) error {
	return NewDomainError(ErrorTypeAuditWrite, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
