package domain

import "fmt"

// ErrorCode represents a domain error code.
type ErrorCode string

const (
	ErrCodeTokenMissing     ErrorCode = "TOKEN_MISSING"
	ErrCodeOrgUnresolved    ErrorCode = "ORG_UNRESOLVED"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeAPIError         ErrorCode = "API_ERROR"
	ErrCodeEventRejected    ErrorCode = "EVENT_REJECTED"
)

// DomainError represents an error in the domain layer with context.
type DomainError struct {
	Code    ErrorCode
	Message string
	Context map[string]interface{}
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewTokenMissingError creates an error for a missing access token.
func NewTokenMissingError(envVar string) *DomainError {
	return &DomainError{
		Code:    ErrCodeTokenMissing,
		Message: fmt.Sprintf("%s environment variable not set", envVar),
		Context: map[string]interface{}{"env": envVar},
	}
}

// NewOrgUnresolvedError creates an error for a missing organization.
func NewOrgUnresolvedError() *DomainError {
	return &DomainError{
		Code:    ErrCodeOrgUnresolved,
		Message: "could not determine organization; specify one with --org",
		Context: map[string]interface{}{},
	}
}

// NewValidationError creates a validation error.
func NewValidationError(detail string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidationFailed,
		Message: detail,
		Context: map[string]interface{}{"detail": detail},
	}
}
