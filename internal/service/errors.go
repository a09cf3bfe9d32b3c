package service

import (
	"errors"
)

// Error kinds returned by services. Handlers map them to HTTP status codes.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DomainError carries a user-facing message alongside an error kind.
// Field, when set, names the request field the message belongs to.
type DomainError struct {
	Kind    error
	Field   string
	Message string
}

func (e *DomainError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

func newDomainError(kind error, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

func newFieldError(field, message string) *DomainError {
	return &DomainError{Kind: ErrValidation, Field: field, Message: message}
}
