package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched with errors.Is against the typed errors below.
var (
	ErrNotFound   = errors.New("entity not found")
	ErrDuplicate  = errors.New("entity already exists")
	ErrValidation = errors.New("validation failed")
	ErrInternal   = errors.New("internal server error")
)

// EntityNotFoundError reports that no record with the given id exists.
type EntityNotFoundError struct {
	Entity string
	ID     string
}

// NewEntityNotFoundError creates a new not found error
func NewEntityNotFoundError(entity, id string) *EntityNotFoundError {
	return &EntityNotFoundError{
		Entity: entity,
		ID:     id,
	}
}

// Error implements the error interface
func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s with id '%s' not found", e.Entity, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e *EntityNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// HTTPStatus returns the HTTP status for this error
func (e *EntityNotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

// DuplicateEntityError reports a uniqueness violation on Field.
type DuplicateEntityError struct {
	Entity string
	Field  string
}

// NewDuplicateEntityError creates a new duplicate entity error
func NewDuplicateEntityError(entity, field string) *DuplicateEntityError {
	return &DuplicateEntityError{
		Entity: entity,
		Field:  field,
	}
}

// Error implements the error interface
func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Entity, e.Field)
}

// Is makes errors.Is(err, ErrDuplicate) succeed.
func (e *DuplicateEntityError) Is(target error) bool {
	return target == ErrDuplicate
}

// HTTPStatus returns the HTTP status for this error
func (e *DuplicateEntityError) HTTPStatus() int {
	return http.StatusConflict
}

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
	Details []string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewValidationErrors builds a validation error from one or more messages.
// The first message becomes the error text; all of them are kept in Details.
func NewValidationErrors(messages ...string) *ValidationError {
	if len(messages) == 0 {
		return &ValidationError{Message: "Validation failed"}
	}
	return &ValidationError{
		Message: messages[0],
		Details: messages,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// HTTPStatus returns the HTTP status for this error
func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInternal) succeed.
func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

// HTTPStatus returns the HTTP status for this error
func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// HTTPStatuser is implemented by errors that know their HTTP status
type HTTPStatuser interface {
	HTTPStatus() int
}

// HTTPStatus returns the HTTP status carried by err, or 500 when err has none.
func HTTPStatus(err error) int {
	var s HTTPStatuser
	if errors.As(err, &s) {
		return s.HTTPStatus()
	}
	return http.StatusInternalServerError
}
