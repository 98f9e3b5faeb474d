package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityNotFoundError(t *testing.T) {
	err := NewEntityNotFoundError("User", "abc")

	assert.Equal(t, "User with id 'abc' not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrDuplicate))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestDuplicateEntityError(t *testing.T) {
	err := NewDuplicateEntityError("User", "email")

	assert.Equal(t, "User with this email already exists", err.Error())
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
}

func TestValidationErrors(t *testing.T) {
	err := NewValidationErrors("name is required", "email must be an email")

	assert.Equal(t, "name is required", err.Error())
	assert.Len(t, err.Details, 2)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))

	assert.Equal(t, "Validation failed", NewValidationErrors().Error())
}

func TestInternalError(t *testing.T) {
	cause := errors.New("disk on fire")
	err := NewInternalError("failed to list users", cause)

	assert.Equal(t, "failed to list users: disk on fire", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestHTTPStatus_WrappedAndPlain(t *testing.T) {
	wrapped := fmt.Errorf("get user: %w", NewEntityNotFoundError("User", "x"))

	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
