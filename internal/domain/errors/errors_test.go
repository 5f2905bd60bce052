package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Error(t *testing.T) {
	err := NewNotFoundError("business", "biz-1")
	assert.Equal(t, "NOT_FOUND: business not found (biz-1)", err.Error())

	err = NewUnauthorizedError("invalid API key")
	assert.Equal(t, "UNAUTHORIZED: invalid API key", err.Error())
}

func TestDomainError_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("user", "u1").HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, NewValidationError("bad", "").HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, NewBadRequestError("bad", "").HTTPStatus)
	assert.Equal(t, http.StatusUnauthorized, NewUnauthorizedError("no").HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, NewInternalError("oops", nil).HTTPStatus)
}

func TestGetDomainError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewValidationError("content is required", ""))

	domainErr, ok := GetDomainError(wrapped)

	require.True(t, ok)
	assert.Equal(t, ErrCodeValidation, domainErr.Code)
}

func TestGetDomainError_PlainError(t *testing.T) {
	_, ok := GetDomainError(errors.New("plain"))

	assert.False(t, ok)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("message", "m1")))
	assert.False(t, IsNotFound(NewUnauthorizedError("no")))
	assert.False(t, IsNotFound(nil))
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError("lookup failed", cause)

	assert.ErrorIs(t, err, cause)
}
