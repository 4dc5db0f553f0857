package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		errType ErrorType
		want    int
	}{
		{DatabaseError, http.StatusInternalServerError},
		{ConfigError, http.StatusInternalServerError},
		{InternalError, http.StatusInternalServerError},
		{AuthError, http.StatusUnauthorized},
		{UnauthorizedError, http.StatusForbidden},
		{NotFoundError, http.StatusNotFound},
		{ValidationError, http.StatusBadRequest},
		{BadRequestError, http.StatusBadRequest},
		{ConflictError, http.StatusConflict},
		{UnknownError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err := NewAppError(tc.errType, "boom", nil)
		assert.Equal(t, tc.want, err.StatusCode())
	}
}

func TestErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabaseError("failed to query users", cause)

	assert.Equal(t, "failed to query users: connection refused", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))

	bare := NewValidationError("Age must be a number", nil)
	assert.Equal(t, "Age must be a number", bare.Error())
	assert.Nil(t, errors.Unwrap(bare))
}

func TestFromError(t *testing.T) {
	t.Run("direct AppError", func(t *testing.T) {
		original := NewNotFoundError("user not found", nil)
		got, ok := FromError(original)
		require.True(t, ok)
		assert.Same(t, original, got)
	})

	t.Run("wrapped AppError", func(t *testing.T) {
		original := NewConflictError("Email already in use", nil)
		wrapped := fmt.Errorf("signup failed: %w", original)
		got, ok := FromError(wrapped)
		require.True(t, ok)
		assert.Same(t, original, got)
	})

	t.Run("plain error", func(t *testing.T) {
		_, ok := FromError(errors.New("plain"))
		assert.False(t, ok)
	})

	t.Run("nil", func(t *testing.T) {
		_, ok := FromError(nil)
		assert.False(t, ok)
	})
}

func TestPredicatesDispatchOnKind(t *testing.T) {
	notFound := NewNotFoundError("user not found", nil)
	auth := NewAuthError("Either the email or password is invalid", nil)
	validation := NewValidationError("Email is not a valid email address", nil)
	conflict := NewConflictError("Email already in use", nil)

	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsAuthError(auth))
	assert.True(t, IsValidationError(validation))
	assert.True(t, IsConflictError(conflict))

	// The same message under a different kind must not match: dispatch is
	// on the kind, never the text.
	imposter := NewInternalError("user not found", nil)
	assert.False(t, IsNotFound(imposter))

	assert.False(t, IsAuthError(notFound))
	assert.False(t, IsValidationError(conflict))
	assert.False(t, IsConflictError(validation))
	assert.False(t, IsNotFound(nil))

	// Predicates see through wrapping.
	assert.True(t, IsAuthError(fmt.Errorf("login: %w", auth)))
}

func TestToResponse(t *testing.T) {
	cause := errors.New("pq: duplicate key value violates unique constraint")
	err := NewConflictError("Email already in use", cause)

	resp := err.ToResponse()
	assert.Equal(t, "Email already in use", resp.Error)
}
