package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
)

func TestCodeAndStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"wrapped not found", fmt.Errorf("document x: %w", ErrNotFound), CodeNotFound, http.StatusNotFound},
		{"forbidden", fmt.Errorf("access denied: %w", ErrForbidden), CodeForbidden, http.StatusForbidden},
		{"unauthorized", ErrUnauthorized, CodeUnauthorized, http.StatusUnauthorized},
		{"bad request", fmt.Errorf("incorrect password: %w", ErrBadRequest), CodeBadRequest, http.StatusBadRequest},
		{"conflict error", &ConflictError{Message: "email taken", ResourceType: "user", Field: "email"}, CodeConflict, http.StatusConflict},
		{"validation error", &ValidationError{Message: "invalid"}, CodeUnprocessable, http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, Code(tt.err))
			assert.Equal(t, tt.status, StatusCode(tt.err))
		})
	}
}

func TestConflictErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("register: %w", &ConflictError{Message: "username taken", Field: "username"})

	assert.True(t, errors.Is(err, ErrConflict))

	var conflictErr *ConflictError
	assert.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, "username", conflictErr.Field)
}

func TestNewValidationError(t *testing.T) {
	assert.NoError(t, NewValidationError(nil))

	err := NewValidationError(validation.Errors{
		"title": errors.New("cannot be blank"),
		"limit": errors.New("must be no greater than 100"),
		"page":  nil,
	})

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, []FieldError{
		{Field: "limit", Message: "must be no greater than 100"},
		{Field: "title", Message: "cannot be blank"},
	}, validationErr.Fields)
	assert.Equal(t, http.StatusUnprocessableEntity, StatusCode(err))

	plain := NewValidationError(errors.New("bad shape"))
	assert.ErrorIs(t, plain, ErrValidation)
}
