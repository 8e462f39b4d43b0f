package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "actor not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "actor not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "movie not found",
				Err:     errors.New("db error"),
			},
			wantMsg: "not_found: movie not found (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "name is required",
			},
			wantMsg: "validation: name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same error type", NewDomainError(ErrorTypeNotFound, "actor 3", nil), ErrNotFound, true},
		{"empty page is not found", ErrEmptyPage, ErrNotFound, true},
		{"different error type", NewDomainError(ErrorTypeValidation, "age", nil), ErrNotFound, false},
		{"not a domain error", ErrNotFound, errors.New("regular error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"bad request", WrapBadRequest("id must be a positive integer", nil), ErrorTypeBadRequest},
		{"wrapped not found", fmt.Errorf("lookup: %w", ErrNotFound), ErrorTypeNotFound},
		{"validation", WrapValidation("age must be a number", errors.New("json")), ErrorTypeValidation},
		{"internal", WrapInternal("insert failed", errors.New("db")), ErrorTypeInternal},
		{"regular error", errors.New("regular"), ""},
		{"nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorType(tt.err))
			assert.Equal(t, tt.want == ErrorTypeBadRequest, IsBadRequestError(tt.err))
			assert.Equal(t, tt.want == ErrorTypeNotFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.want == ErrorTypeValidation, IsValidationError(tt.err))
			assert.Equal(t, tt.want == ErrorTypeInternal, IsInternalError(tt.err))
		})
	}
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)
	err.WithDetail("field", "name").WithDetail("reason", "required")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "name", details["field"])
	assert.Equal(t, "required", details["reason"])

	assert.Nil(t, GetErrorDetails(errors.New("regular error")))
}

func TestWrapBadRequest(t *testing.T) {
	baseErr := errors.New("unexpected EOF")
	wrapped := WrapBadRequest("body is not valid JSON", baseErr)

	assert.True(t, IsBadRequestError(wrapped))
	assert.Equal(t, baseErr, errors.Unwrap(wrapped))
}
