package auth

import (
	"fmt"
	"net/http"
)

// ErrorKind identifies the gate stage that rejected a request.
type ErrorKind string

const (
	KindMissingHeader    ErrorKind = "authorization_header_missing"
	KindMalformedHeader  ErrorKind = "malformed_header"
	KindInvalidHeader    ErrorKind = "invalid_header"
	KindInvalidSignature ErrorKind = "invalid_signature"
	KindInvalidClaims    ErrorKind = "invalid_claims"
	KindUnauthorized     ErrorKind = "unauthorized"
)

// defaultStatus is the HTTP status a kind renders with unless overridden.
var defaultStatus = map[ErrorKind]int{
	KindMissingHeader:    http.StatusUnauthorized,
	KindMalformedHeader:  http.StatusUnauthorized,
	KindInvalidHeader:    http.StatusUnauthorized,
	KindInvalidSignature: http.StatusUnauthorized,
	KindInvalidClaims:    http.StatusUnauthorized,
	KindUnauthorized:     http.StatusForbidden,
}

// AuthError is returned by every stage of the authorization gate.
type AuthError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches another AuthError of the same kind
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewAuthError creates an AuthError with the default status for its kind.
func NewAuthError(kind ErrorKind, message string, err error) *AuthError {
	status, ok := defaultStatus[kind]
	if !ok {
		status = http.StatusUnauthorized
	}
	return &AuthError{
		Kind:    kind,
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// WithStatus returns a copy of the error rendered with a different status.
func (e *AuthError) WithStatus(status int) *AuthError {
	c := *e
	c.Status = status
	return &c
}

// Sentinels for errors.Is comparisons
var (
	ErrMissingHeader    = &AuthError{Kind: KindMissingHeader}
	ErrMalformedHeader  = &AuthError{Kind: KindMalformedHeader}
	ErrInvalidHeader    = &AuthError{Kind: KindInvalidHeader}
	ErrInvalidSignature = &AuthError{Kind: KindInvalidSignature}
	ErrInvalidClaims    = &AuthError{Kind: KindInvalidClaims}
	ErrUnauthorized     = &AuthError{Kind: KindUnauthorized}
)
