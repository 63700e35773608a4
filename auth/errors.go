package auth

import (
	"net/http"

	"github.com/coder/websocket"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/pkg/errors"
)

// WebSocket close codes for guards evaluated at connect time
const (
	CloseUnauthorized     websocket.StatusCode = 4401
	ClosePermissionDenied websocket.StatusCode = 4403
)

// AuthError is a credential failure, rendered as 401.
type AuthError struct {
	Field   string
	Message string
}

func NewAuthError(message string) *AuthError {
	return &AuthError{Field: "auth", Message: message}
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) StatusCode() int {
	return http.StatusUnauthorized
}

func (e *AuthError) FieldError() apperrors.FieldError {
	return apperrors.FieldError{Field: e.Field, Message: e.Message}
}

// PermissionError is an authorization failure, rendered as 403.
type PermissionError struct {
	Field   string
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

func (e *PermissionError) StatusCode() int {
	return http.StatusForbidden
}

func (e *PermissionError) FieldError() apperrors.FieldError {
	return apperrors.FieldError{Field: e.Field, Message: e.Message}
}

// CloseCode returns the close code a connect-time guard failure ends a
// WebSocket with, and false for other errors.
func CloseCode(err error) (websocket.StatusCode, bool) {
	var authErr *AuthError
	var permErr *PermissionError
	switch {
	case errors.As(err, &authErr):
		return CloseUnauthorized, true
	case errors.As(err, &permErr):
		return ClosePermissionDenied, true
	}
	return 0, false
}
