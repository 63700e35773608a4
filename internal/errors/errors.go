package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Common error types for the notes server
var (
	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")

	// Note errors
	ErrNoteNotFound = errors.New("note not found")

	// Cache errors
	ErrCacheUnavailable = errors.New("cache unavailable")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// FieldError is a single message attached to an input field.
// An empty Field marks a non-field error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationError accumulates field errors for one request.
type ValidationError struct {
	Errors []FieldError
}

// NewValidationError returns a ValidationError holding a single field error.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

func (v *ValidationError) Add(field, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
}

// Nest flattens the errors of a nested input under prefix ("prefix.field").
func (v *ValidationError) Nest(prefix string, other *ValidationError) {
	if other == nil {
		return
	}
	for _, e := range other.Errors {
		v.Add(joinField(prefix, e.Field), e.Message)
	}
}

// NestIndex flattens the errors of the i-th element of a list input ("prefix.i.field").
func (v *ValidationError) NestIndex(prefix string, i int, other *ValidationError) {
	v.Nest(joinField(prefix, strconv.Itoa(i)), other)
}

func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Errors) > 0
}

// Err returns v as an error, or nil when nothing was recorded.
func (v *ValidationError) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// ByField groups messages per field, the way REST responses render them.
// Non-field errors are grouped under "non_field_errors".
func (v *ValidationError) ByField() map[string][]string {
	grouped := make(map[string][]string, len(v.Errors))
	for _, e := range v.Errors {
		field := e.Field
		if field == "" {
			field = "non_field_errors"
		}
		grouped[field] = append(grouped[field], e.Message)
	}
	return grouped
}

func (v *ValidationError) Error() string {
	messages := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		messages = append(messages, e.Error())
	}
	return strings.Join(messages, "; ")
}

func joinField(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}

// StatusCoder is implemented by errors that map to an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// FieldCoder is implemented by errors that render as one field error.
type FieldCoder interface {
	FieldError() FieldError
}

// StatusCode maps err to an HTTP status, 500 when nothing more specific is known.
func StatusCode(err error) int {
	var coder StatusCoder
	var validation *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &coder):
		return coder.StatusCode()
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound), errors.Is(err, ErrNoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrUserExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// FieldErrors flattens err into field errors. ok is false for unexpected
// errors, whose text must not reach the client.
func FieldErrors(err error) (fieldErrors []FieldError, ok bool) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Errors, true
	}
	var coder FieldCoder
	if errors.As(err, &coder) {
		return []FieldError{coder.FieldError()}, true
	}
	return nil, false
}
