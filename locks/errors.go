package locks

import (
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
)

// LockedError is returned when another call holds the lock.
type LockedError struct {
	Name    string
	Timeout time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("\"%s\" locked for %d seconds.", e.Name, int64(e.Timeout/time.Second))
}

func (e *LockedError) StatusCode() int {
	return http.StatusTooManyRequests
}

func (e *LockedError) FieldError() apperrors.FieldError {
	return apperrors.FieldError{Field: "lock", Message: e.Error()}
}

// ThrottledError is returned once the calls in a window exceed the limit.
type ThrottledError struct {
	Name    string
	Limit   int
	Timeout time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("\"%s\" throttled to %d calls every %d seconds.", e.Name, e.Limit, int64(e.Timeout/time.Second))
}

func (e *ThrottledError) StatusCode() int {
	return http.StatusTooManyRequests
}

func (e *ThrottledError) FieldError() apperrors.FieldError {
	return apperrors.FieldError{Field: "throttle", Message: e.Error()}
}
