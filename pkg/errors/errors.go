package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError is one entry of a structured server validation detail.
type FieldError struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

// String renders the entry as "loc.path: msg".
func (f FieldError) String() string {
	if len(f.Loc) == 0 {
		return f.Msg
	}
	return strings.Join(f.Loc, ".") + ": " + f.Msg
}

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Details []FieldError `json:"detail,omitempty"`
	Err     error        `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so sentinels survive Clone.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound             = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden            = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized         = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation           = New("VALIDATION_ERROR", http.StatusUnprocessableEntity, "validation failed")
	ErrServerValidation     = New("SERVER_VALIDATION_ERROR", http.StatusBadRequest, "server rejected the payload")
	ErrNetwork              = New("NETWORK_ERROR", http.StatusBadGateway, "could not reach the assignment service")
	ErrUpstream             = New("UPSTREAM_ERROR", http.StatusBadGateway, "assignment service failed")
	ErrSubmitInProgress     = New("SUBMIT_IN_PROGRESS", http.StatusConflict, "a submission is already in progress")
	ErrConfirmationRequired = New("CONFIRMATION_REQUIRED", http.StatusPreconditionRequired, "deletion must be confirmed")
	ErrInternal             = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss            = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithDetails returns a copy carrying structured validation detail.
func WithDetails(err *Error, details []FieldError) *Error {
	clone := Clone(err, "")
	if clone == nil {
		return nil
	}
	clone.Details = append([]FieldError(nil), details...)
	return clone
}

// FlattenDetails renders every detail entry as "loc.path: msg".
func FlattenDetails(details []FieldError) []string {
	lines := make([]string, 0, len(details))
	for _, d := range details {
		lines = append(lines, d.String())
	}
	return lines
}
