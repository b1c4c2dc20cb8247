package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates a bad flag, argument or config value.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeConfig indicates the configuration could not be loaded.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"
	// ErrCodeConnectionFailed indicates a transport-level failure.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeHTTPStatus indicates a non-2xx response when the caller asked
	// for one to be treated as a failure.
	ErrCodeHTTPStatus ErrorCode = "HTTP_STATUS"
	// ErrCodeDecodeFailed indicates a response body could not be decoded.
	ErrCodeDecodeFailed ErrorCode = "DECODE_FAILED"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var exitCodes = map[ErrorCode]int{
	ErrCodeInternal:         1,
	ErrCodeInvalidInput:     2,
	ErrCodeConfig:           2,
	ErrCodeConnectionFailed: 3,
	ErrCodeHTTPStatus:       4,
	ErrCodeDecodeFailed:     5,
}

// ExitCode returns the process exit status for code.
func ExitCode(code ErrorCode) int {
	if c, ok := exitCodes[code]; ok {
		return c
	}
	return 1
}

// AppError is the unified application error type.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// ExitCode returns the process exit status for e.
func (e *AppError) ExitCode() int { return ExitCode(e.Code) }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// InvalidInput creates an error for a bad field value.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason))
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation creates an error for failed struct validation.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// Config creates an error for a configuration that could not be loaded.
func Config(cause error) *AppError {
	return New(ErrCodeConfig, "failed to load configuration").WithCause(cause)
}

// ConnectionFailed creates an error for a transport failure against url.
func ConnectionFailed(url string, cause error) *AppError {
	return New(ErrCodeConnectionFailed, fmt.Sprintf("request to %s failed", url)).
		WithDetail("url", url).
		WithCause(cause)
}

// HTTPStatus creates an error for an unwanted response status.
func HTTPStatus(status int, statusText string) *AppError {
	return New(ErrCodeHTTPStatus, fmt.Sprintf("server responded %d %s", status, statusText)).
		WithDetail("status", status)
}

// DecodeFailed creates an error for a body that could not be decoded.
func DecodeFailed(format string, cause error) *AppError {
	return New(ErrCodeDecodeFailed, fmt.Sprintf("response body is not valid %s", format)).
		WithCause(cause)
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "unexpected error").WithCause(cause)
}

// AsAppError extracts an *AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries code.
func Is(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
