package briq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorDetail represents one validation or business-rule violation. Field is
// empty when the violation is not scoped to a single field.
type ErrorDetail struct {
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
	Message string `json:"message"         yaml:"message"`
	Code    string `json:"code,omitempty"  yaml:"code,omitempty"`
}

// String renders the detail as "field: message (code)".
func (d ErrorDetail) String() string {
	var b strings.Builder

	if d.Field != "" {
		b.WriteString(d.Field)
		b.WriteString(": ")
	}

	b.WriteString(d.Message)

	if d.Code != "" {
		fmt.Fprintf(&b, " (%s)", d.Code)
	}

	return b.String()
}

// Static errors for err113 compliance.
var (
	ErrSessionClosed     = errors.New("briq: session is not open")
	ErrInvalidArgument   = errors.New("briq: invalid argument")
	ErrConfigRequired    = errors.New("config is required")
	ErrAPIKeyRequired    = errors.New("API key is required")
	ErrBaseURLInvalid    = errors.New("base URL is invalid")
	ErrRetriesExhausted  = errors.New("retries exhausted")
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
)

// ConnectionError is returned when the request never produced an HTTP
// response: connection refused, DNS failure, reset, or caller cancellation.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("briq: connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when the configured per-request timeout expires.
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("briq: request timed out after %s", e.Timeout)
	}

	return "briq: request timed out"
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// AuthenticationError maps 401 and 403 responses.
type AuthenticationError struct {
	StatusCode int
	Message    string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("briq: authentication failed (status %d): %s", e.StatusCode, e.Message)
}

// NotFoundError maps 404 responses.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return "briq: resource not found"
	}

	return "briq: resource not found: " + e.Message
}

// ValidationError carries field-level details. It is produced both by local
// pre-flight validation (StatusCode 0) and by the server (422 or an envelope
// with success=false and errors).
type ValidationError struct {
	StatusCode int
	Message    string
	Errors     []ErrorDetail
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "validation failed"
	}

	if len(e.Errors) == 0 {
		return "briq: " + msg
	}

	parts := make([]string, 0, len(e.Errors))
	for _, detail := range e.Errors {
		parts = append(parts, detail.String())
	}

	return fmt.Sprintf("briq: %s: %s", msg, strings.Join(parts, "; "))
}

// Local reports whether the error was raised before any request was sent.
func (e *ValidationError) Local() bool {
	return e.StatusCode == 0
}

// Field returns the first detail for the named field.
func (e *ValidationError) Field(name string) (ErrorDetail, bool) {
	for _, detail := range e.Errors {
		if detail.Field == name {
			return detail, true
		}
	}

	return ErrorDetail{}, false
}

// RateLimitError maps 429 responses. RetryAfter is nil when the server did
// not send a usable Retry-After header.
type RateLimitError struct {
	Message    string
	RetryAfter *time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter != nil {
		return fmt.Sprintf("briq: rate limited, retry after %s", *e.RetryAfter)
	}

	return "briq: rate limited"
}

// ServerError maps 5xx responses.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("briq: server error (status %d): %s", e.StatusCode, e.Message)
}

// MalformedResponseError is returned when a body cannot be parsed as an
// envelope or its data does not match the expected shape.
type MalformedResponseError struct {
	StatusCode int
	RawBody    []byte
	Err        error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("briq: malformed response (status %d): %v", e.StatusCode, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// APIError is the catch-all for any other unsuccessful response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("briq: API error (status %d): %s", e.StatusCode, e.Message)
}

// InvalidArgumentError is raised locally for bad identifiers or malformed
// request construction. It matches ErrInvalidArgument with errors.Is.
type InvalidArgumentError struct {
	Argument string
	Message  string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("briq: invalid argument %q: %s", e.Argument, e.Message)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	var notFound *NotFoundError

	return errors.As(err, &notFound)
}

// IsUnauthorized checks if the error is an authentication error.
func IsUnauthorized(err error) bool {
	var authErr *AuthenticationError

	return errors.As(err, &authErr)
}

// IsValidation checks if the error carries validation details.
func IsValidation(err error) bool {
	var validationErr *ValidationError

	return errors.As(err, &validationErr)
}

// IsRateLimited checks if the error is a rate limit error.
func IsRateLimited(err error) bool {
	var rateErr *RateLimitError

	return errors.As(err, &rateErr)
}

// IsRetryable reports whether repeating the same call may succeed: rate
// limits, server errors, timeouts, and connection failures that were not
// caused by the caller cancelling.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var (
		rateErr    *RateLimitError
		serverErr  *ServerError
		timeoutErr *TimeoutError
		connErr    *ConnectionError
	)

	switch {
	case errors.As(err, &rateErr), errors.As(err, &serverErr), errors.As(err, &timeoutErr):
		return true
	case errors.As(err, &connErr):
		return !errors.Is(err, context.Canceled)
	default:
		return false
	}
}
