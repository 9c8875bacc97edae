package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elusion/briq-go/internal/constants"
	"github.com/elusion/briq-go/pkg/briq"
)

// Static errors for err113 compliance.
var (
	ErrEmptyBody    = errors.New("response body is empty")
	ErrEmptyData    = errors.New("response data is empty")
	ErrInvalidShape = errors.New("response data does not match the expected shape")
)

// mapResponse decodes body as an envelope and maps the status code and
// envelope onto the error taxonomy. Precedence: 401/403, 404, 422 or
// envelope errors, 429, 5xx, any other non-2xx. A 2xx envelope with
// success=false is never treated as success.
func mapResponse(statusCode int, headers http.Header, body []byte) (*Response, error) {
	var envelope briq.Envelope[json.RawMessage]

	parseErr := ErrEmptyBody
	if len(strings.TrimSpace(string(body))) > 0 {
		parseErr = json.Unmarshal(body, &envelope)
	}

	message := envelope.Message
	if parseErr != nil || message == "" {
		message = http.StatusText(statusCode)
	}

	// Rate limits and server failures keep their own type so they stay
	// retryable.
	hasEnvelopeErrors := parseErr == nil && !envelope.Success && len(envelope.Errors) > 0 &&
		statusCode != http.StatusTooManyRequests && statusCode < http.StatusInternalServerError

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return nil, &briq.AuthenticationError{StatusCode: statusCode, Message: message}
	case statusCode == http.StatusNotFound:
		return nil, &briq.NotFoundError{Message: message}
	case statusCode == http.StatusUnprocessableEntity || hasEnvelopeErrors:
		return nil, &briq.ValidationError{StatusCode: statusCode, Message: message, Errors: envelope.Errors}
	case statusCode == http.StatusTooManyRequests:
		return nil, &briq.RateLimitError{Message: message, RetryAfter: parseRetryAfter(headers.Get(constants.HeaderRetryAfter), time.Now())}
	case statusCode >= http.StatusInternalServerError:
		return nil, &briq.ServerError{StatusCode: statusCode, Message: message}
	case statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices:
		return nil, &briq.APIError{StatusCode: statusCode, Message: message}
	}

	if statusCode == http.StatusNoContent && parseErr != nil {
		return &Response{StatusCode: statusCode, Headers: headers, Body: body, Envelope: briq.Envelope[json.RawMessage]{Success: true}}, nil
	}

	if parseErr != nil {
		return nil, &briq.MalformedResponseError{StatusCode: statusCode, RawBody: body, Err: parseErr}
	}

	if !envelope.Success {
		if envelope.Message == "" {
			message = "request was not successful"
		}

		return nil, &briq.APIError{StatusCode: statusCode, Message: message}
	}

	return &Response{StatusCode: statusCode, Headers: headers, Body: body, Envelope: envelope}, nil
}

// parseRetryAfter accepts delta-seconds or an HTTP-date.
func parseRetryAfter(value string, now time.Time) *time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return nil
		}

		wait := time.Duration(seconds) * time.Second

		return &wait
	}

	when, err := http.ParseTime(value)
	if err != nil {
		return nil
	}

	wait := when.Sub(now)
	if wait < 0 {
		wait = 0
	}

	return &wait
}

// Decode unmarshals the envelope data into T. A missing payload, a shape
// mismatch, or a failed read validation yields MalformedResponseError.
func Decode[T any](resp *Response) (*T, error) {
	data := resp.Envelope.Data
	if len(data) == 0 || string(data) == "null" {
		return nil, &briq.MalformedResponseError{StatusCode: resp.StatusCode, RawBody: resp.Body, Err: ErrEmptyData}
	}

	var out T

	err := json.Unmarshal(data, &out)
	if err != nil {
		return nil, &briq.MalformedResponseError{StatusCode: resp.StatusCode, RawBody: resp.Body, Err: fmt.Errorf("%w: %w", ErrInvalidShape, err)}
	}

	if validatable, ok := any(&out).(briq.Validatable); ok {
		details := validatable.Validate()
		if len(details) > 0 {
			return nil, &briq.MalformedResponseError{
				StatusCode: resp.StatusCode,
				RawBody:    resp.Body,
				Err:        fmt.Errorf("%w: %s", ErrInvalidShape, details[0]),
			}
		}
	}

	return &out, nil
}

// StatusCode extracts the HTTP status carried by a briq error, or 0.
func StatusCode(err error) int {
	var (
		authErr       *briq.AuthenticationError
		notFoundErr   *briq.NotFoundError
		validationErr *briq.ValidationError
		rateErr       *briq.RateLimitError
		serverErr     *briq.ServerError
		malformedErr  *briq.MalformedResponseError
		apiErr        *briq.APIError
	)

	switch {
	case errors.As(err, &authErr):
		return authErr.StatusCode
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &validationErr):
		return validationErr.StatusCode
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests
	case errors.As(err, &serverErr):
		return serverErr.StatusCode
	case errors.As(err, &malformedErr):
		return malformedErr.StatusCode
	case errors.As(err, &apiErr):
		return apiErr.StatusCode
	default:
		return 0
	}
}

// errorKind labels an error for metrics.
func errorKind(err error) string {
	if err == nil {
		return ""
	}

	var (
		connErr       *briq.ConnectionError
		timeoutErr    *briq.TimeoutError
		authErr       *briq.AuthenticationError
		notFoundErr   *briq.NotFoundError
		validationErr *briq.ValidationError
		rateErr       *briq.RateLimitError
		serverErr     *briq.ServerError
		malformedErr  *briq.MalformedResponseError
	)

	switch {
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &connErr):
		return "connection"
	case errors.As(err, &authErr):
		return "authentication"
	case errors.As(err, &notFoundErr):
		return "not_found"
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &rateErr):
		return "rate_limit"
	case errors.As(err, &serverErr):
		return "server"
	case errors.As(err, &malformedErr):
		return "malformed"
	default:
		return "api"
	}
}
