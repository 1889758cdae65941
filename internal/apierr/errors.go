// Package apierr defines the error taxonomy every handler maps faults into
// before responding: validation, conflict, not-found, throttling, internal.
package apierr

import (
	"errors"
	"net/http"

	"github.com/aws/smithy-go"
	"github.com/imrishuroy/go-order-triage/internal/orders"
)

// Error codes surfaced in the response body's "error" field.
const (
	CodeValidation = "ValidationError"
	CodeConflict   = "ConflictError"
	CodeNotFound   = "NotFoundError"
	CodeThrottling = "ThrottlingError"
	CodeInternal   = "InternalError"
)

// Error is a fault already mapped to the taxonomy. Fields is populated only
// for validation errors and lists every violated field.
type Error struct {
	Code    string
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus returns the status code for the error's taxonomy class.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeThrottling:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Validation builds a 400 error listing all violated fields.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// Conflict builds a 409 error.
func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// NotFound builds a 404 error.
func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// Throttled builds a 429 error.
func Throttled(message string) *Error {
	return &Error{Code: CodeThrottling, Message: message}
}

// Internal wraps an unexpected fault as a 500 error. The cause stays
// attached for logging; the message is what the caller sees.
func Internal(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, cause: cause}
}

// From maps an arbitrary fault into the taxonomy. Store sentinels and
// DynamoDB throttling codes get their own classes; everything else is
// internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, orders.ErrAlreadyExists):
		return Conflict("an order with this id already exists")
	case errors.Is(err, orders.ErrNotFound):
		return NotFound("order not found")
	case IsThrottle(err):
		return Throttled("order store is throttling requests, retry later")
	default:
		return Internal("unexpected error", err)
	}
}

// IsThrottle reports whether err is a backing-store throttling fault.
func IsThrottle(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded":
		return true
	}
	return false
}
