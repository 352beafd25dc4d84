// Package errors provides custom error types for the agui query client.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for common cases
var (
	ErrClientClosed       = errors.New("client is closed")
	ErrEmptyPrompt        = errors.New("prompt cannot be empty")
	ErrInvalidResponse    = errors.New("invalid response format")
	ErrUnexpectedResponse = errors.New("unexpected response")
	ErrResponseTooLarge   = errors.New("response too large")
)

// NetworkError represents a failure to complete the HTTP exchange
type NetworkError struct {
	Operation string
	Endpoint  string
	Cause     error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Cause)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// NewNetworkErrorWithEndpoint creates a new NetworkError bound to an endpoint
func NewNetworkErrorWithEndpoint(operation, endpoint string, cause error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Cause: cause}
}

// APIError represents a completed request whose status was not 2xx.
// The query client attaches it to a ParseError for diagnostics only.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError that keeps the response body
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	err := NewAPIError(statusCode, endpoint, message)
	err.Body = body
	return err
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// ParseError represents a response body that could not be decoded.
// Cause, when set, is the APIError of a non-2xx exchange.
type ParseError struct {
	Message string
	Path    string
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// UnexpectedResponseError is a well-formed body that lacks a usable reply.
// BackendError holds the backend's own error text when it sent one.
type UnexpectedResponseError struct {
	Field        string
	BackendError string
	StatusCode   int
}

func (e *UnexpectedResponseError) Error() string {
	if e.BackendError != "" {
		return fmt.Sprintf("unexpected response: field %q missing, backend error: %s", e.Field, e.BackendError)
	}
	return fmt.Sprintf("unexpected response: field %q missing or empty", e.Field)
}

// Is allows comparison with sentinel errors
func (e *UnexpectedResponseError) Is(target error) bool {
	if target == ErrUnexpectedResponse {
		return true
	}
	_, ok := target.(*UnexpectedResponseError)
	return ok
}

// NewUnexpectedResponseError creates a new UnexpectedResponseError
func NewUnexpectedResponseError(field, backendError string, statusCode int) *UnexpectedResponseError {
	return &UnexpectedResponseError{Field: field, BackendError: backendError, StatusCode: statusCode}
}

// IsNetworkError reports whether err is a transport failure (timeouts included)
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr) || IsTimeoutError(err)
}

// IsTimeoutError reports whether err was caused by a deadline
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsParseError reports whether err is a body decoding failure
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// IsUnexpectedResponse reports whether err is a missing-field reply
func IsUnexpectedResponse(err error) bool {
	return errors.Is(err, ErrUnexpectedResponse)
}

// GetHTTPStatus extracts the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var unexpected *UnexpectedResponseError
	if errors.As(err, &unexpected) {
		return unexpected.StatusCode
	}
	return 0
}

// GetEndpoint extracts the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	return ""
}

// GetBackendError extracts the backend's own error text, or ""
func GetBackendError(err error) string {
	var unexpected *UnexpectedResponseError
	if errors.As(err, &unexpected) {
		return unexpected.BackendError
	}
	return ""
}
