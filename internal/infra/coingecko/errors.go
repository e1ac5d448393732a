package coingecko

import (
	"fmt"
	"net/http"
)

// APIError is returned for non-2xx responses. Every status is retried the same way.
type APIError struct {
	StatusCode int
	Message    string
}

func newAPIError(statusCode int) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("API request failed: %d %s", statusCode, http.StatusText(statusCode)),
	}
}

func (e *APIError) Error() string {
	return e.Message
}

// NetworkError is a transport-level failure (dial, timeout, truncated body).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RetryError is what a caller sees once every attempt has failed.
// Its message is exactly the last attempt's message; Unwrap exposes that error.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return e.Err.Error()
}

func (e *RetryError) Unwrap() error {
	return e.Err
}
