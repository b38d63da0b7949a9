package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNoCredentials is returned when a request is attempted with neither a
// bearer token nor a static API key configured.
var ErrNoCredentials = errors.New("no credentials configured: set SCRAPEWORKS_API_KEY or connect with a bearer token")

// APIError is a terminal HTTP failure reported by the control plane.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Endpoint, e.Status, e.Message)
}

func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }
func (e *APIError) IsForbidden() bool    { return e.StatusCode == http.StatusForbidden }
func (e *APIError) IsNotFound() bool     { return e.StatusCode == http.StatusNotFound }
func (e *APIError) IsRateLimited() bool  { return e.StatusCode == http.StatusTooManyRequests }
func (e *APIError) IsServerError() bool  { return e.StatusCode >= 500 }

// Retryable reports whether repeating the request could change the outcome.
// Authorization failures are excluded: a retry cannot fix a bad credential.
func (e *APIError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// RateLimitError is the status-429 specialization of APIError.
type RateLimitError struct {
	APIError

	// RetryAfter is nil when the server sent no usable Retry-After header.
	// Absent is distinct from an immediate (zero) hint.
	RetryAfter *time.Duration
}

// Unwrap lets errors.As reach the embedded APIError.
func (e *RateLimitError) Unwrap() error { return &e.APIError }

// TimeoutError reports that no attempt completed within its deadline.
type TimeoutError struct {
	Endpoint string
	Budget   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: request timed out after %s", e.Endpoint, e.Budget)
}
