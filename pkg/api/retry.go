package api

import (
	"math/rand"
	"time"
)

// RetryPolicy controls the attempt loop in Client.do.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt, for
	// idempotent methods only.
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// RequestTimeout is the wall-clock deadline imposed on each attempt.
	RequestTimeout time.Duration
}

// DefaultRetryPolicy returns the control-plane defaults: up to three retries,
// exponential backoff starting at one second, capped at thirty.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     3,
		BaseDelay:      time.Second,
		MaxDelay:       30 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}

// delay computes the sleep before the next attempt. attempt is zero-based.
// A server-provided Retry-After takes precedence over exponential backoff.
func (p RetryPolicy) delay(attempt int, retryAfter *time.Duration) time.Duration {
	if retryAfter != nil {
		return min(*retryAfter, p.MaxDelay)
	}
	d := p.BaseDelay << uint(attempt)
	// Multiplicative jitter in [0.75, 1.25) spreads synchronized clients.
	d = time.Duration(float64(d) * (0.75 + rand.Float64()*0.5))
	return min(d, p.MaxDelay)
}
