package archive

import (
	"fmt"
	"math"
	"time"
)

// RetryStrategy computes exponential backoff delays for one logical
// archive operation. It is a pure calculator: it never sleeps, the
// owning call drives the loop. Not safe for concurrent use; every
// retryable operation gets its own instance.
type RetryStrategy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	attempt     int
	lastAttempt time.Time
}

// NewRetryStrategy creates a strategy starting at attempt zero.
func NewRetryStrategy(maxRetries int, baseDelay, maxDelay time.Duration) *RetryStrategy {
	return &RetryStrategy{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		MaxDelay:   maxDelay,
	}
}

// ShouldRetry reports whether the retry budget allows another attempt.
func (r *RetryStrategy) ShouldRetry() bool {
	return r.attempt < r.MaxRetries
}

// RecordFailure consumes one unit of retry budget.
func (r *RetryStrategy) RecordFailure() {
	r.attempt++
	r.lastAttempt = time.Now()
}

// WaitTime returns min(BaseDelay * 2^attempt, MaxDelay) for the current
// attempt counter. Deterministic, no jitter.
func (r *RetryStrategy) WaitTime() time.Duration {
	delay := float64(r.BaseDelay) * math.Pow(2, float64(r.attempt))
	if delay > float64(r.MaxDelay) {
		delay = float64(r.MaxDelay)
	}
	return time.Duration(delay)
}

// Reset returns the strategy to its initial state, ready for reuse
// after a success.
func (r *RetryStrategy) Reset() {
	r.attempt = 0
	r.lastAttempt = time.Time{}
}

// Attempt returns the number of failures recorded so far.
func (r *RetryStrategy) Attempt() int {
	return r.attempt
}

// LastAttempt returns when the most recent failure was recorded, or the
// zero time if none was.
func (r *RetryStrategy) LastAttempt() time.Time {
	return r.lastAttempt
}

// Status renders the retry position for logs and status displays.
func (r *RetryStrategy) Status() string {
	switch {
	case r.attempt == 0:
		return "Ready"
	case r.attempt < r.MaxRetries:
		return fmt.Sprintf("Retry %d/%d (next in %.1fs)", r.attempt, r.MaxRetries, r.WaitTime().Seconds())
	default:
		return "Max retries exceeded"
	}
}
