package archive

import (
	"context"
	"errors"
	"fmt"
)

// StatusError is a non-200 response from the archive. 5xx responses are
// transient upstream trouble and worth retrying; 4xx responses mean the
// request itself is wrong and retrying cannot help.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: archive returned %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: archive returned %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Retryable reports whether the status class is transient.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}

// DecodeError is a response body that could not be parsed. Never
// retried: redispatching will not fix a malformed payload.
type DecodeError struct {
	Operation string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Operation, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ExhaustedError is surfaced after the retry budget is spent. It carries
// the last underlying cause.
type ExhaustedError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: failed after %d retries: %v", e.Operation, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// IsRetryable classifies a dispatch failure. Timeouts, connection
// errors and 5xx responses are retryable; upstream rejections (4xx),
// undecodable bodies and cancelled contexts are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return false
	}

	// A cancelled caller is done, not unlucky. Deadline errors stay
	// retryable because the client surfaces per-request timeouts as
	// context.DeadlineExceeded; the backoff wait is context-aware, so a
	// dead caller context still stops the loop.
	if errors.Is(err, context.Canceled) {
		return false
	}

	// Everything else is transport-level (dial refused, reset, client
	// timeout) and worth another attempt.
	return true
}

// errorType renders the failure class for metrics labels.
func errorType(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode >= 500 {
			return "server"
		}
		return "client"
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return "decode"
	}
	return "transport"
}
