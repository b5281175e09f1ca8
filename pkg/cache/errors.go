package cache

import (
	"context"
	"errors"
	"net"
	"time"
)

// RetryableError marks a failure worth retrying, such as a dropped
// connection to the cache server.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. It returns nil for a nil error.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is wrapped with [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryable classifies transport failures as retryable.
func retryable(err error) error {
	var ne net.Error
	if errors.As(err, &ne) {
		return Retryable(err)
	}
	return err
}

// Backoff controls [RetryWithBackoff].
type Backoff struct {
	Attempts int
	Delay    time.Duration // doubled after every failed attempt
}

// DefaultBackoff suits a cache round trip: three tries within a second.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 100 * time.Millisecond}

// RetryWithBackoff calls fn until it succeeds, returns an error not marked
// [Retryable], or the attempts are used up.
func RetryWithBackoff(ctx context.Context, b Backoff, fn func() error) error {
	if b.Attempts < 1 {
		b.Attempts = 1
	}
	delay := b.Delay
	var lastErr error

	for i := range b.Attempts {
		if lastErr = fn(); lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if i < b.Attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
