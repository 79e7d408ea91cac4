package cache

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a transient backend failure (for example a dropped
// Redis connection) that is worth retrying.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryPolicy bounds how cache operations are retried. Cache I/O sits on
// the request path of every method run, so the default gives up quickly and
// lets the run continue uncached.
type RetryPolicy struct {
	// Attempts is the total number of calls, including the first. Values
	// below one mean a single call.
	Attempts int
	// BaseDelay is the wait after the first failure. It doubles per retry.
	BaseDelay time.Duration
	// MaxDelay caps a single wait. Zero means no cap.
	MaxDelay time.Duration
}

// DefaultRetry is used by pipeline runners unless overridden.
var DefaultRetry = RetryPolicy{Attempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

// Do calls fn until it succeeds, returns an error that is not Retryable, or
// the attempts run out. It returns ctx.Err() if ctx ends while waiting.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	waits := p.delays()
	for i := 0; ; i++ {
		err := fn()
		if err == nil || !IsRetryable(err) || i == len(waits) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waits[i]):
		}
	}
}

// delays lists the waits Do would make between attempts.
func (p RetryPolicy) delays() []time.Duration {
	var out []time.Duration
	delay := p.BaseDelay
	for i := 1; i < max(p.Attempts, 1); i++ {
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
		out = append(out, delay)
		delay *= 2
	}
	return out
}
