package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable means a remote backend could not be reached.
	ErrUnavailable = errors.New("cache unavailable")

	// ErrCorrupt means a stored entry could not be read back.
	ErrCorrupt = errors.New("corrupt cache entry")
)

// RetryableError marks a failure worth another attempt, such as a redis
// timeout. Other errors end RetryWithBackoff at once.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err, or anything it wraps, was marked by
// Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryAttempts bounds RetryWithBackoff. RetryDelay is the first pause; each
// later pause doubles.
var (
	RetryAttempts = 3
	RetryDelay    = 100 * time.Millisecond
)

// RetryWithBackoff calls fn until it succeeds, fails with an error not
// marked Retryable, runs out of attempts, or ctx ends.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	delay := RetryDelay
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt >= RetryAttempts {
			return err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
