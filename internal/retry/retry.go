// Package retry runs an operation a bounded number of times with a fixed
// delay between attempts.
package retry

import (
	"context"
	"errors"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

// ErrPermanent marks an error that must not be retried. Wrap it with
// Permanent.
var ErrPermanent = errors.New("permanent failure")

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }
func (e *permanentError) Is(target error) bool {
	return target == ErrPermanent
}

// Permanent wraps err so that Do returns it immediately
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, or maxAttempts
// calls have been made. It returns nil on success and otherwise the last
// error fn returned. A maxAttempts below 1 is treated as 1.
func Do(ctx context.Context, maxAttempts int, delay time.Duration, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if delay <= 0 {
		delay = time.Nanosecond
	}

	backoff := goretry.WithMaxRetries(uint64(maxAttempts-1), goretry.NewConstant(delay))

	var last error
	err := goretry.Do(ctx, backoff, func(ctx context.Context) error {
		last = fn(ctx)
		if last == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(last, &perm) {
			last = perm.err
			return last
		}
		return goretry.RetryableError(last)
	})
	if err == nil {
		return nil
	}
	if last != nil {
		return last
	}
	return err
}
