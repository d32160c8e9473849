package httputil

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

// MaxRetryAfter bounds how long [Retry] honours a server-requested delay.
// A GitHub rate-limit window longer than this fails the call instead of
// stalling the crawl.
const MaxRetryAfter = time.Minute

// RetryableError marks a transient failure (network error, 5xx, 429).
// After, when set, replaces the backoff delay before the next attempt.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn up to attempts times. Only [RetryableError] failures are
// retried; the delay doubles after each one unless the error carries its own
// After. It returns the last error, or ctx.Err() if ctx ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var re *RetryableError
		if !errors.As(err, &re) || i == attempts-1 {
			return err
		}

		wait := delay
		if re.After > 0 {
			if re.After > MaxRetryAfter {
				return err
			}
			wait = re.After
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			delay *= 2
		}
	}
	return lastErr
}

// RetryWithBackoff retries fn three times starting at one second.
// GitHub API calls go through it; registry lookups do not.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

// ParseRetryAfter reads a Retry-After header given in seconds. HTTP-date
// values and garbage yield 0.
func ParseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
