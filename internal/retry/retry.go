// Package retry runs network operations under a bounded attempt policy.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/soyeahso/reviewbot/internal/logging"
)

// Default wait bounds between attempts.
const (
	DefaultMinWait = 1 * time.Second
	DefaultMaxWait = 30 * time.Second
)

// Policy bounds how many times an operation is attempted.
// Retries is the number of additional attempts after the first one;
// negative values are treated as zero.
type Policy struct {
	Retries int

	// MinWait and MaxWait bound the exponential wait between attempts.
	// Zero values select DefaultMinWait and DefaultMaxWait.
	MinWait time.Duration
	MaxWait time.Duration

	// AttemptTimeout, when positive, bounds each individual attempt.
	AttemptTimeout time.Duration

	Log *logging.Logger
}

// Attempts returns the total number of attempts the policy allows.
func (p Policy) Attempts() int {
	if p.Retries < 0 {
		return 1
	}
	return p.Retries + 1
}

// ExhaustedError is returned after every attempt failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: %d attempt(s) failed: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Do runs op until it succeeds or the policy's attempts are exhausted.
// Attempts are sequential. Context cancellation stops further attempts and
// returns the context error.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	minWait, maxWait := p.MinWait, p.MaxWait
	if minWait <= 0 {
		minWait = DefaultMinWait
	}
	if maxWait < minWait {
		maxWait = max(DefaultMaxWait, minWait)
	}

	attempts := p.Attempts()
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := retryablehttp.DefaultBackoff(minWait, maxWait, attempt-1, nil)
			if p.Log != nil {
				p.Log.Debug().
					Int("attempt", attempt+1).
					Int("of", attempts).
					Dur("wait", wait).
					Err(lastErr).
					Msg("retrying")
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		result, err := runAttempt(ctx, p.AttemptTimeout, op)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}

	if p.Log != nil {
		p.Log.Warn().Int("attempts", attempts).Err(lastErr).Msg("all attempts failed")
	}
	return zero, &ExhaustedError{Attempts: attempts, Last: lastErr}
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return op(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return op(attemptCtx)
}
