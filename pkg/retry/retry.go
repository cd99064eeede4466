// Package retry runs an operation repeatedly under a bounded, context-aware
// policy.
//
// The attempt counter and last error live only inside Do; nothing is shared
// between calls, so one Policy value can drive any number of concurrent
// operations.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Clock abstracts waiting so tests can drive retries without sleeping.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// SystemClock waits on the wall clock.
var SystemClock Clock = systemClock{}

// Policy describes how many times an operation is tried and how long to wait
// between tries.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first one.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Delay is the wait before the second attempt.
	Delay time.Duration

	// Multiplier grows the delay between subsequent attempts. Values
	// below 1 keep the delay fixed.
	Multiplier float64

	// MaxDelay caps the delay. Zero means no cap.
	MaxDelay time.Duration

	// Retryable decides whether an error is worth another attempt.
	// Nil means every error is retryable.
	Retryable func(error) bool

	// OnRetry is called before each wait with the attempt that just failed.
	// ctx is the context passed to Do.
	OnRetry func(ctx context.Context, attempt int, err error, wait time.Duration)

	// Clock defaults to SystemClock.
	Clock Clock
}

// DefaultPolicy returns three attempts with a fixed one second delay.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Delay:       time.Second,
		Multiplier:  1,
	}
}

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Backoff returns the wait that follows the given failed attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	delay := p.Delay
	if p.Multiplier > 1 {
		d := float64(delay)
		for i := 1; i < attempt; i++ {
			d *= p.Multiplier
			if p.MaxDelay > 0 && d >= float64(p.MaxDelay) {
				return p.MaxDelay
			}
		}
		delay = time.Duration(d)
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// Do calls op until it succeeds, returns a non-retryable error, or the
// attempts run out. It returns the number of attempts made.
//
// A non-retryable error is returned as is. Running out of attempts yields an
// *ExhaustedError wrapping the last error. There is no wait after the final
// attempt. Cancelling ctx during a wait returns ctx.Err().
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	clock := p.Clock
	if clock == nil {
		clock = SystemClock
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		err := op(ctx, attempt)
		if err == nil {
			return attempt, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return attempt, err
		}
		if attempt >= maxAttempts {
			return attempt, &ExhaustedError{Attempts: attempt, Last: err}
		}

		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(ctx, attempt, err, wait)
		}
		if wait <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-clock.After(wait):
		}
	}
}
