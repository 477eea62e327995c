// Package retry provides injectable retry policies for LLM-facing calls.
//
// A Policy is a factory for backoff schedules: callers get a fresh schedule
// per operation, so policies are safe to share and reuse. Swapping the policy
// (for example to Immediate in tests) changes timing without touching the
// retry loop itself.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy produces bounded backoff schedules for one retried operation.
type Policy struct {
	name string
	next func() backoff.BackOff
}

// BackOff returns a fresh context-aware schedule for a single operation.
func (p Policy) BackOff(ctx context.Context) backoff.BackOffContext {
	return backoff.WithContext(p.next(), ctx)
}

func (p Policy) String() string { return p.name }

// Constant retries up to maxRetries additional times with a fixed delay
// between attempts (maxRetries+1 attempts in total).
func Constant(maxRetries int, delay time.Duration) Policy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return Policy{
		name: fmt.Sprintf("constant(%d,%s)", maxRetries, delay),
		next: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(maxRetries))
		},
	}
}

// Immediate retries up to maxRetries additional times with no delay. Meant
// for tests, where retry behaviour matters but wall-clock time does not.
func Immediate(maxRetries int) Policy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return Policy{
		name: fmt.Sprintf("immediate(%d)", maxRetries),
		next: func() backoff.BackOff {
			return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(maxRetries))
		},
	}
}

// Exponential retries with exponential delays until maxElapsed has passed.
// Used by the chat transport, where the bound is time rather than a count.
func Exponential(initial, maxInterval, maxElapsed time.Duration, multiplier float64) Policy {
	return Policy{
		name: fmt.Sprintf("exponential(%s,%s,%s)", initial, maxInterval, maxElapsed),
		next: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxInterval = maxInterval
			b.MaxElapsedTime = maxElapsed
			b.Multiplier = multiplier
			return b
		},
	}
}

// Do runs op under a fresh schedule from p. Wrap an error in
// backoff.Permanent to stop retrying early; context cancellation stops the
// schedule between attempts.
func Do(ctx context.Context, p Policy, op backoff.Operation) error {
	return backoff.Retry(op, p.BackOff(ctx))
}
