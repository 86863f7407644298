package gateway

import (
	"context"
	"time"
)

// RetryPolicy configures retry behavior for repository calls.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first
	// one fails.
	MaxRetries int

	// BaseDelay is the wait before the first retry. Each subsequent
	// retry doubles the previous wait. No jitter is applied.
	BaseDelay time.Duration
}

// DefaultRetryPolicy returns the standard policy: 3 retries starting at 1s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: time.Second}
}

// Retryer wraps asynchronous repository operations with bounded
// exponential-backoff retry. Calls do not share retry state; a single
// Retryer may be used concurrently.
type Retryer struct {
	policy RetryPolicy

	// sleep waits for d or until ctx is done. Overridable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryer creates a Retryer. Non-positive policy fields fall back to
// the defaults.
func NewRetryer(policy RetryPolicy) *Retryer {
	def := DefaultRetryPolicy()
	if policy.MaxRetries < 0 {
		policy.MaxRetries = def.MaxRetries
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = def.BaseDelay
	}
	return &Retryer{policy: policy, sleep: sleepCtx}
}

// Do runs op, retrying on failure per the policy. The delay before retry i
// (1-indexed) is BaseDelay × 2^(i-1). When every attempt fails, the error
// from the final attempt is returned unchanged. Context cancellation
// interrupts a pending wait and returns ctx.Err().
func (r *Retryer) Do(ctx context.Context, op func(context.Context) error) error {
	var lastErr error
	delay := r.policy.BaseDelay

	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, delay); err != nil {
				return err
			}
			delay *= 2
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}

	return lastErr
}

// Retry runs op through r and returns its value. It is the value-returning
// form of Retryer.Do.
func Retry[T any](ctx context.Context, r *Retryer, op func(context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
