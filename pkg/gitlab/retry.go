package gitlab

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fivetwenty-io/gitlab-client/internal/constants"
)

// RetryPolicy configures Retry. Only server errors (5xx) are retried; every
// other failure is returned immediately.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// InitialInterval is the delay before the second attempt.
	InitialInterval time.Duration
	// Multiplier scales the delay after each failed attempt.
	Multiplier float64
	// MaxInterval caps a single delay. Zero means no cap.
	MaxInterval time.Duration
	// OnRetry, if set, is called before each delay.
	OnRetry func(err error, wait time.Duration)
}

// DefaultRetryPolicy returns 5 attempts starting at 1s and doubling.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:     constants.BackoffLimit,
		InitialInterval: constants.BackoffInitial,
		Multiplier:      constants.BackoffScale,
	}
}

func (p *RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = p.InitialInterval
	exponential.Multiplier = p.Multiplier
	exponential.RandomizationFactor = 0
	exponential.MaxElapsedTime = 0

	if p.MaxInterval > 0 {
		exponential.MaxInterval = p.MaxInterval
	} else {
		exponential.MaxInterval = time.Duration(1<<63 - 1)
	}

	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}

	return backoff.WithContext(backoff.WithMaxRetries(exponential, uint64(retries)), ctx)
}

// Retry runs operation until it succeeds, fails with a non-5xx error, or the
// policy's attempts are exhausted. The last error is returned.
func Retry(ctx context.Context, policy *RetryPolicy, operation func() error) error {
	if policy == nil {
		policy = DefaultRetryPolicy()
	}

	wrapped := func() error {
		err := operation()
		if err != nil && !IsServerError(err) {
			return backoff.Permanent(err)
		}

		return err
	}

	var notify backoff.Notify
	if policy.OnRetry != nil {
		notify = backoff.Notify(policy.OnRetry)
	}

	return backoff.RetryNotify(wrapped, policy.backOff(ctx), notify)
}

// ExecuteWithRetry is Execute wrapped in Retry.
func ExecuteWithRetry[T any](ctx context.Context, client Client, endpoint *Endpoint, policy *RetryPolicy) (T, error) {
	var result T

	err := Retry(ctx, policy, func() error {
		var err error

		result, err = Execute[T](ctx, client, endpoint)

		return err
	})

	return result, err
}
