package briq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// RetryPolicy configures Retry. The transport itself performs exactly one
// attempt per call; retries only happen through this wrapper.
type RetryPolicy struct {
	// MaxRetries is the maximum number of retry attempts after the initial try.
	MaxRetries int
	// WaitMin is the base backoff between retries.
	WaitMin time.Duration
	// WaitMax caps the backoff between retries. A server supplied
	// Retry-After is honoured even when it exceeds WaitMax.
	WaitMax time.Duration
	// ShouldRetry decides whether an error is worth another attempt.
	// Defaults to IsRetryable.
	ShouldRetry func(error) bool
}

// DefaultRetryPolicy returns default retry configuration.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxRetries:  3,
		WaitMin:     1 * time.Second,
		WaitMax:     30 * time.Second,
		ShouldRetry: IsRetryable,
	}
}

// Retry calls fn until it succeeds, returns a non-retryable error, or the
// policy is exhausted. Each attempt is a separate call through the client.
func Retry[T any](ctx context.Context, policy *RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	if policy == nil {
		policy = DefaultRetryPolicy()
	}

	shouldRetry := policy.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsRetryable
	}

	var zero T

	for attempt := 0; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		if !shouldRetry(err) {
			return zero, err
		}

		if attempt >= policy.MaxRetries {
			return zero, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt+1, err)
		}

		timer := time.NewTimer(policy.backoff(attempt, err))

		select {
		case <-ctx.Done():
			timer.Stop()

			return zero, fmt.Errorf("%w: %w", ctx.Err(), err)
		case <-timer.C:
		}
	}
}

// RetryDo is Retry for calls that return only an error.
func RetryDo(ctx context.Context, policy *RetryPolicy, fn func(context.Context) error) error {
	_, err := Retry(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})

	return err
}

func (p *RetryPolicy) backoff(attempt int, err error) time.Duration {
	var rateErr *RateLimitError
	if errors.As(err, &rateErr) && rateErr.RetryAfter != nil {
		return *rateErr.RetryAfter
	}

	return retryablehttp.DefaultBackoff(p.WaitMin, p.WaitMax, attempt, nil)
}
