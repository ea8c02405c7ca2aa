// Package retry runs a probe under a fixed-delay, bounded-attempts policy.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds a retry loop: at most MaxAttempts probes, Delay apart.
type Policy struct {
	MaxAttempts uint
	Delay       time.Duration
}

// ErrInvalidPolicy is returned when a policy allows no attempt at all.
var ErrInvalidPolicy = errors.New("retry policy needs at least one attempt")

// Probe is one attempt. attempt starts at 1.
type Probe[T any] func(ctx context.Context, attempt uint) (T, error)

// Result describes how a retry loop ended.
type Result[T any] struct {
	Value    T
	Attempts uint
}

// Permanent marks err as not worth retrying; Do returns it right away.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do calls probe until it succeeds, returns a permanent error, the policy is exhausted
// or ctx is done. The returned Result always reports how many probes ran.
// On exhaustion the last probe error is returned; on cancellation the context cause is.
func Do[T any](ctx context.Context, policy Policy, probe Probe[T]) (Result[T], error) {
	if policy.MaxAttempts == 0 {
		return Result[T]{}, ErrInvalidPolicy
	}

	var attempts uint
	operation := func() (T, error) {
		attempts++
		return probe(ctx, attempts)
	}

	value, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(policy.Delay)),
		backoff.WithMaxTries(policy.MaxAttempts),
		backoff.WithMaxElapsedTime(0),
	)

	return Result[T]{Value: value, Attempts: attempts}, err
}
