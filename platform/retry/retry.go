// Package retry wraps start-up dependencies (database, buckets, migrations)
// in a bounded exponential backoff.
// This is part of the platform layer and contains no business logic.
package retry

import (
	"context"
	"fmt"
	"time"

	"hiring_pipeline_backend/platform/logger"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds a retried operation.
type Policy struct {
	Attempts     uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Startup is the policy used while a process boots.
var Startup = Policy{Attempts: 5, InitialDelay: 2 * time.Second, MaxDelay: 30 * time.Second}

// Do runs fn until it succeeds, the attempts run out or ctx ends. Each
// failure is logged with the operation name.
func Do[T any](ctx context.Context, log *logger.Logger, name string, p Policy, fn func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.MaxInterval = p.MaxDelay

	attempt := 0
	v, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		return fn()
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.Attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "retry_in", next.String(), "error", err)
		}),
	)
	if err != nil {
		return v, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// Run is Do for operations without a result.
func Run(ctx context.Context, log *logger.Logger, name string, p Policy, fn func() error) error {
	_, err := Do(ctx, log, name, p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
