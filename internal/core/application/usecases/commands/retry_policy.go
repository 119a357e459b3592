package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the retries of writes that run outside the unit of work.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy retries three times starting at 100ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, InitialInterval: 100 * time.Millisecond, MaxInterval: 2 * time.Second}
}

// EarningsRetryPolicy keeps re-driving an accounting hand-off for roughly ten
// minutes.
func EarningsRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 12, InitialInterval: time.Second, MaxInterval: time.Minute}
}

// run calls op until it succeeds, the retries are exhausted or ctx ends.
// Not-found, conflict and permission errors are returned immediately.
func (p RetryPolicy) run(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, errs.ErrObjectNotFound) ||
			errors.Is(err, errs.ErrStateConflict) ||
			errors.Is(err, errs.ErrPermissionDenied) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx))
}
