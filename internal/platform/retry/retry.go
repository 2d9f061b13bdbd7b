package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy retries an operation with exponential backoff. Attempts counts the
// retries after the first call, so Attempts=0 runs the operation once.
type Policy struct {
	Attempts int
	Interval time.Duration
}

func (p Policy) Do(ctx context.Context, op func() error, notify func(err error, wait time.Duration)) error {
	b := backoff.NewExponentialBackOff()
	if p.Interval > 0 {
		b.InitialInterval = p.Interval
	}
	b.MaxElapsedTime = 0
	attempts := p.Attempts
	if attempts < 0 {
		attempts = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts)), ctx)
	return backoff.RetryNotify(op, policy, notify)
}

// Permanent marks err as not worth retrying; Do returns the wrapped error unchanged.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
