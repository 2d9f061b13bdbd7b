package tx

import "context"

// Manager runs fn as one atomic unit of storage writes. Implementations may
// call fn more than once when they retry, so fn must derive everything it
// writes from state it does not mutate in place.
type Manager interface {
	Within(ctx context.Context, fn func(context.Context) error) error
}

// NoopManager runs fn once without a transaction, for in-memory stores.
type NoopManager struct{}

func (NoopManager) Within(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
