package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activitylog/internal/platform/retry"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	t.Parallel()
	calls, notified := 0, 0
	err := retry.Policy{Attempts: 3, Interval: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	}, func(error, time.Duration) { notified++ })
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, notified)
}

func TestDoGivesUpAfterAttempts(t *testing.T) {
	t.Parallel()
	calls := 0
	boom := errors.New("disk I/O error")
	err := retry.Policy{Attempts: 2, Interval: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		return boom
	}, nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanent(t *testing.T) {
	t.Parallel()
	calls := 0
	bad := errors.New("constraint failed")
	err := retry.Policy{Attempts: 5, Interval: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		return retry.Permanent(bad)
	}, nil)
	require.ErrorIs(t, err, bad)
	assert.Equal(t, 1, calls)
}
