package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activityout "activitylog/internal/modules/activity/adapter/out"
	activityservice "activitylog/internal/modules/activity/service"
	activityusecase "activitylog/internal/modules/activity/usecase"
	trackerout "activitylog/internal/modules/tracker/adapter/out"
	"activitylog/internal/platform/database"
)

func newStore(t *testing.T, loc *time.Location) (*trackerout.SQLStore, int64) {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "activity_log.db"), time.Second, database.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	registry := activityusecase.NewInteractor(activityservice.NewRegistryService(activityout.NewSQLStore(db), db, zerolog.Nop()))
	activityID, _, err := trackerout.NewActivityResolver(registry).Resolve(context.Background(), "Work")
	require.NoError(t, err)
	return trackerout.NewSQLStore(db, loc), activityID
}

func TestSessionAcrossFallBackKeepsOrder(t *testing.T) {
	t.Parallel()
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	store, activityID := newStore(t, ny)
	ctx := context.Background()

	// 01:50 EDT, forty minutes before 01:30 EST on the fall-back night.
	start := time.Date(2024, 11, 3, 5, 50, 0, 0, time.UTC).In(ny)
	end := start.Add(40 * time.Minute)
	require.Equal(t, "2024-11-03 01:30:00", end.Format("2006-01-02 15:04:05"))

	id, err := store.Open(ctx, activityID, start)
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, id, end, 2400))

	sessions, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	got := sessions[0]
	assert.True(t, got.Start.Equal(start))
	assert.True(t, got.End.Equal(end), "end %s, want %s", got.End, end)
	assert.False(t, got.End.Before(got.Start))
	assert.Equal(t, 2400.0, got.DurationSec)
}

func TestSessionOutsideTransitionReadsStoredEnd(t *testing.T) {
	t.Parallel()
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	store, activityID := newStore(t, ny)
	ctx := context.Background()

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, ny)
	id, err := store.Open(ctx, activityID, start)
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, id, start.Add(90*time.Second), 90))

	sessions, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].End.Equal(start.Add(90*time.Second)))
}

func TestCreditUsesStoreZone(t *testing.T) {
	t.Parallel()
	tokyo := time.FixedZone("UTC+9", 9*3600)
	store, activityID := newStore(t, time.UTC)
	ctx := context.Background()

	// 2024-01-06 07:00 in Tokyo is still 2024-01-05 in the store's zone.
	require.NoError(t, store.Credit(ctx, time.Date(2024, 1, 6, 7, 0, 0, 0, tokyo), activityID, 60))

	totals, err := store.ForDate(ctx, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "2024-01-05", totals[0].Date)
	assert.Equal(t, 60.0, totals[0].Seconds)

	totals, err = store.ForDate(ctx, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, totals)
}
