package out_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activityout "activitylog/internal/modules/activity/adapter/out"
	activityservice "activitylog/internal/modules/activity/service"
	activityusecase "activitylog/internal/modules/activity/usecase"
	trackerhttp "activitylog/internal/modules/tracker/adapter/in"
	trackerout "activitylog/internal/modules/tracker/adapter/out"
	"activitylog/internal/modules/tracker/dto"
	"activitylog/internal/modules/tracker/service"
	"activitylog/internal/modules/tracker/usecase"
	"activitylog/internal/platform/clock"
	"activitylog/internal/platform/database"
	apperrors "activitylog/internal/platform/errors"
)

func TestRemoteClientDrivesRunningTracker(t *testing.T) {
	t.Parallel()
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "activity_log.db"), time.Second, database.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clk := clock.NewManual(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	registry := activityusecase.NewInteractor(activityservice.NewRegistryService(activityout.NewSQLStore(db), db, zerolog.Nop()))
	store := trackerout.NewSQLStore(db, time.UTC)
	rec := service.NewReconciler(store, store, zerolog.Nop())
	tracker := service.NewSessionTracker(rec, store, trackerout.NewActivityResolver(registry), zerolog.Nop())
	seq := usecase.NewSequencer(usecase.NewInteractor(tracker, rec, store, store, db, clk, zerolog.Nop()), time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- seq.Run(ctx) }()

	srv := httptest.NewServer(trackerhttp.NewHTTPHandler(seq, registry, zerolog.Nop()).Router())
	defer srv.Close()

	client, err := trackerout.NewRemoteClient(srv.URL, time.Second)
	require.NoError(t, err)

	st, err := client.Start(ctx, dto.StartInput{Name: "deep work"})
	require.NoError(t, err)
	assert.True(t, st.Running)
	assert.Equal(t, "deep work", st.Activity)

	clk.Advance(45 * time.Second)
	st, err = client.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45.0, st.ElapsedSec)

	_, err = client.Tick(ctx, dto.TickInput{At: clk.Now().AddDate(0, 0, 1)})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = client.Stop(ctx, dto.StopInput{At: clk.Now().Add(time.Hour)})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	st, err = client.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Running)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), st.LastReconciledAt.UTC())

	_, err = client.Switch(ctx, dto.StartInput{Name: ""})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	st, err = client.Stop(ctx, dto.StopInput{})
	require.NoError(t, err)
	assert.False(t, st.Running)

	totals, err := seq.TodayTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []dto.TotalOutput{{Activity: "deep work", Seconds: 45}}, totals)

	cancel()
	require.NoError(t, <-done)
	_, err = client.Tick(context.Background(), dto.TickInput{})
	require.ErrorIs(t, err, apperrors.ErrSequencerClosed)
}

func TestRemoteClientAddress(t *testing.T) {
	t.Parallel()
	_, err := trackerout.NewRemoteClient("", time.Second)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	client, err := trackerout.NewRemoteClient(":1", 50*time.Millisecond)
	require.NoError(t, err)
	_, err = client.Status(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http://127.0.0.1:1")
}
