package usecase_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activityout "activitylog/internal/modules/activity/adapter/out"
	activityin "activitylog/internal/modules/activity/port/in"
	"activitylog/internal/modules/activity/service"
	"activitylog/internal/modules/activity/usecase"
	"activitylog/internal/platform/database"
	apperrors "activitylog/internal/platform/errors"
	"activitylog/internal/platform/retry"
)

func newRegistry(t *testing.T) (activityin.Usecase, *database.DB) {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "activity_log.db"), time.Second, database.Options{
		Retry:  retry.Policy{Attempts: 1, Interval: time.Millisecond},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	svc := service.NewRegistryService(activityout.NewSQLStore(db), db, zerolog.Nop())
	return usecase.NewInteractor(svc), db
}

func TestGetOrCreateIsCaseInsensitiveAndIdempotent(t *testing.T) {
	t.Parallel()
	uc, db := newRegistry(t)
	ctx := context.Background()

	first, err := uc.GetOrCreate(ctx, "Work")
	require.NoError(t, err)
	again, err := uc.GetOrCreate(ctx, "WORK")
	require.NoError(t, err)
	third, err := uc.GetOrCreate(ctx, " work ")
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, "Work", again.Name)

	var rows int
	require.NoError(t, db.Conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestGetOrCreateRejectsBlankNames(t *testing.T) {
	t.Parallel()
	uc, _ := newRegistry(t)
	_, err := uc.GetOrCreate(context.Background(), "   ")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSeedAndList(t *testing.T) {
	t.Parallel()
	uc, _ := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, uc.Seed(ctx, []string{"Work", "Study", "Break", "Waste", "Projects"}))
	require.NoError(t, uc.Seed(ctx, []string{"work", "Study"}))
	_, err := uc.GetOrCreate(ctx, "archery")
	require.NoError(t, err)

	names, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"archery", "Break", "Custom", "Projects", "Study", "Waste", "Work"}, names)

	def, err := uc.DefaultActivity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "archery", def)
}

func TestDefaultActivityOnEmptyRegistry(t *testing.T) {
	t.Parallel()
	uc, _ := newRegistry(t)
	def, err := uc.DefaultActivity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Work", def)
}
