package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activitylog/internal/modules/tracker/dto"
	"activitylog/internal/modules/tracker/usecase"
	apperrors "activitylog/internal/platform/errors"
)

func runSequencer(t *testing.T, h harness, interval time.Duration) (*usecase.Sequencer, context.CancelFunc, <-chan error) {
	t.Helper()
	seq := usecase.NewSequencer(h.interactor, interval, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- seq.Run(ctx) }()
	t.Cleanup(cancel)
	return seq, cancel, done
}

func TestSequencerAppliesRequestsInOrder(t *testing.T) {
	t.Parallel()
	h := newHarness(t, ts(12, 9, 0, 0))
	seq, cancel, done := runSequencer(t, h, time.Hour)
	ctx := context.Background()

	st, err := seq.Start(ctx, dto.StartInput{Name: "Work"})
	require.NoError(t, err)
	assert.True(t, st.Running)
	assert.Equal(t, "Work", st.Activity)

	h.clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, seq.CurrentElapsed())
	assert.Equal(t, 1.5, seq.State().ElapsedSec)

	h.clock.Advance(58500 * time.Millisecond)
	st, err = seq.Switch(ctx, dto.StartInput{Name: "Study"})
	require.NoError(t, err)
	assert.Equal(t, "Study", st.Activity)
	assert.Equal(t, time.Duration(0), seq.CurrentElapsed())

	today, err := seq.TodayTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []dto.TotalOutput{{Activity: "Work", Seconds: 60}}, today)

	sessions, err := seq.AllSessions(ctx, dto.SessionsInput{Limit: 10})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "Study", sessions[0].Activity)
	assert.True(t, sessions[0].Live)
	assert.False(t, sessions[1].Live)

	h.clock.Advance(30 * time.Second)
	cancel()
	require.NoError(t, <-done)

	final := seq.State()
	assert.False(t, final.Running)
	today, err = seq.TodayTotals(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []dto.TotalOutput{{Activity: "Study", Seconds: 30}, {Activity: "Work", Seconds: 60}}, today)

	_, err = seq.Start(ctx, dto.StartInput{Name: "Work"})
	require.ErrorIs(t, err, apperrors.ErrSequencerClosed)
}

func TestSequencerSerializesConcurrentCallers(t *testing.T) {
	t.Parallel()
	h := newHarness(t, ts(13, 9, 0, 0))
	seq, _, _ := runSequencer(t, h, time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := seq.Switch(ctx, dto.StartInput{Name: fmt.Sprintf("Task %d", i%4)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	sessions, err := seq.AllSessions(ctx, dto.SessionsInput{})
	require.NoError(t, err)
	require.Len(t, sessions, 16)
	live := 0
	for _, s := range sessions {
		if s.Live {
			live++
		}
	}
	assert.Equal(t, 1, live)
}

func TestSequencerPeriodicTick(t *testing.T) {
	t.Parallel()
	h := newHarness(t, ts(14, 9, 0, 0))
	seq, _, _ := runSequencer(t, h, 5*time.Millisecond)
	ctx := context.Background()

	_, err := seq.Start(ctx, dto.StartInput{Name: "Work"})
	require.NoError(t, err)
	h.clock.Advance(time.Minute)

	require.Eventually(t, func() bool {
		totals, err := seq.TodayTotals(ctx)
		return err == nil && len(totals) == 1 && totals[0].Seconds == 60
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSequencerShutdownFlushes(t *testing.T) {
	t.Parallel()
	h := newHarness(t, ts(15, 9, 0, 0))
	seq, _, done := runSequencer(t, h, time.Hour)
	ctx := context.Background()

	_, err := seq.Start(ctx, dto.StartInput{Name: "Break"})
	require.NoError(t, err)
	h.clock.Advance(90 * time.Second)

	require.NoError(t, seq.Shutdown(ctx))
	require.NoError(t, <-done)
	require.NoError(t, seq.Shutdown(ctx))

	sessions, err := seq.AllSessions(ctx, dto.SessionsInput{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 90.0, sessions[0].DurationSec)
	assert.False(t, sessions[0].Live)

	_, err = seq.Tick(ctx, dto.TickInput{})
	require.ErrorIs(t, err, apperrors.ErrSequencerClosed)
}

func TestSequencerSurfacesStorageFailure(t *testing.T) {
	t.Parallel()
	h := newHarness(t, ts(16, 9, 0, 0))
	seq, _, _ := runSequencer(t, h, time.Hour)
	ctx := context.Background()

	_, err := seq.Start(ctx, dto.StartInput{Name: "Work"})
	require.NoError(t, err)
	require.NoError(t, h.db.Close())
	h.clock.Advance(time.Minute)

	_, err = seq.Tick(ctx, dto.TickInput{})
	require.ErrorIs(t, err, apperrors.ErrStorage)
	st := seq.State()
	assert.True(t, st.Running)
	assert.NotEmpty(t, st.LastError)
}

func TestSequencerHonoursCallerContext(t *testing.T) {
	t.Parallel()
	h := newHarness(t, ts(17, 9, 0, 0))
	seq := usecase.NewSequencer(h.interactor, time.Hour, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := seq.Start(ctx, dto.StartInput{Name: "Work"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, seq.Shutdown(context.Background()))
}
