package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"activitylog/internal/modules/tracker/domain"
	trackerout "activitylog/internal/modules/tracker/port/out"
	"activitylog/internal/platform/logging"
)

// SessionTracker implements the Idle/Running transitions. Like Reconciler it
// only mutates the working State passed in.
type SessionTracker struct {
	reconciler *Reconciler
	sessions   trackerout.SessionStore
	activities trackerout.ActivityResolver
	logger     zerolog.Logger
}

func NewSessionTracker(reconciler *Reconciler, sessions trackerout.SessionStore, activities trackerout.ActivityResolver, logger zerolog.Logger) *SessionTracker {
	return &SessionTracker{reconciler: reconciler, sessions: sessions, activities: activities, logger: logger}
}

// Start finalizes any running session, then opens a new one for name. Starting
// the activity that is already running still closes and reopens its row.
func (t *SessionTracker) Start(ctx context.Context, st *domain.State, name string, now time.Time) error {
	activityID, canonical, err := t.activities.Resolve(ctx, name)
	if err != nil {
		return err
	}
	now = st.Effective(now)
	if st.Running {
		if err := t.finalize(ctx, st, now); err != nil {
			return err
		}
	}
	id, err := t.sessions.Open(ctx, activityID, now)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	*st = domain.State{
		Running:          true,
		ActivityID:       activityID,
		ActivityName:     canonical,
		StartTime:        now,
		LiveSessionID:    id,
		LastReconciledAt: now,
	}
	t.logger.Info().Str(logging.KeyActivity, canonical).Int64(logging.KeySession, id).Msg("activity started")
	return nil
}

// Stop flushes and finalizes the live session. Idle is a no-op.
func (t *SessionTracker) Stop(ctx context.Context, st *domain.State, now time.Time) error {
	if !st.Running {
		return nil
	}
	return t.finalize(ctx, st, st.Effective(now))
}

func (t *SessionTracker) finalize(ctx context.Context, st *domain.State, now time.Time) error {
	if err := t.reconciler.Reconcile(ctx, st, now); err != nil {
		return err
	}
	t.logger.Info().
		Str(logging.KeyActivity, st.ActivityName).
		Int64(logging.KeySession, st.LiveSessionID).
		Float64(logging.KeySeconds, domain.DurationSeconds(now.Sub(st.StartTime))).
		Msg("session finalized")
	*st = domain.State{LastReconciledAt: st.LastReconciledAt}
	return nil
}
