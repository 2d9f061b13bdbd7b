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

// Reconciler turns running time into daily-total credit and keeps the live
// session row current. It mutates the State it is given; callers pass a
// working copy and keep it only after the surrounding transaction commits.
type Reconciler struct {
	sessions trackerout.SessionStore
	totals   trackerout.TotalsStore
	logger   zerolog.Logger
}

func NewReconciler(sessions trackerout.SessionStore, totals trackerout.TotalsStore, logger zerolog.Logger) *Reconciler {
	return &Reconciler{sessions: sessions, totals: totals, logger: logger}
}

// Reconcile credits time up to now. A reading before LastReconciledAt
// writes nothing and leaves st untouched.
func (r *Reconciler) Reconcile(ctx context.Context, st *domain.State, now time.Time) error {
	if now.Before(st.LastReconciledAt) {
		r.logger.Warn().
			Time("now", now).
			Time("last_reconciled_at", st.LastReconciledAt).
			Msg("clock is behind the last checkpoint, skipping")
		return nil
	}
	if !st.Running {
		st.LastReconciledAt = now
		return nil
	}

	ref := st.LastReconciledAt
	for !domain.SameDay(ref, now) {
		midnight := domain.NextMidnight(ref)
		if err := r.splitAt(ctx, st, ref, midnight); err != nil {
			return err
		}
		ref = midnight
	}

	if delta := now.Sub(ref); delta > 0 {
		if err := r.totals.Credit(ctx, now, st.ActivityID, delta.Seconds()); err != nil {
			return fmt.Errorf("credit %s: %w", domain.DateKey(now), err)
		}
	}
	st.LastReconciledAt = now
	if err := r.sessions.Update(ctx, st.LiveSessionID, now, domain.DurationSeconds(now.Sub(st.StartTime))); err != nil {
		return fmt.Errorf("update live session %d: %w", st.LiveSessionID, err)
	}
	r.logger.Debug().
		Str(logging.KeyActivity, st.ActivityName).
		Int64(logging.KeySession, st.LiveSessionID).
		Float64(logging.KeySeconds, now.Sub(ref).Seconds()).
		Msg("reconciled")
	return nil
}

// splitAt credits ref..midnight to ref's date, closes the live row at
// midnight and opens its continuation.
func (r *Reconciler) splitAt(ctx context.Context, st *domain.State, ref, midnight time.Time) error {
	if secs := midnight.Sub(ref); secs > 0 {
		if err := r.totals.Credit(ctx, ref, st.ActivityID, secs.Seconds()); err != nil {
			return fmt.Errorf("credit %s: %w", domain.DateKey(ref), err)
		}
	}
	if err := r.sessions.Update(ctx, st.LiveSessionID, midnight, domain.DurationSeconds(midnight.Sub(st.StartTime))); err != nil {
		return fmt.Errorf("finalize session %d at midnight: %w", st.LiveSessionID, err)
	}
	closed := st.LiveSessionID
	id, err := r.sessions.Open(ctx, st.ActivityID, midnight)
	if err != nil {
		return fmt.Errorf("open session at %s: %w", domain.FormatTimestamp(midnight), err)
	}
	st.LiveSessionID = id
	st.StartTime = midnight
	st.LastReconciledAt = midnight
	r.logger.Info().
		Str(logging.KeyActivity, st.ActivityName).
		Str(logging.KeyDate, domain.DateKey(ref)).
		Int64("closed_session_id", closed).
		Int64(logging.KeySession, id).
		Msg("day split")
	return nil
}
