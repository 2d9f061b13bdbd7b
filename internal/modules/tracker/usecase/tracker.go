package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"activitylog/internal/modules/tracker/domain"
	trackerout "activitylog/internal/modules/tracker/port/out"
	"activitylog/internal/modules/tracker/service"
	"activitylog/internal/platform/clock"
	apperrors "activitylog/internal/platform/errors"
	"activitylog/internal/platform/tx"
)

// futureTolerance is how far ahead of the tracker clock a caller supplied
// timestamp may be.
const futureTolerance = 2 * time.Second

// Interactor owns the tracker State. Its write methods are not safe for
// concurrent use; the Sequencer is their only caller in production. Read
// methods do not touch State.
type Interactor struct {
	tracker    *service.SessionTracker
	reconciler *service.Reconciler
	sessions   trackerout.SessionStore
	totals     trackerout.TotalsStore
	tx         tx.Manager
	clock      clock.Clock
	logger     zerolog.Logger

	state domain.State
}

func NewInteractor(
	tracker *service.SessionTracker,
	reconciler *service.Reconciler,
	sessions trackerout.SessionStore,
	totals trackerout.TotalsStore,
	txm tx.Manager,
	clk clock.Clock,
	logger zerolog.Logger,
) *Interactor {
	if txm == nil {
		txm = tx.NoopManager{}
	}
	i := &Interactor{
		tracker:    tracker,
		reconciler: reconciler,
		sessions:   sessions,
		totals:     totals,
		tx:         txm,
		clock:      clk,
		logger:     logger,
	}
	i.state.LastReconciledAt = i.clock.Now().Truncate(time.Second)
	return i
}

func (i *Interactor) State() domain.State {
	return i.state
}

func (i *Interactor) Start(ctx context.Context, name string, at time.Time) (domain.State, error) {
	now, err := i.now(at)
	if err != nil {
		return i.state, err
	}
	return i.apply(ctx, "start", func(ctx context.Context, st *domain.State) error {
		return i.tracker.Start(ctx, st, name, now)
	})
}

func (i *Interactor) Stop(ctx context.Context, at time.Time) (domain.State, error) {
	if !i.state.Running {
		return i.state, nil
	}
	now, err := i.now(at)
	if err != nil {
		return i.state, err
	}
	return i.apply(ctx, "stop", func(ctx context.Context, st *domain.State) error {
		return i.tracker.Stop(ctx, st, now)
	})
}

func (i *Interactor) Tick(ctx context.Context, at time.Time) (domain.State, error) {
	now, err := i.now(at)
	if err != nil {
		return i.state, err
	}
	if !i.state.Running {
		i.state.LastReconciledAt = i.state.Effective(now)
		return i.state, nil
	}
	return i.apply(ctx, "tick", func(ctx context.Context, st *domain.State) error {
		return i.reconciler.Reconcile(ctx, st, now)
	})
}

// Now is the tracker clock in its configured location.
func (i *Interactor) Now() time.Time {
	return i.clock.Now()
}

func (i *Interactor) TotalsForDate(ctx context.Context, date time.Time) ([]domain.DailyTotal, error) {
	return i.totals.ForDate(ctx, date)
}

func (i *Interactor) Sessions(ctx context.Context, limit int) ([]domain.Session, error) {
	return i.sessions.List(ctx, limit)
}

func (i *Interactor) SessionsForDate(ctx context.Context, date time.Time) ([]domain.Session, error) {
	return i.sessions.ListForDate(ctx, date)
}

func (i *Interactor) SessionTotals(ctx context.Context) ([]domain.DailyTotal, error) {
	return i.sessions.TotalsByActivity(ctx)
}

// apply runs fn against a copy of the state inside one transaction and keeps
// the copy only when the transaction commits.
func (i *Interactor) apply(ctx context.Context, op string, fn func(context.Context, *domain.State) error) (domain.State, error) {
	var next domain.State
	err := i.tx.Within(ctx, func(ctx context.Context) error {
		next = i.state
		return fn(ctx, &next)
	})
	if err != nil {
		event := i.logger.Warn()
		if errors.Is(err, apperrors.ErrStorage) {
			event = i.logger.Error()
		}
		event.Err(err).Str("op", op).Msg("tracker operation failed, state unchanged")
		return i.state, err
	}
	i.state = next
	return next, nil
}

// now converts at (or the clock when at is zero) to the clock's location,
// truncated to whole seconds. Timestamps ahead of the clock are rejected:
// crediting them would count time that has not elapsed.
func (i *Interactor) now(at time.Time) (time.Time, error) {
	ref := i.clock.Now()
	if at.IsZero() {
		return ref.Truncate(time.Second), nil
	}
	if at.After(ref.Add(futureTolerance)) {
		return time.Time{}, fmt.Errorf("timestamp %s is ahead of the clock %s: %w",
			at.Format(time.RFC3339), ref.Format(time.RFC3339), apperrors.ErrInvalidInput)
	}
	return at.In(ref.Location()).Truncate(time.Second), nil
}
