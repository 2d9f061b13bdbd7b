package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"activitylog/internal/modules/tracker/domain"
	"activitylog/internal/modules/tracker/dto"
	trackerin "activitylog/internal/modules/tracker/port/in"
	apperrors "activitylog/internal/platform/errors"
)

const (
	// shutdownTimeout bounds the final flush once the run context is gone.
	shutdownTimeout = 10 * time.Second
	// midnightSlack lands the extra tick just after the day boundary.
	midnightSlack = 100 * time.Millisecond
)

type requestKind int

const (
	requestStart requestKind = iota
	requestStop
	requestTick
	requestShutdown
)

func (k requestKind) String() string {
	switch k {
	case requestStart:
		return "start"
	case requestStop:
		return "stop"
	case requestTick:
		return "tick"
	default:
		return "shutdown"
	}
}

type request struct {
	ctx   context.Context
	kind  requestKind
	name  string
	at    time.Time
	reply chan result
}

type result struct {
	state domain.State
	err   error
}

type snapshot struct {
	state   domain.State
	lastErr error
}

// Sequencer is the single accounting sequence. Every write, the periodic tick
// and the shutdown flush run on the goroutine started by Run; other goroutines
// hand requests over a channel and wait for the reply.
type Sequencer struct {
	interactor *Interactor
	interval   time.Duration
	logger     zerolog.Logger

	requests chan request
	done     chan struct{}
	started  atomic.Bool
	snap     atomic.Pointer[snapshot]
}

func NewSequencer(interactor *Interactor, interval time.Duration, logger zerolog.Logger) *Sequencer {
	s := &Sequencer{
		interactor: interactor,
		interval:   interval,
		logger:     logger,
		requests:   make(chan request),
		done:       make(chan struct{}),
	}
	s.snap.Store(&snapshot{state: interactor.State()})
	return s
}

var _ trackerin.Usecase = (*Sequencer)(nil)

// Run processes requests until ctx is cancelled or Shutdown is called, then
// flushes with a final tick and stop. It returns the flush error, if any.
func (s *Sequencer) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("accounting sequence already running")
	}
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	midnight := time.NewTimer(s.untilMidnight())
	defer midnight.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("accounting sequence started")
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			err := s.shutdown(flushCtx)
			cancel()
			return err
		case req := <-s.requests:
			if req.kind == requestShutdown {
				err := s.shutdown(req.ctx)
				req.reply <- result{state: s.interactor.State(), err: err}
				return err
			}
			req.reply <- s.handle(req)
		case <-ticker.C:
			s.handle(request{ctx: ctx, kind: requestTick})
		case <-midnight.C:
			s.handle(request{ctx: ctx, kind: requestTick})
			midnight.Reset(s.untilMidnight())
		}
	}
}

func (s *Sequencer) Start(ctx context.Context, input dto.StartInput) (dto.StateOutput, error) {
	return s.submit(ctx, request{kind: requestStart, name: input.Name, at: input.At})
}

// Switch has the same finalize-then-open contract as Start.
func (s *Sequencer) Switch(ctx context.Context, input dto.StartInput) (dto.StateOutput, error) {
	return s.submit(ctx, request{kind: requestStart, name: input.Name, at: input.At})
}

func (s *Sequencer) Stop(ctx context.Context, input dto.StopInput) (dto.StateOutput, error) {
	return s.submit(ctx, request{kind: requestStop, at: input.At})
}

func (s *Sequencer) Tick(ctx context.Context, input dto.TickInput) (dto.StateOutput, error) {
	return s.submit(ctx, request{kind: requestTick, at: input.At})
}

func (s *Sequencer) Status(context.Context) (dto.StateOutput, error) {
	return s.State(), nil
}

// Shutdown asks the running sequence to flush and exit. Without a running
// sequence there is nothing to flush.
func (s *Sequencer) Shutdown(ctx context.Context) error {
	if !s.started.Load() {
		return nil
	}
	_, err := s.submit(ctx, request{kind: requestShutdown})
	if errors.Is(err, apperrors.ErrSequencerClosed) {
		return nil
	}
	return err
}

func (s *Sequencer) CurrentElapsed() time.Duration {
	return s.snap.Load().state.Elapsed(s.interactor.Now())
}

func (s *Sequencer) State() dto.StateOutput {
	snap := s.snap.Load()
	return toStateOutput(snap.state, snap.lastErr, s.interactor.Now())
}

func (s *Sequencer) TodayTotals(ctx context.Context) ([]dto.TotalOutput, error) {
	return s.TotalsForDate(ctx, s.interactor.Now())
}

func (s *Sequencer) TotalsForDate(ctx context.Context, date time.Time) ([]dto.TotalOutput, error) {
	totals, err := s.interactor.TotalsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return toTotalOutputs(totals), nil
}

func (s *Sequencer) AllSessions(ctx context.Context, input dto.SessionsInput) ([]dto.SessionOutput, error) {
	sessions, err := s.interactor.Sessions(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return s.toSessionOutputs(sessions), nil
}

func (s *Sequencer) SessionsForDate(ctx context.Context, date time.Time) ([]dto.SessionOutput, error) {
	sessions, err := s.interactor.SessionsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.toSessionOutputs(sessions), nil
}

func (s *Sequencer) SessionTotals(ctx context.Context) ([]dto.TotalOutput, error) {
	totals, err := s.interactor.SessionTotals(ctx)
	if err != nil {
		return nil, err
	}
	return toTotalOutputs(totals), nil
}

func (s *Sequencer) submit(ctx context.Context, req request) (dto.StateOutput, error) {
	req.ctx = ctx
	req.reply = make(chan result, 1)
	select {
	case s.requests <- req:
	case <-s.done:
		return dto.StateOutput{}, apperrors.ErrSequencerClosed
	case <-ctx.Done():
		return dto.StateOutput{}, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return toStateOutput(res.state, nil, s.interactor.Now()), res.err
	case <-ctx.Done():
		return dto.StateOutput{}, ctx.Err()
	}
}

func (s *Sequencer) handle(req request) result {
	var (
		st  domain.State
		err error
	)
	switch req.kind {
	case requestStart:
		st, err = s.interactor.Start(req.ctx, req.name, req.at)
	case requestStop:
		st, err = s.interactor.Stop(req.ctx, req.at)
	case requestTick:
		st, err = s.interactor.Tick(req.ctx, req.at)
	}
	s.logger.Debug().Stringer("request", req.kind).Str("name", req.name).Bool("running", st.Running).Msg("request applied")
	s.publish(st, err)
	return result{state: st, err: err}
}

func (s *Sequencer) shutdown(ctx context.Context) error {
	_, tickErr := s.interactor.Tick(ctx, time.Time{})
	st, stopErr := s.interactor.Stop(ctx, time.Time{})
	err := errors.Join(tickErr, stopErr)
	s.publish(st, err)
	if err != nil {
		s.logger.Error().Err(err).Msg("final flush failed")
		return err
	}
	s.logger.Info().Msg("accounting sequence stopped")
	return nil
}

// publish stores the state for lock-free readers. Storage failures stay
// visible until the next successful write.
func (s *Sequencer) publish(st domain.State, err error) {
	next := &snapshot{state: st}
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrStorage):
		next.lastErr = err
	default:
		next.lastErr = s.snap.Load().lastErr
	}
	s.snap.Store(next)
}

func (s *Sequencer) untilMidnight() time.Duration {
	now := s.interactor.Now()
	return domain.NextMidnight(now).Sub(now) + midnightSlack
}

func (s *Sequencer) toSessionOutputs(sessions []domain.Session) []dto.SessionOutput {
	st := s.snap.Load().state
	out := make([]dto.SessionOutput, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, dto.SessionOutput{
			ID:          sess.ID,
			Activity:    sess.ActivityName,
			Start:       sess.Start,
			End:         sess.End,
			DurationSec: sess.DurationSec,
			Live:        st.Running && sess.ID == st.LiveSessionID,
		})
	}
	return out
}

func toStateOutput(st domain.State, lastErr error, now time.Time) dto.StateOutput {
	out := dto.StateOutput{
		Running:          st.Running,
		ActivityID:       st.ActivityID,
		Activity:         st.ActivityName,
		SessionID:        st.LiveSessionID,
		StartedAt:        st.StartTime,
		LastReconciledAt: st.LastReconciledAt,
		ElapsedSec:       st.Elapsed(now).Seconds(),
	}
	if lastErr != nil {
		out.LastError = lastErr.Error()
	}
	return out
}

func toTotalOutputs(totals []domain.DailyTotal) []dto.TotalOutput {
	out := make([]dto.TotalOutput, 0, len(totals))
	for _, t := range totals {
		out = append(out, dto.TotalOutput{Activity: t.ActivityName, Seconds: t.Seconds})
	}
	return out
}
