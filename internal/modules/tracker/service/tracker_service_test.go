package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"activitylog/internal/modules/tracker/domain"
	"activitylog/internal/modules/tracker/service"
	apperrors "activitylog/internal/platform/errors"
)

type memStore struct {
	sessions   []domain.Session
	totals     map[string]float64
	activities map[string]int64
	writes     int
	failCredit error
}

func newMemStore() *memStore {
	return &memStore{totals: map[string]float64{}, activities: map[string]int64{}}
}

func (m *memStore) Resolve(_ context.Context, name string) (int64, string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, "", apperrors.ErrInvalidInput
	}
	key := strings.ToLower(trimmed)
	if id, ok := m.activities[key]; ok {
		return id, trimmed, nil
	}
	id := int64(len(m.activities) + 1)
	m.activities[key] = id
	return id, trimmed, nil
}

func (m *memStore) Open(_ context.Context, activityID int64, start time.Time) (int64, error) {
	m.writes++
	id := int64(len(m.sessions) + 1)
	m.sessions = append(m.sessions, domain.Session{ID: id, ActivityID: activityID, Start: start, End: start})
	return id, nil
}

func (m *memStore) Update(_ context.Context, id int64, end time.Time, durationSec float64) error {
	m.writes++
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			m.sessions[i].End = end
			m.sessions[i].DurationSec = durationSec
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *memStore) List(context.Context, int) ([]domain.Session, error) {
	return m.sessions, nil
}

func (m *memStore) ListForDate(context.Context, time.Time) ([]domain.Session, error) {
	return nil, nil
}

func (m *memStore) TotalsByActivity(context.Context) ([]domain.DailyTotal, error) {
	return nil, nil
}

func (m *memStore) Credit(_ context.Context, date time.Time, activityID int64, seconds float64) error {
	if m.failCredit != nil {
		return m.failCredit
	}
	m.writes++
	m.totals[domain.DateKey(date)] += seconds
	return nil
}

func (m *memStore) ForDate(context.Context, time.Time) ([]domain.DailyTotal, error) {
	return nil, nil
}

func newTracker(store *memStore) (*service.SessionTracker, *service.Reconciler) {
	rec := service.NewReconciler(store, store, zerolog.Nop())
	return service.NewSessionTracker(rec, store, store, zerolog.Nop()), rec
}

func at(day, hour, minute, second int) time.Time {
	return time.Date(2024, 1, day, hour, minute, second, 0, time.UTC)
}

func TestDaySplitAtMidnight(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	tracker, rec := newTracker(store)
	ctx := context.Background()
	st := domain.State{}

	if err := tracker.Start(ctx, &st, "Work", at(1, 23, 58, 0)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := rec.Reconcile(ctx, &st, at(2, 0, 2, 0)); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if store.totals["2024-01-01"] != 120 || store.totals["2024-01-02"] != 120 {
		t.Fatalf("unexpected totals %v", store.totals)
	}
	if len(store.sessions) != 2 {
		t.Fatalf("expected two session rows, got %d", len(store.sessions))
	}
	first, second := store.sessions[0], store.sessions[1]
	if !first.End.Equal(at(2, 0, 0, 0)) || first.DurationSec != 120 {
		t.Fatalf("first session not finalized at midnight: %+v", first)
	}
	if !second.Start.Equal(at(2, 0, 0, 0)) || !second.End.Equal(at(2, 0, 2, 0)) || second.DurationSec != 120 {
		t.Fatalf("unexpected continuation session: %+v", second)
	}
	if st.LiveSessionID != second.ID || !st.StartTime.Equal(at(2, 0, 0, 0)) || !st.LastReconciledAt.Equal(at(2, 0, 2, 0)) {
		t.Fatalf("unexpected state after split: %+v", st)
	}
}

func TestMultiDayGapSplitsEveryBoundary(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	tracker, rec := newTracker(store)
	ctx := context.Background()
	st := domain.State{}

	if err := tracker.Start(ctx, &st, "Study", at(1, 22, 0, 0)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := rec.Reconcile(ctx, &st, at(4, 1, 0, 0)); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	want := map[string]float64{"2024-01-01": 7200, "2024-01-02": 86400, "2024-01-03": 86400, "2024-01-04": 3600}
	for date, secs := range want {
		if store.totals[date] != secs {
			t.Fatalf("%s: want %v got %v", date, secs, store.totals[date])
		}
	}
	if len(store.sessions) != 4 {
		t.Fatalf("expected four session rows, got %d", len(store.sessions))
	}
	for _, sess := range store.sessions {
		if !domain.SameDay(sess.Start, sess.End) && !sess.End.Equal(domain.NextMidnight(sess.Start)) {
			t.Fatalf("session %d crosses midnight: %+v", sess.ID, sess)
		}
	}
}

func TestBackwardClockWritesNothing(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	tracker, rec := newTracker(store)
	ctx := context.Background()
	st := domain.State{}

	if err := tracker.Start(ctx, &st, "Work", at(1, 10, 0, 0)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := rec.Reconcile(ctx, &st, at(1, 10, 1, 0)); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	before, writes := st, store.writes
	if err := rec.Reconcile(ctx, &st, at(1, 9, 30, 0)); err != nil {
		t.Fatalf("reconcile backward: %v", err)
	}
	if st != before || store.writes != writes {
		t.Fatalf("backward reconcile must not change anything: %+v, writes %d->%d", st, writes, store.writes)
	}
	if store.totals["2024-01-01"] != 60 {
		t.Fatalf("unexpected credit %v", store.totals)
	}
}

func TestStartAfterBackwardJumpUsesCheckpoint(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	tracker, rec := newTracker(store)
	ctx := context.Background()
	st := domain.State{}

	if err := tracker.Start(ctx, &st, "Work", at(1, 10, 0, 0)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := rec.Reconcile(ctx, &st, at(1, 10, 5, 0)); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if err := tracker.Start(ctx, &st, "Break", at(1, 9, 0, 0)); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if !st.StartTime.Equal(at(1, 10, 5, 0)) {
		t.Fatalf("new session must start at the checkpoint, got %s", st.StartTime)
	}
	for _, sess := range store.sessions {
		if sess.End.Before(sess.Start) || sess.DurationSec < 0 {
			t.Fatalf("invalid session %+v", sess)
		}
	}
}

func TestSwitchToSameActivityReopensSession(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	tracker, _ := newTracker(store)
	ctx := context.Background()
	st := domain.State{}

	if err := tracker.Start(ctx, &st, "Work", at(1, 9, 0, 0)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := tracker.Start(ctx, &st, "work", at(1, 9, 30, 0)); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if len(store.sessions) != 2 {
		t.Fatalf("expected two rows, got %d", len(store.sessions))
	}
	if !store.sessions[0].End.Equal(at(1, 9, 30, 0)) || store.sessions[0].DurationSec != 1800 {
		t.Fatalf("first row not closed at switch: %+v", store.sessions[0])
	}
	if !store.sessions[1].Start.Equal(at(1, 9, 30, 0)) || st.LiveSessionID != store.sessions[1].ID {
		t.Fatalf("second row not live: %+v state %+v", store.sessions[1], st)
	}
	if store.totals["2024-01-01"] != 1800 {
		t.Fatalf("unexpected totals %v", store.totals)
	}
}

func TestStopWhileIdleIsNoop(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	tracker, _ := newTracker(store)
	st := domain.State{}
	if err := tracker.Stop(context.Background(), &st, at(1, 9, 0, 0)); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if store.writes != 0 || st != (domain.State{}) {
		t.Fatalf("idle stop must not write: writes=%d state=%+v", store.writes, st)
	}
}

func TestIdleReconcileAdvancesCheckpointOnly(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	_, rec := newTracker(store)
	st := domain.State{LastReconciledAt: at(1, 9, 0, 0)}
	if err := rec.Reconcile(context.Background(), &st, at(3, 9, 0, 0)); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !st.LastReconciledAt.Equal(at(3, 9, 0, 0)) || store.writes != 0 {
		t.Fatalf("unexpected idle reconcile: %+v writes=%d", st, store.writes)
	}
}

func TestStartRejectsBlankName(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	tracker, _ := newTracker(store)
	st := domain.State{}
	err := tracker.Start(context.Background(), &st, "  ", at(1, 9, 0, 0))
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if st.Running || store.writes != 0 {
		t.Fatalf("rejected start must not change anything")
	}
}

func TestCreditFailureIsReturned(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	tracker, rec := newTracker(store)
	ctx := context.Background()
	st := domain.State{}
	if err := tracker.Start(ctx, &st, "Work", at(1, 9, 0, 0)); err != nil {
		t.Fatalf("start: %v", err)
	}
	boom := errors.New("disk full")
	store.failCredit = boom
	if err := rec.Reconcile(ctx, &st, at(1, 9, 1, 0)); !errors.Is(err, boom) {
		t.Fatalf("expected credit failure, got %v", err)
	}
}

func TestTotalsMatchSessionsPerDate(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	tracker, rec := newTracker(store)
	ctx := context.Background()
	st := domain.State{}

	steps := []struct {
		name string
		when time.Time
	}{
		{"Work", at(1, 20, 0, 0)},
		{"", at(1, 21, 0, 0)},
		{"Break", at(1, 23, 30, 0)},
		{"", at(2, 0, 45, 0)},
		{"Waste", at(2, 1, 0, 0)},
		{"", at(3, 2, 0, 0)},
	}
	for _, step := range steps {
		var err error
		if step.name == "" {
			err = rec.Reconcile(ctx, &st, step.when)
		} else {
			err = tracker.Start(ctx, &st, step.name, step.when)
		}
		if err != nil {
			t.Fatalf("step %+v: %v", step, err)
		}
	}
	if err := tracker.Stop(ctx, &st, at(3, 2, 30, 0)); err != nil {
		t.Fatalf("stop: %v", err)
	}

	perDate := map[string]float64{}
	for _, sess := range store.sessions {
		perDate[domain.DateKey(sess.Start)] += sess.DurationSec
	}
	dates := make([]string, 0, len(perDate))
	for d := range perDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	var total float64
	for _, d := range dates {
		if perDate[d] != store.totals[d] {
			t.Fatalf("%s: sessions %v totals %v", d, perDate[d], store.totals[d])
		}
		total += store.totals[d]
	}
	if want := at(3, 2, 30, 0).Sub(at(1, 20, 0, 0)).Seconds(); total != want {
		t.Fatalf("conservation: want %v got %v", want, total)
	}
}
