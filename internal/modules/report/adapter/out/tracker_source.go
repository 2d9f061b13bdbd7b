package out

import (
	"context"
	"time"

	"activitylog/internal/modules/report/domain"
	reportout "activitylog/internal/modules/report/port/out"
	trackerdto "activitylog/internal/modules/tracker/dto"
	trackerin "activitylog/internal/modules/tracker/port/in"
)

type TrackerSource struct {
	tracker trackerin.Usecase
}

func NewTrackerSource(tracker trackerin.Usecase) reportout.Source {
	return &TrackerSource{tracker: tracker}
}

func (a *TrackerSource) TotalsForDate(ctx context.Context, date time.Time) ([]domain.Line, error) {
	totals, err := a.tracker.TotalsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return toLines(totals), nil
}

func (a *TrackerSource) SessionsForDate(ctx context.Context, date time.Time) ([]domain.SessionLine, error) {
	sessions, err := a.tracker.SessionsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return toSessionLines(sessions), nil
}

func (a *TrackerSource) SessionTotals(ctx context.Context) ([]domain.Line, error) {
	totals, err := a.tracker.SessionTotals(ctx)
	if err != nil {
		return nil, err
	}
	return toLines(totals), nil
}

func (a *TrackerSource) Sessions(ctx context.Context, limit int) ([]domain.SessionLine, error) {
	sessions, err := a.tracker.AllSessions(ctx, trackerdto.SessionsInput{Limit: limit})
	if err != nil {
		return nil, err
	}
	return toSessionLines(sessions), nil
}

func toLines(totals []trackerdto.TotalOutput) []domain.Line {
	out := make([]domain.Line, 0, len(totals))
	for _, t := range totals {
		out = append(out, domain.Line{Activity: t.Activity, Seconds: t.Seconds})
	}
	return out
}

func toSessionLines(sessions []trackerdto.SessionOutput) []domain.SessionLine {
	out := make([]domain.SessionLine, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, domain.SessionLine{
			Activity:    s.Activity,
			Start:       s.Start,
			End:         s.End,
			DurationSec: s.DurationSec,
			Live:        s.Live,
		})
	}
	return out
}
