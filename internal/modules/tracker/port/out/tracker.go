package out

import (
	"context"
	"time"

	"activitylog/internal/modules/tracker/domain"
)

// Dates are calendar days read from the time's own location; instants are
// stored in the store's location.
type SessionStore interface {
	// Open inserts a live row with end = start and zero duration.
	Open(ctx context.Context, activityID int64, start time.Time) (int64, error)
	Update(ctx context.Context, id int64, end time.Time, durationSec float64) error
	// List returns newest first; limit <= 0 means all rows.
	List(ctx context.Context, limit int) ([]domain.Session, error)
	ListForDate(ctx context.Context, date time.Time) ([]domain.Session, error)
	TotalsByActivity(ctx context.Context) ([]domain.DailyTotal, error)
}

type TotalsStore interface {
	Credit(ctx context.Context, date time.Time, activityID int64, seconds float64) error
	ForDate(ctx context.Context, date time.Time) ([]domain.DailyTotal, error)
}

type ActivityResolver interface {
	// Resolve returns the id and stored spelling, creating the activity on first use.
	Resolve(ctx context.Context, name string) (int64, string, error)
}
