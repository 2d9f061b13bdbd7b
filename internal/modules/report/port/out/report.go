package out

import (
	"context"
	"time"

	"activitylog/internal/modules/report/domain"
)

// Source reads recorded time. Dates are calendar days in the tracker's zone.
type Source interface {
	TotalsForDate(ctx context.Context, date time.Time) ([]domain.Line, error)
	SessionsForDate(ctx context.Context, date time.Time) ([]domain.SessionLine, error)
	SessionTotals(ctx context.Context) ([]domain.Line, error)
	Sessions(ctx context.Context, limit int) ([]domain.SessionLine, error)
}

type NoteStore interface {
	// Read returns ok=false when the note does not exist yet.
	Read(ctx context.Context, path string) (content string, ok bool, err error)
	Write(ctx context.Context, path, content string) error
	// Resolve maps a directory path to the note name inside it.
	Resolve(ctx context.Context, path, name string) (string, error)
}

type Renderer interface {
	Render(markdown string) (string, error)
}
