package in

import (
	"context"
	"time"

	"activitylog/internal/modules/tracker/dto"
)

// Controller is the write surface. Calls are applied in order by a single
// accounting sequence.
type Controller interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StateOutput, error)
	Switch(ctx context.Context, input dto.StartInput) (dto.StateOutput, error)
	Stop(ctx context.Context, input dto.StopInput) (dto.StateOutput, error)
	Tick(ctx context.Context, input dto.TickInput) (dto.StateOutput, error)
	Status(ctx context.Context) (dto.StateOutput, error)
}

type Usecase interface {
	Controller
	// CurrentElapsed and State read a published snapshot and never block.
	CurrentElapsed() time.Duration
	State() dto.StateOutput
	TodayTotals(ctx context.Context) ([]dto.TotalOutput, error)
	TotalsForDate(ctx context.Context, date time.Time) ([]dto.TotalOutput, error)
	AllSessions(ctx context.Context, input dto.SessionsInput) ([]dto.SessionOutput, error)
	SessionsForDate(ctx context.Context, date time.Time) ([]dto.SessionOutput, error)
	SessionTotals(ctx context.Context) ([]dto.TotalOutput, error)
	Shutdown(ctx context.Context) error
}
