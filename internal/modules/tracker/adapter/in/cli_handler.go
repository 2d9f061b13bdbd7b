package in

import (
	"context"
	"time"

	trackerdto "activitylog/internal/modules/tracker/dto"
	trackerin "activitylog/internal/modules/tracker/port/in"
)

// CLIHandler splits writes, which go to the running instance, from reads,
// which query storage directly.
type CLIHandler struct {
	control trackerin.Controller
	reads   trackerin.Usecase
}

func NewCLIHandler(control trackerin.Controller, reads trackerin.Usecase) CLIHandler {
	return CLIHandler{control: control, reads: reads}
}

func (h CLIHandler) Start(ctx context.Context, name string) (trackerdto.StateOutput, error) {
	return h.control.Start(ctx, trackerdto.StartInput{Name: name})
}

func (h CLIHandler) Switch(ctx context.Context, name string) (trackerdto.StateOutput, error) {
	return h.control.Switch(ctx, trackerdto.StartInput{Name: name})
}

func (h CLIHandler) Stop(ctx context.Context) (trackerdto.StateOutput, error) {
	return h.control.Stop(ctx, trackerdto.StopInput{})
}

func (h CLIHandler) Tick(ctx context.Context) (trackerdto.StateOutput, error) {
	return h.control.Tick(ctx, trackerdto.TickInput{})
}

func (h CLIHandler) Status(ctx context.Context) (trackerdto.StateOutput, error) {
	return h.control.Status(ctx)
}

func (h CLIHandler) Today(ctx context.Context) ([]trackerdto.TotalOutput, error) {
	return h.reads.TodayTotals(ctx)
}

func (h CLIHandler) TotalsFor(ctx context.Context, date time.Time) ([]trackerdto.TotalOutput, error) {
	return h.reads.TotalsForDate(ctx, date)
}

func (h CLIHandler) Sessions(ctx context.Context, limit int) ([]trackerdto.SessionOutput, error) {
	return h.reads.AllSessions(ctx, trackerdto.SessionsInput{Limit: limit})
}
