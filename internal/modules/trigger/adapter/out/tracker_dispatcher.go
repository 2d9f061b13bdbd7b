package out

import (
	"context"
	"fmt"

	trackerdto "activitylog/internal/modules/tracker/dto"
	trackerin "activitylog/internal/modules/tracker/port/in"
	"activitylog/internal/modules/trigger/domain"
	triggerout "activitylog/internal/modules/trigger/port/out"
)

// TrackerDispatcher hands trigger events to the accounting sequence.
type TrackerDispatcher struct {
	tracker trackerin.Controller
}

func NewTrackerDispatcher(tracker trackerin.Controller) triggerout.Dispatcher {
	return &TrackerDispatcher{tracker: tracker}
}

func (d *TrackerDispatcher) Dispatch(ctx context.Context, event domain.Event) error {
	var err error
	switch event.Action {
	case domain.ActionSwitch:
		_, err = d.tracker.Switch(ctx, trackerdto.StartInput{Name: event.Name, At: event.At})
	case domain.ActionStop:
		_, err = d.tracker.Stop(ctx, trackerdto.StopInput{At: event.At})
	default:
		return fmt.Errorf("unknown trigger action: %q", event.Action)
	}
	return err
}
