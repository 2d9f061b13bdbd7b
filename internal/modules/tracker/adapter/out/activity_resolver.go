package out

import (
	"context"

	activityin "activitylog/internal/modules/activity/port/in"
)

// ActivityResolver adapts the activity registry to the tracker's outbound port.
type ActivityResolver struct {
	registry activityin.Usecase
}

func NewActivityResolver(registry activityin.Usecase) ActivityResolver {
	return ActivityResolver{registry: registry}
}

func (r ActivityResolver) Resolve(ctx context.Context, name string) (int64, string, error) {
	activity, err := r.registry.GetOrCreate(ctx, name)
	if err != nil {
		return 0, "", err
	}
	return activity.ID, activity.Name, nil
}
