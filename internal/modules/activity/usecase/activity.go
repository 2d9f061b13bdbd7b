package usecase

import (
	"context"

	"activitylog/internal/modules/activity/domain"
	"activitylog/internal/modules/activity/dto"
	activityin "activitylog/internal/modules/activity/port/in"
	"activitylog/internal/modules/activity/service"
)

// defaultFallback matches the first default activity when the registry is empty.
const defaultFallback = "Work"

type Interactor struct {
	svc *service.RegistryService
}

func NewInteractor(svc *service.RegistryService) activityin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) GetOrCreate(ctx context.Context, name string) (dto.ActivityOutput, error) {
	activity, err := i.svc.GetOrCreate(ctx, name)
	if err != nil {
		return dto.ActivityOutput{}, err
	}
	return dto.ActivityOutput{ID: activity.ID, Name: activity.Name}, nil
}

func (i *Interactor) List(ctx context.Context) ([]string, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Seed(ctx context.Context, names []string) error {
	return i.svc.Seed(ctx, names)
}

func (i *Interactor) DefaultActivity(ctx context.Context) (string, error) {
	names, err := i.svc.List(ctx)
	if err != nil {
		return "", err
	}
	if name, ok := domain.FirstSelectable(names); ok {
		return name, nil
	}
	return defaultFallback, nil
}
