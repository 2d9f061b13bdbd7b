package usecase

import (
	"context"

	"activitylog/internal/modules/trigger/dto"
	triggerin "activitylog/internal/modules/trigger/port/in"
	"activitylog/internal/modules/trigger/service"
)

type Interactor struct {
	svc *service.TriggerService
}

func NewInteractor(svc *service.TriggerService) triggerin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Run(ctx context.Context) error {
	return i.svc.Run(ctx)
}
