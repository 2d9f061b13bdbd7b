package usecase

import (
	"context"

	"activitylog/internal/modules/report/dto"
	reportin "activitylog/internal/modules/report/port/in"
	"activitylog/internal/modules/report/service"
)

type Interactor struct {
	svc *service.ReportService
}

func NewInteractor(svc *service.ReportService) reportin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Daily(ctx context.Context, input dto.DailyInput) (dto.ReportOutput, error) {
	return i.svc.Daily(ctx, input)
}

func (i *Interactor) AllTime(ctx context.Context, input dto.AllTimeInput) (dto.ReportOutput, error) {
	return i.svc.AllTime(ctx, input)
}
