package in

import (
	"context"

	"activitylog/internal/modules/report/dto"
)

type Usecase interface {
	Daily(ctx context.Context, input dto.DailyInput) (dto.ReportOutput, error)
	AllTime(ctx context.Context, input dto.AllTimeInput) (dto.ReportOutput, error)
}
