package in

import (
	"context"

	"activitylog/internal/modules/trigger/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.PluginInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	// Run polls every enabled listener until ctx is cancelled.
	Run(ctx context.Context) error
}
