package in

import (
	"context"

	"activitylog/internal/modules/trigger/dto"
	triggerin "activitylog/internal/modules/trigger/port/in"
)

type CLIHandler struct {
	usecase triggerin.Usecase
}

func NewCLIHandler(usecase triggerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}
