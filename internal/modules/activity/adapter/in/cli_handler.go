package in

import (
	"context"

	activityin "activitylog/internal/modules/activity/port/in"
)

type CLIHandler struct {
	usecase activityin.Usecase
}

func NewCLIHandler(usecase activityin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]string, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Add(ctx context.Context, name string) (string, error) {
	out, err := h.usecase.GetOrCreate(ctx, name)
	if err != nil {
		return "", err
	}
	return out.Name, nil
}
