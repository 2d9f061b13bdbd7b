package in

import (
	"context"
	"time"

	"activitylog/internal/modules/report/dto"
	reportin "activitylog/internal/modules/report/port/in"
)

type CLIHandler struct {
	usecase reportin.Usecase
}

func NewCLIHandler(usecase reportin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Daily(ctx context.Context, date time.Time, outPath string) (dto.ReportOutput, error) {
	return h.usecase.Daily(ctx, dto.DailyInput{Date: date, OutPath: outPath})
}

func (h CLIHandler) AllTime(ctx context.Context, sessionLimit int, outPath string) (dto.ReportOutput, error) {
	return h.usecase.AllTime(ctx, dto.AllTimeInput{SessionLimit: sessionLimit, OutPath: outPath})
}
