package in

import (
	"context"

	"cgmlens/internal/modules/metrics/dto"
	metricsin "cgmlens/internal/modules/metrics/port/in"
)

type CLIHandler struct {
	usecase metricsin.Usecase
}

func NewCLIHandler(usecase metricsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Compute(ctx context.Context, uploadID string, applyMask bool, low, high float64) (dto.ReportOutput, error) {
	return h.usecase.Compute(ctx, dto.ComputeInput{
		UploadID:  uploadID,
		ApplyMask: applyMask,
		LowBound:  low,
		HighBound: high,
	})
}
