package in

import (
	"context"

	"cgmlens/internal/modules/metrics/dto"
)

type Usecase interface {
	Compute(ctx context.Context, input dto.ComputeInput) (dto.ReportOutput, error)
}
