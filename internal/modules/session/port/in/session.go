package in

import (
	"context"

	"cgmlens/internal/modules/session/dto"
)

type Usecase interface {
	Evaluate(ctx context.Context, input dto.EvaluateInput) ([]dto.SessionOutput, error)
	DeviceLimit(ctx context.Context, deviceID string) (dto.DeviceLookupOutput, error)
	ListLimits(ctx context.Context) ([]dto.DeviceLimitOutput, error)
}
