package in

import (
	"context"

	"cgmlens/internal/modules/session/dto"
	sessionin "cgmlens/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Evaluate(ctx context.Context, uploadID string) ([]dto.SessionOutput, error) {
	return h.usecase.Evaluate(ctx, dto.EvaluateInput{UploadID: uploadID})
}

func (h CLIHandler) DeviceLimit(ctx context.Context, deviceID string) (dto.DeviceLookupOutput, error) {
	return h.usecase.DeviceLimit(ctx, deviceID)
}

func (h CLIHandler) ListLimits(ctx context.Context) ([]dto.DeviceLimitOutput, error) {
	return h.usecase.ListLimits(ctx)
}
