package in

import (
	"context"

	"cgmlens/internal/modules/plugin/dto"
	pluginin "cgmlens/internal/modules/plugin/port/in"
)

type CLIHandler struct {
	usecase pluginin.Usecase
}

func NewCLIHandler(usecase pluginin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) ListCommands(ctx context.Context, pluginName string) ([]dto.CommandInfo, error) {
	return h.usecase.ListCommands(ctx, pluginName)
}

func (h CLIHandler) Execute(ctx context.Context, input dto.ExecuteInput) (dto.ExecuteOutput, error) {
	return h.usecase.Execute(ctx, input)
}

func (h CLIHandler) Detect(ctx context.Context, input dto.DetectInput) (dto.DetectOutput, error) {
	return h.usecase.Detect(ctx, input)
}
