package in

import (
	"context"

	"cgmlens/internal/modules/plugin/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.PluginInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	ListCommands(ctx context.Context, pluginName string) ([]dto.CommandInfo, error)
	Execute(ctx context.Context, input dto.ExecuteInput) (dto.ExecuteOutput, error)
	Detect(ctx context.Context, input dto.DetectInput) (dto.DetectOutput, error)
	DetectAll(ctx context.Context, series []float64, intervalMin float64) ([]dto.DetectOutput, error)
}
