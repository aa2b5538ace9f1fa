package usecase

import (
	"context"

	"cgmlens/internal/modules/plugin/dto"
	pluginin "cgmlens/internal/modules/plugin/port/in"
	"cgmlens/internal/modules/plugin/service"
)

type Interactor struct {
	svc *service.PluginService
}

func NewInteractor(svc *service.PluginService) pluginin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) ListCommands(ctx context.Context, pluginName string) ([]dto.CommandInfo, error) {
	return i.svc.ListCommands(ctx, pluginName)
}

func (i *Interactor) Execute(ctx context.Context, input dto.ExecuteInput) (dto.ExecuteOutput, error) {
	return i.svc.Execute(ctx, input)
}

func (i *Interactor) Detect(ctx context.Context, input dto.DetectInput) (dto.DetectOutput, error) {
	return i.svc.Detect(ctx, input)
}

func (i *Interactor) DetectAll(ctx context.Context, series []float64, intervalMin float64) ([]dto.DetectOutput, error) {
	return i.svc.DetectAll(ctx, series, intervalMin)
}
