package usecase

import (
	"context"

	"cgmlens/internal/modules/metrics/dto"
	metricsin "cgmlens/internal/modules/metrics/port/in"
	"cgmlens/internal/modules/metrics/service"
)

type Interactor struct {
	svc *service.MetricsService
}

func NewInteractor(svc *service.MetricsService) metricsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Compute(ctx context.Context, input dto.ComputeInput) (dto.ReportOutput, error) {
	report, path, err := i.svc.Compute(ctx, input.UploadID, input.ApplyMask, input.LowBound, input.HighBound)
	if err != nil {
		return dto.ReportOutput{}, err
	}
	return dto.ReportOutput{
		UploadID:    report.UploadID,
		UploadTitle: report.UploadTitle,
		LowBound:    report.LowBound,
		HighBound:   report.HighBound,
		MaskApplied: report.MaskApplied,
		Points:      report.Points,
		Excluded:    report.Excluded,
		InRange:     report.Fractions.InRange,
		BelowRange:  report.Fractions.BelowRange,
		AboveRange:  report.Fractions.AboveRange,
		GMI:         report.GMI,
		Mean:        report.Summary.Mean,
		SD:          report.Summary.SD,
		CV:          report.Summary.CV,
		Median:      report.Summary.Median,
		Min:         report.Summary.Min,
		Max:         report.Summary.Max,
		CreatedAt:   report.CreatedAt,
		ReportPath:  path,
	}, nil
}
