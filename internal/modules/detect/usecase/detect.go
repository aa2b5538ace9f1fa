package usecase

import (
	"context"

	"cgmlens/internal/modules/detect/domain"
	"cgmlens/internal/modules/detect/dto"
	detectin "cgmlens/internal/modules/detect/port/in"
	"cgmlens/internal/modules/detect/service"
)

type Interactor struct {
	svc *service.DetectService
}

func NewInteractor(svc *service.DetectService) detectin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Analyze(ctx context.Context, input dto.AnalyzeInput) (dto.AnalysisOutput, error) {
	analysis, err := i.svc.Analyze(ctx, input.UploadID, input.WithPlugins)
	if err != nil {
		return dto.AnalysisOutput{}, err
	}
	return toOutput(analysis), nil
}

func toOutput(analysis domain.Analysis) dto.AnalysisOutput {
	out := dto.AnalysisOutput{
		UploadID:  analysis.UploadID,
		Points:    analysis.Points,
		Flagged:   analysis.Combined.FlaggedCount(),
		Detectors: make([]dto.DetectorOutput, 0, len(analysis.Outcomes)),
		Combined:  []bool(analysis.Combined),
	}
	for _, outcome := range analysis.Outcomes {
		det := dto.DetectorOutput{
			Name:    outcome.Name,
			Flagged: outcome.Mask.FlaggedCount(),
		}
		for _, run := range outcome.Mask.Runs() {
			det.Segments = append(det.Segments, dto.SegmentOutput{Start: run.Start, End: run.End})
		}
		out.Detectors = append(out.Detectors, det)
	}
	return out
}
