package service

import (
	"context"
	"fmt"
	"sync"

	"cgmlens/internal/modules/detect/domain"
	detectout "cgmlens/internal/modules/detect/port/out"
)

type DetectService struct {
	series    detectout.SeriesSource
	settings  detectout.ConfigSource
	external  detectout.ExternalDetector
	projector detectout.AnalysisProjector
}

// NewDetectService wires the detection pipeline. external may be nil when no
// plugin host is configured.
func NewDetectService(series detectout.SeriesSource, settings detectout.ConfigSource, external detectout.ExternalDetector, projector detectout.AnalysisProjector) *DetectService {
	return &DetectService{series: series, settings: settings, external: external, projector: projector}
}

func (s *DetectService) Analyze(ctx context.Context, uploadID string, withPlugins bool) (domain.Analysis, error) {
	if uploadID == "" {
		return domain.Analysis{}, fmt.Errorf("upload id is required")
	}
	series, intervalMin, err := s.series.Load(ctx, uploadID)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("load series: %w", err)
	}
	cfg, err := s.settings.DetectorConfig(ctx, intervalMin)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("load detector config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return domain.Analysis{}, fmt.Errorf("detector config: %w", err)
	}

	detectors := cfg.Detectors()
	outcomes := make([]domain.DetectorOutcome, len(detectors))
	var wg sync.WaitGroup
	for i, detector := range detectors {
		wg.Add(1)
		go func(i int, detector domain.Detector) {
			defer wg.Done()
			outcomes[i] = domain.DetectorOutcome{
				Name: detector.Name,
				Mask: domain.Reconcile(detector.Mask(series), len(series)),
			}
		}(i, detector)
	}
	wg.Wait()

	if withPlugins && s.external != nil {
		named, err := s.external.Masks(ctx, series, intervalMin)
		if err != nil {
			return domain.Analysis{}, fmt.Errorf("external detectors: %w", err)
		}
		for _, nm := range named {
			outcomes = append(outcomes, domain.DetectorOutcome{
				Name: nm.Name,
				Mask: domain.Reconcile(nm.Mask, len(series)),
			})
		}
	}

	masks := make([]domain.Mask, len(outcomes))
	for i, outcome := range outcomes {
		masks[i] = outcome.Mask
	}
	analysis := domain.Analysis{
		UploadID: uploadID,
		Points:   len(series),
		Outcomes: outcomes,
		Combined: domain.Merge(len(series), masks...),
	}
	if err := s.projector.SaveAnalysis(ctx, analysis); err != nil {
		return domain.Analysis{}, fmt.Errorf("save analysis: %w", err)
	}
	return analysis, nil
}
