package service

import (
	"context"
	"fmt"

	"cgmlens/internal/modules/metrics/domain"
	metricsout "cgmlens/internal/modules/metrics/port/out"
	"cgmlens/internal/platform/clock"
	"cgmlens/internal/platform/slug"
)

type MetricsService struct {
	clock   clock.Clock
	uploads metricsout.UploadSource
	masks   metricsout.MaskSource
	reports metricsout.ReportStore
}

func NewMetricsService(clock clock.Clock, uploads metricsout.UploadSource, masks metricsout.MaskSource, reports metricsout.ReportStore) *MetricsService {
	return &MetricsService{clock: clock, uploads: uploads, masks: masks, reports: reports}
}

func (s *MetricsService) Compute(ctx context.Context, uploadID string, applyMask bool, low, high float64) (domain.Report, string, error) {
	if uploadID == "" {
		return domain.Report{}, "", fmt.Errorf("upload id is required")
	}
	if low == 0 {
		low = domain.DefaultLowBound
	}
	if high == 0 {
		high = domain.DefaultHighBound
	}
	if low >= high {
		return domain.Report{}, "", fmt.Errorf("low bound %v must be below high bound %v", low, high)
	}

	title, series, err := s.uploads.Upload(ctx, uploadID)
	if err != nil {
		return domain.Report{}, "", fmt.Errorf("load upload: %w", err)
	}

	var mask []bool
	if applyMask {
		mask, err = s.masks.Mask(ctx, uploadID)
		if err != nil {
			return domain.Report{}, "", fmt.Errorf("load mask: %w", err)
		}
	}

	excluded := 0
	for _, flagged := range mask {
		if flagged {
			excluded++
		}
	}

	report := domain.Report{
		UploadID:    uploadID,
		UploadTitle: title,
		Slug:        slug.Make(title),
		LowBound:    low,
		HighBound:   high,
		MaskApplied: applyMask,
		Points:      len(series),
		Excluded:    excluded,
		Fractions:   domain.TimeInRanges(series, mask, low, high),
		GMI:         domain.GMI(series, mask),
		Summary:     domain.Summarize(series, mask),
		CreatedAt:   s.clock.Now(),
	}
	path, err := s.reports.Save(ctx, report)
	if err != nil {
		return domain.Report{}, "", fmt.Errorf("save report: %w", err)
	}
	return report, path, nil
}
