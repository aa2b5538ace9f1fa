package out

import (
	"context"

	detectdto "cgmlens/internal/modules/detect/dto"
	detectin "cgmlens/internal/modules/detect/port/in"
	metricsout "cgmlens/internal/modules/metrics/port/out"
	readingsin "cgmlens/internal/modules/readings/port/in"
)

// ReadingsUploadSource resolves uploads through the readings module.
type ReadingsUploadSource struct {
	readings readingsin.Usecase
}

func NewReadingsUploadSource(readings readingsin.Usecase) metricsout.UploadSource {
	return &ReadingsUploadSource{readings: readings}
}

func (a *ReadingsUploadSource) Upload(ctx context.Context, uploadID string) (string, []float64, error) {
	upload, err := a.readings.GetUpload(ctx, uploadID)
	if err != nil {
		return "", nil, err
	}
	series, err := a.readings.Series(ctx, uploadID)
	if err != nil {
		return "", nil, err
	}
	return upload.Title, series.Values, nil
}

// DetectMaskSource reruns detection to obtain the combined exclusion mask.
type DetectMaskSource struct {
	detect detectin.Usecase
}

func NewDetectMaskSource(detect detectin.Usecase) metricsout.MaskSource {
	return &DetectMaskSource{detect: detect}
}

func (a *DetectMaskSource) Mask(ctx context.Context, uploadID string) ([]bool, error) {
	analysis, err := a.detect.Analyze(ctx, detectdto.AnalyzeInput{UploadID: uploadID})
	if err != nil {
		return nil, err
	}
	return analysis.Combined, nil
}
