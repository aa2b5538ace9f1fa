package out

import (
	"context"

	"cgmlens/internal/modules/metrics/domain"
)

// UploadSource resolves the upload's title and NaN-gridded readings.
type UploadSource interface {
	Upload(ctx context.Context, uploadID string) (title string, series []float64, err error)
}

// MaskSource runs detection and returns the combined exclusion mask.
type MaskSource interface {
	Mask(ctx context.Context, uploadID string) ([]bool, error)
}

// ReportStore persists a finished report as a durable note.
type ReportStore interface {
	Save(ctx context.Context, report domain.Report) (path string, err error)
}
