package out

import (
	"context"

	"cgmlens/internal/modules/detect/domain"
)

// SeriesSource resolves an upload into its NaN-gridded series and sampling
// interval in minutes.
type SeriesSource interface {
	Load(ctx context.Context, uploadID string) (domain.Series, float64, error)
}

// ConfigSource produces a validated detector configuration for a sampling
// interval, applying any user overrides.
type ConfigSource interface {
	DetectorConfig(ctx context.Context, intervalMin float64) (domain.DetectorConfig, error)
}

// NamedMask is a mask produced by an external detector.
type NamedMask struct {
	Name string
	Mask domain.Mask
}

// ExternalDetector runs every installed detector plugin against a series.
type ExternalDetector interface {
	Masks(ctx context.Context, series domain.Series, intervalMin float64) ([]NamedMask, error)
}

// AnalysisProjector persists finished analyses in the queryable index.
type AnalysisProjector interface {
	Reset(ctx context.Context) error
	SaveAnalysis(ctx context.Context, analysis domain.Analysis) error
}
