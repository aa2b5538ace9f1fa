package out

import (
	"context"

	"cgmlens/internal/modules/detect/domain"
	detectout "cgmlens/internal/modules/detect/port/out"
	readingsin "cgmlens/internal/modules/readings/port/in"
)

// ReadingsSeriesSource resolves series through the readings module.
type ReadingsSeriesSource struct {
	readings readingsin.Usecase
}

func NewReadingsSeriesSource(readings readingsin.Usecase) detectout.SeriesSource {
	return &ReadingsSeriesSource{readings: readings}
}

func (a *ReadingsSeriesSource) Load(ctx context.Context, uploadID string) (domain.Series, float64, error) {
	series, err := a.readings.Series(ctx, uploadID)
	if err != nil {
		return nil, 0, err
	}
	return domain.Series(series.Values), series.IntervalMin, nil
}
