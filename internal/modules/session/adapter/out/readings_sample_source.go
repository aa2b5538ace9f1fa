package out

import (
	"context"
	"math"

	readingsin "cgmlens/internal/modules/readings/port/in"
	"cgmlens/internal/modules/session/domain"
	sessionout "cgmlens/internal/modules/session/port/out"
)

// ReadingsSampleSource resolves session keys through the readings module.
type ReadingsSampleSource struct {
	readings readingsin.Usecase
}

func NewReadingsSampleSource(readings readingsin.Usecase) sessionout.SampleSource {
	return &ReadingsSampleSource{readings: readings}
}

func (a *ReadingsSampleSource) Samples(ctx context.Context, uploadID string) ([]domain.SessionKey, []bool, float64, error) {
	series, err := a.readings.Series(ctx, uploadID)
	if err != nil {
		return nil, nil, 0, err
	}
	keys := make([]domain.SessionKey, len(series.Values))
	finite := make([]bool, len(series.Values))
	for i := range series.Values {
		keys[i] = domain.SessionKey{SessionID: series.SessionIDs[i], DeviceID: series.DeviceIDs[i]}
		finite[i] = !math.IsNaN(series.Values[i]) && !math.IsInf(series.Values[i], 0)
	}
	return keys, finite, series.IntervalMin, nil
}
