package out

import (
	"context"

	"cgmlens/internal/modules/session/domain"
)

// SampleSource resolves an upload's per-index session keys, finite flags and
// sampling interval.
type SampleSource interface {
	Samples(ctx context.Context, uploadID string) (keys []domain.SessionKey, finite []bool, intervalMin float64, err error)
}

// SessionProjector persists evaluated sessions in the queryable index.
type SessionProjector interface {
	Reset(ctx context.Context) error
	SaveSessions(ctx context.Context, uploadID string, sessions []domain.SensorSession) error
}
