package service

import (
	"context"
	"fmt"

	"cgmlens/internal/modules/session/domain"
	sessionout "cgmlens/internal/modules/session/port/out"
)

type SessionService struct {
	samples   sessionout.SampleSource
	projector sessionout.SessionProjector
	policy    domain.Policy
}

func NewSessionService(samples sessionout.SampleSource, projector sessionout.SessionProjector, policy domain.Policy) *SessionService {
	return &SessionService{samples: samples, projector: projector, policy: policy}
}

func (s *SessionService) Evaluate(ctx context.Context, uploadID string) ([]domain.SensorSession, error) {
	if uploadID == "" {
		return nil, fmt.Errorf("upload id is required")
	}
	keys, finite, intervalMin, err := s.samples.Samples(ctx, uploadID)
	if err != nil {
		return nil, fmt.Errorf("load samples: %w", err)
	}
	sessions := domain.GroupSessions(keys, finite, intervalMin, s.policy)
	if err := s.projector.SaveSessions(ctx, uploadID, sessions); err != nil {
		return nil, fmt.Errorf("save sessions: %w", err)
	}
	return sessions, nil
}

func (s *SessionService) DeviceLimit(_ context.Context, deviceID string) (float64, bool) {
	return s.policy.MaxSessionDays(deviceID)
}

func (s *SessionService) ListLimits(_ context.Context) []domain.DeviceLimit {
	return s.policy.Limits()
}
