package usecase

import (
	"context"

	"cgmlens/internal/modules/session/dto"
	sessionin "cgmlens/internal/modules/session/port/in"
	"cgmlens/internal/modules/session/service"
)

type Interactor struct {
	svc *service.SessionService
}

func NewInteractor(svc *service.SessionService) sessionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Evaluate(ctx context.Context, input dto.EvaluateInput) ([]dto.SessionOutput, error) {
	sessions, err := i.svc.Evaluate(ctx, input.UploadID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionOutput, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, dto.SessionOutput{
			SessionID:   session.SessionID,
			DeviceID:    session.DeviceID,
			Start:       session.Start,
			End:         session.End,
			Readings:    session.Readings,
			DurationDay: session.DurationDay,
			MaxDays:     session.MaxDays,
			MaxKnown:    session.MaxKnown,
			EndedEarly:  session.EndedEarly,
		})
	}
	return out, nil
}

func (i *Interactor) DeviceLimit(ctx context.Context, deviceID string) (dto.DeviceLookupOutput, error) {
	maxDays, known := i.svc.DeviceLimit(ctx, deviceID)
	return dto.DeviceLookupOutput{DeviceID: deviceID, MaxDays: maxDays, Known: known}, nil
}

func (i *Interactor) ListLimits(ctx context.Context) ([]dto.DeviceLimitOutput, error) {
	limits := i.svc.ListLimits(ctx)
	out := make([]dto.DeviceLimitOutput, 0, len(limits))
	for _, limit := range limits {
		out = append(out, dto.DeviceLimitOutput{Pattern: limit.Pattern, MaxDays: limit.MaxDays})
	}
	return out, nil
}
