package usecase

import (
	"context"

	"cgmlens/internal/modules/readings/domain"
	"cgmlens/internal/modules/readings/dto"
	readingsin "cgmlens/internal/modules/readings/port/in"
	"cgmlens/internal/modules/readings/service"
)

type Interactor struct {
	svc *service.UploadService
}

func NewInteractor(svc *service.UploadService) readingsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Import(ctx context.Context, input dto.ImportInput) (dto.UploadOutput, error) {
	upload, err := i.svc.Import(ctx, input.Path, input.Title, input.DeviceID, input.IntervalMin)
	if err != nil {
		return dto.UploadOutput{}, err
	}
	return toOutput(upload), nil
}

func (i *Interactor) ListUploads(ctx context.Context) ([]dto.UploadOutput, error) {
	uploads, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UploadOutput, 0, len(uploads))
	for _, upload := range uploads {
		out = append(out, toOutput(upload))
	}
	return out, nil
}

func (i *Interactor) GetUpload(ctx context.Context, id string) (dto.UploadOutput, error) {
	upload, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.UploadOutput{}, err
	}
	return toOutput(upload), nil
}

func (i *Interactor) Series(ctx context.Context, uploadID string) (dto.SeriesOutput, error) {
	upload, samples, err := i.svc.Samples(ctx, uploadID)
	if err != nil {
		return dto.SeriesOutput{}, err
	}
	out := dto.SeriesOutput{
		UploadID:    upload.ID,
		IntervalMin: upload.IntervalMin,
		Values:      make([]float64, len(samples)),
		SessionIDs:  make([]string, len(samples)),
		DeviceIDs:   make([]string, len(samples)),
	}
	for idx, sample := range samples {
		out.Values[idx] = sample.MgdL
		out.SessionIDs[idx] = sample.SessionID
		out.DeviceIDs[idx] = sample.DeviceID
	}
	return out, nil
}

func (i *Interactor) Reindex(ctx context.Context, _ dto.ReindexInput) error {
	return i.svc.Reindex(ctx)
}

func toOutput(upload domain.Upload) dto.UploadOutput {
	return dto.UploadOutput{
		ID:       upload.ID,
		Title:    upload.Title,
		DeviceID: upload.DeviceID,
		Count:    upload.Count,
		Readings: upload.Readings,
		StartAt:  upload.StartAt,
		EndAt:    upload.EndAt,
		NotePath: upload.NotePath,
	}
}
