package in

import (
	"context"

	"cgmlens/internal/modules/readings/dto"
)

type Usecase interface {
	Import(ctx context.Context, input dto.ImportInput) (dto.UploadOutput, error)
	ListUploads(ctx context.Context) ([]dto.UploadOutput, error)
	GetUpload(ctx context.Context, id string) (dto.UploadOutput, error)
	Series(ctx context.Context, uploadID string) (dto.SeriesOutput, error)
	Reindex(ctx context.Context, input dto.ReindexInput) error
}
