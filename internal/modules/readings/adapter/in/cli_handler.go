package in

import (
	"context"

	"cgmlens/internal/modules/readings/dto"
	readingsin "cgmlens/internal/modules/readings/port/in"
)

type CLIHandler struct {
	usecase readingsin.Usecase
}

func NewCLIHandler(usecase readingsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Import(ctx context.Context, path, title string, intervalMin float64) (dto.UploadOutput, error) {
	return h.usecase.Import(ctx, dto.ImportInput{
		Path:        path,
		Title:       title,
		IntervalMin: intervalMin,
	})
}

func (h CLIHandler) ListUploads(ctx context.Context) ([]dto.UploadOutput, error) {
	return h.usecase.ListUploads(ctx)
}

func (h CLIHandler) GetUpload(ctx context.Context, id string) (dto.UploadOutput, error) {
	return h.usecase.GetUpload(ctx, id)
}

func (h CLIHandler) Series(ctx context.Context, id string) (dto.SeriesOutput, error) {
	return h.usecase.Series(ctx, id)
}

func (h CLIHandler) Reindex(ctx context.Context) error {
	return h.usecase.Reindex(ctx, dto.ReindexInput{})
}
