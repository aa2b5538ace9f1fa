package out

import (
	"context"

	"cgmlens/internal/modules/readings/domain"
)

// ExportParser reads a device export and returns raw samples, unsorted and
// not yet laid out on the interval grid.
type ExportParser interface {
	Parse(ctx context.Context, path string) ([]domain.Sample, error)
}

// UploadStore is the durable store: a note plus a normalized sample file per
// upload.
type UploadStore interface {
	Save(ctx context.Context, document domain.UploadDocument) (string, error)
	FindByID(ctx context.Context, id string) (domain.Upload, error)
	List(ctx context.Context) ([]domain.Upload, error)
	LoadSamples(ctx context.Context, upload domain.Upload) ([]domain.Sample, error)
}

// UploadIndexProjector maintains the queryable sqlite projection.
type UploadIndexProjector interface {
	Reset(ctx context.Context) error
	UpsertUpload(ctx context.Context, upload domain.Upload) error
}
