package out

import (
	"context"

	"cgmlens/internal/modules/plugin/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	ListCommands(ctx context.Context, manifest domain.Manifest) ([]domain.CommandDescriptor, error)
	Execute(ctx context.Context, manifest domain.Manifest, input domain.ExecuteRequest) (domain.ExecuteResult, error)
	Detect(ctx context.Context, manifest domain.Manifest, input domain.DetectRequest) (domain.DetectResult, error)
}
