package in

import (
	"context"

	"cgmlens/internal/modules/detect/dto"
)

type Usecase interface {
	Analyze(ctx context.Context, input dto.AnalyzeInput) (dto.AnalysisOutput, error)
}
