package in

import (
	"context"

	"cgmlens/internal/modules/detect/dto"
	detectin "cgmlens/internal/modules/detect/port/in"
)

type CLIHandler struct {
	usecase detectin.Usecase
}

func NewCLIHandler(usecase detectin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Analyze(ctx context.Context, uploadID string, withPlugins bool) (dto.AnalysisOutput, error) {
	return h.usecase.Analyze(ctx, dto.AnalyzeInput{UploadID: uploadID, WithPlugins: withPlugins})
}
