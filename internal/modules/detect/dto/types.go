package dto

type AnalyzeInput struct {
	UploadID    string
	WithPlugins bool
}

type SegmentOutput struct {
	Start int
	End   int
}

type DetectorOutput struct {
	Name     string
	Flagged  int
	Segments []SegmentOutput
}

type AnalysisOutput struct {
	UploadID  string
	Points    int
	Flagged   int
	Detectors []DetectorOutput
	Combined  []bool
}
