package domain

// DetectorOutcome is one contributor's reconciled mask, built-in or external.
type DetectorOutcome struct {
	Name string
	Mask Mask
}

// Analysis is one detection pass over an upload's series.
type Analysis struct {
	UploadID string
	Points   int
	Outcomes []DetectorOutcome
	Combined Mask
}
