package domain

import "time"

// Report is one metrics run over an upload, with or without mask exclusion.
type Report struct {
	UploadID    string
	UploadTitle string
	Slug        string
	LowBound    float64
	HighBound   float64
	MaskApplied bool
	Points      int
	Excluded    int
	Fractions   RangeFractions
	GMI         float64
	Summary     Summary
	CreatedAt   time.Time
}
