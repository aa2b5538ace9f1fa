package dto

import "time"

type ComputeInput struct {
	UploadID  string
	ApplyMask bool
	LowBound  float64
	HighBound float64
}

type ReportOutput struct {
	UploadID    string
	UploadTitle string
	LowBound    float64
	HighBound   float64
	MaskApplied bool
	Points      int
	Excluded    int
	InRange     float64
	BelowRange  float64
	AboveRange  float64
	GMI         float64
	Mean        float64
	SD          float64
	CV          float64
	Median      float64
	Min         float64
	Max         float64
	CreatedAt   time.Time
	ReportPath  string
}
