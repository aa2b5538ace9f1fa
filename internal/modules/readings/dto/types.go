package dto

import "time"

type ImportInput struct {
	Path        string
	Title       string
	DeviceID    string
	IntervalMin float64
}

type UploadOutput struct {
	ID       string
	Title    string
	DeviceID string
	Count    int
	Readings int
	StartAt  time.Time
	EndAt    time.Time
	NotePath string
}

type SeriesOutput struct {
	UploadID    string
	IntervalMin float64
	Values      []float64
	SessionIDs  []string
	DeviceIDs   []string
}

type ReindexInput struct{}
