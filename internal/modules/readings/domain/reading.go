package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const SchemaVersion = 1

// Upload is one imported CGM export. The normalized sample file next to its
// note is the durable store; sqlite only ever holds a projection of it.
type Upload struct {
	ID          string
	Title       string
	Slug        string
	DeviceID    string
	IntervalMin float64
	Count       int // series length including gap sentinels
	Readings    int // finite readings
	StartAt     time.Time
	EndAt       time.Time
	AddedAt     time.Time
	SourcePath  string
	NotePath    string
}

func (u Upload) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(u.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(u.Slug) == "" {
		return fmt.Errorf("slug is required")
	}
	if u.IntervalMin <= 0 {
		return fmt.Errorf("sampling interval must be positive, got %v min", u.IntervalMin)
	}
	return nil
}

// Sample is one interval slot of an upload. Slots with no reading carry NaN;
// gaps are always materialized so the index alone encodes time.
type Sample struct {
	Index     int
	At        time.Time
	MgdL      float64
	SessionID string
	DeviceID  string
}

func (s Sample) Finite() bool {
	return !math.IsNaN(s.MgdL) && !math.IsInf(s.MgdL, 0)
}

type UploadDocument struct {
	Upload  Upload
	Samples []Sample
}

// Normalize sorts parsed readings by time and lays them out on the interval
// grid, inserting NaN samples for missing slots. Offsets are rounded to the
// nearest slot; when two readings land on one slot the later one wins.
func Normalize(samples []Sample, intervalMin float64) []Sample {
	if len(samples) == 0 {
		return nil
	}
	ordered := make([]Sample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].At.Before(ordered[j].At) })

	interval := time.Duration(intervalMin * float64(time.Minute))
	start := ordered[0].At
	slotOf := func(at time.Time) int {
		return int(math.Round(float64(at.Sub(start)) / float64(interval)))
	}
	last := slotOf(ordered[len(ordered)-1].At)

	out := make([]Sample, last+1)
	for i := range out {
		out[i] = Sample{Index: i, At: start.Add(time.Duration(i) * interval), MgdL: math.NaN()}
	}
	for _, sample := range ordered {
		slot := slotOf(sample.At)
		if slot < 0 || slot > last {
			continue
		}
		out[slot] = Sample{
			Index:     slot,
			At:        out[slot].At,
			MgdL:      sample.MgdL,
			SessionID: sample.SessionID,
			DeviceID:  sample.DeviceID,
		}
	}
	return out
}

// CountFinite reports how many slots hold an actual reading.
func CountFinite(samples []Sample) int {
	count := 0
	for _, sample := range samples {
		if sample.Finite() {
			count++
		}
	}
	return count
}
