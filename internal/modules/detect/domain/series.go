package domain

import (
	"fmt"
	"math"
	"sort"
)

// Series is a single CGM trace in mg/dL sampled at a fixed nominal interval.
// Missing samples are NaN entries at their interval position, so the index
// alone encodes time; a series is never resampled or truncated to skip gaps.
type Series []float64

// Mask marks series indices to exclude from masked metrics. Every mask
// produced in this package has the same length as its input series.
type Mask []bool

func (m Mask) FlaggedCount() int {
	count := 0
	for _, flagged := range m {
		if flagged {
			count++
		}
	}
	return count
}

// Runs returns the maximal contiguous flagged ranges of the mask.
func (m Mask) Runs() []Run {
	return FindRuns(len(m), func(i int) bool { return m[i] })
}

// WindowSpec converts a duration in minutes at a sampling interval into a
// trailing-window point count.
type WindowSpec struct {
	WindowMin   float64
	IntervalMin float64
}

func (w WindowSpec) Validate() error {
	if w.WindowMin <= 0 {
		return fmt.Errorf("window must be positive, got %v min", w.WindowMin)
	}
	if w.IntervalMin <= 0 {
		return fmt.Errorf("sampling interval must be positive, got %v min", w.IntervalMin)
	}
	return nil
}

// Points rounds the duration to whole samples, never below one.
func (w WindowSpec) Points() int {
	points := int(math.Round(w.WindowMin / w.IntervalMin))
	if points < 1 {
		points = 1
	}
	return points
}

// Run is a maximal contiguous index range [Start, End) over which some
// predicate held. Runs are computed per invocation and never persisted.
type Run struct {
	Start int
	End   int
}

func (r Run) Len() int { return r.End - r.Start }

// FindRuns scans [0, n) and collects every maximal run where pred holds.
func FindRuns(n int, pred func(int) bool) []Run {
	var runs []Run
	start := -1
	for i := 0; i <= n; i++ {
		if i < n && pred(i) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, Run{Start: start, End: i})
			start = -1
		}
	}
	return runs
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// rollingReduce applies reduce to every trailing window of k samples. Indices
// with fewer than k samples of history, or with any non-finite sample in the
// window, are not computable and yield NaN rather than zero.
func rollingReduce(s Series, k int, reduce func([]float64) float64) []float64 {
	out := make([]float64, len(s))
	for i := range out {
		out[i] = math.NaN()
	}
	for i := k - 1; i < len(s); i++ {
		window := s[i-k+1 : i+1]
		if !allFinite(window) {
			continue
		}
		out[i] = reduce(window)
	}
	return out
}

func allFinite(window []float64) bool {
	for _, v := range window {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

func variance(window []float64) float64 {
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(len(window))
	sumSq := 0.0
	for _, v := range window {
		d := v - mean
		sumSq += d * d
	}
	return sumSq / float64(len(window))
}

// percentile interpolates linearly between order statistics, matching the
// convention the adaptive variance threshold was tuned against.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
