package domain

import (
	"math"
	"sort"
)

// Summary holds descriptive statistics over unmasked finite samples. Every
// field is NaN when no sample qualifies; degenerate inputs are reported, not
// raised, so aggregation across many sessions never aborts on one bad trace.
type Summary struct {
	Mean   float64
	SD     float64
	CV     float64
	Median float64
	Min    float64
	Max    float64
}

// Summarize computes mean, sample standard deviation (n−1), coefficient of
// variation (SD/mean, NaN when the mean is zero), median, min and max.
func Summarize(series []float64, mask []bool) Summary {
	values := usable(series, mask)
	if len(values) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, SD: nan, CV: nan, Median: nan, Min: nan, Max: nan}
	}

	m := mean(values)
	sd := sampleSD(values, m)
	cv := math.NaN()
	if m != 0 {
		cv = sd / m
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	return Summary{
		Mean:   m,
		SD:     sd,
		CV:     cv,
		Median: median(values),
		Min:    lo,
		Max:    hi,
	}
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleSD(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
