package domain

import "math"

// Consensus CGM range bounds in mg/dL.
const (
	DefaultLowBound  = 70.0
	DefaultHighBound = 180.0
)

// GMI regression coefficients (Bergenstal et al.).
const (
	gmiIntercept = 3.31
	gmiSlope     = 0.02392
)

// RangeFractions holds time-in/below/above-range as fractions of the shared
// denominator: unmasked finite samples. When that denominator exists, exactly
// one predicate holds per sample and the three fractions sum to 1; when it is
// empty all three are NaN.
type RangeFractions struct {
	InRange    float64
	BelowRange float64
	AboveRange float64
}

// usable selects unmasked finite values. A nil mask excludes nothing; a mask
// of the wrong length is treated the same way, since the caller's combinator
// already reconciles real masks and anything else is not aligned to the
// series.
func usable(series []float64, mask []bool) []float64 {
	out := make([]float64, 0, len(series))
	masked := len(mask) == len(series)
	for i, v := range series {
		if masked && mask[i] {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// TimeInRanges computes TIR/TBR/TAR over unmasked finite samples. In-range is
// inclusive of both bounds; below and above are strict.
func TimeInRanges(series []float64, mask []bool, low, high float64) RangeFractions {
	values := usable(series, mask)
	if len(values) == 0 {
		return RangeFractions{InRange: math.NaN(), BelowRange: math.NaN(), AboveRange: math.NaN()}
	}
	var below, above float64
	for _, v := range values {
		switch {
		case v < low:
			below++
		case v > high:
			above++
		}
	}
	total := float64(len(values))
	return RangeFractions{
		InRange:    (total - below - above) / total,
		BelowRange: below / total,
		AboveRange: above / total,
	}
}

// GMI estimates an A1C-equivalent percentage from mean glucose over unmasked
// finite samples; NaN when no sample qualifies.
func GMI(series []float64, mask []bool) float64 {
	values := usable(series, mask)
	if len(values) == 0 {
		return math.NaN()
	}
	return gmiIntercept + gmiSlope*mean(values)
}
