package domain

import (
	"fmt"
	"math"
)

// Default heuristic parameters for 5-minute Dexcom-style traces.
const (
	DefaultIntervalMin      = 5.0
	DefaultVarianceWindow   = 30.0
	DefaultJumpThreshold    = 20.0
	DefaultJitterWindow     = 30.0
	DefaultJitterReversals  = 2
	DefaultDriftDurationHr  = 24.0
	DefaultLowThreshold     = 70.0
	DefaultLowDurationHr    = 8.0
	DefaultFlatlineWindow   = 30.0
	DefaultGapMin           = 30.0
	DefaultGapPriorMin      = 60.0
	adaptivePercentileRank = 95.0
)

type LocalVarianceConfig struct {
	Enabled     bool
	WindowMin   float64
	IntervalMin float64
	// Threshold in (mg/dL)². Zero or negative selects the adaptive threshold:
	// the 95th percentile of all computable rolling variances of the series.
	Threshold float64
}

func (c LocalVarianceConfig) Validate() error {
	return WindowSpec{c.WindowMin, c.IntervalMin}.Validate()
}

// LocalVarianceMask flags the right-edge index of every trailing window whose
// variance strictly exceeds the threshold. The adaptive threshold is computed
// once over the whole series before any index is flagged. Indices whose
// variance is not computable are never flagged.
func LocalVarianceMask(s Series, cfg LocalVarianceConfig) Mask {
	mask := make(Mask, len(s))
	k := WindowSpec{cfg.WindowMin, cfg.IntervalMin}.Points()
	if len(s) < k {
		return mask
	}
	variances := rollingReduce(s, k, variance)

	threshold := cfg.Threshold
	if threshold <= 0 {
		computable := make([]float64, 0, len(variances))
		for _, v := range variances {
			if isFinite(v) {
				computable = append(computable, v)
			}
		}
		if len(computable) == 0 {
			return mask
		}
		threshold = percentile(computable, adaptivePercentileRank)
	}

	for i, v := range variances {
		if isFinite(v) && v > threshold {
			mask[i] = true
		}
	}
	return mask
}

type JumpSpikeConfig struct {
	Enabled   bool
	Threshold float64 // mg/dL per sampling interval
}

func (c JumpSpikeConfig) Validate() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("jump threshold must be positive, got %v", c.Threshold)
	}
	return nil
}

// JumpSpikeMask flags the index where a jump lands: every i >= 1 whose
// absolute change from the previous sample strictly exceeds the threshold.
// Index 0 and pairs with a non-finite endpoint are never flagged.
func JumpSpikeMask(s Series, cfg JumpSpikeConfig) Mask {
	mask := make(Mask, len(s))
	for i := 1; i < len(s); i++ {
		if !isFinite(s[i]) || !isFinite(s[i-1]) {
			continue
		}
		if math.Abs(s[i]-s[i-1]) > cfg.Threshold {
			mask[i] = true
		}
	}
	return mask
}

type JitterConfig struct {
	Enabled      bool
	WindowMin    float64
	IntervalMin  float64
	MinReversals int
}

func (c JitterConfig) Validate() error {
	if err := (WindowSpec{c.WindowMin, c.IntervalMin}).Validate(); err != nil {
		return err
	}
	if c.MinReversals < 1 {
		return fmt.Errorf("jitter reversal minimum must be at least 1, got %d", c.MinReversals)
	}
	return nil
}

// JitterMask flags every index of trailing windows whose first differences
// reverse direction at least MinReversals times. A reversal requires a
// strictly negative product of consecutive differences, so a zero difference
// neither counts as a reversal nor carries direction across the flat step.
// Windows containing any non-finite sample are skipped.
func JitterMask(s Series, cfg JitterConfig) Mask {
	mask := make(Mask, len(s))
	k := WindowSpec{cfg.WindowMin, cfg.IntervalMin}.Points()
	if k < 3 || len(s) < k {
		// fewer than three points cannot express a reversal
		return mask
	}
	for i := k - 1; i < len(s); i++ {
		window := s[i-k+1 : i+1]
		if !allFinite(window) {
			continue
		}
		reversals := 0
		for j := 2; j < len(window); j++ {
			prev := window[j-1] - window[j-2]
			next := window[j] - window[j-1]
			if prev*next < 0 {
				reversals++
			}
		}
		if reversals >= cfg.MinReversals {
			for j := i - k + 1; j <= i; j++ {
				mask[j] = true
			}
		}
	}
	return mask
}

type DriftWindowConfig struct {
	Enabled       bool
	DriftHours    float64
	LowThreshold  float64 // mg/dL
	LowDurationHr float64
	IntervalMin   float64
}

func (c DriftWindowConfig) Validate() error {
	if err := (WindowSpec{c.DriftHours * 60, c.IntervalMin}).Validate(); err != nil {
		return err
	}
	if c.LowThreshold <= 0 {
		return fmt.Errorf("low threshold must be positive, got %v", c.LowThreshold)
	}
	if c.LowDurationHr <= 0 {
		return fmt.Errorf("low duration must be positive, got %v hr", c.LowDurationHr)
	}
	return nil
}

// DriftWindowMask ORs two independent sub-rules. Monotonic drift: every
// fully-finite trailing window of DriftHours whose steps never reverse (all
// >= 0 or all <= 0) is flagged in full, with overlapping windows unioned.
// Prolonged low: every maximal run of finite values below LowThreshold
// lasting strictly longer than LowDurationHr is flagged in full; runs at or
// below the bound are not.
func DriftWindowMask(s Series, cfg DriftWindowConfig) Mask {
	mask := make(Mask, len(s))

	kDrift := WindowSpec{cfg.DriftHours * 60, cfg.IntervalMin}.Points()
	if kDrift < 2 {
		kDrift = 2
	}
	for i := kDrift - 1; i < len(s); i++ {
		window := s[i-kDrift+1 : i+1]
		if !allFinite(window) {
			continue
		}
		if monotonic(window) {
			for j := i - kDrift + 1; j <= i; j++ {
				mask[j] = true
			}
		}
	}

	kLow := WindowSpec{cfg.LowDurationHr * 60, cfg.IntervalMin}.Points()
	if kLow < 2 {
		kLow = 2
	}
	below := FindRuns(len(s), func(i int) bool {
		return isFinite(s[i]) && s[i] < cfg.LowThreshold
	})
	for _, run := range below {
		if run.Len() > kLow {
			for j := run.Start; j < run.End; j++ {
				mask[j] = true
			}
		}
	}
	return mask
}

func monotonic(window []float64) bool {
	rising, falling := true, true
	for j := 1; j < len(window); j++ {
		step := window[j] - window[j-1]
		if step < 0 {
			rising = false
		}
		if step > 0 {
			falling = false
		}
	}
	return rising || falling
}

type DropoutFlatlineConfig struct {
	Enabled     bool
	WindowMin   float64
	IntervalMin float64
	// Tolerance widens flatline equality to a band. Zero keeps the historical
	// exact-equality behavior.
	Tolerance float64
}

func (c DropoutFlatlineConfig) Validate() error {
	if err := (WindowSpec{c.WindowMin, c.IntervalMin}).Validate(); err != nil {
		return err
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("flatline tolerance must not be negative, got %v", c.Tolerance)
	}
	return nil
}

// DropoutFlatlineMask ORs two sub-rules. Flatline: trailing windows whose
// finite values span no more than Tolerance (exactly equal by default) are
// flagged in full. Dropout: every non-finite index is flagged unconditionally,
// with no minimum run length.
func DropoutFlatlineMask(s Series, cfg DropoutFlatlineConfig) Mask {
	mask := make(Mask, len(s))

	k := WindowSpec{cfg.WindowMin, cfg.IntervalMin}.Points()
	if k < 2 {
		k = 2
	}
	for i := k - 1; i < len(s); i++ {
		window := s[i-k+1 : i+1]
		if !allFinite(window) {
			continue
		}
		lo, hi := window[0], window[0]
		for _, v := range window[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi-lo <= cfg.Tolerance {
			for j := i - k + 1; j <= i; j++ {
				mask[j] = true
			}
		}
	}

	for i, v := range s {
		if !isFinite(v) {
			mask[i] = true
		}
	}
	return mask
}

type LongGapConfig struct {
	Enabled     bool
	GapMin      float64 // minimum gap duration in minutes to trigger
	PriorMin    float64 // lead-in duration flagged before each gap
	IntervalMin float64
}

func (c LongGapConfig) Validate() error {
	if err := (WindowSpec{c.GapMin, c.IntervalMin}).Validate(); err != nil {
		return err
	}
	if c.PriorMin < 0 {
		return fmt.Errorf("gap lead-in must not be negative, got %v min", c.PriorMin)
	}
	return nil
}

// LongGapMask flags every maximal non-finite run of at least GapMin, plus the
// PriorMin window immediately before the run, clamped at the series start.
// Shorter gaps are left to DropoutFlatlineMask's dropout rule; the overlap in
// coverage is intentional.
func LongGapMask(s Series, cfg LongGapConfig) Mask {
	mask := make(Mask, len(s))
	k := WindowSpec{cfg.GapMin, cfg.IntervalMin}.Points()
	prior := 0
	if cfg.PriorMin > 0 {
		prior = WindowSpec{cfg.PriorMin, cfg.IntervalMin}.Points()
	}
	gaps := FindRuns(len(s), func(i int) bool { return !isFinite(s[i]) })
	for _, gap := range gaps {
		if gap.Len() < k {
			continue
		}
		start := gap.Start - prior
		if start < 0 {
			start = 0
		}
		for j := start; j < gap.End; j++ {
			mask[j] = true
		}
	}
	return mask
}
