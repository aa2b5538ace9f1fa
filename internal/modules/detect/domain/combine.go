package domain

import "fmt"

// DetectorConfig enumerates the built-in heuristics with their parameters.
// Validate rejects malformed windows and thresholds before any mask is
// computed; detection itself never fails.
type DetectorConfig struct {
	IntervalMin   float64
	LocalVariance LocalVarianceConfig
	JumpSpike     JumpSpikeConfig
	Jitter        JitterConfig
	Drift         DriftWindowConfig
	Flatline      DropoutFlatlineConfig
	LongGap       LongGapConfig
}

// DefaultDetectorConfig enables every heuristic with its default parameters
// at the given sampling interval.
func DefaultDetectorConfig(intervalMin float64) DetectorConfig {
	if intervalMin <= 0 {
		intervalMin = DefaultIntervalMin
	}
	return DetectorConfig{
		IntervalMin: intervalMin,
		LocalVariance: LocalVarianceConfig{
			Enabled:     true,
			WindowMin:   DefaultVarianceWindow,
			IntervalMin: intervalMin,
		},
		JumpSpike: JumpSpikeConfig{
			Enabled:   true,
			Threshold: DefaultJumpThreshold,
		},
		Jitter: JitterConfig{
			Enabled:      true,
			WindowMin:    DefaultJitterWindow,
			IntervalMin:  intervalMin,
			MinReversals: DefaultJitterReversals,
		},
		Drift: DriftWindowConfig{
			Enabled:       true,
			DriftHours:    DefaultDriftDurationHr,
			LowThreshold:  DefaultLowThreshold,
			LowDurationHr: DefaultLowDurationHr,
			IntervalMin:   intervalMin,
		},
		Flatline: DropoutFlatlineConfig{
			Enabled:     true,
			WindowMin:   DefaultFlatlineWindow,
			IntervalMin: intervalMin,
		},
		LongGap: LongGapConfig{
			Enabled:     true,
			GapMin:      DefaultGapMin,
			PriorMin:    DefaultGapPriorMin,
			IntervalMin: intervalMin,
		},
	}
}

func (c DetectorConfig) Validate() error {
	if c.IntervalMin <= 0 {
		return fmt.Errorf("sampling interval must be positive, got %v min", c.IntervalMin)
	}
	checks := []struct {
		name    string
		enabled bool
		err     func() error
	}{
		{"local_variance", c.LocalVariance.Enabled, c.LocalVariance.Validate},
		{"jump_spike", c.JumpSpike.Enabled, c.JumpSpike.Validate},
		{"jitter", c.Jitter.Enabled, c.Jitter.Validate},
		{"drift_window", c.Drift.Enabled, c.Drift.Validate},
		{"dropout_flatline", c.Flatline.Enabled, c.Flatline.Validate},
		{"long_gap", c.LongGap.Enabled, c.LongGap.Validate},
	}
	for _, check := range checks {
		if !check.enabled {
			continue
		}
		if err := check.err(); err != nil {
			return fmt.Errorf("%s: %w", check.name, err)
		}
	}
	return nil
}

// Detector is one heuristic as a pure series-to-mask function. Each detector
// keeps its own broadcast policy (right-edge only, whole window, whole run)
// local to its implementation.
type Detector struct {
	Name string
	Mask func(Series) Mask
}

// Detectors lists the enabled heuristics in a fixed order. They share no
// state and may be evaluated concurrently on the same series.
func (c DetectorConfig) Detectors() []Detector {
	var detectors []Detector
	if c.LocalVariance.Enabled {
		cfg := c.LocalVariance
		detectors = append(detectors, Detector{"local_variance", func(s Series) Mask { return LocalVarianceMask(s, cfg) }})
	}
	if c.JumpSpike.Enabled {
		cfg := c.JumpSpike
		detectors = append(detectors, Detector{"jump_spike", func(s Series) Mask { return JumpSpikeMask(s, cfg) }})
	}
	if c.Jitter.Enabled {
		cfg := c.Jitter
		detectors = append(detectors, Detector{"jitter", func(s Series) Mask { return JitterMask(s, cfg) }})
	}
	if c.Drift.Enabled {
		cfg := c.Drift
		detectors = append(detectors, Detector{"drift_window", func(s Series) Mask { return DriftWindowMask(s, cfg) }})
	}
	if c.Flatline.Enabled {
		cfg := c.Flatline
		detectors = append(detectors, Detector{"dropout_flatline", func(s Series) Mask { return DropoutFlatlineMask(s, cfg) }})
	}
	if c.LongGap.Enabled {
		cfg := c.LongGap
		detectors = append(detectors, Detector{"long_gap", func(s Series) Mask { return LongGapMask(s, cfg) }})
	}
	return detectors
}

// Reconcile forces a mask to length n: shorter masks are padded at the start
// with false, longer masks are truncated from the end. Leading indices of a
// padded mask can therefore never be flagged by that contributor.
func Reconcile(m Mask, n int) Mask {
	if len(m) == n {
		return m
	}
	out := make(Mask, n)
	if len(m) > n {
		copy(out, m[:n])
		return out
	}
	copy(out[n-len(m):], m)
	return out
}

// Merge ORs contributor masks into one mask of length n, reconciling each
// contributor first. A contributor of the wrong length is an integration
// wrinkle to absorb, never a reason to fail.
func Merge(n int, masks ...Mask) Mask {
	out := make(Mask, n)
	for _, m := range masks {
		m = Reconcile(m, n)
		for i, flagged := range m {
			if flagged {
				out[i] = true
			}
		}
	}
	return out
}

// Combine evaluates every enabled heuristic sequentially and merges the
// results with any extra contributor masks. Deterministic: the same series
// and config always produce bit-identical output.
func Combine(s Series, cfg DetectorConfig, extra ...Mask) Mask {
	masks := make([]Mask, 0, 6+len(extra))
	for _, detector := range cfg.Detectors() {
		masks = append(masks, detector.Mask(s))
	}
	masks = append(masks, extra...)
	return Merge(len(s), masks...)
}
