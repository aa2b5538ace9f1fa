package domain_test

import (
	"math"
	"testing"

	"cgmlens/internal/modules/detect/domain"
)

func flatSeries(n int, value float64) domain.Series {
	s := make(domain.Series, n)
	for i := range s {
		s[i] = value
	}
	return s
}

func risingSeries(n int, start, step float64) domain.Series {
	s := make(domain.Series, n)
	for i := range s {
		s[i] = start + float64(i)*step
	}
	return s
}

func TestLocalVarianceFlatWindowNeverFlagged(t *testing.T) {
	t.Parallel()
	cfg := domain.LocalVarianceConfig{Enabled: true, WindowMin: 30, IntervalMin: 5, Threshold: 0.001}
	mask := domain.LocalVarianceMask(flatSeries(50, 120), cfg)
	if len(mask) != 50 {
		t.Fatalf("mask length = %d, want 50", len(mask))
	}
	if mask.FlaggedCount() != 0 {
		t.Fatalf("flat series flagged %d indices, want 0", mask.FlaggedCount())
	}
}

func TestLocalVarianceFlagsRightEdgeOnly(t *testing.T) {
	t.Parallel()
	s := flatSeries(30, 100)
	s[20] = 220 // one violent excursion
	cfg := domain.LocalVarianceConfig{Enabled: true, WindowMin: 30, IntervalMin: 5, Threshold: 100}
	mask := domain.LocalVarianceMask(s, cfg)
	for i := 0; i < 15; i++ {
		if mask[i] {
			t.Fatalf("index %d flagged before the excursion entered any window", i)
		}
	}
	if !mask[20] {
		t.Fatalf("window ending at the excursion must be flagged")
	}
	// the heuristic must not broadcast: once the excursion leaves every
	// trailing window the right edges go quiet again
	if mask[26] {
		t.Fatalf("index 26 flagged after the excursion left every window")
	}
}

func TestLocalVarianceInsufficientHistoryNeverFlagged(t *testing.T) {
	t.Parallel()
	cfg := domain.LocalVarianceConfig{Enabled: true, WindowMin: 30, IntervalMin: 5, Threshold: 0.0001}
	s := domain.Series{40, 400, 40, 400}
	mask := domain.LocalVarianceMask(s, cfg)
	if len(mask) != len(s) {
		t.Fatalf("mask length = %d, want %d", len(mask), len(s))
	}
	if mask.FlaggedCount() != 0 {
		t.Fatalf("series shorter than the window must not flag anything")
	}
}

func TestLocalVarianceAdaptiveThreshold(t *testing.T) {
	t.Parallel()
	// Mostly calm trace with one noisy stretch: the adaptive 95th-percentile
	// threshold must flag right edges inside the noisy stretch only.
	s := flatSeries(120, 110)
	noisy := []float64{110, 190, 95, 200, 90, 185}
	copy(s[60:], noisy)
	cfg := domain.LocalVarianceConfig{Enabled: true, WindowMin: 30, IntervalMin: 5}
	mask := domain.LocalVarianceMask(s, cfg)
	if mask.FlaggedCount() == 0 {
		t.Fatalf("noisy stretch must exceed the adaptive threshold")
	}
	for _, run := range mask.Runs() {
		if run.Start < 60 || run.End > 60+len(noisy)+6 {
			t.Fatalf("flag run %+v outside the noisy stretch", run)
		}
	}
}

func TestJumpSpikeFlagsLandingIndex(t *testing.T) {
	t.Parallel()
	cfg := domain.JumpSpikeConfig{Enabled: true, Threshold: 20}
	mask := domain.JumpSpikeMask(domain.Series{100, 125}, cfg)
	if mask[0] {
		t.Fatalf("index 0 must never be flagged")
	}
	if !mask[1] {
		t.Fatalf("delta 25 > 20 must flag index 1")
	}
}

func TestJumpSpikeBoundaryAndNaN(t *testing.T) {
	t.Parallel()
	cfg := domain.JumpSpikeConfig{Enabled: true, Threshold: 20}
	if mask := domain.JumpSpikeMask(domain.Series{100, 120}, cfg); mask[1] {
		t.Fatalf("delta exactly at the threshold must not flag")
	}
	mask := domain.JumpSpikeMask(domain.Series{100, nan(), 200}, cfg)
	if mask[1] || mask[2] {
		t.Fatalf("pairs with a non-finite endpoint must not flag, got %v", mask)
	}
}

func TestJitterBroadcastsWholeWindow(t *testing.T) {
	t.Parallel()
	// 6-point window oscillating hard: +40 -40 +40 -40 has four reversals.
	s := domain.Series{100, 140, 100, 140, 100, 140}
	cfg := domain.JitterConfig{Enabled: true, WindowMin: 30, IntervalMin: 5, MinReversals: 2}
	mask := domain.JitterMask(s, cfg)
	for i := range s {
		if !mask[i] {
			t.Fatalf("index %d must be flagged by the oscillating window", i)
		}
	}
}

func TestJitterZeroDifferenceIsNotAReversal(t *testing.T) {
	t.Parallel()
	// d = +10, 0, -10, 0, +10: no strictly negative product anywhere, so a
	// flat step between opposing moves never counts as a reversal.
	s := domain.Series{100, 110, 110, 100, 100, 110}
	cfg := domain.JitterConfig{Enabled: true, WindowMin: 30, IntervalMin: 5, MinReversals: 1}
	mask := domain.JitterMask(s, cfg)
	if mask.FlaggedCount() != 0 {
		t.Fatalf("zero differences must break direction without counting, got %v", mask)
	}
}

func TestJitterSkipsWindowsWithNaN(t *testing.T) {
	t.Parallel()
	s := domain.Series{100, 140, nan(), 140, 100, 140}
	cfg := domain.JitterConfig{Enabled: true, WindowMin: 30, IntervalMin: 5, MinReversals: 1}
	mask := domain.JitterMask(s, cfg)
	if mask.FlaggedCount() != 0 {
		t.Fatalf("windows containing NaN must be skipped, got %v", mask)
	}
}

func TestDriftMonotonicFlagsWholeWindow(t *testing.T) {
	t.Parallel()
	s := risingSeries(289, 40, 0.5)
	cfg := domain.DriftWindowConfig{Enabled: true, DriftHours: 24, LowThreshold: 70, LowDurationHr: 8, IntervalMin: 5}
	mask := domain.DriftWindowMask(s, cfg)
	for i := range s {
		if !mask[i] {
			t.Fatalf("index %d of a strictly increasing day must be flagged", i)
		}
	}
}

func TestDriftMonotonicToleratesNoReversal(t *testing.T) {
	t.Parallel()
	s := risingSeries(300, 40, 0.5)
	s[150] = s[149] - 5 // one reversal breaks every window containing it
	cfg := domain.DriftWindowConfig{Enabled: true, DriftHours: 24, LowThreshold: 70, LowDurationHr: 8, IntervalMin: 5}
	mask := domain.DriftWindowMask(s, cfg)
	if mask[150] {
		t.Fatalf("windows containing the reversal must not be monotonic")
	}
}

func TestDriftProlongedLowStrictDuration(t *testing.T) {
	t.Parallel()
	cfg := domain.DriftWindowConfig{Enabled: true, DriftHours: 24, LowThreshold: 70, LowDurationHr: 8, IntervalMin: 5}
	// 8 h at 5 min = 96 points. A run of exactly 96 must not flag.
	atBound := flatSeries(200, 120)
	for i := 50; i < 50+96; i++ {
		atBound[i] = 65 + math.Mod(float64(i), 3) // below 70, not monotonic
	}
	if mask := domain.DriftWindowMask(atBound, cfg); mask.FlaggedCount() != 0 {
		t.Fatalf("run of exactly 96 low points must not flag, got %d", mask.FlaggedCount())
	}

	over := flatSeries(200, 120)
	for i := 50; i < 50+97; i++ {
		over[i] = 65 + math.Mod(float64(i), 3)
	}
	mask := domain.DriftWindowMask(over, cfg)
	for i := 50; i < 50+97; i++ {
		if !mask[i] {
			t.Fatalf("index %d of the 97-point low run must be flagged", i)
		}
	}
	if mask[49] || mask[50+97] {
		t.Fatalf("indices outside the low run must not be flagged")
	}
}

func TestDropoutFlagsEveryNaN(t *testing.T) {
	t.Parallel()
	cfg := domain.DropoutFlatlineConfig{Enabled: true, WindowMin: 30, IntervalMin: 5}
	mask := domain.DropoutFlatlineMask(domain.Series{100, nan(), 100}, cfg)
	if !mask[1] {
		t.Fatalf("isolated missing sample must be flagged")
	}
	if mask[0] || mask[2] {
		t.Fatalf("finite neighbors must not be flagged, got %v", mask)
	}
}

func TestFlatlineExactEquality(t *testing.T) {
	t.Parallel()
	cfg := domain.DropoutFlatlineConfig{Enabled: true, WindowMin: 30, IntervalMin: 5}
	s := flatSeries(10, 140)
	mask := domain.DropoutFlatlineMask(s, cfg)
	for i := range s {
		if !mask[i] {
			t.Fatalf("index %d of a constant trace must be flagged", i)
		}
	}

	s[4] = 140.0001
	mask = domain.DropoutFlatlineMask(s, cfg)
	if mask[4] {
		t.Fatalf("near-equal values must break exact-equality flatlines")
	}
}

func TestFlatlineToleranceBand(t *testing.T) {
	t.Parallel()
	cfg := domain.DropoutFlatlineConfig{Enabled: true, WindowMin: 30, IntervalMin: 5, Tolerance: 1}
	s := domain.Series{140, 140.4, 139.8, 140.1, 140.2, 139.9, 140.3, 140}
	mask := domain.DropoutFlatlineMask(s, cfg)
	for i := range s {
		if !mask[i] {
			t.Fatalf("index %d within the tolerance band must be flagged", i)
		}
	}
}

func TestLongGapFlagsRunAndLeadIn(t *testing.T) {
	t.Parallel()
	cfg := domain.LongGapConfig{Enabled: true, GapMin: 30, PriorMin: 60, IntervalMin: 5}
	s := flatSeries(60, 120)
	for i := 30; i < 36; i++ { // exactly 6 points = 30 min
		s[i] = nan()
	}
	mask := domain.LongGapMask(s, cfg)
	for i := 18; i < 36; i++ { // 12-point lead-in plus the gap
		if !mask[i] {
			t.Fatalf("index %d must be flagged (gap or lead-in)", i)
		}
	}
	if mask[17] || mask[36] {
		t.Fatalf("indices outside gap and lead-in must not be flagged")
	}
}

func TestLongGapIgnoresShortRuns(t *testing.T) {
	t.Parallel()
	cfg := domain.LongGapConfig{Enabled: true, GapMin: 30, PriorMin: 60, IntervalMin: 5}
	s := flatSeries(40, 120)
	for i := 20; i < 25; i++ { // 5 points, one short of the trigger
		s[i] = nan()
	}
	if mask := domain.LongGapMask(s, cfg); mask.FlaggedCount() != 0 {
		t.Fatalf("gaps below the minimum must be left to the dropout rule")
	}
}

func TestLongGapClampsLeadInAtStart(t *testing.T) {
	t.Parallel()
	cfg := domain.LongGapConfig{Enabled: true, GapMin: 30, PriorMin: 60, IntervalMin: 5}
	s := flatSeries(20, 120)
	for i := 0; i < 8; i++ {
		s[i] = nan()
	}
	mask := domain.LongGapMask(s, cfg)
	for i := 0; i < 8; i++ {
		if !mask[i] {
			t.Fatalf("gap index %d must be flagged", i)
		}
	}
	if mask[8] {
		t.Fatalf("lead-in cannot extend past the series start into later data")
	}
}
