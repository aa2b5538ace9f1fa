package domain_test

import (
	"testing"

	"cgmlens/internal/modules/detect/domain"
)

func messySeries() domain.Series {
	s := risingSeries(320, 80, 0.25)
	s[40] = 180 // spike
	for i := 100; i < 108; i++ {
		s[i] = nan()
	}
	for i := 200; i < 210; i++ {
		s[i] = 111
	}
	return s
}

func TestCombineIsUnionOfHeuristics(t *testing.T) {
	t.Parallel()
	s := messySeries()
	cfg := domain.DefaultDetectorConfig(5)
	combined := domain.Combine(s, cfg)
	if len(combined) != len(s) {
		t.Fatalf("combined mask length = %d, want %d", len(combined), len(s))
	}

	var masks []domain.Mask
	for _, detector := range cfg.Detectors() {
		mask := detector.Mask(s)
		if len(mask) != len(s) {
			t.Fatalf("%s mask length = %d, want %d", detector.Name, len(mask), len(s))
		}
		masks = append(masks, mask)
	}
	for i := range combined {
		any := false
		for _, mask := range masks {
			if mask[i] {
				any = true
				break
			}
		}
		if combined[i] != any {
			t.Fatalf("combined[%d] = %v, want OR of heuristics = %v", i, combined[i], any)
		}
	}
}

func TestCombineIdempotent(t *testing.T) {
	t.Parallel()
	s := messySeries()
	cfg := domain.DefaultDetectorConfig(5)
	first := domain.Combine(s, cfg)
	second := domain.Combine(s, cfg)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("mask differs between runs at %d", i)
		}
	}
}

func TestCombineMaskLengthWithSubsetsEnabled(t *testing.T) {
	t.Parallel()
	s := messySeries()
	cfg := domain.DefaultDetectorConfig(5)
	cfg.LocalVariance.Enabled = false
	cfg.Drift.Enabled = false
	cfg.LongGap.Enabled = false
	if got := domain.Combine(s, cfg); len(got) != len(s) {
		t.Fatalf("mask length = %d, want %d", len(got), len(s))
	}
	none := domain.DetectorConfig{IntervalMin: 5}
	if got := domain.Combine(s, none); len(got) != len(s) || got.FlaggedCount() != 0 {
		t.Fatalf("no enabled heuristics must yield an all-false mask of series length")
	}
}

func TestReconcilePadsStartTruncatesEnd(t *testing.T) {
	t.Parallel()
	short := domain.Mask{true, false, true}
	padded := domain.Reconcile(short, 5)
	want := domain.Mask{false, false, true, false, true}
	for i := range want {
		if padded[i] != want[i] {
			t.Fatalf("padded[%d] = %v, want %v", i, padded[i], want[i])
		}
	}

	long := domain.Mask{true, true, true, true, true}
	truncated := domain.Reconcile(long, 3)
	if len(truncated) != 3 {
		t.Fatalf("truncated length = %d, want 3", len(truncated))
	}
	for i := range truncated {
		if !truncated[i] {
			t.Fatalf("truncation must keep the leading values")
		}
	}
}

func TestMergeAbsorbsMismatchedContributors(t *testing.T) {
	t.Parallel()
	merged := domain.Merge(4,
		domain.Mask{true},                      // too short: lands on the last index
		domain.Mask{false, true, false, false, true}, // too long: excess dropped
		nil, // a contributor may produce nothing at all
	)
	want := domain.Mask{false, true, false, true}
	for i := range want {
		if merged[i] != want[i] {
			t.Fatalf("merged[%d] = %v, want %v", i, merged[i], want[i])
		}
	}
}

func TestDetectorConfigValidate(t *testing.T) {
	t.Parallel()
	cfg := domain.DefaultDetectorConfig(5)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}

	bad := domain.DefaultDetectorConfig(5)
	bad.Jitter.WindowMin = -30
	if err := bad.Validate(); err == nil {
		t.Fatalf("negative jitter window must fail validation")
	}

	disabled := domain.DefaultDetectorConfig(5)
	disabled.Jitter.WindowMin = -30
	disabled.Jitter.Enabled = false
	if err := disabled.Validate(); err != nil {
		t.Fatalf("disabled heuristics must not be validated: %v", err)
	}

	noInterval := domain.DefaultDetectorConfig(5)
	noInterval.IntervalMin = 0
	if err := noInterval.Validate(); err == nil {
		t.Fatalf("non-positive interval must fail validation")
	}
}

func TestCombineMergesExtraContributors(t *testing.T) {
	t.Parallel()
	s := flatSeries(20, 120)
	cfg := domain.DetectorConfig{IntervalMin: 5} // built-ins all disabled
	extra := make(domain.Mask, 20)
	extra[7] = true
	combined := domain.Combine(s, cfg, extra)
	if !combined[7] || combined.FlaggedCount() != 1 {
		t.Fatalf("external contributor mask must be merged, got %v", combined)
	}
}
