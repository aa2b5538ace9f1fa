package domain_test

import (
	"math"
	"testing"

	"cgmlens/internal/modules/detect/domain"
)

func TestWindowSpecPoints(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		window   float64
		interval float64
		want     int
	}{
		{"thirty minutes at five", 30, 5, 6},
		{"full day at five", 1440, 5, 288},
		{"rounds to nearest", 7, 5, 1},
		{"rounds up past half", 8, 5, 2},
		{"never below one", 1, 5, 1},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := domain.WindowSpec{WindowMin: tc.window, IntervalMin: tc.interval}.Points()
			if got != tc.want {
				t.Fatalf("points for %v min @ %v min = %d, want %d", tc.window, tc.interval, got, tc.want)
			}
		})
	}
}

func TestWindowSpecValidateRejectsNonPositive(t *testing.T) {
	t.Parallel()
	if err := (domain.WindowSpec{WindowMin: 0, IntervalMin: 5}).Validate(); err == nil {
		t.Fatalf("zero window must not validate")
	}
	if err := (domain.WindowSpec{WindowMin: 30, IntervalMin: -1}).Validate(); err == nil {
		t.Fatalf("negative interval must not validate")
	}
	if err := (domain.WindowSpec{WindowMin: 30, IntervalMin: 5}).Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
}

func TestFindRuns(t *testing.T) {
	t.Parallel()
	flags := []bool{true, true, false, true, false, false, true}
	runs := domain.FindRuns(len(flags), func(i int) bool { return flags[i] })
	want := []domain.Run{{Start: 0, End: 2}, {Start: 3, End: 4}, {Start: 6, End: 7}}
	if len(runs) != len(want) {
		t.Fatalf("got %d runs, want %d", len(runs), len(want))
	}
	for i, run := range runs {
		if run != want[i] {
			t.Fatalf("run %d = %+v, want %+v", i, run, want[i])
		}
	}
	if n := domain.FindRuns(0, func(int) bool { return true }); len(n) != 0 {
		t.Fatalf("empty input must yield no runs")
	}
}

func TestMaskRunsAndCount(t *testing.T) {
	t.Parallel()
	mask := domain.Mask{false, true, true, false, true}
	if got := mask.FlaggedCount(); got != 3 {
		t.Fatalf("flagged count = %d, want 3", got)
	}
	runs := mask.Runs()
	if len(runs) != 2 || runs[0] != (domain.Run{Start: 1, End: 3}) || runs[1] != (domain.Run{Start: 4, End: 5}) {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func nan() float64 { return math.NaN() }
