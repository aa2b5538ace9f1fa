package usecase_test

import (
	"context"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	metricsout "cgmlens/internal/modules/metrics/adapter/out"
	"cgmlens/internal/modules/metrics/dto"
	"cgmlens/internal/modules/metrics/service"
	"cgmlens/internal/modules/metrics/usecase"
)

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

type fakeUploadSource struct {
	title  string
	series []float64
}

func (f fakeUploadSource) Upload(context.Context, string) (string, []float64, error) {
	return f.title, f.series, nil
}

type fakeMaskSource struct {
	mask   []bool
	called int
}

func (f *fakeMaskSource) Mask(context.Context, string) ([]bool, error) {
	f.called++
	return f.mask, nil
}

func TestComputeWritesReportNote(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	uploads := fakeUploadSource{title: "March Export", series: []float64{60, 100, 200, math.NaN()}}
	masks := &fakeMaskSource{}
	uc := usecase.NewInteractor(service.NewMetricsService(fakeClock{now: now}, uploads, masks, metricsout.NewNoteReportStore(t.TempDir())))

	out, err := uc.Compute(context.Background(), dto.ComputeInput{UploadID: "u1"})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if masks.called != 0 {
		t.Fatalf("mask source must not run without apply-mask")
	}
	if out.LowBound != 70 || out.HighBound != 180 {
		t.Fatalf("expected default bounds, got %v/%v", out.LowBound, out.HighBound)
	}
	third := 1.0 / 3.0
	if math.Abs(out.InRange-third) > 1e-12 || math.Abs(out.BelowRange-third) > 1e-12 || math.Abs(out.AboveRange-third) > 1e-12 {
		t.Fatalf("unexpected fractions: %v %v %v", out.InRange, out.BelowRange, out.AboveRange)
	}
	wantGMI := 3.31 + 0.02392*120
	if math.Abs(out.GMI-wantGMI) > 1e-9 {
		t.Fatalf("unexpected gmi: %v", out.GMI)
	}

	content, err := os.ReadFile(out.ReportPath)
	if err != nil {
		t.Fatalf("read report note: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "<!-- cgmlens:metrics:start -->") || !strings.Contains(text, "GMI") {
		t.Fatalf("managed metrics block missing: %s", text)
	}
}

func TestComputeAppliesMask(t *testing.T) {
	t.Parallel()
	uploads := fakeUploadSource{title: "Masked", series: []float64{60, 100, 200}}
	masks := &fakeMaskSource{mask: []bool{true, false, false}}
	uc := usecase.NewInteractor(service.NewMetricsService(fakeClock{now: time.Now()}, uploads, masks, metricsout.NewNoteReportStore(t.TempDir())))

	out, err := uc.Compute(context.Background(), dto.ComputeInput{UploadID: "u1", ApplyMask: true})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if masks.called != 1 {
		t.Fatalf("expected one mask call, got %d", masks.called)
	}
	if out.Excluded != 1 {
		t.Fatalf("expected one excluded sample, got %d", out.Excluded)
	}
	if out.BelowRange != 0 || out.InRange != 0.5 || out.AboveRange != 0.5 {
		t.Fatalf("masked fractions wrong: %v %v %v", out.BelowRange, out.InRange, out.AboveRange)
	}
}

func TestComputeRejectsInvertedBounds(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewMetricsService(fakeClock{now: time.Now()}, fakeUploadSource{series: []float64{100}}, &fakeMaskSource{}, metricsout.NewNoteReportStore(t.TempDir())))
	if _, err := uc.Compute(context.Background(), dto.ComputeInput{UploadID: "u1", LowBound: 200, HighBound: 80}); err == nil {
		t.Fatalf("expected bounds error")
	}
}
