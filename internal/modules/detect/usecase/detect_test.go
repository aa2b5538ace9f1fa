package usecase_test

import (
	"context"
	"math"
	"testing"

	"cgmlens/internal/modules/detect/domain"
	"cgmlens/internal/modules/detect/dto"
	detectout "cgmlens/internal/modules/detect/port/out"
	"cgmlens/internal/modules/detect/service"
	"cgmlens/internal/modules/detect/usecase"
)

type fakeSeriesSource struct {
	series      domain.Series
	intervalMin float64
}

func (f fakeSeriesSource) Load(context.Context, string) (domain.Series, float64, error) {
	return f.series, f.intervalMin, nil
}

type fakeConfigSource struct {
	cfg domain.DetectorConfig
}

func (f fakeConfigSource) DetectorConfig(context.Context, float64) (domain.DetectorConfig, error) {
	return f.cfg, nil
}

type fakeExternal struct {
	masks  []detectout.NamedMask
	called int
}

func (f *fakeExternal) Masks(context.Context, domain.Series, float64) ([]detectout.NamedMask, error) {
	f.called++
	return f.masks, nil
}

type fakeProjector struct {
	saved []domain.Analysis
}

func (f *fakeProjector) Reset(context.Context) error { return nil }

func (f *fakeProjector) SaveAnalysis(_ context.Context, analysis domain.Analysis) error {
	f.saved = append(f.saved, analysis)
	return nil
}

func jumpOnlyConfig() domain.DetectorConfig {
	cfg := domain.DefaultDetectorConfig(5)
	cfg.LocalVariance.Enabled = false
	cfg.Jitter.Enabled = false
	cfg.Drift.Enabled = false
	cfg.Flatline.Enabled = false
	cfg.LongGap.Enabled = false
	return cfg
}

func TestAnalyzeCombinesBuiltinsAndPersists(t *testing.T) {
	t.Parallel()
	projector := &fakeProjector{}
	svc := service.NewDetectService(
		fakeSeriesSource{series: domain.Series{100, 104, 130, 132}, intervalMin: 5},
		fakeConfigSource{cfg: jumpOnlyConfig()},
		nil,
		projector,
	)
	uc := usecase.NewInteractor(svc)

	out, err := uc.Analyze(context.Background(), dto.AnalyzeInput{UploadID: "u1"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if out.Points != 4 {
		t.Fatalf("expected 4 points, got %d", out.Points)
	}
	if out.Flagged != 1 || !out.Combined[2] {
		t.Fatalf("expected the 104->130 jump flagged at index 2, got %v", out.Combined)
	}
	if len(out.Detectors) != 1 || out.Detectors[0].Name != "jump_spike" {
		t.Fatalf("unexpected detectors: %+v", out.Detectors)
	}
	if len(out.Detectors[0].Segments) != 1 || out.Detectors[0].Segments[0].Start != 2 {
		t.Fatalf("unexpected segments: %+v", out.Detectors[0].Segments)
	}
	if len(projector.saved) != 1 || projector.saved[0].UploadID != "u1" {
		t.Fatalf("expected persisted analysis, got %+v", projector.saved)
	}
}

func TestAnalyzeMergesPluginMasksWhenRequested(t *testing.T) {
	t.Parallel()
	external := &fakeExternal{masks: []detectout.NamedMask{
		{Name: "absolute_bounds", Mask: domain.Mask{true, false, false, false}},
	}}
	svc := service.NewDetectService(
		fakeSeriesSource{series: domain.Series{500, 104, 106, 108}, intervalMin: 5},
		fakeConfigSource{cfg: jumpOnlyConfig()},
		external,
		&fakeProjector{},
	)
	uc := usecase.NewInteractor(svc)

	out, err := uc.Analyze(context.Background(), dto.AnalyzeInput{UploadID: "u1", WithPlugins: true})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if external.called != 1 {
		t.Fatalf("expected one external call, got %d", external.called)
	}
	if !out.Combined[0] {
		t.Fatalf("expected plugin flag at index 0, got %v", out.Combined)
	}
	// 500 -> 104 also trips the built-in jump rule
	if !out.Combined[1] {
		t.Fatalf("expected jump flag at index 1, got %v", out.Combined)
	}
	if len(out.Detectors) != 2 {
		t.Fatalf("expected builtin plus plugin outcome, got %+v", out.Detectors)
	}

	skipped, err := uc.Analyze(context.Background(), dto.AnalyzeInput{UploadID: "u1"})
	if err != nil {
		t.Fatalf("analyze without plugins: %v", err)
	}
	if external.called != 1 {
		t.Fatalf("plugins must not run unless requested")
	}
	if skipped.Combined[0] {
		t.Fatalf("index 0 should be clean without the plugin, got %v", skipped.Combined)
	}
}

func TestAnalyzeReconcilesShortPluginMask(t *testing.T) {
	t.Parallel()
	external := &fakeExternal{masks: []detectout.NamedMask{
		{Name: "short", Mask: domain.Mask{true}},
	}}
	svc := service.NewDetectService(
		fakeSeriesSource{series: domain.Series{100, 101, 102, 103}, intervalMin: 5},
		fakeConfigSource{cfg: jumpOnlyConfig()},
		external,
		&fakeProjector{},
	)
	uc := usecase.NewInteractor(svc)

	out, err := uc.Analyze(context.Background(), dto.AnalyzeInput{UploadID: "u1", WithPlugins: true})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	// a short mask pads at the start, so its single flag lands on the last index
	want := []bool{false, false, false, true}
	for i := range want {
		if out.Combined[i] != want[i] {
			t.Fatalf("combined[%d]: want %v got %v", i, want[i], out.Combined[i])
		}
	}
}

func TestAnalyzeRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	cfg := jumpOnlyConfig()
	cfg.JumpSpike.Threshold = -1
	svc := service.NewDetectService(
		fakeSeriesSource{series: domain.Series{100, 104}, intervalMin: 5},
		fakeConfigSource{cfg: cfg},
		nil,
		&fakeProjector{},
	)
	uc := usecase.NewInteractor(svc)
	if _, err := uc.Analyze(context.Background(), dto.AnalyzeInput{UploadID: "u1"}); err == nil {
		t.Fatalf("expected config validation error")
	}
}

func TestAnalyzeNaNSeriesStillSucceeds(t *testing.T) {
	t.Parallel()
	cfg := domain.DefaultDetectorConfig(5)
	svc := service.NewDetectService(
		fakeSeriesSource{series: domain.Series{math.NaN(), math.NaN(), math.NaN()}, intervalMin: 5},
		fakeConfigSource{cfg: cfg},
		nil,
		&fakeProjector{},
	)
	uc := usecase.NewInteractor(svc)
	out, err := uc.Analyze(context.Background(), dto.AnalyzeInput{UploadID: "u1"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	// the dropout rule flags every non-finite index
	if out.Flagged != 3 {
		t.Fatalf("expected all 3 indices flagged, got %d", out.Flagged)
	}
}
