package usecase_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"cgmlens/internal/modules/plugin/domain"
	"cgmlens/internal/modules/plugin/dto"
	"cgmlens/internal/modules/plugin/service"
	"cgmlens/internal/modules/plugin/usecase"
)

type fakeManifestStore struct {
	manifests []domain.Manifest
}

func (s fakeManifestStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type fakeHost struct{}

func (fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return nil }
func (fakeHost) GetMetadata(context.Context, domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: "p1", Version: "1"}, nil
}
func (fakeHost) ListCommands(context.Context, domain.Manifest) ([]domain.CommandDescriptor, error) {
	return []domain.CommandDescriptor{
		{ID: "echo", Kind: domain.CommandKindCommand, TimeoutMS: 1000},
		{ID: "absolute-bounds", Kind: domain.CommandKindDetect, TimeoutMS: 1200},
	}, nil
}
func (fakeHost) Execute(context.Context, domain.Manifest, domain.ExecuteRequest) (domain.ExecuteResult, error) {
	return domain.ExecuteResult{Stdout: "ok", OutputJSON: `{"ok":true}`, ExitCode: 0}, nil
}
func (fakeHost) Detect(_ context.Context, _ domain.Manifest, in domain.DetectRequest) (domain.DetectResult, error) {
	mask := make([]bool, len(in.Series))
	for i, v := range in.Series {
		if v > 400 {
			mask[i] = true
		}
	}
	return domain.DetectResult{Detector: "absolute_bounds", Mask: mask}, nil
}

func TestUsecaseListDoctorAndOperations(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t)
	uc := usecase.NewInteractor(service.NewPluginService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, fakeHost{}))

	list, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "p1" {
		t.Fatalf("unexpected list: %+v", list)
	}

	docs, err := uc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("unexpected doctor result: %+v", docs)
	}

	commands, err := uc.ListCommands(context.Background(), "p1")
	if err != nil {
		t.Fatalf("list commands: %v", err)
	}
	if len(commands) != 2 {
		t.Fatalf("unexpected command count: %d", len(commands))
	}

	execOut, err := uc.Execute(context.Background(), dto.ExecuteInput{PluginName: "p1", CommandID: "echo", DataPath: t.TempDir(), Cwd: t.TempDir()})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if execOut.ExitCode != 0 {
		t.Fatalf("unexpected execute result: %+v", execOut)
	}

	detectOut, err := uc.Detect(context.Background(), dto.DetectInput{PluginName: "p1", Series: []float64{120, 480, 130}, IntervalMin: 5})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(detectOut.Mask) != 3 || !detectOut.Mask[1] || detectOut.Mask[0] {
		t.Fatalf("unexpected detect mask: %v", detectOut.Mask)
	}

	all, err := uc.DetectAll(context.Background(), []float64{120, 480}, 5)
	if err != nil {
		t.Fatalf("detect all: %v", err)
	}
	if len(all) != 1 || all[0].Detector != "absolute_bounds" {
		t.Fatalf("unexpected detect all result: %+v", all)
	}
}

func manifestWithBinary(t *testing.T) domain.Manifest {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "plugin-bin")
	if err := os.WriteFile(binPath, []byte("binary"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	hash := sha256.Sum256([]byte("binary"))
	return domain.Manifest{
		Name:         "p1",
		Version:      "1",
		Binary:       binPath,
		SHA256:       hex.EncodeToString(hash[:]),
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityCommand, domain.CapabilityDetect},
	}
}
