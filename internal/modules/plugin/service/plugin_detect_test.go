package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cgmlens/internal/modules/plugin/domain"
	"cgmlens/internal/modules/plugin/dto"
	"cgmlens/internal/modules/plugin/service"
)

type fakeStore struct {
	manifests []domain.Manifest
}

func (s fakeStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type fakeHost struct {
	commands []domain.CommandDescriptor
	mask     []bool
}

func (fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return nil }
func (fakeHost) GetMetadata(context.Context, domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: "fake", Version: "1"}, nil
}
func (h fakeHost) ListCommands(context.Context, domain.Manifest) ([]domain.CommandDescriptor, error) {
	return h.commands, nil
}
func (fakeHost) Execute(context.Context, domain.Manifest, domain.ExecuteRequest) (domain.ExecuteResult, error) {
	return domain.ExecuteResult{Stdout: "ok", ExitCode: 0}, nil
}
func (h fakeHost) Detect(context.Context, domain.Manifest, domain.DetectRequest) (domain.DetectResult, error) {
	return domain.DetectResult{Detector: "fake_rule", Mask: h.mask}, nil
}

func TestExecuteRejectsDisabledPlugin(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, false, []domain.Capability{domain.CapabilityCommand})
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{})
	_, err := svc.Execute(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "echo", DataPath: "/tmp", Cwd: "/tmp"})
	if !errors.Is(err, domain.ErrPluginDisabled) {
		t.Fatalf("expected ErrPluginDisabled, got %v", err)
	}
}

func TestDetectRejectsMissingCapability(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityCommand})
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{})
	_, err := svc.Detect(context.Background(), dto.DetectInput{PluginName: manifest.Name, Series: []float64{100, 110}, IntervalMin: 5})
	if !errors.Is(err, domain.ErrCapabilityMissing) {
		t.Fatalf("expected ErrCapabilityMissing, got %v", err)
	}
}

func TestExecuteRejectsUnknownCommand(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityCommand})
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{commands: []domain.CommandDescriptor{{ID: "other", Kind: domain.CommandKindCommand}}})
	_, err := svc.Execute(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "echo", DataPath: "/tmp", Cwd: "/tmp"})
	if !errors.Is(err, domain.ErrCommandNotFound) {
		t.Fatalf("expected ErrCommandNotFound, got %v", err)
	}
}

func TestDetectSuccess(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityDetect})
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{mask: []bool{false, true, false}})
	out, err := svc.Detect(context.Background(), dto.DetectInput{PluginName: manifest.Name, Series: []float64{100, 500, 110}, IntervalMin: 5})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if out.Detector != "fake_rule" {
		t.Fatalf("unexpected detector name %q", out.Detector)
	}
	if len(out.Mask) != 3 || !out.Mask[1] {
		t.Fatalf("unexpected mask %v", out.Mask)
	}
}

func TestDetectAllSkipsNonDetectors(t *testing.T) {
	t.Parallel()
	detector := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityDetect})
	commandOnly := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityCommand})
	commandOnly.Name = "command-only"
	disabled := manifestWithBinary(t, false, []domain.Capability{domain.CapabilityDetect})
	disabled.Name = "disabled"

	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{detector, commandOnly, disabled}}, fakeHost{mask: []bool{true, false}})
	out, err := svc.DetectAll(context.Background(), []float64{500, 100}, 5)
	if err != nil {
		t.Fatalf("detect all: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one detecting plugin, got %d", len(out))
	}
	if out[0].PluginName != detector.Name {
		t.Fatalf("unexpected plugin %q", out[0].PluginName)
	}
}

func manifestWithBinary(t *testing.T, enabled bool, capabilities []domain.Capability) domain.Manifest {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "plugin-bin")
	if err := os.WriteFile(binPath, []byte("binary"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	hash := sha256.Sum256([]byte("binary"))
	return domain.Manifest{
		Name:         "demo",
		Version:      "1.0.0",
		Binary:       binPath,
		SHA256:       hex.EncodeToString(hash[:]),
		Enabled:      enabled,
		Capabilities: capabilities,
	}
}
