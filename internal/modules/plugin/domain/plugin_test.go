package domain_test

import (
	"testing"

	"cgmlens/internal/modules/plugin/domain"
)

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name      string
		manifest  domain.Manifest
		shouldErr bool
	}{
		{name: "valid", manifest: domain.Manifest{Name: "p", Version: "1", Binary: "/tmp/p", SHA256: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Enabled: true, Capabilities: []domain.Capability{domain.CapabilityDetect}}, shouldErr: false},
		{name: "missing name", manifest: domain.Manifest{Version: "1", Binary: "/tmp/p", SHA256: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Enabled: true, Capabilities: []domain.Capability{domain.CapabilityCommand}}, shouldErr: true},
		{name: "missing version", manifest: domain.Manifest{Name: "p", Binary: "/tmp/p", SHA256: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Enabled: true, Capabilities: []domain.Capability{domain.CapabilityCommand}}, shouldErr: true},
		{name: "missing binary", manifest: domain.Manifest{Name: "p", Version: "1", SHA256: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Enabled: true, Capabilities: []domain.Capability{domain.CapabilityCommand}}, shouldErr: true},
		{name: "missing sha", manifest: domain.Manifest{Name: "p", Version: "1", Binary: "/tmp/p", Enabled: true, Capabilities: []domain.Capability{domain.CapabilityCommand}}, shouldErr: true},
		{name: "invalid capability", manifest: domain.Manifest{Name: "p", Version: "1", Binary: "/tmp/p", SHA256: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Enabled: true, Capabilities: []domain.Capability{"invalid"}}, shouldErr: true},
		{name: "duplicate capability", manifest: domain.Manifest{Name: "p", Version: "1", Binary: "/tmp/p", SHA256: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Enabled: true, Capabilities: []domain.Capability{domain.CapabilityDetect, domain.CapabilityDetect}}, shouldErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.manifest.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestCapabilityAndKindValidation(t *testing.T) {
	t.Parallel()
	if err := domain.CapabilityDetect.Validate(); err != nil {
		t.Fatalf("validate capability: %v", err)
	}
	if err := domain.Capability("invalid").Validate(); err == nil {
		t.Fatalf("expected invalid capability error")
	}
	if err := domain.CommandKindDetect.Validate(); err != nil {
		t.Fatalf("validate kind: %v", err)
	}
	if err := domain.CommandKind("bad").Validate(); err == nil {
		t.Fatalf("expected invalid kind error")
	}
}

func TestDescriptorContextAndDetectValidation(t *testing.T) {
	t.Parallel()
	manifest := domain.Manifest{
		Name:         "p",
		Version:      "1",
		Binary:       "/tmp/p",
		SHA256:       "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityCommand},
	}
	if !manifest.HasCapability(domain.CapabilityCommand) {
		t.Fatalf("expected capability to exist")
	}
	if manifest.HasCapability(domain.CapabilityDetect) {
		t.Fatalf("did not expect detect capability")
	}
	if err := (domain.CommandDescriptor{ID: "cmd", Kind: domain.CommandKindCommand}).Validate(); err != nil {
		t.Fatalf("descriptor validate: %v", err)
	}
	if err := (domain.ExecuteContext{DataPath: "/tmp", Cwd: "/tmp"}).Validate(); err != nil {
		t.Fatalf("context validate: %v", err)
	}
	if err := (domain.ExecuteRequest{CommandID: "cmd", Context: domain.ExecuteContext{DataPath: "/tmp", Cwd: "/tmp"}}).Validate(); err != nil {
		t.Fatalf("request validate: %v", err)
	}
	if err := (domain.DetectRequest{Series: []float64{100, 105}, IntervalMin: 5}).Validate(); err != nil {
		t.Fatalf("detect validate: %v", err)
	}
	if err := (domain.DetectRequest{Series: nil, IntervalMin: 5}).Validate(); err == nil {
		t.Fatalf("expected empty series error")
	}
	if err := (domain.DetectRequest{Series: []float64{100}, IntervalMin: 0}).Validate(); err == nil {
		t.Fatalf("expected interval error")
	}
}
