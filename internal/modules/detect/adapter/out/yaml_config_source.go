package out

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cgmlens/internal/modules/detect/domain"
	detectout "cgmlens/internal/modules/detect/port/out"
)

// settingsFile mirrors the optional settings.yaml. Absent fields keep their
// defaults; zero is a meaningful override only where the engine accepts it.
type settingsFile struct {
	Detectors struct {
		LocalVariance struct {
			Enabled   *bool    `yaml:"enabled"`
			WindowMin *float64 `yaml:"window_min"`
			Threshold *float64 `yaml:"threshold"`
		} `yaml:"local_variance"`
		JumpSpike struct {
			Enabled   *bool    `yaml:"enabled"`
			Threshold *float64 `yaml:"threshold"`
		} `yaml:"jump_spike"`
		Jitter struct {
			Enabled      *bool    `yaml:"enabled"`
			WindowMin    *float64 `yaml:"window_min"`
			MinReversals *int     `yaml:"min_reversals"`
		} `yaml:"jitter"`
		Drift struct {
			Enabled       *bool    `yaml:"enabled"`
			DriftHours    *float64 `yaml:"drift_hours"`
			LowThreshold  *float64 `yaml:"low_threshold"`
			LowDurationHr *float64 `yaml:"low_duration_hr"`
		} `yaml:"drift_window"`
		Flatline struct {
			Enabled   *bool    `yaml:"enabled"`
			WindowMin *float64 `yaml:"window_min"`
			Tolerance *float64 `yaml:"tolerance"`
		} `yaml:"dropout_flatline"`
		LongGap struct {
			Enabled  *bool    `yaml:"enabled"`
			GapMin   *float64 `yaml:"gap_min"`
			PriorMin *float64 `yaml:"prior_min"`
		} `yaml:"long_gap"`
	} `yaml:"detectors"`
}

// YAMLConfigSource starts from the full default configuration and overlays
// whatever the settings file provides. A missing file is not an error.
type YAMLConfigSource struct {
	settingsPath string
}

func NewYAMLConfigSource(settingsPath string) detectout.ConfigSource {
	return &YAMLConfigSource{settingsPath: settingsPath}
}

func (c *YAMLConfigSource) DetectorConfig(_ context.Context, intervalMin float64) (domain.DetectorConfig, error) {
	cfg := domain.DefaultDetectorConfig(intervalMin)

	raw, err := os.ReadFile(c.settingsPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return domain.DetectorConfig{}, fmt.Errorf("read settings: %w", err)
	}
	var file settingsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return domain.DetectorConfig{}, fmt.Errorf("parse settings: %w", err)
	}

	d := file.Detectors
	applyBool(d.LocalVariance.Enabled, &cfg.LocalVariance.Enabled)
	applyFloat(d.LocalVariance.WindowMin, &cfg.LocalVariance.WindowMin)
	applyFloat(d.LocalVariance.Threshold, &cfg.LocalVariance.Threshold)

	applyBool(d.JumpSpike.Enabled, &cfg.JumpSpike.Enabled)
	applyFloat(d.JumpSpike.Threshold, &cfg.JumpSpike.Threshold)

	applyBool(d.Jitter.Enabled, &cfg.Jitter.Enabled)
	applyFloat(d.Jitter.WindowMin, &cfg.Jitter.WindowMin)
	applyInt(d.Jitter.MinReversals, &cfg.Jitter.MinReversals)

	applyBool(d.Drift.Enabled, &cfg.Drift.Enabled)
	applyFloat(d.Drift.DriftHours, &cfg.Drift.DriftHours)
	applyFloat(d.Drift.LowThreshold, &cfg.Drift.LowThreshold)
	applyFloat(d.Drift.LowDurationHr, &cfg.Drift.LowDurationHr)

	applyBool(d.Flatline.Enabled, &cfg.Flatline.Enabled)
	applyFloat(d.Flatline.WindowMin, &cfg.Flatline.WindowMin)
	applyFloat(d.Flatline.Tolerance, &cfg.Flatline.Tolerance)

	applyBool(d.LongGap.Enabled, &cfg.LongGap.Enabled)
	applyFloat(d.LongGap.GapMin, &cfg.LongGap.GapMin)
	applyFloat(d.LongGap.PriorMin, &cfg.LongGap.PriorMin)

	if err := cfg.Validate(); err != nil {
		return domain.DetectorConfig{}, fmt.Errorf("settings: %w", err)
	}
	return cfg, nil
}

func applyBool(src *bool, dst *bool) {
	if src != nil {
		*dst = *src
	}
}

func applyFloat(src *float64, dst *float64) {
	if src != nil {
		*dst = *src
	}
}

func applyInt(src *int, dst *int) {
	if src != nil {
		*dst = *src
	}
}
