package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cgmlens/internal/modules/metrics/domain"
	metricsout "cgmlens/internal/modules/metrics/port/out"
	"cgmlens/internal/platform/markdown"
)

const (
	managedMetricsStart = "<!-- cgmlens:metrics:start -->"
	managedMetricsEnd   = "<!-- cgmlens:metrics:end -->"
)

type NoteReportStore struct {
	dataPath string
}

func NewNoteReportStore(dataPath string) metricsout.ReportStore {
	return &NoteReportStore{dataPath: dataPath}
}

func (s *NoteReportStore) Save(_ context.Context, report domain.Report) (string, error) {
	date := report.CreatedAt
	dir := filepath.Join(s.dataPath, "reports", date.Format("2006"), date.Format("01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("02-150405"), report.Slug)
	path := filepath.Join(dir, name)

	meta := map[string]any{
		"upload_id":    report.UploadID,
		"upload_title": report.UploadTitle,
		"low_bound":    report.LowBound,
		"high_bound":   report.HighBound,
		"mask_applied": report.MaskApplied,
		"points":       report.Points,
		"excluded":     report.Excluded,
		"created_at":   report.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	body := markdown.ReplaceManagedBlock(
		fmt.Sprintf("# Metrics for %s\n", report.UploadTitle),
		managedMetricsStart, managedMetricsEnd, metricsBlock(report),
	)
	rendered, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write report note: %w", err)
	}
	return path, nil
}

func metricsBlock(report domain.Report) string {
	return fmt.Sprintf(
		"| Metric | Value |\n|---|---|\n"+
			"| Time in range | %.1f%% |\n"+
			"| Time below range | %.1f%% |\n"+
			"| Time above range | %.1f%% |\n"+
			"| GMI | %.2f%% |\n"+
			"| Mean | %.1f mg/dL |\n"+
			"| SD | %.1f mg/dL |\n"+
			"| CV | %.3f |\n"+
			"| Median | %.1f mg/dL |\n"+
			"| Min | %.1f mg/dL |\n"+
			"| Max | %.1f mg/dL |",
		report.Fractions.InRange*100,
		report.Fractions.BelowRange*100,
		report.Fractions.AboveRange*100,
		report.GMI,
		report.Summary.Mean,
		report.Summary.SD,
		report.Summary.CV,
		report.Summary.Median,
		report.Summary.Min,
		report.Summary.Max,
	)
}
