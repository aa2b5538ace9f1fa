package out

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"cgmlens/internal/modules/readings/domain"
	readingsout "cgmlens/internal/modules/readings/port/out"
	apperrors "cgmlens/internal/platform/errors"
	"cgmlens/internal/platform/markdown"
)

const (
	managedStatsStart = "<!-- cgmlens:stats:start -->"
	managedStatsEnd   = "<!-- cgmlens:stats:end -->"
)

// NoteUploadStore keeps one markdown note plus one normalized sample CSV per
// upload under <data>/uploads. The pair is the durable store; everything in
// sqlite can be rebuilt from it.
type NoteUploadStore struct {
	dataPath string
}

func NewNoteUploadStore(dataPath string) readingsout.UploadStore {
	return &NoteUploadStore{dataPath: dataPath}
}

func (s *NoteUploadStore) Save(_ context.Context, document domain.UploadDocument) (string, error) {
	upload := document.Upload
	dir := filepath.Join(s.dataPath, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	samplesPath := filepath.Join(dir, upload.Slug+".samples.csv")
	if err := writeSamples(samplesPath, document.Samples); err != nil {
		return "", err
	}

	notePath := filepath.Join(dir, upload.Slug+".md")
	body := markdown.ReplaceManagedBlock("", managedStatsStart, managedStatsEnd, statsBlock(upload))
	rendered, err := markdown.RenderFrontmatter(toFrontmatter(upload), body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(notePath, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write upload note: %w", err)
	}
	return notePath, nil
}

func (s *NoteUploadStore) FindByID(ctx context.Context, id string) (domain.Upload, error) {
	uploads, err := s.List(ctx)
	if err != nil {
		return domain.Upload{}, err
	}
	for _, upload := range uploads {
		if upload.ID == id {
			return upload, nil
		}
	}
	return domain.Upload{}, apperrors.ErrNotFound
}

func (s *NoteUploadStore) List(_ context.Context) ([]domain.Upload, error) {
	glob := filepath.Join(s.dataPath, "uploads", "*.md")
	matches, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("glob upload notes: %w", err)
	}
	sort.Strings(matches)

	out := make([]domain.Upload, 0, len(matches))
	for _, path := range matches {
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}
		meta, _, splitErr := markdown.SplitFrontmatter(string(content))
		if splitErr != nil {
			return nil, fmt.Errorf("parse %s: %w", path, splitErr)
		}
		upload, convErr := fromFrontmatter(meta, path)
		if convErr != nil {
			return nil, fmt.Errorf("decode upload %s: %w", path, convErr)
		}
		out = append(out, upload)
	}
	return out, nil
}

func (s *NoteUploadStore) LoadSamples(_ context.Context, upload domain.Upload) ([]domain.Sample, error) {
	path := filepath.Join(s.dataPath, "uploads", upload.Slug+".samples.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open samples for %s: %w", upload.ID, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read samples for %s: %w", upload.ID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	samples := make([]domain.Sample, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 5 {
			return nil, fmt.Errorf("samples for %s: row %d is short", upload.ID, i+2)
		}
		at, parseErr := time.Parse(time.RFC3339, row[1])
		if parseErr != nil {
			return nil, fmt.Errorf("samples for %s row %d: %w", upload.ID, i+2, parseErr)
		}
		mgdl := math.NaN()
		if row[2] != "" {
			mgdl, parseErr = strconv.ParseFloat(row[2], 64)
			if parseErr != nil {
				return nil, fmt.Errorf("samples for %s row %d: %w", upload.ID, i+2, parseErr)
			}
		}
		samples = append(samples, domain.Sample{
			Index:     i,
			At:        at,
			MgdL:      mgdl,
			SessionID: row[3],
			DeviceID:  row[4],
		})
	}
	return samples, nil
}

func writeSamples(path string, samples []domain.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sample file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"index", "at", "mgdl", "session_id", "device_id"}); err != nil {
		return fmt.Errorf("write sample header: %w", err)
	}
	for _, sample := range samples {
		mgdl := ""
		if sample.Finite() {
			mgdl = strconv.FormatFloat(sample.MgdL, 'f', -1, 64)
		}
		record := []string{
			strconv.Itoa(sample.Index),
			sample.At.Format(time.RFC3339),
			mgdl,
			sample.SessionID,
			sample.DeviceID,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write sample row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func statsBlock(upload domain.Upload) string {
	lines := []string{
		fmt.Sprintf("- Slots: %d", upload.Count),
		fmt.Sprintf("- Readings: %d", upload.Readings),
		fmt.Sprintf("- Span: %s — %s", upload.StartAt.Format(time.RFC3339), upload.EndAt.Format(time.RFC3339)),
	}
	return strings.Join(lines, "\n")
}

func toFrontmatter(upload domain.Upload) map[string]any {
	return map[string]any{
		"schema_version": domain.SchemaVersion,
		"id":             upload.ID,
		"title":          upload.Title,
		"device_id":      upload.DeviceID,
		"interval_min":   upload.IntervalMin,
		"count":          upload.Count,
		"readings":       upload.Readings,
		"start_at":       upload.StartAt.Format(time.RFC3339),
		"end_at":         upload.EndAt.Format(time.RFC3339),
		"added_at":       upload.AddedAt.Format(time.RFC3339),
		"source_path":    upload.SourcePath,
	}
}

func fromFrontmatter(meta map[string]any, notePath string) (domain.Upload, error) {
	upload := domain.Upload{
		ID:          asString(meta["id"]),
		Title:       asString(meta["title"]),
		DeviceID:    asString(meta["device_id"]),
		IntervalMin: asFloat(meta["interval_min"]),
		Count:       int(asFloat(meta["count"])),
		Readings:    int(asFloat(meta["readings"])),
		SourcePath:  asString(meta["source_path"]),
		NotePath:    notePath,
	}
	upload.Slug = strings.TrimSuffix(filepath.Base(notePath), ".md")
	for field, target := range map[string]*time.Time{
		"start_at": &upload.StartAt,
		"end_at":   &upload.EndAt,
		"added_at": &upload.AddedAt,
	} {
		raw := asString(meta[field])
		if raw == "" {
			continue
		}
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.Upload{}, fmt.Errorf("field %s: %w", field, err)
		}
		*target = at
	}
	if err := upload.Validate(); err != nil {
		return domain.Upload{}, err
	}
	return upload, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case int:
		return float64(value)
	default:
		return 0
	}
}
