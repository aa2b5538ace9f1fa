package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"cgmlens/internal/modules/detect/domain"
	detectout "cgmlens/internal/modules/detect/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteAnalysisProjector struct {
	db *sql.DB
}

func NewSQLiteAnalysisProjector(dbPath string) (detectout.AnalysisProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteAnalysisProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteAnalysisProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS analyses (
  upload_id TEXT PRIMARY KEY,
  points INTEGER NOT NULL,
  flagged INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS flagged_segments (
  upload_id TEXT NOT NULL,
  detector TEXT NOT NULL,
  start_idx INTEGER NOT NULL,
  end_idx INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_segments_upload ON flagged_segments(upload_id);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create analysis tables: %w", err)
	}
	return nil
}

func (s *SQLiteAnalysisProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analyses`); err != nil {
		return fmt.Errorf("reset analyses: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM flagged_segments`); err != nil {
		return fmt.Errorf("reset flagged segments: %w", err)
	}
	return nil
}

// SaveAnalysis replaces any previous analysis of the same upload.
func (s *SQLiteAnalysisProjector) SaveAnalysis(ctx context.Context, analysis domain.Analysis) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin analysis tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM flagged_segments WHERE upload_id = ?`, analysis.UploadID); err != nil {
		return fmt.Errorf("clear previous segments: %w", err)
	}
	const upsert = `
INSERT INTO analyses (upload_id, points, flagged)
VALUES (?, ?, ?)
ON CONFLICT(upload_id) DO UPDATE SET
  points=excluded.points,
  flagged=excluded.flagged;
`
	if _, err := tx.ExecContext(ctx, upsert, analysis.UploadID, analysis.Points, analysis.Combined.FlaggedCount()); err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	const insertSegment = `INSERT INTO flagged_segments (upload_id, detector, start_idx, end_idx) VALUES (?, ?, ?, ?)`
	for _, outcome := range analysis.Outcomes {
		for _, run := range outcome.Mask.Runs() {
			if _, err := tx.ExecContext(ctx, insertSegment, analysis.UploadID, outcome.Name, run.Start, run.End); err != nil {
				return fmt.Errorf("insert segment: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit analysis: %w", err)
	}
	return nil
}
