package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cgmlens/internal/modules/readings/domain"
	readingsout "cgmlens/internal/modules/readings/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteUploadProjector struct {
	db *sql.DB
}

func NewSQLiteUploadProjector(dbPath string) (readingsout.UploadIndexProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteUploadProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteUploadProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS uploads (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  slug TEXT NOT NULL,
  device_id TEXT,
  interval_min REAL NOT NULL,
  slot_count INTEGER NOT NULL,
  reading_count INTEGER NOT NULL,
  start_at TEXT,
  end_at TEXT,
  added_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create uploads table: %w", err)
	}
	return nil
}

func (s *SQLiteUploadProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM uploads`); err != nil {
		return fmt.Errorf("reset uploads: %w", err)
	}
	return nil
}

func (s *SQLiteUploadProjector) UpsertUpload(ctx context.Context, upload domain.Upload) error {
	const stmt = `
INSERT INTO uploads (id, title, slug, device_id, interval_min, slot_count, reading_count, start_at, end_at, added_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  slug=excluded.slug,
  device_id=excluded.device_id,
  interval_min=excluded.interval_min,
  slot_count=excluded.slot_count,
  reading_count=excluded.reading_count,
  start_at=excluded.start_at,
  end_at=excluded.end_at,
  added_at=excluded.added_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		upload.ID,
		upload.Title,
		upload.Slug,
		upload.DeviceID,
		upload.IntervalMin,
		upload.Count,
		upload.Readings,
		upload.StartAt.Format(time.RFC3339),
		upload.EndAt.Format(time.RFC3339),
		upload.AddedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert upload: %w", err)
	}
	return nil
}
