package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"cgmlens/internal/modules/session/domain"
	sessionout "cgmlens/internal/modules/session/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteSessionProjector struct {
	db *sql.DB
}

func NewSQLiteSessionProjector(dbPath string) (sessionout.SessionProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteSessionProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteSessionProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sensor_sessions (
  upload_id TEXT NOT NULL,
  session_id TEXT NOT NULL,
  device_id TEXT,
  start_idx INTEGER NOT NULL,
  end_idx INTEGER NOT NULL,
  readings INTEGER NOT NULL,
  duration_day REAL NOT NULL,
  max_days REAL,
  max_known INTEGER NOT NULL,
  ended_early INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_upload ON sensor_sessions(upload_id);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (s *SQLiteSessionProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sensor_sessions`); err != nil {
		return fmt.Errorf("reset sessions: %w", err)
	}
	return nil
}

// SaveSessions replaces any previously projected sessions of the upload.
func (s *SQLiteSessionProjector) SaveSessions(ctx context.Context, uploadID string, sessions []domain.SensorSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sessions tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sensor_sessions WHERE upload_id = ?`, uploadID); err != nil {
		return fmt.Errorf("clear previous sessions: %w", err)
	}
	const stmt = `
INSERT INTO sensor_sessions (upload_id, session_id, device_id, start_idx, end_idx, readings, duration_day, max_days, max_known, ended_early)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, session := range sessions {
		if _, err := tx.ExecContext(ctx, stmt,
			uploadID,
			session.SessionID,
			session.DeviceID,
			session.Start,
			session.End,
			session.Readings,
			session.DurationDay,
			session.MaxDays,
			boolToInt(session.MaxKnown),
			boolToInt(session.EndedEarly),
		); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sessions: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
