package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/marketdesk/server/internal/domain"
)

// SQLiteStore persists demo-session counters in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) demo.db inside dir.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}

	dsn := filepath.Join(dir, "demo.db") + "?" + url.Values{
		"_pragma": []string{
			"busy_timeout(5000)",
			"journal_mode(WAL)",
		},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, errors.Join(err, closeErr)
		}
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS demo_usage (
		session_id TEXT NOT NULL,
		feature TEXT NOT NULL,
		used INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (session_id, feature)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("storage: init schema: %w", err)
	}
	return nil
}

// LoadCounters returns the stored counters, all zero when the session has none yet.
func (s *SQLiteStore) LoadCounters(ctx context.Context, sessionID string) (domain.UsageCounters, error) {
	if !sessionIDPattern.MatchString(sessionID) {
		return nil, errors.New("storage: invalid session id")
	}
	rows, err := s.db.QueryContext(ctx, `SELECT feature, used FROM demo_usage WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("storage: query session: %w", err)
	}
	defer rows.Close()

	counters := domain.NewUsageCounters()
	for rows.Next() {
		var feature string
		var used int
		if err := rows.Scan(&feature, &used); err != nil {
			return nil, fmt.Errorf("storage: scan session: %w", err)
		}
		counters[domain.FeatureKind(feature)] = used
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate session: %w", err)
	}
	return counters.Normalize(), nil
}

// IncrementCounter adds one use of feature in a single upsert.
func (s *SQLiteStore) IncrementCounter(ctx context.Context, sessionID string, feature domain.FeatureKind) error {
	if !sessionIDPattern.MatchString(sessionID) {
		return errors.New("storage: invalid session id")
	}
	if !feature.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFeature, feature)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO demo_usage (session_id, feature, used) VALUES (?, ?, 1)
		ON CONFLICT(session_id, feature) DO UPDATE SET used = demo_usage.used + 1`,
		sessionID, string(feature))
	if err != nil {
		return fmt.Errorf("storage: increment %s: %w", feature, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ domain.LocalStateStore = (*SQLiteStore)(nil)
