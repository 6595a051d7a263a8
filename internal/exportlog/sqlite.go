package exportlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists the export trail to a sqlite database so the audit
// history survives restarts of the tool.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the audit database at dbPath.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	// WAL mode keeps concurrent readers from blocking the single writer.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open export log database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping export log database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS exports (
		id         TEXT PRIMARY KEY,
		format     TEXT NOT NULL,
		path       TEXT NOT NULL,
		detail     TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize export log schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Append(format, path, detail string) (Entry, error) {
	if format == "" {
		return Entry{}, fmt.Errorf("export format must not be empty")
	}

	e := Entry{
		ID:        uuid.NewString(),
		Format:    format,
		Path:      path,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO exports (id, format, path, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Format, e.Path, e.Detail, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record export: %w", err)
	}
	return e, nil
}

func (s *SQLiteStore) List() ([]Entry, error) {
	rows, err := s.db.Query(`SELECT id, format, path, detail, created_at FROM exports ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Format, &e.Path, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Len() int {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM exports`).Scan(&n); err != nil {
		return 0
	}
	return n
}

var _ Store = (*SQLiteStore)(nil)
