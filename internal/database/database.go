package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// DB interface defines the methods our database should implement
type DB interface {
	GetImage(ctx context.Context, key string, maxAge time.Duration) (string, bool, error)
	PutImage(ctx context.Context, key, url string) error
	PruneImages(ctx context.Context, maxAge time.Duration) (int64, error)
	Close() error
}

// SQLiteDB implements the DB interface
type SQLiteDB struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error setting busy timeout: %w", err)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	return &SQLiteDB{db: db, now: time.Now}, nil
}

func initializeSchema(db *sql.DB) error {
	schemaBytes, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("error reading schema file: %w", err)
	}

	if _, err := db.Exec(string(schemaBytes)); err != nil {
		return fmt.Errorf("error executing schema: %w", err)
	}

	slog.Debug("Database schema initialized")
	return nil
}

// GetImage returns the cached URL for key if it is younger than maxAge.
// A maxAge of zero disables expiry.
func (s *SQLiteDB) GetImage(ctx context.Context, key string, maxAge time.Duration) (string, bool, error) {
	query := `SELECT url, created_at FROM image_cache WHERE key = ?`

	var url string
	var createdAt int64
	err := s.db.QueryRowContext(ctx, query, key).Scan(&url, &createdAt)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if maxAge > 0 && s.now().Sub(time.Unix(createdAt, 0)) > maxAge {
		return "", false, nil
	}
	return url, true, nil
}

// PutImage stores or refreshes the URL for key
func (s *SQLiteDB) PutImage(ctx context.Context, key, url string) error {
	query := `
		INSERT INTO image_cache (key, url, created_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			url = excluded.url,
			created_at = excluded.created_at
	`

	_, err := s.db.ExecContext(ctx, query, key, url, s.now().Unix())
	return err
}

// PruneImages deletes entries older than maxAge and reports how many went
func (s *SQLiteDB) PruneImages(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-maxAge).Unix()

	res, err := s.db.ExecContext(ctx, `DELETE FROM image_cache WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
