package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// SQLiteBackend stores each blob as a row in a key/value table.
type SQLiteBackend struct {
	db     *sql.DB
	logger *zerolog.Logger
}

// NewSQLiteBackend opens (creating if needed) the schedule database at path.
func NewSQLiteBackend(path string, logger *zerolog.Logger) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode and a busy timeout; the API layer may write concurrently.
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS blobs (
			key        TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Schedule database initialized")
	return &SQLiteBackend{db: db, logger: logger}, nil
}

// Read returns the payload stored under key, or ErrNotFound.
func (b *SQLiteBackend) Read(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := b.db.QueryRowContext(ctx,
		"SELECT payload FROM blobs WHERE key = ?", key,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

// Write upserts the payload stored under key.
func (b *SQLiteBackend) Write(ctx context.Context, key string, data []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO blobs (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		key, string(data), time.Now(),
	)
	return err
}

// Ping checks the underlying connection.
func (b *SQLiteBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
