package persist

import (
	"context"
	"database/sql"
	_ "embed"
	stderrors "errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/matzehuels/cardspace/pkg/errors"
)

//go:embed schema.sql
var schema string

// SQLite stores each key as a row of the documents table.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "sqlite backend needs a path")
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "sqlite: open %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "sqlite: init schema")
	}
	return &SQLite{db: db}, nil
}

// Name returns "sqlite".
func (s *SQLite) Name() string { return "sqlite" }

// Get reads the row for key.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM documents WHERE key = ?", key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, backendErr(s.Name(), classifySQLite(err), "select")
	}
	return data, true, nil
}

// Set upserts the row for key.
func (s *SQLite) Set(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC(),
	)
	return backendErr(s.Name(), classifySQLite(err), "upsert")
}

// Delete removes the row for key.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE key = ?", key)
	return backendErr(s.Name(), classifySQLite(err), "delete")
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// classifySQLite marks lock contention retryable.
func classifySQLite(err error) error {
	var se sqlite3.Error
	if stderrors.As(err, &se) && (se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked) {
		return Retryable(err)
	}
	return err
}

var _ Backend = (*SQLite)(nil)
