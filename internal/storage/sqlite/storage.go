package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/storage"
	"github.com/mcoot/bananamath/internal/storage/sqlite/migrations"
)

// Storage is a SQLite-backed implementation of the storage interface.
// Locks are held in-process; the database file is not shared between processes.
type Storage struct {
	*storage.KeyedLocker
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// RunMigrations applies the embedded schema migrations
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// New opens the database at dsn and migrates it. Use ":memory:" for tests.
func New(ctx context.Context, dsn string) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases coherent and serializes writers
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{
		KeyedLocker: storage.NewKeyedLocker(),
		db:          db,
	}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Save(ctx context.Context, namespace, key string, blob []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (namespace, key, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, namespace, key, blob)
	if err != nil {
		return fmt.Errorf("failed to save %s[%s]: %w", namespace, key, err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context, namespace, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM blobs WHERE namespace = ? AND key = ?`, namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s[%s]: %w", namespace, key, err)
	}
	return value, nil
}

func (s *Storage) Delete(ctx context.Context, namespace, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE namespace = ? AND key = ?`, namespace, key)
	if err != nil {
		return fmt.Errorf("failed to delete %s[%s]: %w", namespace, key, err)
	}
	return nil
}

func (s *Storage) List(ctx context.Context, namespace string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM blobs WHERE namespace = ? ORDER BY key`, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", namespace, err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
