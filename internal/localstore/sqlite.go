package localstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var migrateMu sync.Mutex

// SQLiteStore persists values in a SQLite file, scoped to one session.
type SQLiteStore struct {
	db      *sql.DB
	session string
	now     func() time.Time
}

// OpenSQLite opens and migrates the store at path for the named session.
func OpenSQLite(ctx context.Context, path, session string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	session = strings.TrimSpace(session)
	if session == "" {
		session = "default"
	}

	dsn := "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db, session: session, now: time.Now}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()
	goose.SetBaseFS(migrationFiles)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Session returns the partition name.
func (s *SQLiteStore) Session() string {
	return s.session
}

// Get returns the value stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, ErrClosed
	}
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE session = ? AND key = ?`, s.session, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

const upsertKV = `INSERT INTO kv (session, key, value, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(session, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// Set upserts value under key.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, upsertKV, s.session, key, value, s.now().UnixMilli()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes all keys in one transaction.
func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE session = ? AND key = ?`, s.session, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Write upserts set and removes del in one transaction.
func (s *SQLiteStore) Write(ctx context.Context, set map[string]string, del ...string) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if len(set) == 0 && len(del) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UnixMilli()
	for key, value := range set {
		if _, err := tx.ExecContext(ctx, upsertKV, s.session, key, value, now); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	for _, key := range del {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE session = ? AND key = ?`, s.session, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return tx.Commit()
}

var _ Store = (*SQLiteStore)(nil)
