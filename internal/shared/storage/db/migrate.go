package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// goose keeps its FS and dialect in package state shared with the SQLite local
// store, so every entry point sets both before running.
func setupGoose() error {
	goose.SetBaseFS(migrations)
	return goose.SetDialect("postgres")
}

// Migrate brings the resumes and resume_quota tables up to date. A nil handle is a no-op
// so the in-memory stores can run without Postgres.
func Migrate(ctx context.Context, sqlDB *sql.DB) error {
	if sqlDB == nil {
		return nil
	}
	if err := setupGoose(); err != nil {
		return err
	}
	return goose.UpContext(ctx, sqlDB, migrationsDir)
}

// Rollback reverts the most recent migration.
func Rollback(ctx context.Context, sqlDB *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	return goose.DownContext(ctx, sqlDB, migrationsDir)
}

// Version reports the schema version recorded by goose.
func Version(ctx context.Context, sqlDB *sql.DB) (int64, error) {
	if err := setupGoose(); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
