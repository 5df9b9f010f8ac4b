package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"resume-builder/internal/shared/telemetry"
)

// ErrNoDatabaseURL is returned by Open when no DSN is configured.
var ErrNoDatabaseURL = errors.New("database url is empty")

// Pool sizes the shared *sql.DB. Every field can be overridden by a DB_* variable.
type Pool struct {
	MaxOpen     int           `env:"MAX_OPEN_CONNS"`
	MaxIdle     int           `env:"MAX_IDLE_CONNS"`
	MaxLifetime time.Duration `env:"CONN_MAX_LIFETIME"`
	MaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME"`
	PingTimeout time.Duration `env:"PING_TIMEOUT"`
}

// ServerPool suits the long-running API process.
func ServerPool() Pool {
	return Pool{MaxOpen: 10, MaxIdle: 5, MaxLifetime: time.Hour, MaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second}
}

// MigratePool holds a single connection so goose runs serially.
func MigratePool() Pool {
	p := ServerPool()
	p.MaxOpen, p.MaxIdle = 1, 1
	return p
}

// WithEnv overlays DB_* variables onto p. Unset or malformed values keep p's settings.
func (p Pool) WithEnv() Pool {
	out := p
	if err := env.ParseWithOptions(&out, env.Options{Prefix: "DB_"}); err != nil {
		telemetry.Warn("db.pool_env_invalid", map[string]any{"err": err})
		return p
	}
	return out
}

func (p Pool) apply(sqlDB *sql.DB) {
	def := ServerPool()
	if p.MaxOpen <= 0 {
		p.MaxOpen = def.MaxOpen
	}
	if p.MaxIdle <= 0 {
		p.MaxIdle = def.MaxIdle
	}
	if p.MaxLifetime <= 0 {
		p.MaxLifetime = def.MaxLifetime
	}
	sqlDB.SetMaxOpenConns(p.MaxOpen)
	sqlDB.SetMaxIdleConns(p.MaxIdle)
	sqlDB.SetConnMaxLifetime(p.MaxLifetime)
	if p.MaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(p.MaxIdleTime)
	}
}

var sqlOpen = sql.Open

// Open connects to Postgres through pgx and pings before returning.
// Callers share the returned handle for the life of the process.
func Open(ctx context.Context, databaseURL string, pool Pool) (*sql.DB, error) {
	dsn := strings.TrimSpace(databaseURL)
	if dsn == "" {
		return nil, ErrNoDatabaseURL
	}
	sqlDB, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pool.apply(sqlDB)

	timeout := pool.PingTimeout
	if timeout <= 0 {
		timeout = ServerPool().PingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	stats := sqlDB.Stats()
	telemetry.Info("db.connected", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
	})
	return sqlDB, nil
}
