package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func stubOpen(t *testing.T, fn func(driver, dsn string) (*sql.DB, error)) {
	t.Helper()
	prev := sqlOpen
	sqlOpen = fn
	t.Cleanup(func() { sqlOpen = prev })
}

func TestPoolWithEnvOverlaysSetValues(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")

	pool := ServerPool().WithEnv()
	if pool.MaxOpen != 7 {
		t.Fatalf("expected MaxOpen=7, got %d", pool.MaxOpen)
	}
	if pool.MaxIdleTime != 45*time.Second {
		t.Fatalf("expected MaxIdleTime=45s, got %s", pool.MaxIdleTime)
	}
	if pool.MaxIdle != 5 || pool.PingTimeout != 5*time.Second {
		t.Fatalf("unset values should keep defaults, got %+v", pool)
	}
}

func TestPoolWithEnvKeepsBaseOnMalformedValue(t *testing.T) {
	t.Setenv("DB_PING_TIMEOUT", "soon")

	pool := MigratePool().WithEnv()
	if pool != MigratePool() {
		t.Fatalf("expected migrate defaults, got %+v", pool)
	}
}

func TestOpenRejectsEmptyURL(t *testing.T) {
	if _, err := Open(context.Background(), "  ", ServerPool()); !errors.Is(err, ErrNoDatabaseURL) {
		t.Fatalf("expected ErrNoDatabaseURL, got %v", err)
	}
}

func TestOpenAppliesPoolAndPings(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	mock.ExpectPing()
	stubOpen(t, func(driver, dsn string) (*sql.DB, error) {
		if driver != "pgx" || dsn != "postgres://resumes" {
			t.Fatalf("unexpected open(%q, %q)", driver, dsn)
		}
		return mockDB, nil
	})

	sqlDB, err := Open(context.Background(), " postgres://resumes ", MigratePool())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sqlDB.Close()
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("expected MaxOpenConnections=1, got %d", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestOpenWrapsPingFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	pingErr := errors.New("connection refused")
	mock.ExpectPing().WillReturnError(pingErr)
	mock.ExpectClose()
	stubOpen(t, func(string, string) (*sql.DB, error) { return mockDB, nil })

	_, err = Open(context.Background(), "postgres://resumes", ServerPool())
	if !errors.Is(err, pingErr) {
		t.Fatalf("expected wrapped ping error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMigrateNilHandleIsNoop(t *testing.T) {
	if err := Migrate(context.Background(), nil); err != nil {
		t.Fatalf("Migrate(nil): %v", err)
	}
}
