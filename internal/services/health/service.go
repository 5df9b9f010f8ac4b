package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Status is the health payload.
type Status struct {
	OK      bool   `json:"ok"`
	Storage string `json:"storage"`
	Error   string `json:"error,omitempty"`
}

// Service encapsulates health-related checks.
type Service struct {
	db      Pinger
	timeout time.Duration
}

// NewService constructs a new health service. db may be nil when running on
// in-memory repositories.
func NewService(db Pinger) *Service {
	return &Service{db: db, timeout: 2 * time.Second}
}

// Status reports whether the storage backend is reachable.
func (s *Service) Status(ctx context.Context) Status {
	if s.db == nil {
		return Status{OK: true, Storage: "memory"}
	}
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		return Status{OK: false, Storage: "postgres", Error: err.Error()}
	}
	return Status{OK: true, Storage: "postgres"}
}
