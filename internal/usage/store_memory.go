package usage

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu   sync.Mutex
	plan Plan
	rows map[string]Usage
}

func newMemoryStore(plan Plan) *memoryStore {
	return &memoryStore{plan: plan, rows: make(map[string]Usage)}
}

func (s *memoryStore) Update(ctx context.Context, userID string, fn func(*Usage) error) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.rows[userID]
	if !ok {
		u = defaultUsage(s.plan)
	}
	if err := fn(&u); err != nil {
		return Usage{}, err
	}
	s.rows[userID] = u
	return u, nil
}
