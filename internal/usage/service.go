package usage

import (
	"context"
	"fmt"
	"strings"
)

// Store persists Usage rows. Update applies fn atomically to the user's row,
// creating it from the default plan when absent; fn returning an error leaves
// the row unchanged.
type Store interface {
	Update(ctx context.Context, userID string, fn func(*Usage) error) (Usage, error)
}

// Service is the quota the resume service consumes from.
type Service struct {
	store Store
}

// NewService constructs a Service with an in-memory store.
func NewService(plan Plan) *Service {
	return &Service{store: newMemoryStore(plan)}
}

// NewServiceWithStore constructs a Service over store.
func NewServiceWithStore(store Store) *Service {
	return &Service{store: store}
}

// Get returns the user's usage, initializing it from the default plan.
func (s *Service) Get(ctx context.Context, userID string) (Usage, error) {
	return s.store.Update(ctx, userID, func(*Usage) error { return nil })
}

// CanConsume reports whether the user can take n more slots.
func (s *Service) CanConsume(ctx context.Context, userID string, n int) (bool, Usage, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return false, Usage{}, err
	}
	return u.Allows(n), u, nil
}

// Consume takes n slots, or fails with ErrLimitReached and takes none.
func (s *Service) Consume(ctx context.Context, userID string, n int) (Usage, error) {
	return s.store.Update(ctx, userID, func(u *Usage) error { return u.take(n) })
}

// Release gives back n slots, never going below zero.
func (s *Service) Release(ctx context.Context, userID string, n int) (Usage, error) {
	return s.store.Update(ctx, userID, func(u *Usage) error {
		u.give(n)
		return nil
	})
}

// Reset frees every slot.
func (s *Service) Reset(ctx context.Context, userID string) (Usage, error) {
	return s.store.Update(ctx, userID, func(u *Usage) error {
		u.Used = 0
		return nil
	})
}

// ChangePlan moves the user to plan. Slots already taken are kept, so a
// downgrade can leave the user over the new limit until resumes are deleted.
func (s *Service) ChangePlan(ctx context.Context, userID string, plan Plan) (Usage, error) {
	plan.Name = strings.TrimSpace(plan.Name)
	if !plan.valid() {
		return Usage{}, fmt.Errorf("%w: name and a positive limit are required", ErrInvalidPlan)
	}
	return s.store.Update(ctx, userID, func(u *Usage) error {
		u.Plan = plan.Name
		u.Limit = plan.Limit
		return nil
	})
}
