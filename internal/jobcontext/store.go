// Package jobcontext persists the target job used by the tailor workflow.
package jobcontext

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"resume-builder/internal/localstore"
	"resume-builder/internal/shared/telemetry"
)

// JobContext is the job posting a resume is being tailored to.
type JobContext struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Active      bool      `json:"active"`
}

// Store keeps the job context apart from the draft.
type Store struct {
	kv  localstore.Store
	now func() time.Time
}

// New constructs a Store. now defaults to time.Now.
func New(kv localstore.Store, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{kv: kv, now: now}
}

// Set stores a new context stamped with the current time and marks it active.
func (s *Store) Set(ctx context.Context, title, description string) (JobContext, error) {
	jc := JobContext{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Timestamp:   s.now().UTC(),
		Active:      true,
	}
	raw, err := json.Marshal(jc)
	if err != nil {
		return JobContext{}, fmt.Errorf("encode job context: %w", err)
	}
	if err := s.kv.Set(ctx, localstore.KeyJobContext, string(raw)); err != nil {
		return JobContext{}, err
	}
	if err := s.kv.Set(ctx, localstore.KeyJobContextActive, "true"); err != nil {
		return JobContext{}, err
	}
	return jc, nil
}

// Get returns the stored context, or nil when absent or unreadable.
func (s *Store) Get(ctx context.Context) *JobContext {
	raw, ok, err := s.kv.Get(ctx, localstore.KeyJobContext)
	if err != nil || !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	var jc JobContext
	if err := json.Unmarshal([]byte(raw), &jc); err != nil {
		telemetry.Warn("jobcontext.malformed_local_state", map[string]any{"err": err})
		return nil
	}
	active, _, _ := s.kv.Get(ctx, localstore.KeyJobContextActive)
	jc.Active = active == "true"
	return &jc
}

// IsActive reports whether an active context is stored.
func (s *Store) IsActive(ctx context.Context) bool {
	jc := s.Get(ctx)
	return jc != nil && jc.Active
}

// Clear removes the context and its active flag together.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, localstore.KeyJobContext, localstore.KeyJobContextActive)
}
