package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores resumes in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Resume
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Resume)}
}

// Create stores the resume.
func (r *MemoryRepo) Create(ctx context.Context, resume Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[resume.ID] = resume
	return nil
}

// Update replaces title, template and data of a live resume.
func (r *MemoryRepo) Update(ctx context.Context, resume Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[resume.ID]
	if !ok || existing.UserID != resume.UserID || existing.DeletedAt != nil {
		return ErrNotFound
	}
	existing.Title = resume.Title
	existing.TemplateID = resume.TemplateID
	existing.Data = resume.Data
	existing.UpdatedAt = resume.UpdatedAt
	r.byID[resume.ID] = existing
	return nil
}

// GetByID returns a live resume by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, resumeID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.byID[resumeID]
	if !ok || resume.UserID != userID || resume.DeletedAt != nil {
		return Resume{}, ErrNotFound
	}
	return resume, nil
}

// ListByUser returns live resumes for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	resumes := r.live(userID)
	if len(resumes) == 0 || offset >= len(resumes) {
		return []Resume{}, nil
	}
	sort.Slice(resumes, func(i, j int) bool {
		return resumes[i].CreatedAt.After(resumes[j].CreatedAt)
	})

	end := len(resumes)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return resumes[offset:end], nil
}

// ListTitles returns id/title pairs of the user's live resumes.
func (r *MemoryRepo) ListTitles(ctx context.Context, userID string) ([]TitleRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resumes := r.live(userID)
	out := make([]TitleRef, 0, len(resumes))
	for _, resume := range resumes {
		out = append(out, TitleRef{ID: resume.ID, Title: resume.Title})
	}
	return out, nil
}

// SoftDelete marks a live resume deleted.
func (r *MemoryRepo) SoftDelete(ctx context.Context, userID, resumeID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.byID[resumeID]
	if !ok || resume.UserID != userID || resume.DeletedAt != nil {
		return ErrNotFound
	}
	resume.DeletedAt = &at
	r.byID[resumeID] = resume
	return nil
}

func (r *MemoryRepo) live(userID string) []Resume {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Resume
	for _, resume := range r.byID {
		if resume.UserID == userID && resume.DeletedAt == nil {
			out = append(out, resume)
		}
	}
	return out
}

var _ Repo = (*MemoryRepo)(nil)
