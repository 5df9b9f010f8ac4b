package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/usage"
	"resume-builder/resume/model"
)

const (
	maxTitleLength = 120

	// ReasonLimitReached is reported when the plan has no free resume slot.
	ReasonLimitReached = "limit_reached"
)

// Quota is the slice of the usage service the resume service relies on.
type Quota interface {
	CanConsume(ctx context.Context, userID string, n int) (bool, usage.Usage, error)
	Consume(ctx context.Context, userID string, n int) (usage.Usage, error)
	Release(ctx context.Context, userID string, n int) (usage.Usage, error)
}

// Service contains business logic for resumes.
type Service struct {
	Repo  Repo
	Quota Quota
	Now   func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, quota Quota) *Service {
	return &Service{Repo: repo, Quota: quota, Now: func() time.Time { return time.Now().UTC() }}
}

// Save creates a resume when in.ResumeID is empty, otherwise updates it.
// Creating consumes a quota slot; a colliding title is rejected with a suggestion.
func (s *Service) Save(ctx context.Context, userID string, in SaveInput) (Resume, bool, error) {
	if userID == "" {
		return Resume{}, false, ErrInvalidInput
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > maxTitleLength {
		return Resume{}, false, fmt.Errorf("%w: title is required and at most %d characters", ErrInvalidInput, maxTitleLength)
	}
	if err := in.Data.Validate(); err != nil {
		return Resume{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	resumeID := strings.TrimSpace(in.ResumeID)
	if resumeID != "" {
		if _, err := uuid.Parse(resumeID); err != nil {
			return Resume{}, false, ErrNotFound
		}
	}

	check, err := s.ValidateName(ctx, userID, title, resumeID)
	if err != nil {
		return Resume{}, false, err
	}
	if !check.IsValid {
		return Resume{}, false, &TitleTakenError{SuggestedName: check.SuggestedName}
	}

	now := s.now()
	if resumeID != "" {
		existing, err := s.Repo.GetByID(ctx, userID, resumeID)
		if err != nil {
			return Resume{}, false, err
		}
		existing.Title = title
		existing.TemplateID = strings.TrimSpace(in.TemplateID)
		existing.Data = in.Data
		existing.UpdatedAt = now
		if err := s.Repo.Update(ctx, existing); err != nil {
			return Resume{}, false, err
		}
		return existing, false, nil
	}

	resume := Resume{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      title,
		TemplateID: strings.TrimSpace(in.TemplateID),
		Data:       in.Data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.createWithQuota(ctx, resume); err != nil {
		return Resume{}, false, err
	}
	metrics.ResumesCreated.Inc()
	return resume, true, nil
}

// Get returns a live resume by ID for a user.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (Resume, error) {
	if userID == "" || resumeID == "" {
		return Resume{}, ErrInvalidInput
	}
	if _, err := uuid.Parse(resumeID); err != nil {
		return Resume{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID, resumeID)
}

// ValidateName reports whether title is free for the user, ignoring excludeID.
// The check has no side effects, so repeating it is safe.
func (s *Service) ValidateName(ctx context.Context, userID, title, excludeID string) (NameCheck, error) {
	title = strings.TrimSpace(title)
	if userID == "" || title == "" {
		return NameCheck{}, ErrInvalidInput
	}
	refs, err := s.Repo.ListTitles(ctx, userID)
	if err != nil {
		return NameCheck{}, err
	}
	suggested, free := suggestTitle(title, takenTitles(refs, strings.TrimSpace(excludeID)))
	if free {
		return NameCheck{IsValid: true}, nil
	}
	metrics.NameCollisions.Inc()
	return NameCheck{IsValid: false, SuggestedName: suggested}, nil
}

// Eligibility reports whether the user may create another resume.
func (s *Service) Eligibility(ctx context.Context, userID string) (Eligibility, error) {
	if userID == "" {
		return Eligibility{}, ErrInvalidInput
	}
	ok, u, err := s.Quota.CanConsume(ctx, userID, 1)
	if err != nil {
		return Eligibility{}, err
	}
	out := Eligibility{CanCreate: ok, Plan: u.Plan, Limit: u.Limit, Used: u.Used}
	if !ok {
		out.Reason = ReasonLimitReached
	}
	return out, nil
}

// Duplicate copies a resume's title, template and data into a new record
// titled "Copy of <title>", suffixed when that title is taken.
func (s *Service) Duplicate(ctx context.Context, userID, resumeID string) (Resume, error) {
	source, err := s.Get(ctx, userID, resumeID)
	if err != nil {
		return Resume{}, err
	}
	data, err := cloneData(source.Data)
	if err != nil {
		return Resume{}, err
	}

	refs, err := s.Repo.ListTitles(ctx, userID)
	if err != nil {
		return Resume{}, err
	}
	title, _ := suggestTitle(copyPrefix+source.Title, takenTitles(refs, ""))

	now := s.now()
	dup := Resume{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      title,
		TemplateID: source.TemplateID,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.createWithQuota(ctx, dup); err != nil {
		return Resume{}, err
	}
	metrics.ResumesDuplicated.Inc()
	return dup, nil
}

// List returns live resumes for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Delete soft-deletes a resume and frees its quota slot.
func (s *Service) Delete(ctx context.Context, userID, resumeID string) error {
	if _, err := s.Get(ctx, userID, resumeID); err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, userID, resumeID, s.now()); err != nil {
		return err
	}
	if _, err := s.Quota.Release(ctx, userID, 1); err != nil {
		telemetry.Error("resumes.quota_release_failed", map[string]any{"user_id": userID, "resume_id": resumeID, "err": err})
	}
	metrics.ResumesDeleted.Inc()
	return nil
}

func (s *Service) createWithQuota(ctx context.Context, resume Resume) error {
	if _, err := s.Quota.Consume(ctx, resume.UserID, 1); err != nil {
		if errors.Is(err, usage.ErrLimitReached) {
			metrics.LimitReached.Inc()
		}
		return err
	}
	if err := s.Repo.Create(ctx, resume); err != nil {
		if _, relErr := s.Quota.Release(ctx, resume.UserID, 1); relErr != nil {
			telemetry.Error("resumes.quota_release_failed", map[string]any{"user_id": resume.UserID, "err": relErr})
		}
		return err
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

func cloneData(data model.ResumeData) (model.ResumeData, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return model.ResumeData{}, err
	}
	var out model.ResumeData
	if err := json.Unmarshal(raw, &out); err != nil {
		return model.ResumeData{}, err
	}
	return out, nil
}
