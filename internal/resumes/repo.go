package resumes

import (
	"context"
	"time"
)

// Repo defines persistence operations for resumes.
type Repo interface {
	Create(ctx context.Context, resume Resume) error
	Update(ctx context.Context, resume Resume) error
	GetByID(ctx context.Context, userID, resumeID string) (Resume, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error)
	ListTitles(ctx context.Context, userID string) ([]TitleRef, error)
	SoftDelete(ctx context.Context, userID, resumeID string, at time.Time) error
}
