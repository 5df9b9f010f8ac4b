package resumes

import (
	"time"

	"resume-builder/resume/model"
)

// Resume is a persisted resume owned by a user.
type Resume struct {
	ID         string
	UserID     string
	Title      string
	TemplateID string
	Data       model.ResumeData
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// TitleRef is the minimal view used for title uniqueness checks.
type TitleRef struct {
	ID    string
	Title string
}

// SaveInput is the payload of a create-or-update save.
type SaveInput struct {
	ResumeID   string
	Title      string
	TemplateID string
	Data       model.ResumeData
}

// NameCheck is the outcome of a title validation.
type NameCheck struct {
	IsValid       bool
	SuggestedName string
}

// Eligibility reports whether the user may create another resume.
type Eligibility struct {
	CanCreate bool
	Reason    string
	Plan      string
	Limit     int
	Used      int
}
