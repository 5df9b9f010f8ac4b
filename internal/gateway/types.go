package gateway

import (
	"encoding/json"
	"time"

	"resume-builder/resume/model"
)

// CreateRequest describes a new resume.
type CreateRequest struct {
	TemplateID string
	Title      string
	Data       model.ResumeData
}

// CreateResult is returned by create and duplicate. On failure Reason is set.
type CreateResult struct {
	Success  bool
	ResumeID string
	Title    string
	Reason   string
	Err      error
}

// NameResult is the outcome of a title check.
type NameResult struct {
	IsValid       bool
	SuggestedName string
	Err           error
}

// ResumeMeta is the non-content part of a loaded resume.
type ResumeMeta struct {
	ID        string
	Title     string
	Template  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LoadResult is the normalized outcome of either load path.
type LoadResult struct {
	Success bool
	Data    model.ResumeData
	Meta    ResumeMeta
	Reason  string
	Err     error
}

// SaveRequest updates an existing resume.
type SaveRequest struct {
	ResumeID   string
	Title      string
	TemplateID string
	Data       model.ResumeData
}

// SaveResult is the outcome of an autosave.
type SaveResult struct {
	Success       bool
	ResumeID      string
	Reason        string
	SuggestedName string
	Err           error
}

// EligibilityResult reports whether another resume may be created.
type EligibilityResult struct {
	CanCreate bool
	Reason    string
	Plan      string
	Limit     int
	Used      int
	Err       error
}

type saveBody struct {
	ResumeID string           `json:"resumeId,omitempty"`
	Title    string           `json:"title"`
	Template string           `json:"template"`
	Data     model.ResumeData `json:"data"`
}

type saveResponse struct {
	Success  bool   `json:"success"`
	ResumeID string `json:"resumeId"`
	Title    string `json:"title,omitempty"`
}

type validateNameBody struct {
	Title           string `json:"title"`
	ExcludeResumeID string `json:"excludeResumeId,omitempty"`
}

type validateNameResponse struct {
	IsValid       bool   `json:"isValid"`
	SuggestedName string `json:"suggestedName"`
}

type eligibilityResponse struct {
	CanCreate bool   `json:"canCreate"`
	Reason    string `json:"reason"`
	Plan      string `json:"plan"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
}

type resourceResponse struct {
	Success bool `json:"success"`
	Resume  struct {
		ID        string           `json:"id"`
		Title     string           `json:"title"`
		Data      model.ResumeData `json:"data"`
		Template  string           `json:"template"`
		CreatedAt time.Time        `json:"createdAt"`
		UpdatedAt time.Time        `json:"updatedAt"`
	} `json:"resume"`
}

type rpcResponse struct {
	Success bool `json:"success"`
	Resume  struct {
		Data     model.ResumeData `json:"data"`
		Template string           `json:"template"`
		Title    string           `json:"title"`
	} `json:"resume"`
}

type errorEnvelope struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}
