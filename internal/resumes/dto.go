package resumes

import (
	"time"

	"resume-builder/resume/model"
)

type saveRequest struct {
	ResumeID string           `json:"resumeId"`
	Title    string           `json:"title"`
	Template string           `json:"template"`
	Data     model.ResumeData `json:"data"`
}

type getByIDRequest struct {
	ID string `json:"id"`
}

type validateNameRequest struct {
	Title           string `json:"title"`
	ExcludeResumeID string `json:"excludeResumeId"`
}

// ResumeResponse is the outward-facing representation of a resume.
type ResumeResponse struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Data      model.ResumeData `json:"data"`
	Template  string           `json:"template"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ResumeSummaryResponse is one row of the resume list.
type ResumeSummaryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Template  string    `json:"template"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RPCResumeResponse is the reduced shape returned by the get-by-id call.
type RPCResumeResponse struct {
	Data     model.ResumeData `json:"data"`
	Template string           `json:"template"`
	Title    string           `json:"title"`
}

func toResumeResponse(r Resume) ResumeResponse {
	return ResumeResponse{
		ID:        r.ID,
		Title:     r.Title,
		Data:      r.Data,
		Template:  r.TemplateID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toSummaryResponse(r Resume) ResumeSummaryResponse {
	return ResumeSummaryResponse{
		ID:        r.ID,
		Title:     r.Title,
		Template:  r.TemplateID,
		UpdatedAt: r.UpdatedAt,
	}
}
