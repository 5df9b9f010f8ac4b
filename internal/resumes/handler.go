package resumes

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/usage"
)

// Handler wires HTTP handlers to the resumes service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.listResumes)
	rg.GET("/resumes/eligibility", h.eligibility)
	rg.POST("/resumes/save", h.saveResume)
	rg.POST("/resumes/get-by-id", h.getByID)
	rg.POST("/resumes/validate-name", h.validateName)
	rg.GET("/resumes/:id", h.getResume)
	rg.POST("/resumes/:id/duplicate", h.duplicateResume)
	rg.DELETE("/resumes/:id", h.deleteResume)
}

func (h *Handler) saveResume(c *gin.Context) {
	defer metrics.SaveLatency.ObserveSince(time.Now())

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.SaveOutcomes.Inc("rejected")
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	resume, created, err := h.Svc.Save(c.Request.Context(), userID, SaveInput{
		ResumeID:   req.ResumeID,
		Title:      req.Title,
		TemplateID: req.Template,
		Data:       req.Data,
	})
	if err != nil {
		metrics.SaveOutcomes.Inc("rejected")
		c.Set(middleware.SaveOutcomeKey, "rejected")
		respondResumeError(c, err, "failed to save resume")
		return
	}

	c.Set(middleware.ResumeIDKey, resume.ID)
	status, outcome := http.StatusOK, "updated"
	if created {
		status, outcome = http.StatusCreated, "created"
	}
	c.Set(middleware.SaveOutcomeKey, outcome)
	metrics.SaveOutcomes.Inc(outcome)
	respond.JSON(c, status, gin.H{
		"success":  true,
		"resumeId": resume.ID,
	})
}

func (h *Handler) getResume(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resume, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondResumeError(c, err, "failed to fetch resume")
		return
	}
	c.Set(middleware.ResumeIDKey, resume.ID)
	respond.OK(c, gin.H{
		"success": true,
		"resume":  toResumeResponse(resume),
	})
}

func (h *Handler) getByID(c *gin.Context) {
	var req getByIDRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "id is required", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	resume, err := h.Svc.Get(c.Request.Context(), userID, req.ID)
	if err != nil {
		respondResumeError(c, err, "failed to fetch resume")
		return
	}
	c.Set(middleware.ResumeIDKey, resume.ID)
	respond.OK(c, gin.H{
		"success": true,
		"resume": RPCResumeResponse{
			Data:     resume.Data,
			Template: resume.TemplateID,
			Title:    resume.Title,
		},
	})
}

func (h *Handler) validateName(c *gin.Context) {
	var req validateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	check, err := h.Svc.ValidateName(c.Request.Context(), userID, req.Title, req.ExcludeResumeID)
	if err != nil {
		respondResumeError(c, err, "failed to validate name")
		return
	}

	resp := gin.H{"isValid": check.IsValid}
	if !check.IsValid {
		resp["suggestedName"] = check.SuggestedName
	}
	respond.OK(c, resp)
}

func (h *Handler) eligibility(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	out, err := h.Svc.Eligibility(c.Request.Context(), userID)
	if err != nil {
		respondResumeError(c, err, "failed to check eligibility")
		return
	}

	resp := gin.H{
		"canCreate": out.CanCreate,
		"plan":      out.Plan,
		"limit":     out.Limit,
		"used":      out.Used,
	}
	if out.Reason != "" {
		resp["reason"] = out.Reason
	}
	respond.OK(c, resp)
}

func (h *Handler) duplicateResume(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	dup, err := h.Svc.Duplicate(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondResumeError(c, err, "failed to duplicate resume")
		return
	}
	c.Set(middleware.ResumeIDKey, dup.ID)
	respond.Created(c, gin.H{
		"success":  true,
		"resumeId": dup.ID,
		"title":    dup.Title,
	})
}

func (h *Handler) listResumes(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondResumeError(c, err, "failed to list resumes")
		return
	}

	resp := make([]ResumeSummaryResponse, 0, len(items))
	for _, r := range items {
		resp = append(resp, toSummaryResponse(r))
	}
	respond.OK(c, gin.H{"success": true, "resumes": resp})
}

func (h *Handler) deleteResume(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondResumeError(c, err, "failed to delete resume")
		return
	}
	respond.NoContent(c)
}

func respondResumeError(c *gin.Context, err error, message string) {
	var taken *TitleTakenError
	switch {
	case errors.As(err, &taken):
		respond.Error(c, http.StatusConflict, "title_taken", "A resume with this title already exists", gin.H{
			"suggestedName": taken.SuggestedName,
		})
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, usage.ErrLimitReached):
		respond.Error(c, http.StatusPaymentRequired, "limit_reached", "You've reached your resume limit. Upgrade your plan to continue.", []map[string]string{
			{"field": "usage", "issue": "limit_reached"},
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}
