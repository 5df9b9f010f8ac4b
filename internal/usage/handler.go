package usage

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// Handler exposes usage endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches usage routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.getUsage)
}

// RegisterDevRoutes attaches routes that stand in for billing during
// development: clearing slots and switching plans after a paywall.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/usage/reset", h.resetUsage)
	rg.POST("/usage/plan", h.changePlan)
}

func (h *Handler) getUsage(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respondUsageError(c, err, "failed to fetch usage")
		return
	}
	respond.OK(c, toResponse(u))
}

func (h *Handler) resetUsage(c *gin.Context) {
	u, err := h.Svc.Reset(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respondUsageError(c, err, "failed to reset usage")
		return
	}
	respond.OK(c, toResponse(u))
}

func (h *Handler) changePlan(c *gin.Context) {
	var req Plan
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	u, err := h.Svc.ChangePlan(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		respondUsageError(c, err, "failed to change plan")
		return
	}
	respond.OK(c, toResponse(u))
}

func respondUsageError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidPlan):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}

func toResponse(u Usage) gin.H {
	return gin.H{
		"plan":      u.Plan,
		"limit":     u.Limit,
		"used":      u.Used,
		"remaining": u.Remaining(),
		"canCreate": u.Allows(1),
	}
}
