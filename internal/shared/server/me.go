package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

type meResponse struct {
	UserID  string `json:"userId"`
	IsGuest bool   `json:"isGuest"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

// meHandler tells a client which identity its requests resolve to, so a
// guest can tell whether its local session matches the server's view.
func meHandler(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok || id.UserID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	respond.OK(c, meResponse{UserID: id.UserID, IsGuest: id.Guest, Email: id.Email, Name: id.Name})
}
