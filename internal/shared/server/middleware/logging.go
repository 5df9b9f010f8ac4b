package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

// Logging emits one structured line per request. Level follows the status:
// 5xx is an error, 4xx a warning.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		status := c.Writer.Status()

		id, _ := IdentityFromContext(c)
		fields := map[string]any{
			"request_id":   RequestIDFromContext(c),
			"method":       c.Request.Method,
			"path":         c.Request.URL.Path,
			"route":        c.FullPath(),
			"status":       status,
			"duration_ms":  float64(time.Since(start).Microseconds()) / 1000.0,
			"user_id":      id.UserID,
			"is_guest":     id.Guest,
			"resume_id":    c.GetString(ResumeIDKey),
			"save_outcome": c.GetString(SaveOutcomeKey),
			"client_ip":    c.ClientIP(),
		}
		if code := c.GetString(respond.ErrorCodeKey); code != "" {
			fields["error_code"] = code
		}

		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}
