// Package respond writes the API's JSON envelopes.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/telemetry"
)

// ErrorCodeKey holds the error code of the response, read by request logging.
const ErrorCodeKey = "errorCode"

// ErrorBody is the error object clients branch on. Code is stable; Message is
// for humans.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse is the envelope of every non-2xx response.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// JSON writes payload with status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 response.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Created writes a 201 response.
func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// NoContent writes a bodiless 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error aborts the request with the error envelope. Server faults are logged
// here; client errors are left to the request log.
func Error(c *gin.Context, status int, code, message string, details any) {
	c.Set(ErrorCodeKey, code)
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", map[string]any{
			"status":     status,
			"code":       code,
			"message":    message,
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": c.GetString("requestId"),
		})
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}
