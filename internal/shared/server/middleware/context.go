package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys. Handlers set ResumeIDKey and SaveOutcomeKey for the request log.
const (
	RequestIDKey   = "requestId"
	ResumeIDKey    = "resumeId"
	SaveOutcomeKey = "saveOutcome"

	identityKey     = "identity"
	requestIDHeader = "X-Request-Id"
)

// Identity is the caller resolved by Auth.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Guest  bool
}

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// RequestID propagates a well-formed X-Request-Id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !clientIDPattern.MatchString(id) {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext returns the id assigned by RequestID.
func RequestIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(RequestIDKey)
}

// IdentityFromContext returns the caller stored by Auth.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	if c == nil {
		return Identity{}, false
	}
	val, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := val.(Identity)
	return id, ok
}

// UserIDFromContext returns the caller's user id, empty when unauthenticated.
func UserIDFromContext(c *gin.Context) string {
	id, _ := IdentityFromContext(c)
	return id.UserID
}
