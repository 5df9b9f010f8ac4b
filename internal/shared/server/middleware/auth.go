package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/respond"
)

const guestHeader = "X-Guest-Id"

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// Auth resolves the caller from a bearer token or, failing that, the guest
// header. Guests are namespaced as "guest:<id>" so they never collide with
// token subjects. Paths in public skip authentication.
func Auth(verifier TokenVerifier, public ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(public))
	for _, p := range public {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
			token, ok := strings.CutPrefix(header, "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" || verifier == nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			c.Set(identityKey, Identity{UserID: claims.Subject, Email: claims.Email, Name: claims.Name})
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader(guestHeader))
		if guestID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}
		if !clientIDPattern.MatchString(guestID) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Malformed guest id", nil)
			return
		}
		c.Set(identityKey, Identity{UserID: "guest:" + guestID, Guest: true})
		c.Next()
	}
}
