package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET,POST,DELETE,OPTIONS"
	corsHeaders = "Content-Type, Authorization, X-Guest-Id, X-Request-Id"
	corsMaxAge  = "600"
)

// CORS answers preflights and echoes allowed origins. An entry of the form
// "https://*.example.com" admits any subdomain of example.com.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	exact := make(map[string]struct{})
	var wildcards []wildcardOrigin
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if scheme, host, ok := strings.Cut(o, "://*."); ok {
			wildcards = append(wildcards, wildcardOrigin{prefix: scheme + "://", suffix: "." + host})
			continue
		}
		exact[o] = struct{}{}
	}

	allowed := func(origin string) bool {
		if _, ok := exact[origin]; ok {
			return true
		}
		for _, w := range wildcards {
			if w.match(origin) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && allowed(origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
			h.Set("Access-Control-Expose-Headers", requestIDHeader)
			h.Set("Access-Control-Max-Age", corsMaxAge)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

type wildcardOrigin struct {
	prefix string
	suffix string
}

func (w wildcardOrigin) match(origin string) bool {
	host, ok := strings.CutPrefix(origin, w.prefix)
	return ok && strings.HasSuffix(host, w.suffix) && len(host) > len(w.suffix)
}
