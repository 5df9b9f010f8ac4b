package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/usage"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config        config.Config
	Health        *health.Service
	Signer        *auth.Signer
	ResumeHandler *resumes.Handler
	UsageHandler  *usage.Handler
	RateLimiter   *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	cfg := deps.Config
	r := gin.New()

	var verifier middleware.TokenVerifier
	if deps.Signer != nil {
		verifier = deps.Signer
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(verifier, "/api/v1/health", "/metrics"),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.GroupSave: {Rate: cfg.SaveRate, Burst: cfg.SaveBurst},
				middleware.GroupRead: {Rate: cfg.ReadRate, Burst: cfg.ReadBurst},
			},
			GroupFor: rateGroupFor,
			Limiter:  deps.RateLimiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil)
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := healthSvc.Status(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	api.GET("/me", meHandler)
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
		if cfg.DevLike() {
			dev := api.Group("/dev")
			deps.UsageHandler.RegisterDevRoutes(dev)
		}
	}

	return r
}

func rateGroupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && strings.HasSuffix(c.Request.URL.Path, "/resumes/save") {
		return middleware.GroupSave
	}
	return middleware.GroupRead
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
