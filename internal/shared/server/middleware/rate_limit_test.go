package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func limitedRouter(limiter *RateLimiter, rules map[string]RateLimitRule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(identityKey, Identity{UserID: "guest:test-guest", Guest: true})
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/resumes/save" {
				return GroupSave
			}
			return GroupRead
		},
		Limiter: limiter,
		Rules:   rules,
	}))
	r.GET("/api/v1/resumes/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	r.POST("/api/v1/resumes/save", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestRateLimitSavesSeparateFromReads(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	r := limitedRouter(limiter, map[string]RateLimitRule{GroupSave: {Rate: 1, Burst: 2}})

	for i := 0; i < 2; i++ {
		if resp := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/resumes/save", nil)); resp.Code != http.StatusOK {
			t.Fatalf("save %d expected 200, got %d", i+1, resp.Code)
		}
	}
	if resp := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/resumes/save", nil)); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("save 3 expected 429, got %d", resp.Code)
	}

	// Reads have no rule and stay available while saves are throttled.
	for i := 0; i < 5; i++ {
		if resp := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/resumes/resume-1", nil)); resp.Code != http.StatusOK {
			t.Fatalf("read %d expected 200, got %d", i+1, resp.Code)
		}
	}

	// The bucket refills with time.
	now = now.Add(time.Second)
	if resp := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/resumes/save", nil)); resp.Code != http.StatusOK {
		t.Fatalf("save after refill expected 200, got %d", resp.Code)
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	r := limitedRouter(limiter, map[string]RateLimitRule{GroupSave: {Rate: 1, Burst: 1}})

	serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/resumes/save", nil))
	resp := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/resumes/save", nil))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", resp.Header().Get("Retry-After"))
	}

	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Group        string `json:"group"`
				RetryAfterMs int    `json:"retryAfterMs"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "rate_limited" || payload.Error.Details.Group != GroupSave {
		t.Fatalf("unexpected error %+v", payload.Error)
	}
	if payload.Error.Details.RetryAfterMs != 1000 {
		t.Fatalf("expected retryAfterMs 1000, got %d", payload.Error.Details.RetryAfterMs)
	}
}

func TestRateLimiterPrunesIdleBuckets(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	limiter.Allow("idle|SAVE", rule)
	now = now.Add(bucketIdleTTL + time.Minute)
	for i := 0; i < pruneEveryCalls; i++ {
		limiter.Allow("busy|SAVE", rule)
	}
	if got := limiter.Len(); got != 1 {
		t.Fatalf("expected idle bucket pruned, %d buckets left", got)
	}
}
