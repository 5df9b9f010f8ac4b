package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/usage"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.Signer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	signer, err := auth.NewSigner("router-secret", "dev")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	r := NewRouter(RouterDeps{
		Config:       config.Normalize(config.Config{Env: "dev"}),
		Signer:       signer,
		UsageHandler: usage.NewHandler(usage.NewService(usage.Plan{Name: "Starter", Limit: 1})),
	})
	return r, signer
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestPublicRoutesNeedNoIdentity(t *testing.T) {
	r, _ := newTestRouter(t)
	if resp := get(r, "/api/v1/health", nil); resp.Code != http.StatusOK {
		t.Fatalf("health expected 200, got %d", resp.Code)
	}
	if resp := get(r, "/metrics", nil); resp.Code != http.StatusOK {
		t.Fatalf("metrics expected 200, got %d", resp.Code)
	}
	if resp := get(r, "/api/v1/me", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("me expected 401, got %d", resp.Code)
	}
}

func TestMeReportsIdentity(t *testing.T) {
	r, signer := newTestRouter(t)

	resp := get(r, "/api/v1/me", map[string]string{"X-Guest-Id": "g-1"})
	var guest meResponse
	if err := json.NewDecoder(resp.Body).Decode(&guest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if guest.UserID != "guest:g-1" || !guest.IsGuest {
		t.Fatalf("unexpected guest identity %+v", guest)
	}

	token, err := signer.Sign(auth.Claims{Name: "Ada", RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	resp = get(r, "/api/v1/me", map[string]string{"Authorization": "Bearer " + token})
	var user meResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.UserID != "user-1" || user.IsGuest || user.Name != "Ada" {
		t.Fatalf("unexpected user identity %+v", user)
	}
}

func TestDevPlanRouteLiftsLimit(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dev/usage/plan", strings.NewReader(`{"plan":"Pro","limit":5}`))
	req.Header.Set("X-Guest-Id", "g-1")
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = get(r, "/api/v1/usage", map[string]string{"X-Guest-Id": "g-1"})
	var body struct {
		Plan      string `json:"plan"`
		Limit     int    `json:"limit"`
		Remaining int    `json:"remaining"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Plan != "Pro" || body.Limit != 5 || body.Remaining != 5 {
		t.Fatalf("unexpected usage %+v", body)
	}
}

func TestAddr(t *testing.T) {
	for in, want := range map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"} {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
