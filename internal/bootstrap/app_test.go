package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/config"
)

func TestBuildDevFallsBackToMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app, err := Build(config.Config{Env: "dev"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	if app.DB != nil {
		t.Fatal("expected no database handle without DATABASE_URL")
	}
	if _, ok := app.ResumesRepo.(*resumes.MemoryRepo); !ok {
		t.Fatalf("expected memory repo, got %T", app.ResumesRepo)
	}
	if app.Signer == nil || app.Router == nil {
		t.Fatal("expected signer and router to be wired")
	}

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBuildRejectsIncompleteProductionConfig(t *testing.T) {
	if _, err := Build(config.Config{Env: "production"}); err == nil {
		t.Fatal("expected production without DATABASE_URL to fail")
	}
}
