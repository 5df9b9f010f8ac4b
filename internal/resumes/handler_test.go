package resumes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/shared/config"
)

func newTestRouter(t *testing.T, limit int) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app, err := bootstrap.Build(config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		Env:             "dev",
		ResumeLimit:     limit,
	})
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, guest string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", guest)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

type saveResponse struct {
	Success  bool   `json:"success"`
	ResumeID string `json:"resumeId"`
	Title    string `json:"title"`
}

func saveBody(resumeID, title string) map[string]any {
	return map[string]any{
		"resumeId": resumeID,
		"title":    title,
		"template": "modern",
		"data": map[string]any{
			"personalInfo": map[string]any{"fullName": "Jane Doe"},
			"summary":      "Engineer",
			"skills":       []string{"Go"},
		},
	}
}

func TestSaveGetAndRPCFetch(t *testing.T) {
	router := newTestRouter(t, 3)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/resumes/save", saveBody("", "Jane Doe Resume"), "g1")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created saveResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode save: %v", err)
	}
	if !created.Success || created.ResumeID == "" {
		t.Fatalf("unexpected save response: %+v", created)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/resumes/"+created.ResumeID, nil, "g1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var got struct {
		Success bool `json:"success"`
		Resume  struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Template string `json:"template"`
			Data     struct {
				Summary string `json:"summary"`
			} `json:"data"`
		} `json:"resume"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode get: %v", err)
	}
	if got.Resume.ID != created.ResumeID || got.Resume.Title != "Jane Doe Resume" || got.Resume.Data.Summary != "Engineer" {
		t.Fatalf("unexpected resume: %+v", got)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/resumes/get-by-id", map[string]string{"id": created.ResumeID}, "g1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from get-by-id, got %d", resp.Code)
	}

	// Another identity cannot see it.
	resp = doJSON(t, router, http.MethodGet, "/api/v1/resumes/"+created.ResumeID, nil, "g2")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other user, got %d", resp.Code)
	}
}

func TestSaveUnknownIDReturns404(t *testing.T) {
	router := newTestRouter(t, 3)
	resp := doJSON(t, router, http.MethodPost, "/api/v1/resumes/save", saveBody("1b4e28ba-2fa1-11d2-883f-0016d3cca427", "X"), "g1")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestValidateNameSuggestsSuffix(t *testing.T) {
	router := newTestRouter(t, 5)

	first := doJSON(t, router, http.MethodPost, "/api/v1/resumes/save", saveBody("", "Resume"), "g1")
	if first.Code != http.StatusCreated {
		t.Fatalf("save: %d", first.Code)
	}
	var created saveResponse
	_ = json.NewDecoder(first.Body).Decode(&created)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/resumes/validate-name", map[string]string{"title": "Resume"}, "g1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var check struct {
		IsValid       bool   `json:"isValid"`
		SuggestedName string `json:"suggestedName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&check); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if check.IsValid || check.SuggestedName != "Resume (2)" {
		t.Fatalf("unexpected check: %+v", check)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/resumes/validate-name", map[string]string{"title": "Resume", "excludeResumeId": created.ResumeID}, "g1")
	check.IsValid = false
	_ = json.NewDecoder(resp.Body).Decode(&check)
	if !check.IsValid {
		t.Fatalf("expected valid when excluding own id")
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/resumes/validate-name", map[string]string{"title": ""}, "g1")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty title, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/resumes/save", saveBody("", "resume"), "g1")
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 on colliding save, got %d", resp.Code)
	}
}

func TestLimitReachedAndEligibility(t *testing.T) {
	router := newTestRouter(t, 1)

	if resp := doJSON(t, router, http.MethodPost, "/api/v1/resumes/save", saveBody("", "One"), "g1"); resp.Code != http.StatusCreated {
		t.Fatalf("save: %d", resp.Code)
	}
	resp := doJSON(t, router, http.MethodPost, "/api/v1/resumes/save", saveBody("", "Two"), "g1")
	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.Code)
	}
	var errBody struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errBody.Error.Code != "limit_reached" {
		t.Fatalf("expected limit_reached code, got %q", errBody.Error.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/resumes/eligibility", nil, "g1")
	var elig struct {
		CanCreate bool   `json:"canCreate"`
		Reason    string `json:"reason"`
		Limit     int    `json:"limit"`
		Used      int    `json:"used"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&elig); err != nil {
		t.Fatalf("decode eligibility: %v", err)
	}
	if elig.CanCreate || elig.Reason != "limit_reached" || elig.Limit != 1 || elig.Used != 1 {
		t.Fatalf("unexpected eligibility: %+v", elig)
	}
}

func TestDuplicateListAndDelete(t *testing.T) {
	router := newTestRouter(t, 5)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/resumes/save", saveBody("", "Backend"), "g1")
	var created saveResponse
	_ = json.NewDecoder(resp.Body).Decode(&created)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/resumes/"+created.ResumeID+"/duplicate", nil, "g1")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var dup saveResponse
	_ = json.NewDecoder(resp.Body).Decode(&dup)
	if dup.Title != "Copy of Backend" || dup.ResumeID == created.ResumeID {
		t.Fatalf("unexpected duplicate: %+v", dup)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/resumes", nil, "g1")
	var list struct {
		Resumes []struct {
			ID string `json:"id"`
		} `json:"resumes"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&list)
	if len(list.Resumes) != 2 {
		t.Fatalf("expected 2 resumes, got %d", len(list.Resumes))
	}

	resp = doJSON(t, router, http.MethodDelete, "/api/v1/resumes/"+dup.ResumeID, nil, "g1")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	resp = doJSON(t, router, http.MethodGet, "/api/v1/resumes/"+dup.ResumeID, nil, "g1")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}
