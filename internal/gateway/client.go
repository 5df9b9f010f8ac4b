// Package gateway is the client for every resume persistence call to the backend.
// Calls never return raw errors: outcomes are typed results with a Reason.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

const defaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:8080/api/v1.
	BaseURL string
	// TokenSource authenticates requests with a bearer token.
	TokenSource oauth2.TokenSource
	// GuestID is sent as X-Guest-Id when no TokenSource is set.
	GuestID    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the resume backend.
type Client struct {
	baseURL    string
	guestID    string
	httpClient *http.Client
}

// New constructs a Client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if opts.TokenSource == nil && strings.TrimSpace(opts.GuestID) == "" {
		return nil, fmt.Errorf("gateway needs a token source or guest id")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if opts.TokenSource != nil {
		transport := httpClient.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		httpClient = &http.Client{
			Transport: &oauth2.Transport{Source: oauth2.ReuseTokenSource(nil, opts.TokenSource), Base: transport},
			Timeout:   timeout,
		}
	} else if httpClient.Timeout == 0 {
		copied := *httpClient
		copied.Timeout = timeout
		httpClient = &copied
	}

	return &Client{
		baseURL:    base,
		guestID:    strings.TrimSpace(opts.GuestID),
		httpClient: httpClient,
	}, nil
}

// CheckEligibility asks whether another resume may be created.
func (c *Client) CheckEligibility(ctx context.Context) EligibilityResult {
	var resp eligibilityResponse
	if err := c.do(ctx, http.MethodGet, "/resumes/eligibility", nil, &resp); err != nil {
		return EligibilityResult{Reason: ReasonFor(err), Err: err}
	}
	out := EligibilityResult{
		CanCreate: resp.CanCreate,
		Reason:    resp.Reason,
		Plan:      resp.Plan,
		Limit:     resp.Limit,
		Used:      resp.Used,
	}
	if !out.CanCreate {
		out.Reason = ReasonLimitReached
		out.Err = ErrQuotaExceeded
	}
	return out
}

// CreateDraftResume persists a new resume. Eligibility is checked first so a
// quota failure never reaches the write.
func (c *Client) CreateDraftResume(ctx context.Context, req CreateRequest) CreateResult {
	if elig := c.CheckEligibility(ctx); !elig.CanCreate {
		return CreateResult{Reason: elig.Reason, Err: elig.Err}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = model.TitleFor(req.Data)
	}
	var resp saveResponse
	err := c.do(ctx, http.MethodPost, "/resumes/save", saveBody{
		Title:    title,
		Template: req.TemplateID,
		Data:     req.Data,
	}, &resp)
	if err != nil {
		return CreateResult{Reason: ReasonFor(err), Err: err}
	}
	if !resp.Success || resp.ResumeID == "" {
		return CreateResult{Reason: ReasonNetworkError, Err: fmt.Errorf("%w: save returned no id", ErrNetwork)}
	}
	return CreateResult{Success: true, ResumeID: resp.ResumeID, Title: title}
}

// SaveResume updates an existing resume.
func (c *Client) SaveResume(ctx context.Context, req SaveRequest) SaveResult {
	if strings.TrimSpace(req.ResumeID) == "" {
		return SaveResult{Reason: ReasonValidation, Err: fmt.Errorf("%w: resume id is required", ErrValidation)}
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = model.TitleFor(req.Data)
	}
	var resp saveResponse
	err := c.do(ctx, http.MethodPost, "/resumes/save", saveBody{
		ResumeID: req.ResumeID,
		Title:    title,
		Template: req.TemplateID,
		Data:     req.Data,
	}, &resp)
	if err != nil {
		out := SaveResult{Reason: ReasonFor(err), Err: err}
		var se *StatusError
		if errors.As(err, &se) {
			out.SuggestedName = se.SuggestedName
		}
		return out
	}
	return SaveResult{Success: true, ResumeID: resp.ResumeID}
}

// ValidateName checks a candidate title. It has no side effects.
func (c *Client) ValidateName(ctx context.Context, title, excludeID string) NameResult {
	title = strings.TrimSpace(title)
	if title == "" {
		return NameResult{Err: fmt.Errorf("%w: title is required", ErrValidation)}
	}
	var resp validateNameResponse
	if err := c.do(ctx, http.MethodPost, "/resumes/validate-name", validateNameBody{
		Title:           title,
		ExcludeResumeID: excludeID,
	}, &resp); err != nil {
		return NameResult{Err: err}
	}
	return NameResult{IsValid: resp.IsValid, SuggestedName: resp.SuggestedName}
}

// ResolveTitle returns title when it is free, otherwise the backend's
// suggestion verbatim.
func (c *Client) ResolveTitle(ctx context.Context, title, excludeID string) (string, error) {
	res := c.ValidateName(ctx, title, excludeID)
	if res.Err != nil {
		return "", res.Err
	}
	if !res.IsValid && res.SuggestedName != "" {
		return res.SuggestedName, nil
	}
	return strings.TrimSpace(title), nil
}

// LoadResume fetches a resume through the resource endpoint, falling back once
// to the RPC fetch.
func (c *Client) LoadResume(ctx context.Context, id string) LoadResult {
	id = strings.TrimSpace(id)
	if id == "" {
		return LoadResult{Reason: ReasonNotFound, Err: ErrNotFound}
	}

	var res resourceResponse
	primaryErr := c.do(ctx, http.MethodGet, "/resumes/"+url.PathEscape(id), nil, &res)
	if primaryErr == nil && res.Success {
		return LoadResult{
			Success: true,
			Data:    res.Resume.Data,
			Meta: ResumeMeta{
				ID:        res.Resume.ID,
				Title:     res.Resume.Title,
				Template:  res.Resume.Template,
				CreatedAt: res.Resume.CreatedAt,
				UpdatedAt: res.Resume.UpdatedAt,
			},
		}
	}
	telemetry.Warn("gateway.load_fallback", map[string]any{"resume_id": id, "err": primaryErr})

	var rpc rpcResponse
	if err := c.do(ctx, http.MethodPost, "/resumes/get-by-id", map[string]string{"id": id}, &rpc); err != nil {
		return LoadResult{Reason: ReasonFor(err), Err: err}
	}
	if !rpc.Success {
		return LoadResult{Reason: ReasonNotFound, Err: ErrNotFound}
	}
	return LoadResult{
		Success: true,
		Data:    rpc.Resume.Data,
		Meta: ResumeMeta{
			ID:       id,
			Title:    rpc.Resume.Title,
			Template: rpc.Resume.Template,
		},
	}
}

// DuplicateResume copies a resume server-side after the same quota check as create.
func (c *Client) DuplicateResume(ctx context.Context, id string) CreateResult {
	if elig := c.CheckEligibility(ctx); !elig.CanCreate {
		return CreateResult{Reason: elig.Reason, Err: elig.Err}
	}
	var resp saveResponse
	if err := c.do(ctx, http.MethodPost, "/resumes/"+url.PathEscape(id)+"/duplicate", nil, &resp); err != nil {
		return CreateResult{Reason: ReasonFor(err), Err: err}
	}
	return CreateResult{Success: true, ResumeID: resp.ResumeID, Title: resp.Title}
}

// ResumeSummary is one row of ListResumes.
type ResumeSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Template  string    `json:"template"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListResumes returns the user's resumes, newest first.
func (c *Client) ListResumes(ctx context.Context) ([]ResumeSummary, error) {
	var resp struct {
		Resumes []ResumeSummary `json:"resumes"`
	}
	if err := c.do(ctx, http.MethodGet, "/resumes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Resumes, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.guestID != "" {
		req.Header.Set("X-Guest-Id", c.guestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Warn("gateway.request_failed", map[string]any{"method": method, "path": path, "err": err})
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Status: resp.StatusCode}
		var env errorEnvelope
		if json.Unmarshal(payload, &env) == nil {
			se.Code = env.Error.Code
			se.Message = env.Error.Message
			var details struct {
				SuggestedName string `json:"suggestedName"`
			}
			if json.Unmarshal(env.Error.Details, &details) == nil {
				se.SuggestedName = details.SuggestedName
			}
		}
		telemetry.Warn("gateway.non_2xx", map[string]any{"method": method, "path": path, "status": resp.StatusCode, "code": se.Code})
		return se
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	return nil
}
