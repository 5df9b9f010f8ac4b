package workflow

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"resume-builder/internal/jobcontext"
)

// Query parameters read by the router.
const (
	ParamWorkflow     = "workflow"
	ParamMode         = "mode"
	ParamJobTargeting = "job_targeting"
	ParamJob          = "job"
	ParamSource       = "source"
	ParamPreserveJob  = "preserve_job"
	ParamResumeID     = "resumeId"
	ParamTemplate     = "template"

	sourceJobTargeting = "job-targeting"
)

// JobPayload is the job posting carried in the URL.
type JobPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type signal struct {
	name   string
	detect func(ctx context.Context, q url.Values, jobs *jobcontext.Store) bool
}

// jobSignals are evaluated in order; the first match names the source.
var jobSignals = []signal{
	{
		name: "explicit_flag",
		detect: func(_ context.Context, q url.Values, _ *jobcontext.Store) bool {
			return isTrue(q.Get(ParamJobTargeting))
		},
	},
	{
		name: "url_payload",
		detect: func(_ context.Context, q url.Values, _ *jobcontext.Store) bool {
			_, ok := parseJobPayload(q.Get(ParamJob))
			return ok
		},
	},
	{
		name: "source_param",
		detect: func(_ context.Context, q url.Values, _ *jobcontext.Store) bool {
			return strings.EqualFold(strings.TrimSpace(q.Get(ParamSource)), sourceJobTargeting)
		},
	},
	{
		name: "preserved_context",
		detect: func(ctx context.Context, q url.Values, jobs *jobcontext.Store) bool {
			return isTrue(q.Get(ParamPreserveJob)) && jobs.IsActive(ctx)
		},
	},
}

// detectJobTargeting returns whether any signal fired and which one fired first.
func detectJobTargeting(ctx context.Context, q url.Values, jobs *jobcontext.Store) (bool, string) {
	for _, s := range jobSignals {
		if s.detect(ctx, q, jobs) {
			return true, s.name
		}
	}
	return false, ""
}

// parseJobPayload accepts the payload once or twice URL-escaped.
func parseJobPayload(raw string) (JobPayload, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return JobPayload{}, false
	}
	var p JobPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		unescaped, uerr := url.QueryUnescape(raw)
		if uerr != nil || json.Unmarshal([]byte(unescaped), &p) != nil {
			return JobPayload{}, false
		}
	}
	if strings.TrimSpace(p.Title) == "" && strings.TrimSpace(p.Description) == "" {
		return JobPayload{}, false
	}
	return p, true
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
