// Package workflow resolves how the editor is entered and reconciles local
// state before handing off to the builder or the import collaborator.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"resume-builder/internal/drafts"
	"resume-builder/internal/gateway"
	"resume-builder/internal/importer"
	"resume-builder/internal/jobcontext"
	"resume-builder/internal/localstore"
	"resume-builder/internal/navguard"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

// Intent is the resolved entry path.
type Intent string

const (
	IntentScratch Intent = "scratch"
	IntentImport  Intent = "import"
	IntentTailor  Intent = "tailor"
	IntentLegacy  Intent = "legacy"
)

// OutcomeKind tells the caller what to show next.
type OutcomeKind string

const (
	// OutcomeBuilder opens the builder with Outcome.Builder.
	OutcomeBuilder OutcomeKind = "builder"
	// OutcomeChoose asks the user to pick new or import for tailoring.
	OutcomeChoose OutcomeKind = "choose"
	// OutcomePaywall routes to the upgrade flow.
	OutcomePaywall OutcomeKind = "paywall"
)

const defaultFlagTTL = 5 * time.Second

// Notice is a dismissible, non-fatal message.
type Notice struct {
	Message string
	Retry   bool
}

// BuilderProps is what the builder receives.
type BuilderProps struct {
	InitialData model.Draft
	ResumeID    string
	// Title is the persisted title for ResumeID, empty when unknown.
	Title            string
	JobContext       *jobcontext.JobContext
	IsNavigatingAway func() bool
	SelectedTemplate string
	// Release unmounts the navigation guard backing IsNavigatingAway.
	Release func()
}

// Outcome is the result of resolving one entry.
type Outcome struct {
	Kind       OutcomeKind
	Intent     Intent
	Signal     string
	Builder    *BuilderProps
	JobContext *jobcontext.JobContext
	Notice     *Notice
}

// Gateway is the slice of the persistence gateway the router uses.
type Gateway interface {
	ResolveTitle(ctx context.Context, title, excludeID string) (string, error)
	CreateDraftResume(ctx context.Context, req gateway.CreateRequest) gateway.CreateResult
	LoadResume(ctx context.Context, id string) gateway.LoadResult
}

// Importer is the import collaborator. The returned value is its completion.
type Importer interface {
	Import(ctx context.Context) (importer.Resume, error)
}

// Router owns all local state reconciliation on entry.
type Router struct {
	KV       localstore.Store
	Drafts   *drafts.Store
	Jobs     *jobcontext.Store
	Gateway  Gateway
	Importer Importer
	Bus      *navguard.Bus
	// FlagTTL bounds the life of the creating-new-resume flag.
	FlagTTL time.Duration

	mu     sync.Mutex
	timers []*time.Timer
}

// ErrNoImporter is returned when an import is requested without a collaborator.
var ErrNoImporter = errors.New("workflow: no importer configured")

// ResolveURL parses rawURL and resolves it.
func (r *Router) ResolveURL(ctx context.Context, rawURL string) (Outcome, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Outcome{}, fmt.Errorf("parse entry url: %w", err)
	}
	return r.Resolve(ctx, u.Query())
}

// Resolve reconciles local state for the entry described by q.
func (r *Router) Resolve(ctx context.Context, q url.Values) (Outcome, error) {
	targeting, signal := detectJobTargeting(ctx, q, r.Jobs)

	if !targeting {
		if err := r.Jobs.Clear(ctx); err != nil {
			return Outcome{}, fmt.Errorf("clear job context: %w", err)
		}
	} else if payload, ok := parseJobPayload(q.Get(ParamJob)); ok {
		if _, err := r.Jobs.Set(ctx, payload.Title, payload.Description); err != nil {
			return Outcome{}, fmt.Errorf("store job context: %w", err)
		}
	}

	intent, mode := resolveIntent(q, targeting)
	telemetry.Info("workflow.resolve", map[string]any{
		"intent":        string(intent),
		"mode":          string(mode),
		"job_targeting": targeting,
		"signal":        signal,
	})

	var jc *jobcontext.JobContext
	if intent == IntentTailor {
		jc = r.Jobs.Get(ctx)
	}

	var (
		out Outcome
		err error
	)
	switch intent {
	case IntentTailor:
		switch mode {
		case IntentScratch:
			out, err = r.scratch(ctx, q, jc)
		case IntentImport:
			out, err = r.importFlow(ctx, q, jc)
		default:
			out = Outcome{Kind: OutcomeChoose, JobContext: jc}
		}
	case IntentScratch:
		out, err = r.scratch(ctx, q, nil)
	case IntentImport:
		out, err = r.importFlow(ctx, q, nil)
	default:
		out, err = r.legacy(ctx, q)
	}
	if err != nil {
		return Outcome{}, err
	}
	out.Intent = intent
	out.Signal = signal
	if out.JobContext == nil {
		out.JobContext = jc
	}
	return out, nil
}

func resolveIntent(q url.Values, targeting bool) (Intent, Intent) {
	workflow := parseIntent(q.Get(ParamWorkflow))
	mode := parseIntent(q.Get(ParamMode))
	if mode != IntentScratch && mode != IntentImport {
		mode = ""
	}
	if !targeting {
		return workflow, mode
	}
	// Job targeting composes with scratch and import rather than replacing them.
	switch workflow {
	case IntentScratch, IntentImport:
		return IntentTailor, workflow
	default:
		return IntentTailor, mode
	}
}

func parseIntent(raw string) Intent {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "scratch", "new":
		return IntentScratch
	case "import":
		return IntentImport
	case "tailor":
		return IntentTailor
	default:
		return IntentLegacy
	}
}

func (r *Router) scratch(ctx context.Context, q url.Values, jc *jobcontext.JobContext) (Outcome, error) {
	r.markCreating(ctx)
	if err := r.purgeDraft(ctx); err != nil {
		return Outcome{}, err
	}
	template := strings.TrimSpace(q.Get(ParamTemplate))
	draft := model.NewDraft(template)
	if template != "" {
		if err := r.Drafts.SetTemplate(ctx, template); err != nil {
			return Outcome{}, err
		}
	}
	return Outcome{Kind: OutcomeBuilder, Builder: r.props(draft, "", "", jc)}, nil
}

func (r *Router) importFlow(ctx context.Context, q url.Values, jc *jobcontext.JobContext) (Outcome, error) {
	if r.Importer == nil {
		return Outcome{}, ErrNoImporter
	}
	if err := r.purgeDraft(ctx); err != nil {
		return Outcome{}, err
	}

	imported, err := r.Importer.Import(ctx)
	if err != nil {
		telemetry.Warn("workflow.import_failed", map[string]any{"err": err})
		return Outcome{
			Kind:    OutcomeBuilder,
			Builder: r.props(model.NewDraft(q.Get(ParamTemplate)), "", "", jc),
			Notice:  &Notice{Message: "We couldn't read that file. Try another one.", Retry: true},
		}, nil
	}
	r.markCreating(ctx)

	template := firstNonEmpty(imported.Template, q.Get(ParamTemplate))
	draft := model.Draft{ResumeData: imported.Data, Template: template}
	if draft.SectionOrder == nil {
		draft.SectionOrder = model.NewDraft(template).SectionOrder
	}
	// Imported content survives any persistence failure below.
	if err := r.Drafts.Set(ctx, draft); err != nil {
		return Outcome{}, err
	}

	title := firstNonEmpty(imported.Title, model.TitleFor(imported.Data))
	resolved, err := r.Gateway.ResolveTitle(ctx, title, "")
	if err != nil {
		return r.importNotice(draft, jc, gateway.CreateResult{Reason: gateway.ReasonFor(err), Err: err}), nil
	}

	res := r.Gateway.CreateDraftResume(ctx, gateway.CreateRequest{
		TemplateID: template,
		Title:      resolved,
		Data:       imported.Data,
	})
	if !res.Success {
		if res.Reason == gateway.ReasonLimitReached {
			return Outcome{Kind: OutcomePaywall, JobContext: jc}, nil
		}
		return r.importNotice(draft, jc, res), nil
	}

	if err := r.Drafts.SetCurrentResumeID(ctx, res.ResumeID); err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: OutcomeBuilder, Builder: r.props(draft, res.ResumeID, resolved, jc)}, nil
}

func (r *Router) importNotice(draft model.Draft, jc *jobcontext.JobContext, res gateway.CreateResult) Outcome {
	telemetry.Warn("workflow.import_persist_failed", map[string]any{"reason": res.Reason, "err": res.Err})
	notice := &Notice{Message: "Your import is saved locally. We'll retry saving it.", Retry: true}
	if res.Reason == gateway.ReasonValidation {
		// The server rejected the content itself; resending it cannot succeed.
		notice = &Notice{Message: "Your import is saved locally, but some details need fixing before it can be saved.", Retry: false}
	}
	return Outcome{
		Kind:    OutcomeBuilder,
		Builder: r.props(draft, "", "", jc),
		Notice:  notice,
	}
}

func (r *Router) legacy(ctx context.Context, q url.Values) (Outcome, error) {
	if id := strings.TrimSpace(q.Get(ParamResumeID)); id != "" {
		res := r.Gateway.LoadResume(ctx, id)
		if res.Success {
			draft := model.Draft{ResumeData: res.Data, Template: res.Meta.Template}
			if err := r.Drafts.Set(ctx, draft); err != nil {
				return Outcome{}, err
			}
			if err := r.Drafts.SetCurrentResumeID(ctx, id); err != nil {
				return Outcome{}, err
			}
			return Outcome{Kind: OutcomeBuilder, Builder: r.props(draft, id, res.Meta.Title, nil)}, nil
		}
		out := r.openExisting(ctx)
		msg := "We couldn't load that resume. Your local draft is unchanged."
		if res.Reason == gateway.ReasonNotFound {
			msg = "That resume no longer exists. Your local draft is unchanged."
		}
		out.Notice = &Notice{Message: msg, Retry: res.Reason != gateway.ReasonNotFound}
		return out, nil
	}
	return r.openExisting(ctx), nil
}

func (r *Router) openExisting(ctx context.Context) Outcome {
	draft := model.NewDraft("")
	if stored := r.Drafts.Get(ctx); stored != nil {
		draft = *stored
	}
	resumeID, title := "", ""
	if !r.CreatingNewResume(ctx) {
		resumeID = r.Drafts.CurrentResumeID(ctx)
	}
	if resumeID != "" {
		// Only the title is taken from the server; the local draft stays as stored.
		if res := r.Gateway.LoadResume(ctx, resumeID); res.Success {
			title = res.Meta.Title
		} else {
			telemetry.Warn("workflow.title_lookup_failed", map[string]any{"resume_id": resumeID, "reason": res.Reason})
		}
	}
	return Outcome{Kind: OutcomeBuilder, Builder: r.props(draft, resumeID, title, nil)}
}

func (r *Router) purgeDraft(ctx context.Context) error {
	if err := r.Drafts.Clear(ctx); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	if err := r.Drafts.ClearCurrentResumeID(ctx); err != nil {
		return fmt.Errorf("clear resume id: %w", err)
	}
	return nil
}

func (r *Router) props(draft model.Draft, resumeID, title string, jc *jobcontext.JobContext) *BuilderProps {
	guard := navguard.Mount(r.Bus)
	template := draft.Template
	return &BuilderProps{
		InitialData:      draft,
		ResumeID:         resumeID,
		Title:            title,
		JobContext:       jc,
		IsNavigatingAway: guard.Departing,
		SelectedTemplate: template,
		Release:          guard.Unmount,
	}
}

// markCreating sets the one-shot creating flag and schedules its removal.
func (r *Router) markCreating(ctx context.Context) {
	if err := r.KV.Set(ctx, localstore.KeyCreatingNewResume, "true"); err != nil {
		telemetry.Warn("workflow.flag_set_failed", map[string]any{"err": err})
		return
	}
	ttl := r.FlagTTL
	if ttl <= 0 {
		ttl = defaultFlagTTL
	}
	t := time.AfterFunc(ttl, func() {
		if err := r.KV.Delete(context.Background(), localstore.KeyCreatingNewResume); err != nil {
			telemetry.Warn("workflow.flag_clear_failed", map[string]any{"err": err})
		}
	})
	r.mu.Lock()
	r.timers = append(r.timers, t)
	r.mu.Unlock()
}

// CreatingNewResume reports whether a creation started within the flag TTL.
func (r *Router) CreatingNewResume(ctx context.Context) bool {
	v, ok, err := r.KV.Get(ctx, localstore.KeyCreatingNewResume)
	return err == nil && ok && v == "true"
}

// Close clears the creating flag immediately and stops pending timers.
func (r *Router) Close() error {
	r.mu.Lock()
	timers := r.timers
	r.timers = nil
	r.mu.Unlock()
	for _, t := range timers {
		t.Stop()
	}
	return r.KV.Delete(context.Background(), localstore.KeyCreatingNewResume)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
