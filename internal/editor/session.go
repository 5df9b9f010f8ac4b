// Package editor is the builder session: it holds the draft being edited and
// autosaves it through the gateway.
package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"resume-builder/internal/drafts"
	"resume-builder/internal/gateway"
	"resume-builder/internal/navguard"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/workflow"
	"resume-builder/resume/model"
)

const (
	defaultDebounce    = 1500 * time.Millisecond
	defaultSaveTimeout = 30 * time.Second
)

// Status is the outcome of one save attempt.
type Status string

const (
	StatusCreated   Status = "created"
	StatusSaved     Status = "saved"
	StatusSkipped   Status = "skipped"
	StatusDiscarded Status = "discarded"
	StatusFailed    Status = "failed"
)

// SaveOutcome describes a save attempt.
type SaveOutcome struct {
	Status   Status
	ResumeID string
	Title    string
	Reason   string
	Err      error
}

// Gateway is the slice of the persistence gateway the editor uses.
type Gateway interface {
	ResolveTitle(ctx context.Context, title, excludeID string) (string, error)
	CreateDraftResume(ctx context.Context, req gateway.CreateRequest) gateway.CreateResult
	SaveResume(ctx context.Context, req gateway.SaveRequest) gateway.SaveResult
}

// Options tunes autosave.
type Options struct {
	Debounce    time.Duration
	SaveTimeout time.Duration
	// OnAutosave receives the outcome of each debounced save.
	OnAutosave func(SaveOutcome)
}

// Session is one mount of the builder.
type Session struct {
	gw        Gateway
	drafts    *drafts.Store
	opts      Options
	departing func() bool
	release   func()
	intent    string

	group  singleflight.Group
	saveMu sync.Mutex

	mu       sync.Mutex
	draft    model.Draft
	resumeID string
	title    string
	timer    *time.Timer
	closed   bool
}

// Open starts a session from the router's builder props.
func Open(gw Gateway, store *drafts.Store, props workflow.BuilderProps, opts Options) *Session {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = defaultSaveTimeout
	}
	s := &Session{
		gw:        gw,
		drafts:    store,
		opts:      opts,
		departing: props.IsNavigatingAway,
		release:   props.Release,
		intent:    uuid.NewString(),
		draft:     props.InitialData,
		resumeID:  props.ResumeID,
		title:     strings.TrimSpace(props.Title),
	}
	if props.SelectedTemplate != "" {
		s.draft.Template = props.SelectedTemplate
	}
	if s.departing == nil {
		guard := navguard.Mount(nil)
		s.departing = guard.Departing
		s.release = guard.Unmount
	}
	return s
}

// Draft returns a copy of the in-memory draft.
func (s *Session) Draft() model.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// ResumeID returns the persisted id, empty until the first create lands.
func (s *Session) ResumeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumeID
}

// Title returns the title the next save sends, empty until one is known.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// SetTitle sets the title used on the next save.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = strings.TrimSpace(title)
}

// Update applies fn to the draft, writes it locally and schedules an autosave.
func (s *Session) Update(ctx context.Context, fn func(*model.Draft)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("editor: session closed")
	}
	fn(&s.draft)
	snapshot := s.draft
	s.mu.Unlock()

	if err := s.drafts.Set(ctx, snapshot); err != nil {
		return err
	}
	s.schedule()
	return nil
}

func (s *Session) schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.opts.Debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.SaveTimeout)
		defer cancel()
		out := s.Save(ctx)
		if s.opts.OnAutosave != nil {
			s.opts.OnAutosave(out)
		}
	})
}

// Save persists the draft now. The first save without an id creates the
// resume exactly once per session; results arriving after departure are
// discarded without touching local state.
func (s *Session) Save(ctx context.Context) SaveOutcome {
	if s.departing() {
		return SaveOutcome{Status: StatusSkipped}
	}

	s.mu.Lock()
	draft := s.draft
	resumeID := s.resumeID
	title := s.title
	s.mu.Unlock()
	if title == "" {
		title = model.TitleFor(draft.ResumeData)
	}

	if resumeID == "" {
		return s.create(ctx, draft, title)
	}
	return s.update(ctx, resumeID, draft, title)
}

func (s *Session) create(ctx context.Context, draft model.Draft, title string) SaveOutcome {
	v, _, _ := s.group.Do(s.intent, func() (any, error) {
		// A concurrent create may have landed while this call waited.
		if id := s.ResumeID(); id != "" {
			return SaveOutcome{Status: StatusSaved, ResumeID: id}, nil
		}
		resolved, err := s.gw.ResolveTitle(ctx, title, "")
		if err != nil {
			return SaveOutcome{Status: StatusFailed, Reason: gateway.ReasonNetworkError, Err: err}, nil
		}
		res := s.gw.CreateDraftResume(ctx, gateway.CreateRequest{
			TemplateID: draft.Template,
			Title:      resolved,
			Data:       draft.ResumeData,
		})
		if !res.Success {
			return SaveOutcome{Status: StatusFailed, Reason: res.Reason, Err: res.Err}, nil
		}

		if s.departing() {
			telemetry.Info("editor.create_discarded", map[string]any{"resume_id": res.ResumeID})
			return SaveOutcome{Status: StatusDiscarded, ResumeID: res.ResumeID, Title: resolved}, nil
		}
		s.mu.Lock()
		s.resumeID = res.ResumeID
		s.title = resolved
		s.mu.Unlock()
		if err := s.drafts.SetCurrentResumeID(context.WithoutCancel(ctx), res.ResumeID); err != nil {
			telemetry.Warn("editor.store_id_failed", map[string]any{"err": err})
		}
		return SaveOutcome{Status: StatusCreated, ResumeID: res.ResumeID, Title: resolved}, nil
	})
	return v.(SaveOutcome)
}

func (s *Session) update(ctx context.Context, resumeID string, draft model.Draft, title string) SaveOutcome {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	res := s.gw.SaveResume(ctx, gateway.SaveRequest{
		ResumeID:   resumeID,
		Title:      title,
		TemplateID: draft.Template,
		Data:       draft.ResumeData,
	})
	if !res.Success && res.Reason == gateway.ReasonValidation && res.SuggestedName != "" {
		title = res.SuggestedName
		res = s.gw.SaveResume(ctx, gateway.SaveRequest{
			ResumeID:   resumeID,
			Title:      title,
			TemplateID: draft.Template,
			Data:       draft.ResumeData,
		})
	}
	if !res.Success {
		return SaveOutcome{Status: StatusFailed, ResumeID: resumeID, Reason: res.Reason, Err: res.Err}
	}
	if s.departing() {
		return SaveOutcome{Status: StatusDiscarded, ResumeID: resumeID, Title: title}
	}
	s.mu.Lock()
	s.title = title
	s.mu.Unlock()
	return SaveOutcome{Status: StatusSaved, ResumeID: resumeID, Title: title}
}

// Flush cancels any pending autosave and saves immediately.
func (s *Session) Flush(ctx context.Context) SaveOutcome {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.Save(ctx)
}

// Close stops autosave and unmounts the navigation guard.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	if s.release != nil {
		s.release()
	}
}
