package editor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"resume-builder/internal/drafts"
	"resume-builder/internal/gateway"
	"resume-builder/internal/localstore"
	"resume-builder/internal/navguard"
	"resume-builder/internal/workflow"
	"resume-builder/resume/model"
)

type fakeGateway struct {
	creates atomic.Int32
	saves   atomic.Int32

	// gate, when set, blocks CreateDraftResume until closed.
	gate    chan struct{}
	started chan struct{}

	mu         sync.Mutex
	saveTitles []string
	saveFn     func(req gateway.SaveRequest) gateway.SaveResult
}

func (f *fakeGateway) ResolveTitle(_ context.Context, title, _ string) (string, error) {
	return title, nil
}

func (f *fakeGateway) CreateDraftResume(_ context.Context, req gateway.CreateRequest) gateway.CreateResult {
	f.creates.Add(1)
	if f.started != nil {
		close(f.started)
	}
	if f.gate != nil {
		<-f.gate
	}
	return gateway.CreateResult{Success: true, ResumeID: "r-1", Title: req.Title}
}

func (f *fakeGateway) SaveResume(_ context.Context, req gateway.SaveRequest) gateway.SaveResult {
	f.saves.Add(1)
	f.mu.Lock()
	f.saveTitles = append(f.saveTitles, req.Title)
	fn := f.saveFn
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return gateway.SaveResult{Success: true, ResumeID: req.ResumeID}
}

func newSession(t *testing.T, gw *fakeGateway, resumeID string, opts Options) (*Session, *navguard.Bus, *drafts.Store) {
	t.Helper()
	bus := navguard.NewBus()
	guard := navguard.Mount(bus)
	store := drafts.New(localstore.NewMemoryStore())
	props := workflow.BuilderProps{
		InitialData:      model.NewDraft("modern"),
		ResumeID:         resumeID,
		IsNavigatingAway: guard.Departing,
		Release:          guard.Unmount,
	}
	s := Open(gw, store, props, opts)
	t.Cleanup(s.Close)
	return s, bus, store
}

func TestFirstSaveCreatesOnce(t *testing.T) {
	gw := &fakeGateway{gate: make(chan struct{})}
	s, _, store := newSession(t, gw, "", Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	outcomes := make([]SaveOutcome, 5)
	for i := range outcomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = s.Save(ctx)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(gw.gate)
	wg.Wait()

	if got := gw.creates.Load(); got != 1 {
		t.Fatalf("expected exactly one create, got %d", got)
	}
	if s.ResumeID() != "r-1" || store.CurrentResumeID(ctx) != "r-1" {
		t.Fatalf("expected id r-1 stored, got %q / %q", s.ResumeID(), store.CurrentResumeID(ctx))
	}

	// Later saves update instead of creating.
	before := gw.saves.Load()
	if out := s.Save(ctx); out.Status != StatusSaved {
		t.Fatalf("expected saved, got %+v", out)
	}
	if gw.creates.Load() != 1 || gw.saves.Load() != before+1 {
		t.Fatalf("unexpected calls creates=%d saves=%d", gw.creates.Load(), gw.saves.Load())
	}
}

func TestSaveSkippedWhileDeparting(t *testing.T) {
	gw := &fakeGateway{}
	s, bus, _ := newSession(t, gw, "r-1", Options{})
	bus.Publish(navguard.Event{To: "/dashboard"})

	if out := s.Save(context.Background()); out.Status != StatusSkipped {
		t.Fatalf("expected skipped, got %+v", out)
	}
	if gw.saves.Load() != 0 {
		t.Fatal("no request may be sent while departing")
	}
}

func TestNavigationDuringCreateDiscardsResult(t *testing.T) {
	gw := &fakeGateway{gate: make(chan struct{}), started: make(chan struct{})}
	s, bus, store := newSession(t, gw, "", Options{})
	ctx := context.Background()

	done := make(chan SaveOutcome, 1)
	go func() { done <- s.Save(ctx) }()

	<-gw.started
	bus.Publish(navguard.Event{From: "/builder", To: "/home"})
	close(gw.gate)

	out := <-done
	if out.Status != StatusDiscarded {
		t.Fatalf("expected discarded, got %+v", out)
	}
	if s.ResumeID() != "" {
		t.Fatal("in-memory id must not change after departure")
	}
	if store.CurrentResumeID(ctx) != "" {
		t.Fatal("stored id must not change after departure")
	}
}

func TestUnmountDuringSaveDiscardsResult(t *testing.T) {
	gw := &fakeGateway{}
	s, _, _ := newSession(t, gw, "r-1", Options{})
	entered := make(chan struct{})
	release := make(chan struct{})
	gw.saveFn = func(req gateway.SaveRequest) gateway.SaveResult {
		close(entered)
		<-release
		return gateway.SaveResult{Success: true, ResumeID: req.ResumeID}
	}

	done := make(chan SaveOutcome, 1)
	go func() { done <- s.Save(context.Background()) }()
	<-entered
	s.Close()
	close(release)

	if out := <-done; out.Status != StatusDiscarded {
		t.Fatalf("expected discarded after unmount, got %+v", out)
	}
}

func TestDebouncedAutosave(t *testing.T) {
	gw := &fakeGateway{}
	results := make(chan SaveOutcome, 4)
	s, _, store := newSession(t, gw, "r-1", Options{
		Debounce:   30 * time.Millisecond,
		OnAutosave: func(o SaveOutcome) { results <- o },
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Update(ctx, func(d *model.Draft) { d.Summary += "x" }); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	if d := store.Get(ctx); d == nil || d.Summary != "xxx" {
		t.Fatalf("expected local draft written on update, got %+v", d)
	}

	select {
	case out := <-results:
		if out.Status != StatusSaved {
			t.Fatalf("expected saved, got %+v", out)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("autosave did not fire")
	}
	time.Sleep(60 * time.Millisecond)
	if got := gw.saves.Load(); got != 1 {
		t.Fatalf("expected one debounced save, got %d", got)
	}
}

func TestUpdateUsesSuggestedTitleOnCollision(t *testing.T) {
	gw := &fakeGateway{}
	gw.saveFn = func(req gateway.SaveRequest) gateway.SaveResult {
		if req.Title == "Taken" {
			return gateway.SaveResult{Reason: gateway.ReasonValidation, SuggestedName: "Taken (2)", Err: gateway.ErrValidation}
		}
		return gateway.SaveResult{Success: true, ResumeID: req.ResumeID}
	}
	s, _, _ := newSession(t, gw, "r-1", Options{})
	s.SetTitle("Taken")

	out := s.Save(context.Background())
	if out.Status != StatusSaved || out.Title != "Taken (2)" {
		t.Fatalf("expected save with suggested title, got %+v", out)
	}
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if len(gw.saveTitles) != 2 || gw.saveTitles[1] != "Taken (2)" {
		t.Fatalf("unexpected save titles %v", gw.saveTitles)
	}
}

func TestUpdateAfterCloseFails(t *testing.T) {
	s, _, _ := newSession(t, &fakeGateway{}, "", Options{})
	s.Close()
	if err := s.Update(context.Background(), func(*model.Draft) {}); err == nil {
		t.Fatal("expected error after close")
	}
}

func TestUpdateKeepsPersistedTitle(t *testing.T) {
	gw := &fakeGateway{}
	bus := navguard.NewBus()
	guard := navguard.Mount(bus)
	draft := model.NewDraft("modern")
	draft.PersonalInfo.FullName = "Jane Doe"
	s := Open(gw, drafts.New(localstore.NewMemoryStore()), workflow.BuilderProps{
		InitialData:      draft,
		ResumeID:         "r-9",
		Title:            "Google SWE Application",
		IsNavigatingAway: guard.Departing,
		Release:          guard.Unmount,
	}, Options{})
	t.Cleanup(s.Close)
	ctx := context.Background()

	if err := s.Update(ctx, func(d *model.Draft) { d.Skills = append(d.Skills, "Go") }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	out := s.Flush(ctx)
	if out.Status != StatusSaved || out.Title != "Google SWE Application" {
		t.Fatalf("expected save under the persisted title, got %+v", out)
	}
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if len(gw.saveTitles) != 1 || gw.saveTitles[0] != "Google SWE Application" {
		t.Fatalf("autosave sent titles %v", gw.saveTitles)
	}
}
