// Package drafts holds the client's single in-progress resume draft.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"resume-builder/internal/localstore"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

// ErrMalformedLocalState marks stored values that could not be decoded.
// It is logged, never returned from reads.
var ErrMalformedLocalState = errors.New("malformed local state")

var draftKeys = []string{
	localstore.KeyDraftData,
	localstore.KeyDraftProgress,
	localstore.KeyDraftSectionOrder,
	localstore.KeyDraftTemplate,
}

// Store reads and writes the draft through a localstore.Store.
type Store struct {
	kv localstore.Store
}

// New constructs a Store over kv.
func New(kv localstore.Store) *Store {
	return &Store{kv: kv}
}

// Get returns the stored draft, or nil when nothing usable is stored.
func (s *Store) Get(ctx context.Context) *model.Draft {
	raw, ok := s.read(ctx, localstore.KeyDraftData)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	var data model.ResumeData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		malformed(localstore.KeyDraftData, err)
		return nil
	}

	draft := &model.Draft{ResumeData: data}
	draft.Template = s.Template(ctx)
	draft.Progress = s.Progress(ctx)
	if order := s.SectionOrder(ctx); order != nil {
		draft.SectionOrder = order
	}
	return draft
}

// Set replaces the stored draft in one atomic write. An empty template or a nil
// section order removes the previous draft's value instead of keeping it.
func (s *Store) Set(ctx context.Context, d model.Draft) error {
	data, err := json.Marshal(d.ResumeData)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	set := map[string]string{
		localstore.KeyDraftData:     string(data),
		localstore.KeyDraftProgress: strconv.Itoa(clampProgress(d.Progress)),
	}
	var del []string
	if d.SectionOrder != nil {
		order, err := json.Marshal(d.SectionOrder)
		if err != nil {
			return fmt.Errorf("encode section order: %w", err)
		}
		set[localstore.KeyDraftSectionOrder] = string(order)
	} else {
		del = append(del, localstore.KeyDraftSectionOrder)
	}
	if d.Template != "" {
		set[localstore.KeyDraftTemplate] = d.Template
	} else {
		del = append(del, localstore.KeyDraftTemplate)
	}
	return s.kv.Write(ctx, set, del...)
}

// Clear removes data, progress, section order and template in one delete.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, draftKeys...)
}

// Progress returns the stored completion percentage, 0 when absent.
func (s *Store) Progress(ctx context.Context) int {
	raw, ok := s.read(ctx, localstore.KeyDraftProgress)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		malformed(localstore.KeyDraftProgress, err)
		return 0
	}
	return clampProgress(n)
}

// SetProgress stores the completion percentage.
func (s *Store) SetProgress(ctx context.Context, pct int) error {
	return s.kv.Set(ctx, localstore.KeyDraftProgress, strconv.Itoa(clampProgress(pct)))
}

// SectionOrder returns the stored section order, nil when absent.
func (s *Store) SectionOrder(ctx context.Context) []string {
	raw, ok := s.read(ctx, localstore.KeyDraftSectionOrder)
	if !ok {
		return nil
	}
	var order []string
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		malformed(localstore.KeyDraftSectionOrder, err)
		return nil
	}
	return order
}

// Template returns the selected template, empty when absent.
func (s *Store) Template(ctx context.Context) string {
	raw, _ := s.read(ctx, localstore.KeyDraftTemplate)
	return raw
}

// SetTemplate stores the selected template.
func (s *Store) SetTemplate(ctx context.Context, template string) error {
	return s.kv.Set(ctx, localstore.KeyDraftTemplate, template)
}

// CurrentResumeID returns the id of the persisted resume being edited.
func (s *Store) CurrentResumeID(ctx context.Context) string {
	raw, _ := s.read(ctx, localstore.KeyCurrentResumeID)
	return strings.TrimSpace(raw)
}

// SetCurrentResumeID records the id of the persisted resume being edited.
func (s *Store) SetCurrentResumeID(ctx context.Context, id string) error {
	return s.kv.Set(ctx, localstore.KeyCurrentResumeID, id)
}

// ClearCurrentResumeID forgets the current resume id.
func (s *Store) ClearCurrentResumeID(ctx context.Context) error {
	return s.kv.Delete(ctx, localstore.KeyCurrentResumeID)
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		malformed(key, err)
		return "", false
	}
	return raw, ok
}

func malformed(key string, err error) {
	telemetry.Warn("drafts.malformed_local_state", map[string]any{
		"key": key,
		"err": fmt.Errorf("%w: %v", ErrMalformedLocalState, err),
	})
}

func clampProgress(n int) int {
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	default:
		return n
	}
}
