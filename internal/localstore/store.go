// Package localstore is the client's durable key-value state: one slot per
// named key, partitioned by session.
package localstore

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("localstore: closed")

// Durable keys shared by the client packages.
const (
	KeyDraftData         = "resume_builder_data"
	KeyDraftProgress     = "resume_builder_progress"
	KeyDraftSectionOrder = "resume_builder_section_order"
	KeyDraftTemplate     = "resume_builder_template"
	KeyJobContext        = "job_targeting_context"
	KeyJobContextActive  = "job_targeting_active"
	KeyCurrentResumeID   = "current_resume_id"
	KeyCreatingNewResume = "creating_new_resume"
)

// Store is a narrow key-value repository. Delete of several keys is atomic,
// and Write applies all of its sets and deletes or none of them.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Write(ctx context.Context, set map[string]string, del ...string) error
}
