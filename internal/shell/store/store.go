package store

import (
	"context"
	"encoding/json"
	"time"
)

// =============================================================================
// Draft
// =============================================================================

// MaxKeyLength bounds draft keys.
const MaxKeyLength = 128

// Draft is one saved wizard session. Data holds the serialized state verbatim;
// Step and TemplateID are copied out of it for listings.
type Draft struct {
	Key        string          `json:"key"`
	Step       int             `json:"step"`
	TemplateID string          `json:"template_id,omitempty"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// =============================================================================
// Store Interface
// =============================================================================

// DraftStore defines the persistence interface for drafts.
type DraftStore interface {
	// SaveDraft inserts or replaces the draft under its key.
	SaveDraft(ctx context.Context, draft *Draft) error
	GetDraft(ctx context.Context, key string) (*Draft, error)
	DeleteDraft(ctx context.Context, key string) error
	// ListDrafts returns drafts most recently updated first, without Data.
	ListDrafts(ctx context.Context, opts ListOptions) ([]Draft, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(DraftStore) error) error

	// Lifecycle
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  100,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
