package api

import (
	"time"

	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/artpar/stackwizard/internal/core/validation"
	"github.com/artpar/stackwizard/internal/shell/simulator"
)

// =============================================================================
// Request Types
// =============================================================================

// LoadDraftRequest is the request body for loading the saved draft.
type LoadDraftRequest struct {
	Overwrite bool `json:"overwrite"`
}

// =============================================================================
// Response Types
// =============================================================================

// ListTemplatesResponse is the response for listing templates.
type ListTemplatesResponse struct {
	Templates  []domain.Template `json:"templates"`
	Categories []string          `json:"categories"`
	Total      int               `json:"total"`
}

// DraftResponse describes one saved draft.
type DraftResponse struct {
	Key        string    `json:"key"`
	Step       int       `json:"step"`
	TemplateID string    `json:"template_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListDraftsResponse is the response for listing drafts.
type ListDraftsResponse struct {
	Drafts []DraftResponse `json:"drafts"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// SuggestionsResponse carries best-effort suggestions. Suggestions is empty,
// never absent, when none are available.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// ActionTypesResponse lists the accepted action envelope types.
type ActionTypesResponse struct {
	Types []string `json:"types"`
}

// SimulationMessage is one websocket frame of a simulated deployment.
type SimulationMessage struct {
	Type   string            `json:"type"` // stage | done | error
	Event  *simulator.Event  `json:"event,omitempty"`
	Result *simulator.Result `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// ErrorResponse is the error response format.
type ErrorResponse struct {
	Error    string              `json:"error"`
	Code     string              `json:"code"`
	Findings validation.Findings `json:"findings,omitempty"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
