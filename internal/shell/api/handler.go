// Package api exposes the wizard session over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/artpar/stackwizard/internal/core/canvas"
	"github.com/artpar/stackwizard/internal/core/catalog"
	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/artpar/stackwizard/internal/core/topology"
	"github.com/artpar/stackwizard/internal/core/wizard"
	"github.com/artpar/stackwizard/internal/shell/session"
	"github.com/artpar/stackwizard/internal/shell/simulator"
	"github.com/artpar/stackwizard/internal/shell/store"
	"github.com/artpar/stackwizard/internal/shell/suggest"
)

// maxActionBody caps the size of an action envelope.
const maxActionBody = 1 << 20

// Config configures a Handler.
type Config struct {
	Session        *session.Manager
	Catalog        *catalog.Catalog
	Store          store.DraftStore  // optional, enables GET /drafts
	Analyzer       suggest.Analyzer  // optional
	SuggestTimeout time.Duration
	Simulator      *simulator.Simulator // optional
	Logger         *slog.Logger
}

// Handler handles HTTP requests for the wizard API.
type Handler struct {
	session        *session.Manager
	catalog        *catalog.Catalog
	store          store.DraftStore
	analyzer       suggest.Analyzer
	suggestTimeout time.Duration
	simulator      *simulator.Simulator
	logger         *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Builtin()
	}
	if cfg.SuggestTimeout <= 0 {
		cfg.SuggestTimeout = suggest.DefaultTimeout
	}
	return &Handler{
		session:        cfg.Session,
		catalog:        cfg.Catalog,
		store:          cfg.Store,
		analyzer:       cfg.Analyzer,
		suggestTimeout: cfg.SuggestTimeout,
		simulator:      cfg.Simulator,
		logger:         cfg.Logger.With("component", "api"),
	}
}

// Routes returns the chi router with all routes configured.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.requestIDHeader)

	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/templates", h.handleListTemplates)
		r.Get("/templates/{id}", h.handleGetTemplate)

		r.Get("/action-types", h.handleActionTypes)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.handleGetSession)
			r.Post("/actions", h.handleApplyAction)
			r.Get("/canvas.svg", h.handleCanvasSVG)
			r.Get("/diagram.d2", h.handleDiagramD2)
			r.Get("/manifest", h.handleManifest)
			r.Get("/suggestions", h.handleSuggestions)
			r.Post("/deploy", h.handleDeploy)
			r.Get("/simulate", h.handleSimulate)

			r.Post("/draft", h.handleSaveDraft)
			r.Post("/draft/load", h.handleLoadDraft)
			r.Delete("/draft", h.handleDiscardDraft)
		})

		r.Get("/drafts", h.handleListDrafts)
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// requestIDHeader copies the chi request ID to the response.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set("X-Request-ID", id)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"catalog": "ok", "drafts": "disabled"}
	status := http.StatusOK

	if h.catalog.Len() == 0 {
		checks["catalog"] = "empty"
		status = http.StatusServiceUnavailable
	}
	if h.store != nil {
		checks["drafts"] = "ok"
		if _, err := h.store.ListDrafts(r.Context(), store.ListOptions{Limit: 1}); err != nil {
			checks["drafts"] = "failed"
			status = http.StatusServiceUnavailable
		}
	}

	resp := ReadyResponse{Status: "ready", Checks: checks}
	if status != http.StatusOK {
		resp.Status = "not_ready"
	}
	h.writeJSON(w, status, resp)
}

// =============================================================================
// Template Handlers
// =============================================================================

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	var templates []domain.Template
	if category := r.URL.Query().Get("category"); category != "" {
		templates = h.catalog.ByCategory(category)
	} else {
		templates = h.catalog.List()
	}
	if templates == nil {
		templates = []domain.Template{}
	}

	h.writeJSON(w, http.StatusOK, ListTemplatesResponse{
		Templates:  templates,
		Categories: h.catalog.Categories(),
		Total:      len(templates),
	})
}

func (h *Handler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tmpl, ok := h.catalog.Get(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "template_not_found", "template "+id+" not found")
		return
	}
	h.writeJSON(w, http.StatusOK, tmpl)
}

func (h *Handler) handleActionTypes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, ActionTypesResponse{Types: wizard.ActionTypes()})
}

// =============================================================================
// Session Handlers
// =============================================================================

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.session.View())
}

func (h *Handler) handleApplyAction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxActionBody))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
		return
	}

	action, err := wizard.DecodeAction(body)
	if err != nil {
		h.writeActionError(w, err)
		return
	}

	view, err := h.session.Apply(action)
	if err != nil {
		h.logger.Debug("action rejected", "action", action.Type(), "error", err)
		h.writeActionError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleCanvasSVG(w http.ResponseWriter, r *http.Request) {
	view := h.session.View()
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, canvas.RenderSVG(view.State.Canvas))
}

func (h *Handler) handleDiagramD2(w http.ResponseWriter, r *http.Request) {
	view := h.session.View()
	if view.Diagram == nil {
		h.writeError(w, http.StatusConflict, "not_available", "the diagram is available from the network step")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, view.DiagramD2)
}

func (h *Handler) handleManifest(w http.ResponseWriter, r *http.Request) {
	view := h.session.View()
	if view.Manifest == nil {
		h.writeError(w, http.StatusConflict, "not_available", "the manifest is available on the review step")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="docker-compose.yml"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, view.Manifest.Text)
}

func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	target := h.session.View().State.Target()
	suggestions := suggest.ForTarget(r.Context(), h.analyzer, target, h.suggestTimeout, h.logger)
	if suggestions == nil {
		suggestions = []string{}
	}
	h.writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

func (h *Handler) handleDeploy(w http.ResponseWriter, r *http.Request) {
	dep, err := h.session.Deploy(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoExecutor):
			h.writeError(w, http.StatusServiceUnavailable, "deploy_disabled", err.Error())
		case errors.Is(err, session.ErrNotDeployable):
			resp := ErrorResponse{Error: err.Error(), Code: "not_deployable", Findings: h.session.View().FinalFindings}
			h.writeJSON(w, http.StatusConflict, resp)
		default:
			h.logger.Error("deploy failed", "error", err)
			h.writeError(w, http.StatusInternalServerError, "deploy_failed", "failed to submit deployment")
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, dep)
}

// =============================================================================
// Draft Handlers
// =============================================================================

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Save(r.Context()); err != nil {
		h.writeDraftError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.session.View())
}

func (h *Handler) handleLoadDraft(w http.ResponseWriter, r *http.Request) {
	var req LoadDraftRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			h.writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON body")
			return
		}
	}

	view, err := h.session.Load(r.Context(), req.Overwrite)
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Discard(r.Context()); err != nil {
		h.writeDraftError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeError(w, http.StatusServiceUnavailable, "drafts_disabled", session.ErrNoStore.Error())
		return
	}

	opts := store.DefaultListOptions()
	drafts, err := h.store.ListDrafts(r.Context(), opts)
	if err != nil {
		h.logger.Error("failed to list drafts", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to list drafts")
		return
	}

	resp := ListDraftsResponse{Drafts: make([]DraftResponse, 0, len(drafts)), Limit: opts.Limit, Offset: opts.Offset}
	for _, d := range drafts {
		resp.Drafts = append(resp.Drafts, DraftResponse{
			Key:        d.Key,
			Step:       d.Step,
			TemplateID: d.TemplateID,
			CreatedAt:  d.CreatedAt,
			UpdatedAt:  d.UpdatedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Helper Functions
// =============================================================================

// actionStatus maps a decode or apply error to an HTTP status and error code.
func actionStatus(err error) (int, string) {
	var transition *wizard.TransitionError
	var input *domain.InputError
	switch {
	case errors.As(err, &transition):
		return http.StatusConflict, "transition_refused"
	case errors.As(err, &input):
		return http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, wizard.ErrUnknownAction):
		return http.StatusBadRequest, "unknown_action"
	case errors.Is(err, wizard.ErrUnknownTemplate),
		errors.Is(err, canvas.ErrServiceNotFound),
		errors.Is(err, topology.ErrNetworkNotFound),
		errors.Is(err, topology.ErrVolumeNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, wizard.ErrStackReadOnly),
		errors.Is(err, wizard.ErrNoTemplateSelected),
		errors.Is(err, topology.ErrDuplicateNetwork),
		errors.Is(err, topology.ErrDuplicateVolume),
		errors.Is(err, topology.ErrDefaultNetwork):
		return http.StatusConflict, "conflict"
	case errors.Is(err, topology.ErrInvalidNetworkName),
		errors.Is(err, topology.ErrInvalidVolumeName),
		errors.Is(err, topology.ErrInvalidVolumeType):
		return http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, wizard.ErrNoCatalog):
		return http.StatusServiceUnavailable, "no_catalog"
	default:
		return http.StatusBadRequest, "invalid_action"
	}
}

func (h *Handler) writeActionError(w http.ResponseWriter, err error) {
	status, code := actionStatus(err)
	resp := ErrorResponse{Error: err.Error(), Code: code}
	var transition *wizard.TransitionError
	if errors.As(err, &transition) {
		resp.Findings = transition.Findings
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) writeDraftError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrConfirmRequired):
		h.writeError(w, http.StatusConflict, "confirm_required", err.Error())
	case errors.Is(err, session.ErrNoDraft):
		h.writeError(w, http.StatusNotFound, "draft_not_found", err.Error())
	case errors.Is(err, session.ErrNoStore):
		h.writeError(w, http.StatusServiceUnavailable, "drafts_disabled", err.Error())
	default:
		h.logger.Error("draft operation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "draft operation failed")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
