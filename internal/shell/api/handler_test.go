package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/stackwizard/internal/core/catalog"
	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/artpar/stackwizard/internal/core/wizard"
	"github.com/artpar/stackwizard/internal/shell/executor"
	"github.com/artpar/stackwizard/internal/shell/session"
	"github.com/artpar/stackwizard/internal/shell/simulator"
	"github.com/artpar/stackwizard/internal/shell/store"
	"github.com/artpar/stackwizard/internal/shell/suggest"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestHandler(t *testing.T) *Handler {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	mgr := session.NewManager(session.Config{
		Env:      wizard.Env{Templates: catalog.Builtin()},
		Store:    s,
		Executor: executor.NewFileExecutor(t.TempDir(), nil),
	})
	return NewHandler(Config{
		Session:   mgr,
		Catalog:   catalog.Builtin(),
		Store:     s,
		Analyzer:  suggest.Rules{},
		Simulator: simulator.New(0, nil),
	})
}

func doRequest(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func postAction(t *testing.T, h *Handler, envelope string) *httptest.ResponseRecorder {
	t.Helper()
	return doRequest(t, h, http.MethodPost, "/api/v1/session/actions", envelope)
}

func mustPostActions(t *testing.T, h *Handler, envelopes ...string) {
	t.Helper()
	for _, e := range envelopes {
		rec := postAction(t, h, e)
		require.Equal(t, http.StatusOK, rec.Code, "%s: %s", e, rec.Body.String())
	}
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const (
	selectNginx     = `{"type":"select_template","payload":{"template_id":"nginx"}}`
	selectWordpress = `{"type":"select_template","payload":{"template_id":"wordpress"}}`
	next            = `{"type":"next"}`
)

func toReview(t *testing.T, h *Handler) {
	t.Helper()
	mustPostActions(t, h, selectNginx, next, next, next, next)
}

// =============================================================================
// Health Tests
// =============================================================================

func TestHealth(t *testing.T) {
	h := setupTestHandler(t)
	rec := doRequest(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody[HealthResponse](t, rec).Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReady(t *testing.T) {
	h := setupTestHandler(t)
	rec := doRequest(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[ReadyResponse](t, rec)
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "ok", resp.Checks["drafts"])
}

// =============================================================================
// Template Tests
// =============================================================================

func TestListTemplates(t *testing.T) {
	h := setupTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[ListTemplatesResponse](t, rec)
	assert.Equal(t, catalog.Builtin().Len(), resp.Total)
	assert.Contains(t, resp.Categories, "stack")

	rec = doRequest(t, h, http.MethodGet, "/api/v1/templates?category=stack", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeBody[ListTemplatesResponse](t, rec)
	for _, tmpl := range resp.Templates {
		assert.Equal(t, "stack", tmpl.Category)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/v1/templates?category=none", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"templates":[]`)
}

func TestGetTemplate(t *testing.T) {
	h := setupTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/templates/redis", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"redis"`)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/templates/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "template_not_found", decodeBody[ErrorResponse](t, rec).Code)
}

func TestActionTypes(t *testing.T) {
	h := setupTestHandler(t)
	rec := doRequest(t, h, http.MethodGet, "/api/v1/action-types", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, wizard.ActionTypes(), decodeBody[ActionTypesResponse](t, rec).Types)
}

// =============================================================================
// Action Tests
// =============================================================================

func TestApplyAction_Success(t *testing.T) {
	h := setupTestHandler(t)

	rec := postAction(t, h, selectNginx)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[wizard.View](t, rec)
	assert.True(t, view.CanAdvance)
	require.NotNil(t, view.State.SelectedTemplate)
	assert.Equal(t, "nginx", view.State.SelectedTemplate.ID)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/session/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, wizard.StepTemplateSelect, decodeBody[wizard.View](t, rec).State.Step)
}

func TestApplyAction_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    []string
		envelope string
		status   int
		code     string
	}{
		{"malformed", nil, `{bad`, http.StatusBadRequest, "invalid_action"},
		{"unknown type", nil, `{"type":"fly"}`, http.StatusBadRequest, "unknown_action"},
		{"no template", nil, next, http.StatusConflict, "transition_refused"},
		{"unknown template", nil, `{"type":"select_template","payload":{"template_id":"nope"}}`, http.StatusNotFound, "not_found"},
		{"wrong step", nil, `{"type":"add_port","payload":{"host":"1","container":"1"}}`, http.StatusConflict, "transition_refused"},
		{"bad number", []string{selectNginx, next}, `{"type":"set_field","payload":{"field":"memory","value":"lots"}}`, http.StatusUnprocessableEntity, "invalid_input"},
		{"stack read only", []string{selectWordpress, next}, `{"type":"set_field","payload":{"field":"name","value":"x"}}`, http.StatusConflict, "conflict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupTestHandler(t)
			mustPostActions(t, h, tt.setup...)

			rec := postAction(t, h, tt.envelope)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeBody[ErrorResponse](t, rec).Code)
		})
	}
}

func TestApplyAction_BlockedIncludesFindings(t *testing.T) {
	h := setupTestHandler(t)
	mustPostActions(t, h, selectNginx, next, `{"type":"set_field","payload":{"field":"name","value":"Bad Name"}}`)

	rec := postAction(t, h, next)
	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "transition_refused", resp.Code)
	assert.True(t, resp.Findings.Blocking())
}

// =============================================================================
// Render Tests
// =============================================================================

func TestCanvasSVG(t *testing.T) {
	h := setupTestHandler(t)
	rec := doRequest(t, h, http.MethodGet, "/api/v1/session/canvas.svg", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))
}

func TestDiagramAndManifest_RequireStep(t *testing.T) {
	h := setupTestHandler(t)

	assert.Equal(t, http.StatusConflict, doRequest(t, h, http.MethodGet, "/api/v1/session/diagram.d2", "").Code)
	assert.Equal(t, http.StatusConflict, doRequest(t, h, http.MethodGet, "/api/v1/session/manifest", "").Code)

	toReview(t, h)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/session/diagram.d2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "direction: right")

	rec = doRequest(t, h, http.MethodGet, "/api/v1/session/manifest", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "services:\n  nginx:\n")
}

func TestSuggestions(t *testing.T) {
	h := setupTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/session/suggestions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decodeBody[SuggestionsResponse](t, rec).Suggestions)

	h.analyzer = nil
	rec = doRequest(t, h, http.MethodGet, "/api/v1/session/suggestions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"suggestions":[]}`, rec.Body.String())
}

// nameAnalyzer suggests the name of each analyzed service.
type nameAnalyzer struct{}

func (nameAnalyzer) Analyze(ctx context.Context, cfg domain.ServiceConfig) ([]string, error) {
	return []string{"check " + cfg.Name}, nil
}

func TestSuggestions_StackMembers(t *testing.T) {
	h := setupTestHandler(t)
	h.analyzer = nameAnalyzer{}
	mustPostActions(t, h, selectWordpress)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/session/suggestions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"wordpress: check wordpress", "db: check db"}, decodeBody[SuggestionsResponse](t, rec).Suggestions)
}

// =============================================================================
// Draft Tests
// =============================================================================

func TestDraftLifecycle(t *testing.T) {
	h := setupTestHandler(t)
	mustPostActions(t, h, selectNginx, next)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/session/draft", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/drafts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[ListDraftsResponse](t, rec)
	require.Len(t, list.Drafts, 1)
	assert.Equal(t, session.DefaultDraftKey, list.Drafts[0].Key)
	assert.Equal(t, "nginx", list.Drafts[0].TemplateID)

	mustPostActions(t, h, next)
	rec = doRequest(t, h, http.MethodPost, "/api/v1/session/draft/load", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "confirm_required", decodeBody[ErrorResponse](t, rec).Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/session/draft/load", `{"overwrite":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, wizard.StepConfigure, decodeBody[wizard.View](t, rec).State.Step)

	rec = doRequest(t, h, http.MethodDelete, "/api/v1/session/draft", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, "/api/v1/session/draft", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoadDraft_InvalidJSON(t *testing.T) {
	h := setupTestHandler(t)
	rec := doRequest(t, h, http.MethodPost, "/api/v1/session/draft/load", `{bad`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDrafts_NoStore(t *testing.T) {
	h := NewHandler(Config{Session: session.NewManager(session.Config{Env: wizard.Env{Templates: catalog.Builtin()}})})

	assert.Equal(t, http.StatusServiceUnavailable, doRequest(t, h, http.MethodGet, "/api/v1/drafts", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(t, h, http.MethodPost, "/api/v1/session/draft", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(t, h, http.MethodPost, "/api/v1/session/deploy", "").Code)
}

// =============================================================================
// Deploy Tests
// =============================================================================

func TestDeploy(t *testing.T) {
	h := setupTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/session/deploy", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not_deployable", decodeBody[ErrorResponse](t, rec).Code)

	toReview(t, h)
	rec = doRequest(t, h, http.MethodPost, "/api/v1/session/deploy", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dep := decodeBody[session.Deployment](t, rec)
	assert.NotEmpty(t, dep.DeploymentID)
	assert.Equal(t, []string{"nginx"}, dep.Plan.StartOrder)
	assert.Equal(t, dep.DeploymentID, h.session.View().State.DeploymentID)
}

// =============================================================================
// Simulation Tests
// =============================================================================

func TestSimulate_RequiresReview(t *testing.T) {
	h := setupTestHandler(t)
	rec := doRequest(t, h, http.MethodGet, "/api/v1/session/simulate", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSimulate_StreamsStages(t *testing.T) {
	h := setupTestHandler(t)
	toReview(t, h)

	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/session/simulate"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var stages []SimulationMessage
	var final SimulationMessage
	for {
		var msg SimulationMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != "stage" {
			final = msg
			break
		}
		stages = append(stages, msg)
	}

	require.Len(t, stages, len(simulator.Stages))
	assert.Equal(t, 1, stages[0].Event.Index)
	assert.Equal(t, "done", final.Type)
	require.NotNil(t, final.Result)
	assert.Equal(t, simulator.StatusSucceeded, final.Result.Status)
	assert.Equal(t, 100.0, final.Result.Percent)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}
