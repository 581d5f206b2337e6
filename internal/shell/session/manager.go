package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/artpar/stackwizard/internal/core/deployment"
	"github.com/artpar/stackwizard/internal/core/validation"
	"github.com/artpar/stackwizard/internal/core/wizard"
	"github.com/artpar/stackwizard/internal/shell/executor"
	"github.com/artpar/stackwizard/internal/shell/store"
)

// DefaultDraftKey is the key the session saves under when none is configured.
const DefaultDraftKey = "default"

var (
	// ErrConfirmRequired is returned when loading a draft would overwrite a
	// session that holds work. Retry with overwrite set.
	ErrConfirmRequired = errors.New("loading the draft would overwrite the current session")
	ErrNoDraft         = errors.New("no draft saved")
	ErrNoStore         = errors.New("no draft store configured")
	ErrNoExecutor      = errors.New("no deploy executor configured")
	ErrNotDeployable   = errors.New("session is not ready to deploy")
)

// Config configures a Manager.
type Config struct {
	Env      wizard.Env
	Store    store.DraftStore  // optional
	Executor executor.Executor // optional
	DraftKey string
	Logger   *slog.Logger
}

// Deployment is the outcome of a successful Deploy.
type Deployment struct {
	DeploymentID string           `json:"deployment_id"`
	Manifest     string           `json:"manifest"`
	Plan         deployment.Plan  `json:"plan"`
	Receipt      executor.Receipt `json:"receipt"`
}

// Manager is a concurrency-safe wrapper around one wizard.Machine.
type Manager struct {
	mu      sync.Mutex
	machine *wizard.Machine
	version uint64 // bumped on every successful mutation
	saved   uint64 // version last written to the store

	store  store.DraftStore
	exec   executor.Executor
	key    string
	logger *slog.Logger
}

// NewManager creates a manager with a fresh session.
func NewManager(cfg Config) *Manager {
	if cfg.DraftKey == "" {
		cfg.DraftKey = DefaultDraftKey
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		machine: wizard.NewMachine(cfg.Env),
		store:   cfg.Store,
		exec:    cfg.Executor,
		key:     cfg.DraftKey,
		logger:  cfg.Logger.With("component", "session"),
	}
}

// =============================================================================
// Wizard Access
// =============================================================================

// Apply applies an action and returns the resulting view.
func (m *Manager) Apply(a wizard.Action) (wizard.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.machine.Apply(a); err != nil {
		return m.machine.View(), err
	}
	m.version++
	return m.machine.View(), nil
}

// View returns the current view.
func (m *Manager) View() wizard.View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.View()
}

// Dirty reports whether the session changed since the last save.
func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version != m.saved
}

// =============================================================================
// Drafts
// =============================================================================

// Save writes the current state to the draft store.
func (m *Manager) Save(ctx context.Context) error {
	_, err := m.flush(ctx, true)
	return err
}

// Flush saves the state only if it changed since the last save. The store is
// written without holding the session lock.
func (m *Manager) Flush(ctx context.Context) (bool, error) {
	return m.flush(ctx, false)
}

func (m *Manager) flush(ctx context.Context, force bool) (bool, error) {
	if m.store == nil {
		return false, ErrNoStore
	}

	m.mu.Lock()
	if !force && m.version == m.saved {
		m.mu.Unlock()
		return false, nil
	}
	state := m.machine.State()
	version := m.version
	m.mu.Unlock()

	data, err := EncodeDraft(state)
	if err != nil {
		return false, err
	}
	draft := &store.Draft{Key: m.key, Step: int(state.Step), Data: data}
	if state.SelectedTemplate != nil {
		draft.TemplateID = state.SelectedTemplate.ID
	}
	if err := m.store.SaveDraft(ctx, draft); err != nil {
		return false, err
	}

	m.mu.Lock()
	if version > m.saved {
		m.saved = version
	}
	m.mu.Unlock()

	m.logger.Debug("draft saved", "key", m.key, "step", state.Step.String())
	return true, nil
}

// Load replaces the session with the saved draft. When the session holds work
// and overwrite is false, ErrConfirmRequired is returned and nothing changes.
// A draft that cannot be decoded is logged, deleted and reported as ErrNoDraft.
func (m *Manager) Load(ctx context.Context, overwrite bool) (wizard.View, error) {
	if m.store == nil {
		return m.View(), ErrNoStore
	}

	m.mu.Lock()
	pristine := m.machine.State().IsPristine()
	m.mu.Unlock()
	if !pristine && !overwrite {
		return m.View(), ErrConfirmRequired
	}

	// A corrupt draft is read and deleted in one transaction.
	var state wizard.State
	discarded := false
	err := m.store.WithTx(ctx, func(tx store.DraftStore) error {
		draft, err := tx.GetDraft(ctx, m.key)
		if err != nil {
			return err
		}
		decoded, err := DecodeDraft(draft.Data)
		if err != nil {
			m.logger.Warn("discarding corrupt draft", "key", m.key, "error", err)
			discarded = true
			return tx.DeleteDraft(ctx, m.key)
		}
		state = decoded
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return m.View(), ErrNoDraft
		}
		return m.View(), err
	}
	if discarded {
		return m.View(), ErrNoDraft
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.machine.Restore(state)
	m.version++
	m.saved = m.version
	return m.machine.View(), nil
}

// Discard deletes the saved draft.
func (m *Manager) Discard(ctx context.Context) error {
	if m.store == nil {
		return ErrNoStore
	}
	err := m.store.DeleteDraft(ctx, m.key)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNoDraft
	}
	return err
}

// =============================================================================
// Deploy
// =============================================================================

// Deploy submits the reviewed manifest and plan to the executor and records
// the deployment ID in the session.
func (m *Manager) Deploy(ctx context.Context) (Deployment, error) {
	if m.exec == nil {
		return Deployment{}, ErrNoExecutor
	}

	m.mu.Lock()
	if !m.machine.CanDeploy() {
		step := m.machine.Step()
		blocking := m.machine.FinalFindings().Count(validation.SeverityError)
		m.mu.Unlock()
		if step != wizard.StepReview {
			return Deployment{}, fmt.Errorf("%w: on step %s", ErrNotDeployable, step)
		}
		return Deployment{}, fmt.Errorf("%w: %d blocking findings", ErrNotDeployable, blocking)
	}
	res, err := m.machine.Manifest()
	state := m.machine.State()
	m.mu.Unlock()
	if err != nil {
		return Deployment{}, err
	}

	id := executor.NewID()
	params := deployment.BuildPlanParams{
		DeploymentID: id,
		Target:       state.Target(),
		Networks:     state.Networks,
		Volumes:      state.Volumes,
		Placements:   state.Canvas.Placements(),
	}
	if state.SelectedTemplate != nil {
		params.TemplateID = state.SelectedTemplate.ID
	}
	plan, err := deployment.BuildPlan(params)
	if err != nil {
		return Deployment{}, err
	}

	receipt, err := m.exec.Submit(ctx, executor.Submission{DeploymentID: id, Manifest: res.Text, Plan: plan})
	if err != nil {
		return Deployment{}, fmt.Errorf("submit deployment: %w", err)
	}

	if _, err := m.Apply(wizard.SetDeploymentID{ID: receipt.DeploymentID}); err != nil {
		m.logger.Warn("deployment submitted but session moved on", "deployment_id", receipt.DeploymentID, "error", err)
	}

	m.logger.Info("deployment submitted", "deployment_id", receipt.DeploymentID, "services", len(plan.Services))
	return Deployment{DeploymentID: receipt.DeploymentID, Manifest: res.Text, Plan: plan, Receipt: receipt}, nil
}
