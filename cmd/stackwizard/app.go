package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/artpar/stackwizard/internal/core/catalog"
	"github.com/artpar/stackwizard/internal/core/wizard"
	"github.com/artpar/stackwizard/internal/shell/catalogsrc"
	"github.com/artpar/stackwizard/internal/shell/executor"
	"github.com/artpar/stackwizard/internal/shell/session"
	"github.com/artpar/stackwizard/internal/shell/simulator"
	"github.com/artpar/stackwizard/internal/shell/store"
	"github.com/artpar/stackwizard/internal/shell/suggest"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDatabaseError   = 2
	ExitHTTPServerError = 3
	ExitNotDeployable   = 4
)

// appOptions selects which collaborators a command needs.
type appOptions struct {
	Drafts bool // open the draft store
	Deploy bool // write deployments to deploy.output_dir
}

// app bundles the collaborators shared by every command.
type app struct {
	cfg       *Config
	logger    *slog.Logger
	catalog   *catalog.Catalog
	store     *store.SQLiteStore // nil unless appOptions.Drafts
	session   *session.Manager
	analyzer  suggest.Analyzer
	simulator *simulator.Simulator
}

func newApp(cfg *Config, logger *slog.Logger, opts appOptions) (*app, error) {
	a := &app{
		cfg:       cfg,
		logger:    logger,
		catalog:   catalogsrc.Load(cfg.Catalog.Path, logger),
		analyzer:  newAnalyzer(cfg.Suggest, logger),
		simulator: simulator.New(cfg.Simulator.StageDelay, logger),
	}

	sessCfg := session.Config{
		Env:      wizard.Env{Templates: a.catalog, NewID: executor.NewID},
		DraftKey: cfg.Drafts.Key,
		Logger:   logger,
	}

	if opts.Drafts {
		s, err := openStore(cfg.Database.DSN)
		if err != nil {
			return nil, &ServerError{Op: "OpenStore", Err: err, ExitCode: ExitDatabaseError}
		}
		a.store = s
		sessCfg.Store = s
	}
	if opts.Deploy {
		sessCfg.Executor = executor.NewFileExecutor(cfg.Deploy.OutputDir, logger)
	}

	a.session = session.NewManager(sessCfg)
	return a, nil
}

// Close releases the draft store, if any.
func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("database close error", "error", err)
	}
}

func openStore(dsn string) (*store.SQLiteStore, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return store.NewSQLiteStore(dsn)
}

// newAnalyzer returns the remote suggestion client when configured, and the
// local heuristics otherwise.
func newAnalyzer(cfg SuggestConfig, logger *slog.Logger) suggest.Analyzer {
	if !cfg.Enabled || cfg.URL == "" {
		return suggest.Rules{}
	}
	return suggest.NewClient(suggest.ClientConfig{
		URL:      cfg.URL,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		Timeout:  cfg.Timeout,
		RetryMax: cfg.RetryMax,
	}, logger)
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error that ends the process with ExitCode.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
