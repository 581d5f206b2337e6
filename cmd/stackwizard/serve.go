package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artpar/stackwizard/internal/shell/api"
	"github.com/artpar/stackwizard/internal/shell/session"
	"github.com/artpar/stackwizard/internal/shell/workers"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the wizard HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port, _ = cmd.Flags().GetInt("port")
			}
			logger.Info("starting stackwizard", "version", Version)

			server, err := NewServer(cfg, logger)
			if err != nil {
				return err
			}
			return server.Start(cmd.Context())
		},
	}
	cmd.Flags().Int("port", 0, "listen port (overrides server.port)")
	return cmd
}

// =============================================================================
// Server
// =============================================================================

// Server runs the HTTP API and the autosave worker around one session.
type Server struct {
	config     *Config
	app        *app
	httpServer *http.Server
	autosaver  *workers.Autosaver
	logger     *slog.Logger
}

// NewServer creates a new server with the given config.
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	a, err := newApp(cfg, logger, appOptions{Drafts: true, Deploy: true})
	if err != nil {
		return nil, err
	}

	// Pick up where the last run left off.
	if _, err := a.session.Load(context.Background(), false); err == nil {
		logger.Info("resumed saved draft", "key", cfg.Drafts.Key)
	} else if !errors.Is(err, session.ErrNoDraft) {
		logger.Warn("failed to resume saved draft", "error", err)
	}

	var autosaver *workers.Autosaver
	if cfg.Drafts.AutosaveInterval > 0 {
		autosaver = workers.NewAutosaver(a.session, workers.AutosaverConfig{
			Interval: cfg.Drafts.AutosaveInterval,
			Timeout:  workers.DefaultAutosaverConfig().Timeout,
		}, logger)
	}

	handler := api.NewHandler(api.Config{
		Session:        a.session,
		Catalog:        a.catalog,
		Store:          a.store,
		Analyzer:       a.analyzer,
		SuggestTimeout: cfg.Suggest.Timeout,
		Simulator:      a.simulator,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		app:        a,
		httpServer: httpServer,
		autosaver:  autosaver,
		logger:     logger,
	}, nil
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if s.autosaver != nil {
		s.autosaver.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		s.Shutdown(context.Background())
		return &ServerError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown stops the HTTP server, flushes the session one last time and
// closes the draft store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.autosaver != nil {
		s.autosaver.Stop()
	}

	s.app.Close()

	s.logger.Info("shutdown complete")
	return nil
}
