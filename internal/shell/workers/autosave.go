// Package workers contains background workers for stackwizard.
package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Flusher persists pending changes, reporting whether anything was written.
type Flusher interface {
	Flush(ctx context.Context) (bool, error)
}

// AutosaverConfig configures the autosave worker.
type AutosaverConfig struct {
	// Interval is the time between autosave cycles.
	// Default: 30 seconds.
	Interval time.Duration

	// Timeout bounds a single save.
	// Default: 5 seconds.
	Timeout time.Duration
}

// DefaultAutosaverConfig returns the default configuration.
func DefaultAutosaverConfig() AutosaverConfig {
	return AutosaverConfig{
		Interval: 30 * time.Second,
		Timeout:  5 * time.Second,
	}
}

// Autosaver periodically flushes a session to its draft store. Saves are
// fire-and-forget: failures are logged and retried on the next tick.
type Autosaver struct {
	flusher Flusher
	config  AutosaverConfig
	logger  *slog.Logger

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAutosaver creates a new autosave worker.
func NewAutosaver(f Flusher, config AutosaverConfig, logger *slog.Logger) *Autosaver {
	if config.Interval == 0 {
		config.Interval = 30 * time.Second
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Autosaver{
		flusher: f,
		config:  config,
		logger:  logger.With("component", "autosaver"),
	}
}

// Start begins the autosave background goroutine.
func (a *Autosaver) Start() {
	a.ctx, a.cancel = context.WithCancel(context.Background())

	a.wg.Add(1)
	go a.run()

	a.logger.Info("autosaver started", "interval", a.config.Interval)
}

// Stop stops the worker and performs one last save.
func (a *Autosaver) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), a.config.Timeout)
	defer cancel()
	a.flush(ctx)

	a.logger.Info("autosaver stopped")
}

// run is the main loop that saves periodically.
func (a *Autosaver) run() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.runCycle()
		}
	}
}

// runCycle executes a single save.
func (a *Autosaver) runCycle() {
	ctx, cancel := context.WithTimeout(a.ctx, a.config.Timeout)
	defer cancel()
	a.flush(ctx)
}

func (a *Autosaver) flush(ctx context.Context) {
	saved, err := a.flusher.Flush(ctx)
	if err != nil {
		a.logger.Warn("autosave failed", "error", err)
		return
	}
	if saved {
		a.logger.Debug("draft autosaved")
	}
}
