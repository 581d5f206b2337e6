// Package simulator replays the fixed deployment stage sequence shown on the
// review step. It performs no orchestration and touches no wizard state.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/artpar/stackwizard/internal/core/compose"
)

// ErrNoManifest is returned when Run is given an empty manifest.
var ErrNoManifest = errors.New("no manifest to simulate")

// Stage is one step of the simulated deployment.
type Stage struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Stages is the fixed, ordered stage list.
var Stages = []Stage{
	{Key: "validate", Label: "Validating configuration"},
	{Key: "generate", Label: "Generating manifest"},
	{Key: "pull", Label: "Pulling images"},
	{Key: "networks", Label: "Creating networks"},
	{Key: "volumes", Label: "Creating volumes"},
	{Key: "start", Label: "Starting containers"},
	{Key: "health", Label: "Running health checks"},
	{Key: "complete", Label: "Deployment complete"},
}

// DefaultStageDelay is the pause before each stage completes.
const DefaultStageDelay = 800 * time.Millisecond

// Status is the state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusCancelled Status = "cancelled"
)

// Event is emitted after each completed stage.
type Event struct {
	Index   int       `json:"index"` // 1-based
	Total   int       `json:"total"`
	Stage   Stage     `json:"stage"`
	Percent float64   `json:"percent"`
	Line    string    `json:"line"`
	Time    time.Time `json:"time"`
	Status  Status    `json:"status"`
}

// Result summarizes a finished or abandoned run.
type Result struct {
	Status    Status   `json:"status"`
	Services  []string `json:"services"`
	Completed int      `json:"completed"`
	Percent   float64  `json:"percent"`
	Log       []string `json:"log"`
}

// Percent returns the progress after completed of total stages.
func Percent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// Simulator replays Stages with a fixed delay.
type Simulator struct {
	delay  time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// New creates a simulator. A negative delay is treated as zero.
func New(delay time.Duration, logger *slog.Logger) *Simulator {
	if delay < 0 {
		delay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{delay: delay, now: time.Now, logger: logger.With("component", "simulator")}
}

// Run replays every stage for the given manifest, calling observe (if
// non-nil) after each one. The manifest must parse; its services are listed
// in the result. Cancelling ctx stops the run before the next stage
// completes; the result then reports StatusCancelled along with ctx.Err().
func (s *Simulator) Run(ctx context.Context, manifest string, observe func(Event)) (Result, error) {
	total := len(Stages)
	res := Result{Status: StatusRunning, Services: []string{}, Log: make([]string, 0, total)}

	spec, err := compose.ParseComposeSpec(manifest)
	if err != nil {
		if errors.Is(err, compose.ErrEmptyInput) {
			return res, ErrNoManifest
		}
		return res, fmt.Errorf("simulate: %w", err)
	}
	for _, svc := range spec.Services {
		res.Services = append(res.Services, svc.Name)
	}

	for i, stage := range Stages {
		if err := s.wait(ctx); err != nil {
			res.Status = StatusCancelled
			s.logger.Info("simulation cancelled", "completed", res.Completed, "total", total)
			return res, err
		}

		ts := s.now()
		res.Completed = i + 1
		res.Percent = Percent(res.Completed, total)
		line := fmt.Sprintf("[%s] %s", ts.Format("15:04:05"), stage.Label)
		res.Log = append(res.Log, line)
		if res.Completed == total {
			res.Status = StatusSucceeded
		}

		if observe != nil {
			observe(Event{
				Index:   res.Completed,
				Total:   total,
				Stage:   stage,
				Percent: res.Percent,
				Line:    line,
				Time:    ts,
				Status:  res.Status,
			})
		}
	}

	s.logger.Debug("simulation finished", "stages", total, "services", len(res.Services))
	return res, nil
}

func (s *Simulator) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.delay == 0 {
		return nil
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
