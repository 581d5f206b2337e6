// Package executor hands a reviewed deployment to whatever will run it.
// The only implementation here writes the manifest and plan to disk.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/artpar/stackwizard/internal/core/deployment"
	"github.com/google/uuid"
)

var (
	ErrEmptyManifest  = errors.New("manifest is empty")
	ErrNoDeploymentID = errors.New("deployment id is required")
)

// File names written for every submission.
const (
	ManifestFile = "docker-compose.yml"
	PlanFile     = "plan.json"
)

// Submission is one reviewed deployment.
type Submission struct {
	DeploymentID string
	Manifest     string
	Plan         deployment.Plan
}

// Receipt is what an executor returns for an accepted submission.
type Receipt struct {
	DeploymentID string `json:"deployment_id"`
	Location     string `json:"location,omitempty"`
}

// Executor accepts reviewed deployments.
type Executor interface {
	Submit(ctx context.Context, sub Submission) (Receipt, error)
}

// NewID returns a time-ordered UUID, used for deployments and canvas nodes.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// =============================================================================
// FileExecutor
// =============================================================================

// FileExecutor writes each submission to <dir>/<deployment id>/.
type FileExecutor struct {
	dir    string
	logger *slog.Logger
}

// NewFileExecutor creates an executor rooted at dir.
func NewFileExecutor(dir string, logger *slog.Logger) *FileExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileExecutor{dir: dir, logger: logger.With("component", "file_executor")}
}

// Submit writes the manifest and the JSON plan.
func (e *FileExecutor) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if sub.DeploymentID == "" {
		return Receipt{}, ErrNoDeploymentID
	}
	if strings.ContainsAny(sub.DeploymentID, `/\`) || sub.DeploymentID == "." || sub.DeploymentID == ".." {
		return Receipt{}, fmt.Errorf("invalid deployment id %q", sub.DeploymentID)
	}
	if strings.TrimSpace(sub.Manifest) == "" {
		return Receipt{}, ErrEmptyManifest
	}

	dir := filepath.Join(e.dir, sub.DeploymentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Receipt{}, fmt.Errorf("create deployment dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(sub.Manifest), 0o644); err != nil {
		return Receipt{}, fmt.Errorf("write manifest: %w", err)
	}

	plan, err := json.MarshalIndent(sub.Plan, "", "  ")
	if err != nil {
		return Receipt{}, fmt.Errorf("encode plan: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, PlanFile), plan, 0o644); err != nil {
		return Receipt{}, fmt.Errorf("write plan: %w", err)
	}

	e.logger.Info("deployment submitted",
		"deployment_id", sub.DeploymentID,
		"services", len(sub.Plan.Services),
		"dir", dir,
	)
	return Receipt{DeploymentID: sub.DeploymentID, Location: dir}, nil
}
