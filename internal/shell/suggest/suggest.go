// Package suggest produces optional advice for a service configuration.
// Suggestions are best-effort: failures never reach the wizard.
package suggest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/artpar/stackwizard/internal/core/domain"
)

// Analyzer returns suggestions for a config.
type Analyzer interface {
	Analyze(ctx context.Context, cfg domain.ServiceConfig) ([]string, error)
}

// DefaultTimeout bounds a best-effort call.
const DefaultTimeout = 5 * time.Second

// BestEffort calls a with a timeout and returns nil on any failure. A nil
// analyzer yields no suggestions.
func BestEffort(ctx context.Context, a Analyzer, cfg domain.ServiceConfig, timeout time.Duration, logger *slog.Logger) []string {
	if a == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := a.Analyze(ctx, cfg)
	if err != nil {
		logger.Warn("suggestions unavailable", "component", "suggest", "error", err)
		return nil
	}
	return out
}

// ForTarget runs BestEffort for every service of t. Suggestions for stack
// members are prefixed with the member name.
func ForTarget(ctx context.Context, a Analyzer, t domain.Target, timeout time.Duration, logger *slog.Logger) []string {
	if a == nil || t == nil {
		return nil
	}
	_, stack := t.(domain.StackTarget)

	var out []string
	for _, svc := range t.Services() {
		for _, s := range BestEffort(ctx, a, svc, timeout, logger) {
			if stack {
				s = svc.Name + ": " + s
			}
			out = append(out, s)
		}
	}
	return out
}

// Rules is an offline analyzer built from simple heuristics.
type Rules struct{}

// Analyze implements Analyzer.
func (Rules) Analyze(ctx context.Context, cfg domain.ServiceConfig) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []string
	image := strings.TrimSpace(cfg.Image)
	if image != "" && (!strings.Contains(lastSegment(image), ":") || strings.HasSuffix(image, ":latest")) {
		out = append(out, "Pin the image to a specific version tag instead of latest")
	}
	if cfg.HealthcheckCommand == "" {
		out = append(out, "Add a healthcheck so failed containers are detected")
	}
	if cfg.RestartPolicy == domain.RestartNo || cfg.RestartPolicy == "" {
		out = append(out, "Use a restart policy such as unless-stopped for long-running services")
	}
	for _, p := range cfg.Ports {
		if p.Host > 0 && p.Host < 1024 {
			out = append(out, "Host ports below 1024 need elevated privileges on most hosts")
			break
		}
	}
	return out, nil
}

func lastSegment(image string) string {
	if i := strings.LastIndex(image, "/"); i >= 0 {
		return image[i+1:]
	}
	return image
}
