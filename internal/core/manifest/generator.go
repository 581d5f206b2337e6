// Package manifest compiles a deployment target into compose v3.8 text and a
// deployment summary. Output depends only on the ordered lists in the input.
package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/artpar/stackwizard/internal/core/topology"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// ComposeVersion is written as the document's version key.
	ComposeVersion = "3.8"

	// Healthcheck timing written for every service with a healthcheck command.
	HealthcheckInterval = "30s"
	HealthcheckTimeout  = "10s"
	HealthcheckRetries  = 3

	// FootprintPerServiceMB is the flat per-service size estimate in the summary.
	FootprintPerServiceMB = 250

	// StackRestartPolicy is forced on every member of a stack.
	StackRestartPolicy = domain.RestartAlways
)

// ErrNoTarget is returned when there is nothing to generate.
var ErrNoTarget = errors.New("no deployment target")

// =============================================================================
// Types
// =============================================================================

// Input is everything the generator reads.
type Input struct {
	Target   domain.Target
	Networks []string
	Volumes  []topology.Volume
}

// Summary describes the size of a generated deployment.
type Summary struct {
	ServiceCount         int `json:"service_count"`
	NetworkCount         int `json:"network_count"`
	VolumeCount          int `json:"volume_count"`
	EstimatedFootprintMB int `json:"estimated_footprint_mb"`
}

// Result is the generated manifest text plus its summary.
type Result struct {
	Text    string  `json:"text"`
	Summary Summary `json:"summary"`
}

// =============================================================================
// Generation
// =============================================================================

// Generate writes the manifest for a target. Single targets use the full key
// set; stack members get the reduced set with a fixed restart policy.
func Generate(in Input) (Result, error) {
	if in.Target == nil {
		return Result{}, ErrNoTarget
	}

	var b strings.Builder
	fmt.Fprintf(&b, "version: '%s'\n\n", ComposeVersion)
	b.WriteString("services:\n")

	services := in.Target.Services()
	switch t := in.Target.(type) {
	case domain.SingleTarget:
		writeSingle(&b, t.Config)
	case domain.StackTarget:
		for _, svc := range t.Members {
			writeStackMember(&b, svc)
		}
	default:
		return Result{}, fmt.Errorf("%w: %T", ErrNoTarget, in.Target)
	}

	volumes := topology.NamedVolumes(in.Volumes, services)
	if len(volumes) > 0 {
		b.WriteString("\nvolumes:\n")
		for _, v := range volumes {
			fmt.Fprintf(&b, "  %s:\n", v)
		}
	}

	if len(in.Networks) > 1 {
		b.WriteString("\nnetworks:\n")
		for _, n := range in.Networks {
			fmt.Fprintf(&b, "  %s:\n", n)
		}
	}

	return Result{
		Text: b.String(),
		Summary: Summary{
			ServiceCount:         len(services),
			NetworkCount:         len(in.Networks),
			VolumeCount:          len(volumes),
			EstimatedFootprintMB: len(services) * FootprintPerServiceMB,
		},
	}, nil
}

func writeSingle(b *strings.Builder, cfg domain.ServiceConfig) {
	fmt.Fprintf(b, "  %s:\n", cfg.Name)
	fmt.Fprintf(b, "    image: %s\n", scalar(cfg.Image))
	fmt.Fprintf(b, "    container_name: %s\n", cfg.Name)
	writePorts(b, cfg.Ports)
	writeEnvironment(b, cfg.Environment)
	writeVolumes(b, cfg.Volumes)

	if cfg.MemoryGiB != 0 || cfg.CPUCores != 0 {
		b.WriteString("    deploy:\n      resources:\n        limits:\n")
		if cfg.MemoryGiB != 0 {
			fmt.Fprintf(b, "          memory: %sG\n", formatFloat(cfg.MemoryGiB))
		}
		if cfg.CPUCores != 0 {
			fmt.Fprintf(b, "          cpus: '%s'\n", formatFloat(cfg.CPUCores))
		}
	}

	restart := cfg.RestartPolicy
	if restart == "" {
		restart = domain.DefaultRestartPolicy
	}
	fmt.Fprintf(b, "    restart: %s\n", scalar(string(restart)))

	if cfg.HealthcheckCommand != "" {
		b.WriteString("    healthcheck:\n")
		fmt.Fprintf(b, "      test: [\"CMD-SHELL\", %s]\n", strconv.Quote(cfg.HealthcheckCommand))
		fmt.Fprintf(b, "      interval: %s\n", HealthcheckInterval)
		fmt.Fprintf(b, "      timeout: %s\n", HealthcheckTimeout)
		fmt.Fprintf(b, "      retries: %d\n", HealthcheckRetries)
	}
}

func writeStackMember(b *strings.Builder, svc domain.ServiceConfig) {
	fmt.Fprintf(b, "  %s:\n", svc.Name)
	fmt.Fprintf(b, "    image: %s\n", scalar(svc.Image))
	writePorts(b, svc.Ports)
	writeEnvironment(b, svc.Environment)
	writeVolumes(b, svc.Volumes)
	if len(svc.DependsOn) > 0 {
		b.WriteString("    depends_on:\n")
		for _, dep := range svc.DependsOn {
			fmt.Fprintf(b, "      - %s\n", dep)
		}
	}
	if svc.Command != "" {
		fmt.Fprintf(b, "    command: %s\n", scalar(svc.Command))
	}
	fmt.Fprintf(b, "    restart: %s\n", StackRestartPolicy)
}

func writePorts(b *strings.Builder, ports []domain.PortMapping) {
	if len(ports) == 0 {
		return
	}
	b.WriteString("    ports:\n")
	for _, p := range ports {
		fmt.Fprintf(b, "      - \"%d:%d\"\n", p.Host, p.Container)
	}
}

func writeEnvironment(b *strings.Builder, env []domain.EnvVar) {
	var entries []domain.EnvVar
	for _, e := range env {
		if e.Key != "" {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return
	}
	b.WriteString("    environment:\n")
	for _, e := range entries {
		fmt.Fprintf(b, "      %s: %s\n", scalar(e.Key), scalar(e.Value))
	}
}

func writeVolumes(b *strings.Builder, volumes []domain.VolumeMapping) {
	if len(volumes) == 0 {
		return
	}
	b.WriteString("    volumes:\n")
	for _, v := range volumes {
		fmt.Fprintf(b, "      - %s\n", scalar(v.HostPath+":"+v.ContainerPath))
	}
}

// scalar renders a string as a single-line YAML scalar, quoting only when
// a plain scalar would change its meaning.
func scalar(s string) string {
	if strings.ContainsAny(s, "\r\n") {
		return strconv.Quote(s)
	}
	out, err := yaml.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(string(out), "\n")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
