package catalog

import (
	"fmt"
	"strings"

	"github.com/artpar/stackwizard/internal/core/compose"
	"github.com/artpar/stackwizard/internal/core/domain"
)

// =============================================================================
// Compose Import
// =============================================================================

// Meta describes a template imported from a compose document.
type Meta struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Icon     string   `yaml:"icon"`
	Tags     []string `yaml:"tags"`
}

const bytesPerGiB = 1024 * 1024 * 1024

// FromCompose converts a compose document into a template. One service yields a
// single-container template, more than one a stack in parsed order.
func FromCompose(meta Meta, composeYAML string) (domain.Template, error) {
	spec, err := compose.ParseComposeSpec(composeYAML)
	if err != nil {
		return domain.Template{}, fmt.Errorf("import %q: %w", meta.ID, err)
	}

	t := domain.Template{
		ID:       meta.ID,
		Name:     meta.Name,
		Category: meta.Category,
		Icon:     meta.Icon,
		Tags:     domain.NormalizeTags(meta.Tags),
	}

	configs := make([]domain.ServiceConfig, 0, len(spec.Services))
	for _, svc := range spec.Services {
		configs = append(configs, serviceFromCompose(svc))
	}

	if len(configs) == 1 {
		t.Defaults = &configs[0]
	} else {
		t.Stack = configs
	}

	if errs := domain.ValidateTemplate(t); len(errs) > 0 {
		return domain.Template{}, fmt.Errorf("import %q: %w", meta.ID, errs[0])
	}
	return t, nil
}

func serviceFromCompose(svc compose.Service) domain.ServiceConfig {
	cfg := domain.NewServiceConfig()
	cfg.Name = domain.SuggestServiceName(svc.Name)
	cfg.Image = svc.Image
	cfg.Command = strings.Join(svc.Command, " ")

	for _, p := range svc.Ports {
		host := int(p.Published)
		if host == 0 {
			host = int(p.Target)
		}
		cfg.Ports = append(cfg.Ports, domain.PortMapping{Host: host, Container: int(p.Target)})
	}
	for _, e := range svc.Environment {
		cfg.Environment = append(cfg.Environment, domain.EnvVar{Key: e.Key, Value: e.Value})
	}
	for _, v := range svc.Volumes {
		if v.Source == "" {
			continue
		}
		cfg.Volumes = append(cfg.Volumes, domain.VolumeMapping{HostPath: v.Source, ContainerPath: v.Target})
	}

	if svc.MemoryLimit > 0 {
		cfg.MemoryGiB = float64(svc.MemoryLimit) / bytesPerGiB
	}
	if svc.CPULimit > 0 {
		cfg.CPUCores = svc.CPULimit
	}
	if p := domain.RestartPolicy(svc.Restart); p.IsValid() {
		cfg.RestartPolicy = p
	}
	if svc.HealthCheck != nil {
		cfg.HealthcheckCommand = healthcheckCommand(svc.HealthCheck.Test)
	}
	if len(svc.DependsOn) > 0 {
		cfg.DependsOn = append([]string(nil), svc.DependsOn...)
	}
	return cfg
}

// healthcheckCommand flattens a compose test array into a shell command.
func healthcheckCommand(test []string) string {
	if len(test) == 0 {
		return ""
	}
	switch test[0] {
	case "NONE":
		return ""
	case "CMD-SHELL", "CMD":
		return strings.Join(test[1:], " ")
	default:
		return strings.Join(test, " ")
	}
}
