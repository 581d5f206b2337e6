package deployment

import (
	"time"

	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/artpar/stackwizard/internal/core/manifest"
)

// =============================================================================
// Service Plan Building Functions
// =============================================================================

const bytesPerGiB = 1024 * 1024 * 1024

// buildServicePlan plans the container for one service.
//
// The function:
//   - Sets container_name exactly as the manifest does (single services only)
//   - Copies image, command and environment from the config
//   - Prefixes named volumes with the deployment ID
//   - Attaches the service to every deployment network
//   - Uses the manifest healthcheck timing
//   - Forces restart=always for stack members, like the manifest does
func buildServicePlan(p BuildPlanParams, svc domain.ServiceConfig, networks []string, stack bool) ServicePlan {
	plan := ServicePlan{
		Name:          svc.Name,
		Image:         svc.Image,
		Command:       svc.Command,
		Env:           make([]EnvPlan, 0, len(svc.Environment)),
		Labels: map[string]string{
			LabelManaged:    "true",
			LabelDeployment: p.DeploymentID,
			LabelTemplate:   p.TemplateID,
			LabelService:    svc.Name,
		},
		Ports:     ConvertPorts(svc.Ports),
		Mounts:    make([]MountPlan, 0, len(svc.Volumes)),
		Networks:  networks,
		DependsOn: append([]string(nil), svc.DependsOn...),
	}

	for _, e := range svc.Environment {
		if e.Key == "" {
			continue
		}
		plan.Env = append(plan.Env, EnvPlan{Key: e.Key, Value: e.Value, Secret: e.Secret})
	}

	for _, v := range svc.Volumes {
		mount := MountPlan{Source: v.HostPath, Target: v.ContainerPath}
		if v.IsNamed() {
			mount.Source = VolumeName(p.DeploymentID, v.HostPath)
			mount.Named = true
		}
		plan.Mounts = append(plan.Mounts, mount)
	}

	if stack {
		plan.RestartPolicy = string(manifest.StackRestartPolicy)
	} else {
		plan.ContainerName = svc.Name
		plan.RestartPolicy = mapRestartPolicy(svc.RestartPolicy)
		if svc.HealthcheckCommand != "" {
			plan.HealthCheck = &HealthCheckPlan{
				Test:    []string{"CMD-SHELL", svc.HealthcheckCommand},
				Retries: manifest.HealthcheckRetries,
			}
			if d, err := time.ParseDuration(manifest.HealthcheckInterval); err == nil {
				plan.HealthCheck.Interval = d
			}
			if d, err := time.ParseDuration(manifest.HealthcheckTimeout); err == nil {
				plan.HealthCheck.Timeout = d
			}
		}
	}

	if svc.CPUCores > 0 {
		plan.Resources.CPULimit = svc.CPUCores
	}
	if svc.MemoryGiB > 0 {
		plan.Resources.MemoryLimit = int64(svc.MemoryGiB * bytesPerGiB)
	}

	return plan
}

// mapRestartPolicy maps a restart policy to the runtime name. Unknown or
// empty policies fall back to the default.
func mapRestartPolicy(policy domain.RestartPolicy) string {
	if policy.IsValid() {
		return string(policy)
	}
	return string(domain.DefaultRestartPolicy)
}
