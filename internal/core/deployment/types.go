package deployment

import (
	"time"

	"github.com/artpar/stackwizard/internal/core/canvas"
	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/artpar/stackwizard/internal/core/topology"
)

// =============================================================================
// Plan Types
// =============================================================================

// Plan is the deployment plan produced next to the manifest. It is what a
// DeployExecutor would act on; nothing here is executed by this module.
type Plan struct {
	DeploymentID string             `json:"deployment_id"`
	TemplateID   string             `json:"template_id,omitempty"`
	StartOrder   []string           `json:"start_order"`
	Networks     []string           `json:"networks"`
	Volumes      []VolumePlan       `json:"volumes"`
	Services     []ServicePlan      `json:"services"`
	Placements   []canvas.Placement `json:"placements"`
}

// ServicePlan is the planned container for one service.
type ServicePlan struct {
	Name          string            `json:"name"`
	ContainerName string            `json:"container_name,omitempty"`
	Image         string            `json:"image"`
	Command       string            `json:"command,omitempty"`
	Env           []EnvPlan         `json:"env"`
	Labels        map[string]string `json:"labels"`
	Ports         []PortPlan        `json:"ports"`
	Mounts        []MountPlan       `json:"mounts"`
	Networks      []string          `json:"networks"`
	RestartPolicy string            `json:"restart_policy"`
	Resources     ResourcePlan      `json:"resources"`
	HealthCheck   *HealthCheckPlan  `json:"health_check,omitempty"`
	DependsOn     []string          `json:"depends_on,omitempty"`
}

// EnvPlan is one environment entry. Secret values are kept but flagged so
// renderers can mask them.
type EnvPlan struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Secret bool   `json:"secret"`
}

// PortPlan is a planned port binding.
type PortPlan struct {
	ContainerPort int    `json:"container_port"`
	HostPort      int    `json:"host_port"`
	Protocol      string `json:"protocol"`
}

// MountPlan is a planned mount. Named volumes carry their namespaced name.
type MountPlan struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Named  bool   `json:"named"`
}

// VolumePlan is a planned top-level volume.
type VolumePlan struct {
	Name       string              `json:"name"`
	Namespaced string              `json:"namespaced"`
	Type       topology.VolumeType `json:"type"`
}

// ResourcePlan holds resource limits.
type ResourcePlan struct {
	CPULimit    float64 `json:"cpu_limit"`
	MemoryLimit int64   `json:"memory_limit_bytes"`
}

// HealthCheckPlan holds a health check configuration.
type HealthCheckPlan struct {
	Test     []string      `json:"test"`
	Interval time.Duration `json:"interval"`
	Timeout  time.Duration `json:"timeout"`
	Retries  int           `json:"retries"`
}

// =============================================================================
// Builder Parameter Types
// =============================================================================

// BuildPlanParams contains all inputs for building a plan.
type BuildPlanParams struct {
	DeploymentID string
	TemplateID   string
	Target       domain.Target
	Networks     []string
	Volumes      []topology.Volume
	Placements   []canvas.Placement
}

// =============================================================================
// Container Labels
// =============================================================================

// Label keys attached to every planned container.
const (
	LabelManaged    = "com.stackwizard.managed"
	LabelDeployment = "com.stackwizard.deployment"
	LabelTemplate   = "com.stackwizard.template"
	LabelService    = "com.stackwizard.service"
)
