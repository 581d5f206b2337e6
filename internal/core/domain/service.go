package domain

import (
	"regexp"
	"strings"
)

// =============================================================================
// Restart Policy
// =============================================================================

// RestartPolicy controls when the container runtime restarts a service.
type RestartPolicy string

const (
	RestartNo            RestartPolicy = "no"
	RestartAlways        RestartPolicy = "always"
	RestartUnlessStopped RestartPolicy = "unless-stopped"
	RestartOnFailure     RestartPolicy = "on-failure"
)

// RestartPolicies lists every accepted policy in display order.
var RestartPolicies = []RestartPolicy{RestartNo, RestartAlways, RestartUnlessStopped, RestartOnFailure}

// IsValid checks if the restart policy is one of the known values.
func (p RestartPolicy) IsValid() bool {
	switch p {
	case RestartNo, RestartAlways, RestartUnlessStopped, RestartOnFailure:
		return true
	default:
		return false
	}
}

// =============================================================================
// Service Configuration
// =============================================================================

// PortMapping publishes a container port on the host.
type PortMapping struct {
	Host      int `json:"host" yaml:"host"`
	Container int `json:"container" yaml:"container"`
}

// EnvVar is one environment entry. Secret entries are masked in UIs.
type EnvVar struct {
	Key    string `json:"key" yaml:"key"`
	Value  string `json:"value" yaml:"value"`
	Secret bool   `json:"secret" yaml:"secret"`
}

// VolumeMapping mounts a host path or named volume into the container.
type VolumeMapping struct {
	HostPath      string `json:"host_path" yaml:"host_path"`
	ContainerPath string `json:"container_path" yaml:"container_path"`
}

// IsNamed reports whether the host side refers to a named volume rather than a path.
func (v VolumeMapping) IsNamed() bool {
	h := v.HostPath
	if h == "" {
		return false
	}
	return !(strings.HasPrefix(h, "/") || strings.HasPrefix(h, "./") ||
		strings.HasPrefix(h, "../") || strings.HasPrefix(h, "~") || h == ".")
}

// ServiceConfig is the normalized, mutable model of one deployment target.
// Slices are ordered; the manifest preserves their order.
type ServiceConfig struct {
	Name               string          `json:"name" yaml:"name"`
	Image              string          `json:"image" yaml:"image"`
	Ports              []PortMapping   `json:"ports" yaml:"ports"`
	Environment        []EnvVar        `json:"environment" yaml:"environment"`
	Volumes            []VolumeMapping `json:"volumes" yaml:"volumes"`
	MemoryGiB          float64         `json:"memory_gib" yaml:"memory_gib" validate:"gt=0"`
	CPUCores           float64         `json:"cpu_cores" yaml:"cpu_cores" validate:"gt=0"`
	RestartPolicy      RestartPolicy   `json:"restart_policy" yaml:"restart_policy"`
	HealthcheckCommand string          `json:"healthcheck_command,omitempty" yaml:"healthcheck_command,omitempty"`
	Command            string          `json:"command,omitempty" yaml:"command,omitempty"`
	DependsOn          []string        `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

const (
	// DefaultMemoryGiB is the memory limit given to a fresh config.
	DefaultMemoryGiB = 0.5
	// DefaultCPUCores is the CPU limit given to a fresh config.
	DefaultCPUCores = 0.5
	// DefaultRestartPolicy is the restart policy given to a fresh config.
	DefaultRestartPolicy = RestartUnlessStopped
)

// NewServiceConfig returns the empty working config used at wizard start.
func NewServiceConfig() ServiceConfig {
	return ServiceConfig{
		Ports:         []PortMapping{},
		Environment:   []EnvVar{},
		Volumes:       []VolumeMapping{},
		MemoryGiB:     DefaultMemoryGiB,
		CPUCores:      DefaultCPUCores,
		RestartPolicy: DefaultRestartPolicy,
	}
}

// Clone returns a deep copy so that template defaults are never aliased by edits.
func (c ServiceConfig) Clone() ServiceConfig {
	out := c
	out.Ports = append([]PortMapping{}, c.Ports...)
	out.Environment = append([]EnvVar{}, c.Environment...)
	out.Volumes = append([]VolumeMapping{}, c.Volumes...)
	if c.DependsOn != nil {
		out.DependsOn = append([]string{}, c.DependsOn...)
	}
	return out
}

// IsEmpty reports whether the config carries no user-provided identity.
func (c ServiceConfig) IsEmpty() bool {
	return c.Name == "" && c.Image == "" && len(c.Ports) == 0 &&
		len(c.Environment) == 0 && len(c.Volumes) == 0
}

// serviceNameRegex is the accepted service name shape.
var serviceNameRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// IsValidServiceName checks a name against ^[a-z0-9-]+$.
func IsValidServiceName(name string) bool {
	return serviceNameRegex.MatchString(name)
}
