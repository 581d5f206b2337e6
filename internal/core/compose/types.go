package compose

// =============================================================================
// ParsedSpec - Main Output Type
// =============================================================================

// ParsedSpec is a parsed compose document, decoupled from compose-go types.
// Every slice is sorted by name so two parses of the same text are equal.
type ParsedSpec struct {
	Services []Service `json:"services"`
	Networks []string  `json:"networks,omitempty"`
	Volumes  []string  `json:"volumes,omitempty"`
}

// Service finds a service by name.
func (p *ParsedSpec) Service(name string) (Service, bool) {
	for _, svc := range p.Services {
		if svc.Name == name {
			return svc, true
		}
	}
	return Service{}, false
}

// =============================================================================
// Service Types
// =============================================================================

// Service represents a single service definition.
type Service struct {
	Name          string        `json:"name"`
	Image         string        `json:"image"`
	ContainerName string        `json:"container_name,omitempty"`
	Command       []string      `json:"command,omitempty"`
	Ports         []Port        `json:"ports,omitempty"`
	Environment   []EnvEntry    `json:"environment,omitempty"`
	Volumes       []VolumeMount `json:"volumes,omitempty"`
	DependsOn     []string      `json:"depends_on,omitempty"`
	Restart       string        `json:"restart,omitempty"`
	CPULimit      float64       `json:"cpu_limit,omitempty"`
	MemoryLimit   int64         `json:"memory_limit,omitempty"` // Bytes
	HealthCheck   *HealthCheck  `json:"healthcheck,omitempty"`
}

// Port represents a port mapping.
type Port struct {
	Target    uint32 `json:"target"`              // Container port
	Published uint32 `json:"published,omitempty"` // Host port (0 = dynamic)
}

// EnvEntry is one environment entry. Entries are sorted by key.
type EnvEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// VolumeMount represents a volume mount in a service.
type VolumeMount struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Named  bool   `json:"named"`
}

// HealthCheck represents health check configuration.
type HealthCheck struct {
	Test     []string `json:"test"`
	Interval string   `json:"interval,omitempty"`
	Timeout  string   `json:"timeout,omitempty"`
	Retries  int      `json:"retries,omitempty"`
}
