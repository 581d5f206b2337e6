package deployment

import (
	"github.com/artpar/stackwizard/internal/core/domain"
)

// =============================================================================
// Port Conversion Functions
// =============================================================================

// DefaultProtocol is the protocol of every port the wizard publishes.
const DefaultProtocol = "tcp"

// ConvertPorts converts wizard port mappings into planned bindings, keeping order.
//
// Example:
//
//	ports := []domain.PortMapping{{Host: 8080, Container: 80}}
//	plans := ConvertPorts(ports)
//	// Result: []PortPlan{{ContainerPort: 80, HostPort: 8080, Protocol: "tcp"}}
func ConvertPorts(ports []domain.PortMapping) []PortPlan {
	if len(ports) == 0 {
		return []PortPlan{}
	}

	result := make([]PortPlan, 0, len(ports))
	for _, p := range ports {
		result = append(result, PortPlan{
			ContainerPort: p.Container,
			HostPort:      p.Host,
			Protocol:      DefaultProtocol,
		})
	}
	return result
}
