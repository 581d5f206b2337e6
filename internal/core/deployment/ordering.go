package deployment

import (
	"github.com/artpar/stackwizard/internal/core/domain"
)

// =============================================================================
// Service Ordering Functions
// =============================================================================

// TopologicalSort sorts services by their dependencies using Kahn's algorithm.
// Services with no dependencies come first.
//
// Among services that are ready at the same time, the one earlier in the
// input wins, so the result is fully determined by the input order.
// Dependencies on services that are not in the input are ignored.
//
// If a cycle exists (which validation should reject first), the remaining
// services are appended in input order.
//
// Example:
//
//	// Services: web → api → db
//	services := []domain.ServiceConfig{
//	    {Name: "web", DependsOn: []string{"api"}},
//	    {Name: "api", DependsOn: []string{"db"}},
//	    {Name: "db"},
//	}
//	sorted := TopologicalSort(services)
//	// Result: [db, api, web]
func TopologicalSort(services []domain.ServiceConfig) []domain.ServiceConfig {
	if len(services) == 0 {
		return services
	}

	// Build dependency graph
	index := make(map[string]int, len(services))
	for i, svc := range services {
		index[svc.Name] = i
	}
	inDegree := make([]int, len(services))
	dependents := make([][]int, len(services))
	for i, svc := range services {
		for _, dep := range svc.DependsOn {
			j, ok := index[dep]
			if !ok || j == i {
				continue
			}
			inDegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	done := make([]bool, len(services))
	result := make([]domain.ServiceConfig, 0, len(services))
	for len(result) < len(services) {
		// Pick the earliest ready service
		next := -1
		for i := range services {
			if !done[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			break
		}

		done[next] = true
		result = append(result, services[next])
		for _, d := range dependents[next] {
			inDegree[d]--
		}
	}

	// Cycle: append what is left in input order
	for i, svc := range services {
		if !done[i] {
			result = append(result, svc)
		}
	}

	return result
}

// StartOrder returns the service names in start order.
func StartOrder(services []domain.ServiceConfig) []string {
	sorted := TopologicalSort(services)
	names := make([]string, len(sorted))
	for i, svc := range sorted {
		names[i] = svc.Name
	}
	return names
}
