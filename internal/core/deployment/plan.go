package deployment

import (
	"errors"

	"github.com/artpar/stackwizard/internal/core/canvas"
	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/artpar/stackwizard/internal/core/topology"
)

var (
	ErrNoTarget       = errors.New("no deployment target")
	ErrNoDeploymentID = errors.New("deployment id is required")
)

// BuildPlan builds the deployment plan for a target. Services appear in start
// order; networks and named volumes are namespaced by the deployment ID.
func BuildPlan(p BuildPlanParams) (Plan, error) {
	if p.Target == nil {
		return Plan{}, ErrNoTarget
	}
	if p.DeploymentID == "" {
		return Plan{}, ErrNoDeploymentID
	}

	_, stack := p.Target.(domain.StackTarget)
	services := TopologicalSort(p.Target.Services())

	networks := p.Networks
	if len(networks) == 0 {
		networks = topology.DefaultNetworks()
	}
	namespaced := make([]string, len(networks))
	for i, n := range networks {
		namespaced[i] = NetworkName(p.DeploymentID, n)
	}

	plan := Plan{
		DeploymentID: p.DeploymentID,
		TemplateID:   p.TemplateID,
		StartOrder:   make([]string, 0, len(services)),
		Networks:     namespaced,
		Volumes:      volumePlans(p),
		Services:     make([]ServicePlan, 0, len(services)),
		Placements:   append([]canvas.Placement{}, p.Placements...),
	}
	for _, svc := range services {
		plan.StartOrder = append(plan.StartOrder, svc.Name)
		plan.Services = append(plan.Services, buildServicePlan(p, svc, namespaced, stack))
	}
	return plan, nil
}

func volumePlans(p BuildPlanParams) []VolumePlan {
	types := make(map[string]topology.VolumeType, len(p.Volumes))
	for _, v := range p.Volumes {
		types[v.Name] = v.Type
	}

	names := topology.NamedVolumes(p.Volumes, p.Target.Services())
	out := make([]VolumePlan, 0, len(names))
	for _, name := range names {
		vt, ok := types[name]
		if !ok || vt == "" {
			vt = topology.VolumeLocal
		}
		out = append(out, VolumePlan{Name: name, Namespaced: VolumeName(p.DeploymentID, name), Type: vt})
	}
	return out
}
