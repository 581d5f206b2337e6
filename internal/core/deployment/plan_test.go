package deployment

import (
	"testing"
	"time"

	"github.com/artpar/stackwizard/internal/core/canvas"
	"github.com/artpar/stackwizard/internal/core/compose"
	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/artpar/stackwizard/internal/core/manifest"
	"github.com/artpar/stackwizard/internal/core/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Fixtures
// =============================================================================

func singleParams() BuildPlanParams {
	return BuildPlanParams{
		DeploymentID: "dep1",
		TemplateID:   "nginx",
		Target: domain.SingleTarget{Config: domain.ServiceConfig{
			Name:  "web",
			Image: "nginx:alpine",
			Ports: []domain.PortMapping{{Host: 8080, Container: 80}},
			Environment: []domain.EnvVar{
				{Key: "MODE", Value: "prod"},
				{Key: "API_PASSWORD", Value: "s3cret", Secret: true},
				{Key: "", Value: "ignored"},
			},
			Volumes: []domain.VolumeMapping{
				{HostPath: "./html", ContainerPath: "/usr/share/nginx/html"},
				{HostPath: "logs", ContainerPath: "/var/log/nginx"},
			},
			MemoryGiB:          0.5,
			CPUCores:           1,
			RestartPolicy:      domain.RestartOnFailure,
			HealthcheckCommand: "curl -f http://localhost/",
		}},
		Networks:   []string{"default", "backend"},
		Volumes:    []topology.Volume{{Name: "cache", Type: topology.VolumeTmpfs}},
		Placements: []canvas.Placement{{ID: "c1", Name: "web", X: 50, Y: 50}},
	}
}

func stackParams() BuildPlanParams {
	return BuildPlanParams{
		DeploymentID: "dep2",
		TemplateID:   "wordpress",
		Target: domain.StackTarget{Name: "wordpress", Members: []domain.ServiceConfig{
			{Name: "wordpress", Image: "wordpress", DependsOn: []string{"db"}, RestartPolicy: domain.RestartNo},
			{Name: "db", Image: "mysql:8.0", Volumes: []domain.VolumeMapping{{HostPath: "db_data", ContainerPath: "/var/lib/mysql"}}},
		}},
	}
}

// =============================================================================
// BuildPlan Tests
// =============================================================================

func TestBuildPlan_Single(t *testing.T) {
	plan, err := BuildPlan(singleParams())
	require.NoError(t, err)

	assert.Equal(t, "dep1", plan.DeploymentID)
	assert.Equal(t, []string{"web"}, plan.StartOrder)
	assert.Equal(t, []string{"stackwizard_dep1_default", "stackwizard_dep1_backend"}, plan.Networks)
	assert.Equal(t, []VolumePlan{
		{Name: "cache", Namespaced: "stackwizard_dep1_cache", Type: topology.VolumeTmpfs},
		{Name: "logs", Namespaced: "stackwizard_dep1_logs", Type: topology.VolumeLocal},
	}, plan.Volumes)
	assert.Len(t, plan.Placements, 1)

	require.Len(t, plan.Services, 1)
	svc := plan.Services[0]
	assert.Equal(t, "web", svc.ContainerName)
	assert.Equal(t, "on-failure", svc.RestartPolicy)
	assert.Equal(t, []PortPlan{{ContainerPort: 80, HostPort: 8080, Protocol: "tcp"}}, svc.Ports)
	assert.Equal(t, []EnvPlan{
		{Key: "MODE", Value: "prod"},
		{Key: "API_PASSWORD", Value: "s3cret", Secret: true},
	}, svc.Env)
	assert.Equal(t, []MountPlan{
		{Source: "./html", Target: "/usr/share/nginx/html"},
		{Source: "stackwizard_dep1_logs", Target: "/var/log/nginx", Named: true},
	}, svc.Mounts)
	assert.Equal(t, int64(512*1024*1024), svc.Resources.MemoryLimit)
	assert.Equal(t, 1.0, svc.Resources.CPULimit)
	assert.Equal(t, "true", svc.Labels[LabelManaged])
	assert.Equal(t, "nginx", svc.Labels[LabelTemplate])

	require.NotNil(t, svc.HealthCheck)
	assert.Equal(t, []string{"CMD-SHELL", "curl -f http://localhost/"}, svc.HealthCheck.Test)
	assert.Equal(t, 30*time.Second, svc.HealthCheck.Interval)
	assert.Equal(t, 10*time.Second, svc.HealthCheck.Timeout)
	assert.Equal(t, 3, svc.HealthCheck.Retries)
}

func TestBuildPlan_StackStartOrder(t *testing.T) {
	plan, err := BuildPlan(stackParams())
	require.NoError(t, err)

	assert.Equal(t, []string{"db", "wordpress"}, plan.StartOrder)
	assert.Equal(t, []string{"stackwizard_dep2_default"}, plan.Networks)
	for _, svc := range plan.Services {
		assert.Equal(t, "always", svc.RestartPolicy, svc.Name)
		assert.Nil(t, svc.HealthCheck)
	}
	assert.Equal(t, []string{"db"}, plan.Services[1].DependsOn)
}

func TestBuildPlan_ContainerNameMatchesManifest(t *testing.T) {
	for _, p := range []BuildPlanParams{singleParams(), stackParams()} {
		t.Run(p.TemplateID, func(t *testing.T) {
			plan, err := BuildPlan(p)
			require.NoError(t, err)
			res, err := manifest.Generate(manifest.Input{Target: p.Target, Networks: p.Networks, Volumes: p.Volumes})
			require.NoError(t, err)
			parsed, err := compose.ParseComposeSpec(res.Text)
			require.NoError(t, err)

			for _, svc := range plan.Services {
				written, ok := parsed.Service(svc.Name)
				require.True(t, ok, svc.Name)
				assert.Equal(t, written.ContainerName, svc.ContainerName, svc.Name)
			}
		})
	}
}

func TestBuildPlan_Errors(t *testing.T) {
	p := singleParams()
	p.Target = nil
	_, err := BuildPlan(p)
	assert.ErrorIs(t, err, ErrNoTarget)

	p = singleParams()
	p.DeploymentID = ""
	_, err = BuildPlan(p)
	assert.ErrorIs(t, err, ErrNoDeploymentID)
}

func TestMapRestartPolicy(t *testing.T) {
	tests := []struct {
		in   domain.RestartPolicy
		want string
	}{
		{domain.RestartNo, "no"},
		{domain.RestartAlways, "always"},
		{domain.RestartOnFailure, "on-failure"},
		{domain.RestartUnlessStopped, "unless-stopped"},
		{"", "unless-stopped"},
		{"sometimes", "unless-stopped"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapRestartPolicy(tt.in), string(tt.in))
	}
}

func TestConvertPorts(t *testing.T) {
	assert.Equal(t, []PortPlan{}, ConvertPorts(nil))
	assert.Equal(t, []PortPlan{
		{ContainerPort: 80, HostPort: 8080, Protocol: "tcp"},
		{ContainerPort: 443, HostPort: 8443, Protocol: "tcp"},
	}, ConvertPorts([]domain.PortMapping{{Host: 8080, Container: 80}, {Host: 8443, Container: 443}}))
}
