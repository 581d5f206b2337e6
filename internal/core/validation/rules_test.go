package validation

import (
	"testing"

	"github.com/artpar/stackwizard/internal/core/canvas"
	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() domain.ServiceConfig {
	cfg := domain.NewServiceConfig()
	cfg.Name = "web"
	cfg.Image = "nginx:alpine"
	cfg.Ports = []domain.PortMapping{{Host: 8080, Container: 80}}
	return cfg
}

// =============================================================================
// Validate Tests
// =============================================================================

func TestValidate_ValidConfig(t *testing.T) {
	findings := Validate(validConfig(), nil)

	assert.False(t, findings.Blocking())
	assert.Equal(t, Findings{
		{Severity: SeveritySuccess, Message: "Service name is valid"},
		{Severity: SeveritySuccess, Message: "Docker image specified"},
		{Severity: SeveritySuccess, Message: "No port conflicts"},
	}, findings)
}

func TestValidate_EmptyConfig(t *testing.T) {
	findings := Validate(domain.NewServiceConfig(), nil)

	assert.True(t, findings.Blocking())
	assert.Equal(t, []string{"Service name is required", "Docker image is required"}, findings.Messages())
}

func TestValidate_NamePattern(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		blocked bool
	}{
		{"lowercase", "web-1", false},
		{"uppercase", "Web", true},
		{"underscore", "my_app", true},
		{"space", "my app", true},
		{"dot", "my.app", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Name = tt.value
			assert.Equal(t, tt.blocked, Validate(cfg, nil).Blocking())
		})
	}
}

func TestValidate_DuplicatePorts(t *testing.T) {
	cfg := validConfig()
	cfg.Ports = []domain.PortMapping{{Host: 80, Container: 80}, {Host: 80, Container: 8080}, {Host: 443, Container: 443}}

	errs := Validate(cfg, nil).Filter(SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Duplicate host ports: 80", errs[0].Message)
}

func TestValidate_DuplicatePortsListedInOrder(t *testing.T) {
	cfg := validConfig()
	cfg.Ports = []domain.PortMapping{{Host: 443}, {Host: 80}, {Host: 80}, {Host: 443}, {Host: 80}}

	errs := Validate(cfg, nil).Filter(SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Duplicate host ports: 80, 443", errs[0].Message)
}

func TestValidate_NoPortsNoPortFinding(t *testing.T) {
	cfg := validConfig()
	cfg.Ports = nil
	assert.NotContains(t, Validate(cfg, nil).Messages(), "No port conflicts")
}

func TestValidate_HighMemoryWarns(t *testing.T) {
	cfg := validConfig()
	cfg.MemoryGiB = 6

	findings := Validate(cfg, nil)
	assert.False(t, findings.Blocking())
	warnings := findings.Filter(SeverityWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "High memory allocation (6GB)", warnings[0].Message)

	cfg.MemoryGiB = 4
	assert.Empty(t, Validate(cfg, nil).Filter(SeverityWarning))
}

func TestValidate_PasswordNotSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = []domain.EnvVar{
		{Key: "DB_PASSWORD", Value: "x"},
		{Key: "db_password_file", Value: "y", Secret: true},
		{Key: "MyPassWord", Value: "z"},
		{Key: "USER", Value: "u"},
	}

	warnings := Validate(cfg, nil).Filter(SeverityWarning)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0].Message, "DB_PASSWORD")
	assert.Contains(t, warnings[1].Message, "MyPassWord")
}

func TestValidate_CanvasDuplicateNames(t *testing.T) {
	var scene canvas.Model
	scene.Add(canvas.Service{ID: "1", Name: "web"})
	scene.Add(canvas.Service{ID: "2", Name: "web"})
	scene.Add(canvas.Service{ID: "3", Name: "web"})

	findings := Validate(validConfig(), &scene)
	assert.False(t, findings.Blocking())
	assert.Len(t, findings.Filter(SeverityWarning), 1)
}

func TestValidate_Deterministic(t *testing.T) {
	cfg := validConfig()
	cfg.Name = ""
	cfg.MemoryGiB = 5
	cfg.Ports = append(cfg.Ports, cfg.Ports[0])
	first := Validate(cfg, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Validate(cfg, nil))
	}
}

// =============================================================================
// Target Tests
// =============================================================================

func stackTarget() domain.StackTarget {
	return domain.StackTarget{
		Name: "wp",
		Members: []domain.ServiceConfig{
			{Name: "wordpress", Image: "wordpress", Ports: []domain.PortMapping{{Host: 8080, Container: 80}}, MemoryGiB: 1, CPUCores: 1},
			{Name: "db", Image: "mysql:8", MemoryGiB: 1, CPUCores: 1},
		},
	}
}

func TestValidateTarget_Single(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, Validate(cfg, nil), ValidateTarget(domain.SingleTarget{Config: cfg}, nil))
}

func TestValidateTarget_StackPrefixesMessages(t *testing.T) {
	target := stackTarget()
	target.Members[1].Image = ""

	findings := ValidateTarget(target, nil)
	assert.True(t, findings.Blocking())
	assert.Contains(t, findings.Messages(), "db: Docker image is required")
	assert.Contains(t, findings.Messages(), "wordpress: Service name is valid")
}

func TestValidateTarget_StackSharedPorts(t *testing.T) {
	target := stackTarget()
	target.Members[1].Ports = []domain.PortMapping{{Host: 8080, Container: 3306}}

	errs := ValidateTarget(target, nil).Filter(SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Duplicate host ports across stack: 8080", errs[0].Message)
}

func TestValidateTarget_Nil(t *testing.T) {
	assert.True(t, ValidateTarget(nil, nil).Blocking())
}

// =============================================================================
// Final Validation Tests
// =============================================================================

func TestFinalValidate_MemoryCeiling(t *testing.T) {
	cfg := validConfig()
	cfg.MemoryGiB = 8
	assert.False(t, FinalValidate(domain.SingleTarget{Config: cfg}, nil).Blocking())

	cfg.MemoryGiB = 8.5
	findings := FinalValidate(domain.SingleTarget{Config: cfg}, nil)
	assert.True(t, findings.Blocking())
	assert.Contains(t, findings.Messages(), "Memory limit 8.5GB exceeds the 8GB ceiling")
}

func TestFinalValidate_SupersetOfValidate(t *testing.T) {
	cfg := validConfig()
	cfg.Image = ""
	target := domain.SingleTarget{Config: cfg}

	step := ValidateTarget(target, nil)
	final := FinalValidate(target, nil)
	assert.Equal(t, step, final[:len(step)])
	assert.Contains(t, final.Messages(), "An image must be set before deploying")
}

func TestFinalValidate_Stack(t *testing.T) {
	target := stackTarget()
	target.Members[0].MemoryGiB = 16

	findings := FinalValidate(target, nil)
	assert.Contains(t, findings.Messages(), "wordpress: Memory limit 16GB exceeds the 8GB ceiling")
}

func TestFindings_Count(t *testing.T) {
	f := Findings{newError("a"), newWarning("b"), newSuccess("c"), newError("d")}
	assert.Equal(t, 2, f.Count(SeverityError))
	assert.Equal(t, 1, f.Count(SeverityWarning))
	assert.True(t, f.Blocking())
	assert.False(t, Findings{newWarning("w")}.Blocking())
}
