package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/artpar/stackwizard/internal/core/canvas"
	"github.com/artpar/stackwizard/internal/core/domain"
)

// =============================================================================
// Thresholds
// =============================================================================

const (
	// MemoryWarningGiB is the limit above which a high-memory warning is shown.
	MemoryWarningGiB = 4.0
	// MemoryCeilingGiB is the hard limit enforced by the final pass.
	MemoryCeilingGiB = 8.0
)

// =============================================================================
// Step Validation
// =============================================================================

// Validate runs the configuration rules in display order. Every rule is
// evaluated; none short-circuits another.
func Validate(cfg domain.ServiceConfig, scene *canvas.Model) Findings {
	findings := serviceRules(cfg, "")
	return append(findings, canvasRules(scene)...)
}

// ValidateTarget validates a single target like Validate. For a stack every
// member is validated with its name prefixed, followed by host port conflicts
// across members.
func ValidateTarget(target domain.Target, scene *canvas.Model) Findings {
	switch t := target.(type) {
	case domain.SingleTarget:
		return Validate(t.Config, scene)
	case domain.StackTarget:
		var findings Findings
		for _, svc := range t.Members {
			findings = append(findings, serviceRules(svc, svc.Name+": ")...)
		}
		if dups := sharedHostPorts(t.Members); len(dups) > 0 {
			findings = append(findings, newError("Duplicate host ports across stack: "+joinInts(dups)))
		}
		return append(findings, canvasRules(scene)...)
	default:
		return Findings{newError("No deployment target selected")}
	}
}

// FinalValidate is the review-step pass: everything ValidateTarget reports
// plus the memory ceiling and a standalone image check per service.
func FinalValidate(target domain.Target, scene *canvas.Model) Findings {
	findings := ValidateTarget(target, scene)
	if target == nil {
		return findings
	}

	prefixed := isStack(target)
	for _, svc := range target.Services() {
		prefix := ""
		if prefixed {
			prefix = svc.Name + ": "
		}
		if svc.MemoryGiB > MemoryCeilingGiB {
			findings = append(findings, newError(fmt.Sprintf("%sMemory limit %sGB exceeds the %sGB ceiling",
				prefix, formatGiB(svc.MemoryGiB), formatGiB(MemoryCeilingGiB))))
		}
		if strings.TrimSpace(svc.Image) == "" {
			findings = append(findings, newError(prefix+"An image must be set before deploying"))
		}
	}
	return findings
}

// =============================================================================
// Rules
// =============================================================================

func serviceRules(cfg domain.ServiceConfig, prefix string) Findings {
	var findings Findings

	switch {
	case cfg.Name == "":
		findings = append(findings, newError(prefix+"Service name is required"))
	case !domain.IsValidServiceName(cfg.Name):
		findings = append(findings, newError(prefix+"Service name must contain only lowercase letters, numbers, and hyphens"))
	default:
		findings = append(findings, newSuccess(prefix+"Service name is valid"))
	}

	if strings.TrimSpace(cfg.Image) == "" {
		findings = append(findings, newError(prefix+"Docker image is required"))
	} else {
		findings = append(findings, newSuccess(prefix+"Docker image specified"))
	}

	if dups := duplicateHostPorts(cfg); len(dups) > 0 {
		findings = append(findings, newError(prefix+"Duplicate host ports: "+joinInts(dups)))
	} else if len(cfg.Ports) > 0 {
		findings = append(findings, newSuccess(prefix+"No port conflicts"))
	}

	if cfg.MemoryGiB > MemoryWarningGiB {
		findings = append(findings, newWarning(fmt.Sprintf("%sHigh memory allocation (%sGB)", prefix, formatGiB(cfg.MemoryGiB))))
	}

	for _, env := range cfg.Environment {
		if !env.Secret && strings.Contains(strings.ToLower(env.Key), "password") {
			findings = append(findings, newWarning(fmt.Sprintf("%sEnvironment variable %s looks sensitive; mark it as secret", prefix, env.Key)))
		}
	}

	return findings
}

func canvasRules(scene *canvas.Model) Findings {
	if scene == nil {
		return nil
	}
	var findings Findings
	count := make(map[string]int)
	for _, name := range scene.Names() {
		count[name]++
		if count[name] == 2 {
			findings = append(findings, newWarning(fmt.Sprintf("Canvas has more than one service named %q", name)))
		}
	}
	return findings
}

// duplicateHostPorts returns each host port used more than once, in the order
// its second use appears.
func duplicateHostPorts(cfg domain.ServiceConfig) []int {
	seen := make(map[int]int)
	var dups []int
	for _, p := range cfg.Ports {
		seen[p.Host]++
		if seen[p.Host] == 2 {
			dups = append(dups, p.Host)
		}
	}
	return dups
}

// sharedHostPorts returns each host port published by more than one member,
// in the order the second member appears.
func sharedHostPorts(members []domain.ServiceConfig) []int {
	owner := make(map[int]int)
	reported := make(map[int]bool)
	var dups []int
	for i, svc := range members {
		for _, p := range svc.Ports {
			first, ok := owner[p.Host]
			if !ok {
				owner[p.Host] = i
				continue
			}
			if first != i && !reported[p.Host] {
				reported[p.Host] = true
				dups = append(dups, p.Host)
			}
		}
	}
	return dups
}

func isStack(target domain.Target) bool {
	_, ok := target.(domain.StackTarget)
	return ok
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func formatGiB(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
