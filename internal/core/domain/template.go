// Package domain contains the core domain types and validation logic.
// This is part of the Functional Core - all functions are pure with no I/O.
package domain

import (
	"errors"
	"sort"
)

// =============================================================================
// Errors
// =============================================================================

var (
	ErrTemplateIDRequired   = errors.New("template id is required")
	ErrTemplateNameRequired = errors.New("template name is required")
	ErrTemplateNoServices   = errors.New("template must define at least one service")
	ErrTemplateAmbiguous    = errors.New("template cannot define both single defaults and a stack")
)

// =============================================================================
// Template
// =============================================================================

// Template is an immutable catalog entry used to seed a deployment target.
// Exactly one of Defaults or Stack is set: Defaults for single-container
// templates, Stack (ordered) for multi-container ones.
type Template struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Category string          `json:"category" yaml:"category"`
	Icon     string          `json:"icon" yaml:"icon"`
	Tags     []string        `json:"tags,omitempty" yaml:"tags,omitempty"`
	Defaults *ServiceConfig  `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Stack    []ServiceConfig `json:"stack,omitempty" yaml:"stack,omitempty"`
}

// IsStack reports whether the template is a multi-container stack.
func (t Template) IsStack() bool {
	return len(t.Stack) > 0
}

// Seed returns a copy of the single-service defaults. Stacks return an empty
// config, which stays unused while the stack is selected.
func (t Template) Seed() ServiceConfig {
	if t.IsStack() || t.Defaults == nil {
		return NewServiceConfig()
	}
	cfg := t.Defaults.Clone()
	if cfg.RestartPolicy == "" {
		cfg.RestartPolicy = DefaultRestartPolicy
	}
	return cfg
}

// Services returns the stack members, or the single defaults as a one-element list.
func (t Template) Services() []ServiceConfig {
	if t.IsStack() {
		return t.Stack
	}
	if t.Defaults == nil {
		return nil
	}
	return []ServiceConfig{*t.Defaults}
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	out := t
	out.Tags = append([]string(nil), t.Tags...)
	if t.Defaults != nil {
		d := t.Defaults.Clone()
		out.Defaults = &d
	}
	if t.Stack != nil {
		out.Stack = make([]ServiceConfig, len(t.Stack))
		for i, svc := range t.Stack {
			out.Stack[i] = svc.Clone()
		}
	}
	return out
}

// NormalizeTags sorts and de-duplicates tags so the set has one spelling.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// ValidateTemplate checks the structural invariants of a catalog entry.
func ValidateTemplate(t Template) []error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, ErrTemplateIDRequired)
	}
	if t.Name == "" {
		errs = append(errs, ErrTemplateNameRequired)
	}
	switch {
	case t.Defaults != nil && len(t.Stack) > 0:
		errs = append(errs, ErrTemplateAmbiguous)
	case t.Defaults == nil && len(t.Stack) == 0:
		errs = append(errs, ErrTemplateNoServices)
	}
	return errs
}

// =============================================================================
// Deployment Target
// =============================================================================

// Target is the tagged union of what the wizard deploys: a SingleTarget built
// from the working config, or a StackTarget built from a multi-container template.
type Target interface {
	// Services returns the services in manifest order.
	Services() []ServiceConfig
	isTarget()
}

// SingleTarget deploys one service from the working ServiceConfig.
type SingleTarget struct {
	Config ServiceConfig
}

// StackTarget deploys every service of a multi-container template.
type StackTarget struct {
	Name    string
	Members []ServiceConfig
}

func (SingleTarget) isTarget() {}
func (StackTarget) isTarget()  {}

// Services returns the single config.
func (t SingleTarget) Services() []ServiceConfig {
	return []ServiceConfig{t.Config}
}

// Services returns the stack members in template order.
func (t StackTarget) Services() []ServiceConfig {
	return t.Members
}

// TargetFor resolves the deployment target for a selected template and working
// config. This is the only place the single/stack distinction is made.
func TargetFor(selected *Template, cfg ServiceConfig) Target {
	if selected != nil && selected.IsStack() {
		return StackTarget{Name: selected.ID, Members: selected.Clone().Stack}
	}
	return SingleTarget{Config: cfg}
}
