// Package wizard is the five-step state machine that drives a session:
// template selection, configuration, visual design, network topology and review.
//
// State is a plain value. Apply is a reducer that returns the next state for
// a typed Action; Machine wraps it and keeps the derived views (findings,
// diagram, manifest) current after every successful action.
package wizard

import (
	"fmt"

	"github.com/artpar/stackwizard/internal/core/canvas"
	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/artpar/stackwizard/internal/core/topology"
)

// =============================================================================
// Steps
// =============================================================================

// Step is a wizard step, numbered 1 to 5.
type Step int

const (
	StepTemplateSelect Step = 1
	StepConfigure      Step = 2
	StepDesign         Step = 3
	StepNetwork        Step = 4
	StepReview         Step = 5

	FirstStep = StepTemplateSelect
	LastStep  = StepReview
)

var stepNames = map[Step]string{
	StepTemplateSelect: "template",
	StepConfigure:      "configure",
	StepDesign:         "design",
	StepNetwork:        "network",
	StepReview:         "review",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// IsValid reports whether the step is within 1..5.
func (s Step) IsValid() bool {
	return s >= FirstStep && s <= LastStep
}

// =============================================================================
// State
// =============================================================================

// State is the whole mutable aggregate of a session.
type State struct {
	Step             Step                 `json:"step"`
	SelectedTemplate *domain.Template     `json:"selected_template,omitempty"`
	Networks         []string             `json:"networks"`
	Volumes          []topology.Volume    `json:"volumes"`
	Config           domain.ServiceConfig `json:"config"`
	Canvas           canvas.Model         `json:"canvas"`
	DeploymentID     string               `json:"deployment_id,omitempty"`
}

// NewState returns the empty state a session starts in.
func NewState() State {
	return State{
		Step:     StepTemplateSelect,
		Networks: topology.DefaultNetworks(),
		Volumes:  []topology.Volume{},
		Config:   domain.NewServiceConfig(),
		Canvas:   canvas.Model{Services: []canvas.Service{}},
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	if s.SelectedTemplate != nil {
		t := s.SelectedTemplate.Clone()
		out.SelectedTemplate = &t
	}
	out.Networks = append([]string{}, s.Networks...)
	out.Volumes = append([]topology.Volume{}, s.Volumes...)
	out.Config = s.Config.Clone()
	out.Canvas = s.Canvas.Clone()
	return out
}

// Target returns the deployment target the state currently describes.
func (s State) Target() domain.Target {
	return domain.TargetFor(s.SelectedTemplate, s.Config)
}

// IsStack reports whether a stack template is selected.
func (s State) IsStack() bool {
	return s.SelectedTemplate != nil && s.SelectedTemplate.IsStack()
}

// IsPristine reports whether the state holds nothing worth keeping, so that
// loading a draft over it needs no confirmation.
func (s State) IsPristine() bool {
	return s.Step == StepTemplateSelect &&
		s.SelectedTemplate == nil &&
		s.Config.IsEmpty() &&
		s.Canvas.Len() == 0 &&
		len(s.Networks) <= 1 &&
		len(s.Volumes) == 0 &&
		s.DeploymentID == ""
}

// icon returns the selected template's icon.
func (s State) icon() string {
	if s.SelectedTemplate == nil {
		return ""
	}
	return s.SelectedTemplate.Icon
}
