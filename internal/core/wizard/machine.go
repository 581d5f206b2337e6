package wizard

import (
	"github.com/artpar/stackwizard/internal/core/manifest"
	"github.com/artpar/stackwizard/internal/core/topology"
	"github.com/artpar/stackwizard/internal/core/validation"
)

// Machine owns a State and recomputes the derived views after every
// successful Apply, so callers never read stale findings. It is not safe for
// concurrent use; the session layer serializes access.
type Machine struct {
	env   Env
	state State

	findings     validation.Findings
	diagram      *topology.Diagram
	result       *manifest.Result
	manifestErr  error
	verification *manifest.Verification
	final        validation.Findings
}

// View is a read-only snapshot of a machine for rendering.
type View struct {
	State         State                  `json:"state"`
	Findings      validation.Findings    `json:"findings"`
	CanAdvance    bool                   `json:"can_advance"`
	Diagram       *topology.Diagram      `json:"diagram,omitempty"`
	DiagramD2     string                 `json:"diagram_d2,omitempty"`
	Manifest      *manifest.Result       `json:"manifest,omitempty"`
	Verification  *manifest.Verification `json:"verification,omitempty"`
	FinalFindings validation.Findings    `json:"final_findings,omitempty"`
}

// NewMachine returns a machine in the initial state.
func NewMachine(env Env) *Machine {
	m := &Machine{env: env, state: NewState()}
	m.recompute()
	return m
}

// Apply applies an action. On error the state and views are unchanged.
func (m *Machine) Apply(a Action) error {
	next, err := Apply(m.state, a, m.env)
	if err != nil {
		return err
	}
	m.state = next
	m.recompute()
	return nil
}

// Restore replaces the state wholesale, as when a draft is loaded.
func (m *Machine) Restore(s State) {
	if !s.Step.IsValid() {
		s.Step = FirstStep
	}
	if len(s.Networks) == 0 {
		s.Networks = topology.DefaultNetworks()
	}
	m.state = s.Clone()
	m.recompute()
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state.Clone()
}

// Step returns the current step.
func (m *Machine) Step() Step {
	return m.state.Step
}

// Findings returns the findings for the current target.
func (m *Machine) Findings() validation.Findings {
	return m.findings
}

// CanAdvance reports whether Next would succeed.
func (m *Machine) CanAdvance() bool {
	switch m.state.Step {
	case StepTemplateSelect:
		return m.state.SelectedTemplate != nil
	case StepConfigure:
		return !m.findings.Blocking()
	case LastStep:
		return false
	default:
		return true
	}
}

// Diagram returns the network diagram once the network step has been reached.
func (m *Machine) Diagram() (topology.Diagram, bool) {
	if m.diagram == nil {
		return topology.Diagram{}, false
	}
	return *m.diagram, true
}

// Manifest returns the generated manifest on the review step.
func (m *Machine) Manifest() (manifest.Result, error) {
	if m.result == nil {
		if m.manifestErr != nil {
			return manifest.Result{}, m.manifestErr
		}
		return manifest.Result{}, wrongStep(m.state.Step, "manifest")
	}
	return *m.result, nil
}

// FinalFindings returns the review-step validation. Empty before step 5.
func (m *Machine) FinalFindings() validation.Findings {
	return m.final
}

// CanDeploy reports whether the review step has no blocking findings.
func (m *Machine) CanDeploy() bool {
	return m.state.Step == StepReview && m.result != nil && !m.final.Blocking()
}

// View returns a snapshot of the state and every derived view.
func (m *Machine) View() View {
	v := View{
		State:         m.State(),
		Findings:      m.findings,
		CanAdvance:    m.CanAdvance(),
		Diagram:       m.diagram,
		Manifest:      m.result,
		Verification:  m.verification,
		FinalFindings: m.final,
	}
	if m.diagram != nil {
		v.DiagramD2 = topology.RenderD2(*m.diagram)
	}
	return v
}

func (m *Machine) recompute() {
	s := &m.state
	target := s.Target()

	m.findings = validation.ValidateTarget(target, &s.Canvas)
	m.diagram, m.result, m.manifestErr, m.verification, m.final = nil, nil, nil, nil, nil

	if s.Step >= StepNetwork {
		d := topology.BuildDiagram(target.Services(), s.Networks, s.Volumes)
		m.diagram = &d
	}

	if s.Step == StepReview {
		res, err := manifest.Generate(manifest.Input{Target: target, Networks: s.Networks, Volumes: s.Volumes})
		if err != nil {
			m.manifestErr = err
		} else {
			m.result = &res
			v, _ := manifest.Verify(res.Text)
			m.verification = &v
		}
		m.final = validation.FinalValidate(target, &s.Canvas)
	}
}
