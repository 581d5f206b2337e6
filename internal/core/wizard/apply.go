package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/artpar/stackwizard/internal/core/canvas"
	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/artpar/stackwizard/internal/core/topology"
	"github.com/artpar/stackwizard/internal/core/validation"
)

// TemplateSource resolves catalog templates by ID.
type TemplateSource interface {
	Get(id string) (domain.Template, bool)
}

// Env carries the collaborators Apply reads from.
type Env struct {
	Templates TemplateSource
	// NewID returns a fresh canvas node ID. When nil, IDs are numbered.
	NewID func() string
}

// =============================================================================
// Reducer
// =============================================================================

// Apply returns the state after an action. On error the input state is
// returned unchanged along with the error.
func Apply(s State, a Action, env Env) (State, error) {
	next := s.Clone()
	if err := apply(&next, a, env); err != nil {
		return s, err
	}
	return next, nil
}

func apply(s *State, a Action, env Env) error {
	switch a := a.(type) {
	case Next:
		return advance(s, env)
	case Back:
		if s.Step <= FirstStep {
			return blocked(s.Step, s.Step, ErrAtFirstStep, nil)
		}
		s.Step--
		return nil
	case Reset:
		*s = NewState()
		return nil
	case SelectTemplate:
		if s.Step != StepTemplateSelect {
			return wrongStep(s.Step, a.Type())
		}
		return selectTemplate(s, a.TemplateID, env)

	case SetField, AddPort, UpdatePort, RemovePort, AddEnv, UpdateEnv, RemoveEnv,
		AddVolume, UpdateVolume, RemoveVolume:
		if s.Step != StepConfigure {
			return wrongStep(s.Step, a.Type())
		}
		if s.IsStack() {
			return ErrStackReadOnly
		}
		return editConfig(&s.Config, a)

	case PointerUp:
		s.Canvas.EndDrag()
		return nil
	case DropTemplate, RemoveCanvasService, PointerDown, PointerMove, AutoLayout, ClearCanvas:
		if s.Step != StepDesign {
			return wrongStep(s.Step, a.Type())
		}
		return editCanvas(s, a, env)

	case AddNetwork, RemoveNetwork, AddVolumeDef, RemoveVolumeDef:
		if s.Step != StepNetwork {
			return wrongStep(s.Step, a.Type())
		}
		return editTopology(s, a)

	case SetDeploymentID:
		if s.Step != StepReview {
			return wrongStep(s.Step, a.Type())
		}
		id, err := domain.RequireValue("deployment_id", a.ID)
		if err != nil {
			return err
		}
		s.DeploymentID = id
		return nil

	case nil:
		return ErrUnknownAction
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, a.Type())
	}
}

// =============================================================================
// Navigation
// =============================================================================

func advance(s *State, env Env) error {
	from := s.Step
	switch from {
	case LastStep:
		return blocked(from, from, ErrAtLastStep, nil)
	case StepTemplateSelect:
		if s.SelectedTemplate == nil {
			return blocked(from, from+1, ErrNoTemplateSelected, nil)
		}
	case StepConfigure:
		if findings := validation.ValidateTarget(s.Target(), &s.Canvas); findings.Blocking() {
			return blocked(from, from+1, ErrStepBlocked, findings)
		}
	}
	s.Step++
	enter(s, env)
	return nil
}

// enter runs the entry hook of the current step. Hooks only fill in what is
// missing, so re-entering a step after Back keeps earlier work. Nodes seeded
// from the target are refreshed from it on every entry to the designer.
func enter(s *State, env Env) {
	switch s.Step {
	case StepConfigure:
		if !s.IsStack() && s.Config.IsEmpty() && s.SelectedTemplate != nil {
			s.Config = s.SelectedTemplate.Seed()
		}
	case StepDesign:
		if s.Canvas.Len() == 0 {
			seedCanvas(s, env)
			return
		}
		syncCanvas(s)
	}
}

func selectTemplate(s *State, id string, env Env) error {
	if env.Templates == nil {
		return ErrNoCatalog
	}
	t, ok := env.Templates.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	s.SelectedTemplate = &t
	s.Config = t.Seed()
	s.Canvas.Clear()
	return nil
}

func seedCanvas(s *State, env Env) {
	for _, svc := range s.Target().Services() {
		node := canvas.NewService(newID(s, env), s.icon(), svc, 0, 0)
		node.Bound = true
		s.Canvas.Add(node)
	}
	s.Canvas.AutoLayout()
}

// syncCanvas mirrors the target onto bound nodes. A single target has one
// bound node; stack members are matched by name.
func syncCanvas(s *State) {
	for i := range s.Canvas.Services {
		node := &s.Canvas.Services[i]
		if !node.Bound {
			continue
		}
		if !s.IsStack() {
			node.Mirror(s.Config)
			continue
		}
		for _, svc := range s.Target().Services() {
			if svc.Name == node.Name {
				node.Mirror(svc)
				break
			}
		}
	}
}

func newID(s *State, env Env) string {
	if env.NewID != nil {
		return env.NewID()
	}
	for n := s.Canvas.Len() + 1; ; n++ {
		id := "node-" + strconv.Itoa(n)
		if _, taken := s.Canvas.Get(id); !taken {
			return id
		}
	}
}

// =============================================================================
// Configuration Edits
// =============================================================================

func editConfig(cfg *domain.ServiceConfig, a Action) error {
	switch a := a.(type) {
	case SetField:
		return setField(cfg, a.Field, a.Value)

	case AddPort:
		n := len(cfg.Ports)
		host, err := domain.ParsePort(fmt.Sprintf("ports[%d].host", n), a.Host)
		if err != nil {
			return err
		}
		container, err := domain.ParsePort(fmt.Sprintf("ports[%d].container", n), a.Container)
		if err != nil {
			return err
		}
		cfg.Ports = append(cfg.Ports, domain.PortMapping{Host: host, Container: container})
	case UpdatePort:
		if err := checkIndex("ports", a.Index, len(cfg.Ports)); err != nil {
			return err
		}
		field := fmt.Sprintf("ports[%d].%s", a.Index, a.Field)
		switch a.Field {
		case "host", "container":
			v, err := domain.ParsePort(field, a.Value)
			if err != nil {
				return err
			}
			if a.Field == "host" {
				cfg.Ports[a.Index].Host = v
			} else {
				cfg.Ports[a.Index].Container = v
			}
		default:
			return domain.NewInputError(field, a.Value, domain.ErrUnknownField)
		}
	case RemovePort:
		if err := checkIndex("ports", a.Index, len(cfg.Ports)); err != nil {
			return err
		}
		cfg.Ports = append(cfg.Ports[:a.Index], cfg.Ports[a.Index+1:]...)

	case AddEnv:
		key, err := domain.RequireValue(fmt.Sprintf("environment[%d].key", len(cfg.Environment)), a.Key)
		if err != nil {
			return err
		}
		cfg.Environment = append(cfg.Environment, domain.EnvVar{Key: key, Value: a.Value, Secret: a.Secret})
	case UpdateEnv:
		if err := checkIndex("environment", a.Index, len(cfg.Environment)); err != nil {
			return err
		}
		field := fmt.Sprintf("environment[%d].%s", a.Index, a.Field)
		switch a.Field {
		case "key":
			key, err := domain.RequireValue(field, a.Value)
			if err != nil {
				return err
			}
			cfg.Environment[a.Index].Key = key
		case "value":
			cfg.Environment[a.Index].Value = a.Value
		case "secret":
			b, err := domain.ParseBool(field, a.Value)
			if err != nil {
				return err
			}
			cfg.Environment[a.Index].Secret = b
		default:
			return domain.NewInputError(field, a.Value, domain.ErrUnknownField)
		}
	case RemoveEnv:
		if err := checkIndex("environment", a.Index, len(cfg.Environment)); err != nil {
			return err
		}
		cfg.Environment = append(cfg.Environment[:a.Index], cfg.Environment[a.Index+1:]...)

	case AddVolume:
		n := len(cfg.Volumes)
		host, err := domain.RequireValue(fmt.Sprintf("volumes[%d].host_path", n), a.HostPath)
		if err != nil {
			return err
		}
		container, err := domain.RequireValue(fmt.Sprintf("volumes[%d].container_path", n), a.ContainerPath)
		if err != nil {
			return err
		}
		cfg.Volumes = append(cfg.Volumes, domain.VolumeMapping{HostPath: host, ContainerPath: container})
	case UpdateVolume:
		if err := checkIndex("volumes", a.Index, len(cfg.Volumes)); err != nil {
			return err
		}
		field := fmt.Sprintf("volumes[%d].%s", a.Index, a.Field)
		v, err := domain.RequireValue(field, a.Value)
		if err != nil {
			return err
		}
		switch a.Field {
		case "host_path":
			cfg.Volumes[a.Index].HostPath = v
		case "container_path":
			cfg.Volumes[a.Index].ContainerPath = v
		default:
			return domain.NewInputError(field, a.Value, domain.ErrUnknownField)
		}
	case RemoveVolume:
		if err := checkIndex("volumes", a.Index, len(cfg.Volumes)); err != nil {
			return err
		}
		cfg.Volumes = append(cfg.Volumes[:a.Index], cfg.Volumes[a.Index+1:]...)
	}
	return nil
}

func setField(cfg *domain.ServiceConfig, field, value string) error {
	switch field {
	case FieldName:
		cfg.Name = strings.TrimSpace(value)
	case FieldImage:
		cfg.Image = strings.TrimSpace(value)
	case FieldMemory:
		v, err := domain.ParseMemory(field, value)
		if err != nil {
			return err
		}
		cfg.MemoryGiB = v
	case FieldCPU:
		v, err := domain.ParseCPU(field, value)
		if err != nil {
			return err
		}
		cfg.CPUCores = v
	case FieldRestart:
		p, err := domain.ParseRestartPolicy(field, value)
		if err != nil {
			return err
		}
		cfg.RestartPolicy = p
	case FieldHealthcheck:
		cfg.HealthcheckCommand = strings.TrimSpace(value)
	case FieldCommand:
		cfg.Command = strings.TrimSpace(value)
	default:
		return domain.NewInputError(field, value, domain.ErrUnknownField)
	}
	return nil
}

func checkIndex(list string, i, n int) error {
	if i < 0 || i >= n {
		return domain.NewInputError(fmt.Sprintf("%s[%d]", list, i), strconv.Itoa(i), domain.ErrIndexOutOfRange)
	}
	return nil
}

// =============================================================================
// Canvas Edits
// =============================================================================

func editCanvas(s *State, a Action, env Env) error {
	switch a := a.(type) {
	case DropTemplate:
		if env.Templates == nil {
			return ErrNoCatalog
		}
		t, ok := env.Templates.Get(a.TemplateID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTemplate, a.TemplateID)
		}
		origin := canvas.DropOrigin(a.X, a.Y)
		services := t.Services()
		if !t.IsStack() {
			services = []domain.ServiceConfig{t.Seed()}
		}
		for i, svc := range services {
			x := origin.X + float64(i*canvas.GridSpacing)
			s.Canvas.Add(canvas.NewService(newID(s, env), t.Icon, svc, x, origin.Y))
		}
	case RemoveCanvasService:
		return s.Canvas.Remove(a.ID)
	case PointerDown:
		s.Canvas.BeginDragAt(a.X, a.Y)
	case PointerMove:
		s.Canvas.UpdateDrag(a.X, a.Y)
	case AutoLayout:
		s.Canvas.AutoLayout()
	case ClearCanvas:
		s.Canvas.Clear()
	}
	return nil
}

// =============================================================================
// Topology Edits
// =============================================================================

func editTopology(s *State, a Action) error {
	var err error
	switch a := a.(type) {
	case AddNetwork:
		var out []string
		if out, err = topology.AddNetwork(s.Networks, strings.TrimSpace(a.Name)); err == nil {
			s.Networks = out
		}
	case RemoveNetwork:
		var out []string
		if out, err = topology.RemoveNetwork(s.Networks, a.Name); err == nil {
			s.Networks = out
		}
	case AddVolumeDef:
		var out []topology.Volume
		v := topology.Volume{Name: strings.TrimSpace(a.Name), Type: topology.VolumeType(a.Kind)}
		if out, err = topology.AddVolume(s.Volumes, v); err == nil {
			s.Volumes = out
		}
	case RemoveVolumeDef:
		var out []topology.Volume
		if out, err = topology.RemoveVolume(s.Volumes, a.Name); err == nil {
			s.Volumes = out
		}
	}
	return err
}
