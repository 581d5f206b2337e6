package wizard

// Action is one user input. Each variant is applied by Apply.
type Action interface {
	Type() string
}

// =============================================================================
// Navigation
// =============================================================================

// Next advances one step, running the entry hook of the new step.
type Next struct{}

// Back goes back one step, keeping everything entered so far.
type Back struct{}

// Reset discards the session and returns to step 1.
type Reset struct{}

// SelectTemplate picks a catalog template (step 1).
type SelectTemplate struct {
	TemplateID string `json:"template_id"`
}

// =============================================================================
// Configuration (step 2)
// =============================================================================

// Editable scalar fields for SetField.
const (
	FieldName        = "name"
	FieldImage       = "image"
	FieldMemory      = "memory"
	FieldCPU         = "cpu"
	FieldRestart     = "restart"
	FieldHealthcheck = "healthcheck"
	FieldCommand     = "command"
)

// SetField edits one scalar field of the working config.
type SetField struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// AddPort appends a port mapping.
type AddPort struct {
	Host      string `json:"host"`
	Container string `json:"container"`
}

// UpdatePort edits the host or container side of one mapping.
type UpdatePort struct {
	Index int    `json:"index"`
	Field string `json:"field"` // host | container
	Value string `json:"value"`
}

// RemovePort deletes one mapping.
type RemovePort struct {
	Index int `json:"index"`
}

// AddEnv appends an environment entry.
type AddEnv struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Secret bool   `json:"secret"`
}

// UpdateEnv edits the key, value or secret flag of one entry.
type UpdateEnv struct {
	Index int    `json:"index"`
	Field string `json:"field"` // key | value | secret
	Value string `json:"value"`
}

// RemoveEnv deletes one entry.
type RemoveEnv struct {
	Index int `json:"index"`
}

// AddVolume appends a volume mapping.
type AddVolume struct {
	HostPath      string `json:"host_path"`
	ContainerPath string `json:"container_path"`
}

// UpdateVolume edits one side of a volume mapping.
type UpdateVolume struct {
	Index int    `json:"index"`
	Field string `json:"field"` // host_path | container_path
	Value string `json:"value"`
}

// RemoveVolume deletes one mapping.
type RemoveVolume struct {
	Index int `json:"index"`
}

// =============================================================================
// Designer (step 3)
// =============================================================================

// DropTemplate adds the services of a template centered on a drop point.
type DropTemplate struct {
	TemplateID string  `json:"template_id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// RemoveCanvasService deletes a node.
type RemoveCanvasService struct {
	ID string `json:"id"`
}

// PointerDown hit-tests a point and starts dragging what it hits.
type PointerDown struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerMove moves the dragged node, if any.
type PointerMove struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerUp ends the drag.
type PointerUp struct{}

// AutoLayout arranges the nodes on a grid.
type AutoLayout struct{}

// ClearCanvas removes every node.
type ClearCanvas struct{}

// =============================================================================
// Network (step 4)
// =============================================================================

// AddNetwork adds a named network.
type AddNetwork struct {
	Name string `json:"name"`
}

// RemoveNetwork removes a network other than default.
type RemoveNetwork struct {
	Name string `json:"name"`
}

// AddVolumeDef defines a top-level volume.
type AddVolumeDef struct {
	Name string `json:"name"`
	Kind string `json:"type"` // local | nfs | tmpfs
}

// RemoveVolumeDef removes a top-level volume.
type RemoveVolumeDef struct {
	Name string `json:"name"`
}

// =============================================================================
// Review (step 5)
// =============================================================================

// SetDeploymentID records the ID returned by the executor.
type SetDeploymentID struct {
	ID string `json:"id"`
}

func (Next) Type() string                { return "next" }
func (Back) Type() string                { return "back" }
func (Reset) Type() string               { return "reset" }
func (SelectTemplate) Type() string      { return "select_template" }
func (SetField) Type() string            { return "set_field" }
func (AddPort) Type() string             { return "add_port" }
func (UpdatePort) Type() string          { return "update_port" }
func (RemovePort) Type() string          { return "remove_port" }
func (AddEnv) Type() string              { return "add_env" }
func (UpdateEnv) Type() string           { return "update_env" }
func (RemoveEnv) Type() string           { return "remove_env" }
func (AddVolume) Type() string           { return "add_volume" }
func (UpdateVolume) Type() string        { return "update_volume" }
func (RemoveVolume) Type() string        { return "remove_volume" }
func (DropTemplate) Type() string        { return "drop_template" }
func (RemoveCanvasService) Type() string { return "remove_canvas_service" }
func (PointerDown) Type() string         { return "pointer_down" }
func (PointerMove) Type() string         { return "pointer_move" }
func (PointerUp) Type() string           { return "pointer_up" }
func (AutoLayout) Type() string          { return "auto_layout" }
func (ClearCanvas) Type() string         { return "clear_canvas" }
func (AddNetwork) Type() string          { return "add_network" }
func (RemoveNetwork) Type() string       { return "remove_network" }
func (AddVolumeDef) Type() string        { return "add_volume_def" }
func (RemoveVolumeDef) Type() string     { return "remove_volume_def" }
func (SetDeploymentID) Type() string     { return "set_deployment_id" }
