package wizard

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Envelope is the wire form of an action: {"type": "...", "payload": {...}}.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var actionFactories = map[string]func() Action{}

func register(factories ...func() Action) {
	for _, f := range factories {
		actionFactories[f().Type()] = f
	}
}

func init() {
	register(
		func() Action { return &Next{} },
		func() Action { return &Back{} },
		func() Action { return &Reset{} },
		func() Action { return &SelectTemplate{} },
		func() Action { return &SetField{} },
		func() Action { return &AddPort{} },
		func() Action { return &UpdatePort{} },
		func() Action { return &RemovePort{} },
		func() Action { return &AddEnv{} },
		func() Action { return &UpdateEnv{} },
		func() Action { return &RemoveEnv{} },
		func() Action { return &AddVolume{} },
		func() Action { return &UpdateVolume{} },
		func() Action { return &RemoveVolume{} },
		func() Action { return &DropTemplate{} },
		func() Action { return &RemoveCanvasService{} },
		func() Action { return &PointerDown{} },
		func() Action { return &PointerMove{} },
		func() Action { return &PointerUp{} },
		func() Action { return &AutoLayout{} },
		func() Action { return &ClearCanvas{} },
		func() Action { return &AddNetwork{} },
		func() Action { return &RemoveNetwork{} },
		func() Action { return &AddVolumeDef{} },
		func() Action { return &RemoveVolumeDef{} },
		func() Action { return &SetDeploymentID{} },
	)
}

// ActionTypes returns the registered action type names, sorted.
func ActionTypes() []string {
	out := make([]string, 0, len(actionFactories))
	for name := range actionFactories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DecodeAction decodes an envelope into a typed action value.
func DecodeAction(data []byte) (Action, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	return env.Action()
}

// Action decodes the envelope payload into its typed action.
func (e Envelope) Action() (Action, error) {
	factory, ok := actionFactories[e.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, e.Type)
	}
	ptr := factory()
	if len(e.Payload) > 0 && string(e.Payload) != "null" {
		if err := json.Unmarshal(e.Payload, ptr); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", e.Type, err)
		}
	}
	return deref(ptr), nil
}

// EncodeAction wraps an action in an envelope.
func EncodeAction(a Action) ([]byte, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: a.Type(), Payload: payload})
}

// deref turns the pointer used for decoding back into the value variant
// that Apply switches on.
func deref(a Action) Action {
	switch p := a.(type) {
	case *Next:
		return *p
	case *Back:
		return *p
	case *Reset:
		return *p
	case *SelectTemplate:
		return *p
	case *SetField:
		return *p
	case *AddPort:
		return *p
	case *UpdatePort:
		return *p
	case *RemovePort:
		return *p
	case *AddEnv:
		return *p
	case *UpdateEnv:
		return *p
	case *RemoveEnv:
		return *p
	case *AddVolume:
		return *p
	case *UpdateVolume:
		return *p
	case *RemoveVolume:
		return *p
	case *DropTemplate:
		return *p
	case *RemoveCanvasService:
		return *p
	case *PointerDown:
		return *p
	case *PointerMove:
		return *p
	case *PointerUp:
		return *p
	case *AutoLayout:
		return *p
	case *ClearCanvas:
		return *p
	case *AddNetwork:
		return *p
	case *RemoveNetwork:
		return *p
	case *AddVolumeDef:
		return *p
	case *RemoveVolumeDef:
		return *p
	case *SetDeploymentID:
		return *p
	default:
		return a
	}
}
