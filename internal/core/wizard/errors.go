package wizard

import (
	"errors"
	"fmt"

	"github.com/artpar/stackwizard/internal/core/validation"
)

var (
	ErrStepBlocked        = errors.New("step has blocking validation errors")
	ErrNoTemplateSelected = errors.New("no template selected")
	ErrAtLastStep         = errors.New("already at the last step")
	ErrAtFirstStep        = errors.New("already at the first step")
	ErrWrongStep          = errors.New("action is not available on this step")
	ErrUnknownTemplate    = errors.New("unknown template")
	ErrStackReadOnly      = errors.New("stack templates cannot be edited field by field")
	ErrUnknownAction      = errors.New("unknown action")
	ErrNoCatalog          = errors.New("no template catalog configured")
)

// TransitionError is returned when an action is refused because of the
// current step. The state is unchanged when it is returned.
type TransitionError struct {
	From     Step
	To       Step
	Action   string
	Reason   error
	Findings validation.Findings
}

func (e *TransitionError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s on step %s: %v", e.Action, e.From, e.Reason)
	}
	return fmt.Sprintf("cannot move from %s to %s: %v", e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return e.Reason
}

func blocked(from, to Step, reason error, findings validation.Findings) *TransitionError {
	return &TransitionError{From: from, To: to, Reason: reason, Findings: findings}
}

func wrongStep(current Step, action string) *TransitionError {
	return &TransitionError{From: current, To: current, Action: action, Reason: ErrWrongStep}
}
