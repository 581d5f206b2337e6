// Package session owns the live wizard session: it serializes access to the
// state machine, saves and restores drafts, and submits reviewed deployments.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/artpar/stackwizard/internal/core/wizard"
)

// ErrCorruptDraft is returned when a stored draft cannot be decoded.
var ErrCorruptDraft = errors.New("corrupt draft")

// EncodeDraft serializes a state. Encoding a decoded draft reproduces the
// same bytes.
func EncodeDraft(s wizard.State) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	return data, nil
}

// DecodeDraft parses a serialized state.
func DecodeDraft(data []byte) (wizard.State, error) {
	var s wizard.State
	if err := json.Unmarshal(data, &s); err != nil {
		return wizard.State{}, fmt.Errorf("%w: %v", ErrCorruptDraft, err)
	}
	if !s.Step.IsValid() {
		return wizard.State{}, fmt.Errorf("%w: step %d", ErrCorruptDraft, int(s.Step))
	}
	return s, nil
}
