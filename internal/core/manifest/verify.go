package manifest

import (
	"fmt"

	"github.com/artpar/stackwizard/internal/core/compose"
)

// Verification is the outcome of loading a generated manifest back through
// the compose loader.
type Verification struct {
	Valid    bool     `json:"valid"`
	Services []string `json:"services,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Verify parses manifest text with the compose loader and reports whether it
// is a loadable compose project.
func Verify(text string) (Verification, *compose.ParsedSpec) {
	spec, err := compose.ParseComposeSpec(text)
	if err != nil {
		return Verification{Valid: false, Error: err.Error()}, nil
	}
	names := make([]string, 0, len(spec.Services))
	for _, svc := range spec.Services {
		names = append(names, svc.Name)
	}
	return Verification{Valid: true, Services: names}, spec
}

// Check returns an error when the manifest does not load.
func Check(text string) error {
	v, _ := Verify(text)
	if !v.Valid {
		return fmt.Errorf("generated manifest does not load: %s", v.Error)
	}
	return nil
}
