package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Input Errors
// =============================================================================

var (
	ErrInvalidNumber   = errors.New("value is not a number")
	ErrOutOfRange      = errors.New("value is out of range")
	ErrIndexOutOfRange = errors.New("index is out of range")
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidRestart  = errors.New("invalid restart policy")
	ErrEmptyValue      = errors.New("value is required")
	ErrInvalidBool     = errors.New("value is not a boolean")
)

// InputError is returned when an edit is rejected at the input boundary.
// The model is never mutated when an InputError is returned.
type InputError struct {
	Field string // e.g., "ports[1].host"
	Value string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %q: %v", e.Field, e.Value, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// NewInputError creates a new InputError.
func NewInputError(field, value string, err error) *InputError {
	return &InputError{Field: field, Value: value, Err: err}
}

// =============================================================================
// Numeric Parsing
// =============================================================================

var validate = validator.New()

// ParsePort parses a port number in 1..65535.
func ParsePort(field, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, NewInputError(field, raw, ErrInvalidNumber)
	}
	if err := validate.Var(n, "min=1,max=65535"); err != nil {
		return 0, NewInputError(field, raw, ErrOutOfRange)
	}
	return n, nil
}

// ParseMemory parses a memory limit in GiB. The value must be finite and > 0.
func ParseMemory(field, raw string) (float64, error) {
	return parsePositiveFloat(field, raw)
}

// ParseCPU parses a CPU core count. The value must be finite and > 0.
func ParseCPU(field, raw string) (float64, error) {
	return parsePositiveFloat(field, raw)
}

func parsePositiveFloat(field, raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, NewInputError(field, raw, ErrInvalidNumber)
	}
	if err := validate.Var(f, "gt=0"); err != nil {
		return 0, NewInputError(field, raw, ErrOutOfRange)
	}
	return f, nil
}

// ParseRestartPolicy accepts one of the known restart policies.
func ParseRestartPolicy(field, raw string) (RestartPolicy, error) {
	p := RestartPolicy(strings.TrimSpace(raw))
	if !p.IsValid() {
		return "", NewInputError(field, raw, ErrInvalidRestart)
	}
	return p, nil
}

// RequireValue rejects blank input.
func RequireValue(field, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", NewInputError(field, raw, ErrEmptyValue)
	}
	return v, nil
}

// ParseBool parses a true/false flag.
func ParseBool(field, raw string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, NewInputError(field, raw, ErrInvalidBool)
	}
	return b, nil
}

// ValidateLimits checks the struct-level numeric constraints of a config
// (memory and CPU strictly positive). Used when configs arrive from files.
func ValidateLimits(cfg ServiceConfig) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return NewInputError(strings.ToLower(verrs[0].Field()), fmt.Sprint(verrs[0].Value()), ErrOutOfRange)
		}
		return err
	}
	return nil
}
