package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks a problem that must be rejected before any search starts.
	ErrConfig = errors.New("invalid planner configuration")

	// ErrNoPath means the frontier or the tree was exhausted without reaching the goal.
	ErrNoPath = errors.New("no path found")

	// ErrIterationBudget means the search was capped. The accompanying Result
	// still carries the best partial path.
	ErrIterationBudget = errors.New("iteration budget exceeded")
)

// ConfigError describes which input made a problem unusable.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrConfig) match any ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configError(field, reason string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(reason, args...)}
}
