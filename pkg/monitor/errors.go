package monitor

import (
	"errors"
	"fmt"
)

// Sentinel errors for the monitor package.
var (
	// ErrMissingDependency indicates New was called without a collaborator.
	ErrMissingDependency = errors.New("monitor: missing dependency")

	// ErrPanic indicates a step panicked and was recovered.
	ErrPanic = errors.New("monitor: step panicked")

	// ErrNoFrame indicates a step was skipped because the cycle has no frame.
	ErrNoFrame = errors.New("monitor: no frame this cycle")
)

// StepError is a failure attributed to one pipeline step.
type StepError struct {
	// Step is the step name.
	Step string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("monitor: step %s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StepError) Unwrap() error {
	return e.Err
}
