package dag

import "errors"

var (
	// ErrUnknownTask is returned when a target or prerequisite names a task
	// that is not declared.
	ErrUnknownTask = errors.New("unknown task")
	// ErrCycle is returned when the dependency edges form a cycle.
	ErrCycle = errors.New("cycle detected")
)
