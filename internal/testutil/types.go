package testutil

import "time"

// ExecutionRecord is the last execution of a sleeper step, by step id.
type ExecutionRecord struct {
	ID    string
	Start time.Time
	End   time.Time
	// Runs counts how often a step with this id ran.
	Runs int
}

// Duration returns how long the step ran.
func (r *ExecutionRecord) Duration() time.Duration {
	return r.End.Sub(r.Start)
}
