package executor

import (
	"errors"
	"fmt"
	"time"

	"github.com/vk/gridbuild/internal/node"
)

// ErrAborted is wrapped by the error of every run that did not complete.
var ErrAborted = errors.New("run aborted")

// RunState is the state of a whole run.
type RunState int32

const (
	// NotStarted is the state of an executor before Run is called.
	NotStarted RunState = iota
	// InProgress is the state while tasks are being scheduled.
	InProgress
	// Completed means every task of the plan succeeded.
	Completed
	// Aborted means a task failed or the context was cancelled.
	Aborted
)

func (s RunState) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("RunState(%d)", int32(s))
	}
}

// TaskReport is the outcome of one task.
type TaskReport struct {
	Name     string
	State    node.State
	Err      error
	Duration time.Duration
}

// Report is the outcome of a run. Tasks are listed in plan order.
type Report struct {
	Target string
	State  RunState
	Tasks  []TaskReport
	Err    error
}

// Task returns the report of the named task.
func (r *Report) Task(name string) (TaskReport, bool) {
	for _, t := range r.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return TaskReport{}, false
}

// Count returns how many tasks ended in the given state.
func (r *Report) Count(state node.State) int {
	n := 0
	for _, t := range r.Tasks {
		if t.State == state {
			n++
		}
	}
	return n
}
