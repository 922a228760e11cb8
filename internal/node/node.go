// Package node holds the runtime state of a single task during a run. A
// node moves through a small state machine:
//
//	pending -> running -> succeeded
//	                   -> failed
//	pending -> skipped
//
// Terminal states are never left. All methods are safe for concurrent use.
package node

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrInvalidTransition is returned when a state change is not allowed by
// the state machine.
var ErrInvalidTransition = errors.New("invalid state transition")

// State is the execution state of a node.
type State int32

const (
	// Pending indicates the node is waiting for its dependencies to complete.
	Pending State = iota
	// Running indicates the node is currently being executed by a worker.
	Running
	// Succeeded indicates the node has completed execution successfully.
	Succeeded
	// Failed indicates the node's action returned an error.
	Failed
	// Skipped indicates the node never started because an upstream task
	// failed or the run was aborted.
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed || s == Skipped
}

func allowed(from, to State) bool {
	switch from {
	case Pending:
		return to == Running || to == Skipped
	case Running:
		return to == Succeeded || to == Failed
	default:
		return false
	}
}

// Node is one task of a plan together with its mutable run state.
type Node struct {
	// ID is the task name.
	ID string
	// Deps and Dependents are the plan edges, keyed by task name.
	Deps       map[string]*Node
	Dependents map[string]*Node

	// depCount is an atomic counter for unmet dependencies, used by the executor.
	depCount atomic.Int32
	// state is the node's current execution state, managed atomically.
	state atomic.Int32

	mu       sync.Mutex
	err      error
	started  time.Time
	finished time.Time
}

// New creates a pending node with no edges.
func New(id string) *Node {
	return &Node{
		ID:         id,
		Deps:       make(map[string]*Node),
		Dependents: make(map[string]*Node),
	}
}

// Link records that n depends on dep.
func (n *Node) Link(dep *Node) {
	n.Deps[dep.ID] = dep
	dep.Dependents[n.ID] = n
}

// ResetDepCount sets the unmet dependency counter to the number of deps.
func (n *Node) ResetDepCount() {
	n.depCount.Store(int32(len(n.Deps)))
}

// DepCount returns the number of dependencies that have not succeeded yet.
func (n *Node) DepCount() int32 {
	return n.depCount.Load()
}

// DecrementDepCount marks one dependency as succeeded and returns the
// remaining count.
func (n *Node) DecrementDepCount() int32 {
	return n.depCount.Add(-1)
}

// State returns the node's current state.
func (n *Node) State() State {
	return State(n.state.Load())
}

// Err returns the error recorded by Fail or Skip.
func (n *Node) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

// Duration returns how long the node ran. It is zero for nodes that never
// started or are still running.
func (n *Node) Duration() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started.IsZero() || n.finished.IsZero() {
		return 0
	}
	return n.finished.Sub(n.started)
}

func (n *Node) transition(to State) error {
	for {
		from := n.State()
		if !allowed(from, to) {
			return fmt.Errorf("%w for %q: %s -> %s", ErrInvalidTransition, n.ID, from, to)
		}
		if n.state.CompareAndSwap(int32(from), int32(to)) {
			return nil
		}
	}
}

// Start moves the node from pending to running.
func (n *Node) Start() error {
	if err := n.transition(Running); err != nil {
		return err
	}
	n.mu.Lock()
	n.started = time.Now()
	n.mu.Unlock()
	return nil
}

// Succeed moves the node from running to succeeded.
func (n *Node) Succeed() error {
	if err := n.transition(Succeeded); err != nil {
		return err
	}
	n.mu.Lock()
	n.finished = time.Now()
	n.mu.Unlock()
	return nil
}

// Fail moves the node from running to failed and records cause.
func (n *Node) Fail(cause error) error {
	if err := n.transition(Failed); err != nil {
		return err
	}
	n.mu.Lock()
	n.err = cause
	n.finished = time.Now()
	n.mu.Unlock()
	return nil
}

// Skip moves the node from pending to skipped. It reports false if the
// node had already left the pending state, which makes it safe to call
// from several goroutines: exactly one caller wins.
func (n *Node) Skip(cause error) bool {
	if err := n.transition(Skipped); err != nil {
		return false
	}
	n.mu.Lock()
	n.err = cause
	n.mu.Unlock()
	return true
}
