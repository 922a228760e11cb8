package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/dag"
	"github.com/vk/gridbuild/internal/node"
)

// Runner is the action of a task.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f RunnerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Executor runs the tasks of one plan. An Executor is single use.
type Executor struct {
	plan       *dag.Plan
	nodes      map[string]*node.Node
	runners    map[string]Runner
	numWorkers int

	wg      sync.WaitGroup
	state   atomic.Int32
	aborted atomic.Bool

	failOnce  sync.Once
	firstErr  error
	firstTask string
}

// New prepares an executor for plan. Every task of the plan needs a runner.
func New(plan *dag.Plan, runners map[string]Runner, numWorkers int) (*Executor, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > plan.Len() && plan.Len() > 0 {
		numWorkers = plan.Len()
	}

	nodes := make(map[string]*node.Node, plan.Len())
	for _, name := range plan.Tasks() {
		if _, ok := runners[name]; !ok {
			return nil, fmt.Errorf("no runner for task %q", name)
		}
		nodes[name] = node.New(name)
	}
	for _, name := range plan.Tasks() {
		for _, dep := range plan.Dependencies(name) {
			nodes[name].Link(nodes[dep])
		}
	}
	for _, n := range nodes {
		n.ResetDepCount()
	}

	return &Executor{
		plan:       plan,
		nodes:      nodes,
		runners:    runners,
		numWorkers: numWorkers,
	}, nil
}

// State returns the current run state.
func (e *Executor) State() RunState {
	return RunState(e.state.Load())
}

// Run executes the plan and blocks until every task is in a terminal state.
// The returned error wraps ErrAborted and the first task failure.
func (e *Executor) Run(ctx context.Context) (*Report, error) {
	if !e.state.CompareAndSwap(int32(NotStarted), int32(InProgress)) {
		return nil, errors.New("executor has already been run")
	}
	logger := ctxlog.FromContext(ctx)

	readyChan := make(chan *node.Node, len(e.nodes))

	logger.Debug("Initializing executor, finding root tasks...")
	rootCount := 0
	for _, name := range e.plan.Tasks() {
		n := e.nodes[name]
		if n.DepCount() == 0 {
			logger.Debug("Found root task.", "task", n.ID)
			readyChan <- n
			rootCount++
		}
	}
	logger.Debug("Found all root tasks.", "count", rootCount)

	e.wg.Add(len(e.nodes))

	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(ctx, readyChan, i)
	}

	e.wg.Wait()
	close(readyChan)
	logger.Debug("All tasks reached a terminal state.")

	report := e.report()
	if e.firstErr == nil && ctx.Err() != nil {
		e.failOnce.Do(func() { e.firstErr = ctx.Err() })
	}

	if e.firstErr != nil {
		e.state.Store(int32(Aborted))
		report.State = Aborted
		if e.firstTask != "" {
			report.Err = fmt.Errorf("%w: task %q failed: %w", ErrAborted, e.firstTask, e.firstErr)
		} else {
			report.Err = fmt.Errorf("%w: %w", ErrAborted, e.firstErr)
		}
		return report, report.Err
	}

	e.state.Store(int32(Completed))
	report.State = Completed
	return report, nil
}

func (e *Executor) report() *Report {
	r := &Report{Target: e.plan.Target}
	for _, name := range e.plan.Tasks() {
		n := e.nodes[name]
		r.Tasks = append(r.Tasks, TaskReport{
			Name:     name,
			State:    n.State(),
			Err:      n.Err(),
			Duration: n.Duration(),
		})
	}
	return r
}

// abort records the first failure and stops further scheduling.
func (e *Executor) abort(task string, err error) {
	e.failOnce.Do(func() {
		e.firstTask = task
		e.firstErr = err
	})
	e.aborted.Store(true)
}
