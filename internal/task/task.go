// Package task binds the steps of a configured task to their registered
// implementations and decoded inputs, producing an executable unit.
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/registry"
)

// BoundStep is a step with its implementation and decoded input.
type BoundStep struct {
	Kind  string
	Index int
	Input any
	impl  *registry.RegisteredStep
}

// Task is an executable task: its steps run in order against one shared
// scope.
type Task struct {
	Name  string
	Steps []*BoundStep
	model *config.Model
}

// Compile decodes every step of the named task. Decoding errors are
// configuration errors and are reported before anything runs.
func Compile(ctx context.Context, model *config.Model, reg *registry.Registry, conv config.Converter, name string) (*Task, error) {
	def, ok := model.Tasks[name]
	if !ok {
		return nil, fmt.Errorf("unknown task %q", name)
	}

	t := &Task{Name: name, model: model}
	for i, step := range def.Steps {
		impl, ok := reg.Lookup(step.Kind)
		if !ok {
			return nil, fmt.Errorf("task %q, step #%d: unknown step kind %q", name, i+1, step.Kind)
		}
		input := impl.NewInput()
		if err := conv.DecodeStep(ctx, model, step, input); err != nil {
			return nil, fmt.Errorf("task %q, step #%d: %w", name, i+1, err)
		}
		t.Steps = append(t.Steps, &BoundStep{Kind: step.Kind, Index: i + 1, Input: input, impl: impl})
	}
	return t, nil
}

// Run executes the steps in order and stops at the first error.
func (t *Task) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	scope := registry.NewScope(t.model, t.Name)

	for _, step := range t.Steps {
		stepCtx := ctxlog.With(ctx, "step", step.Kind, "step_index", step.Index)
		start := time.Now()
		if err := step.impl.Fn(stepCtx, scope, step.Input); err != nil {
			return fmt.Errorf("step %q #%d: %w", step.Kind, step.Index, err)
		}
		logger.Debug("Step finished.", "step", step.Kind, "step_index", step.Index, "files", scope.Stream.Len(), "duration", time.Since(start))
	}
	return nil
}

// Preflight runs the preflight checks of every step input that has one.
func (t *Task) Preflight() error {
	for _, step := range t.Steps {
		if p, ok := step.Input.(registry.Preflighter); ok {
			if err := p.Preflight(t.model); err != nil {
				return fmt.Errorf("task %q, step %q #%d: %w", t.Name, step.Kind, step.Index, err)
			}
		}
	}
	return nil
}

// Reads returns the absolute paths the task's steps declare reading.
func (t *Task) Reads() []string {
	var out []string
	for _, step := range t.Steps {
		if d, ok := step.Input.(registry.PathDeclarer); ok {
			out = append(out, d.Reads(t.model)...)
		}
	}
	return out
}

// Writes returns the absolute paths the task's steps declare writing.
func (t *Task) Writes() []string {
	var out []string
	for _, step := range t.Steps {
		if d, ok := step.Input.(registry.PathDeclarer); ok {
			out = append(out, d.Writes(t.model)...)
		}
	}
	return out
}
