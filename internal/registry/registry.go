package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/stream"
)

// Module is the interface that all step modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Scope is the view of a run that a step receives. One Scope is shared by
// all steps of a task, so the stream filled by a `src` step is the one a
// later `dest` step writes.
type Scope struct {
	Model  *config.Model
	Task   string
	Stream *stream.Stream
}

// NewScope creates the scope for one execution of a task.
func NewScope(model *config.Model, task string) *Scope {
	return &Scope{Model: model, Task: task, Stream: stream.New()}
}

// Path resolves p against the project root.
func (s *Scope) Path(p string) string {
	return s.Model.Path(p)
}

// RegisteredStep holds the compiled Go parts of a step kind.
type RegisteredStep struct {
	// NewInput returns a pointer to a fresh input struct for decoding.
	NewInput func() any
	// Fn performs the step with a decoded input.
	Fn func(ctx context.Context, scope *Scope, input any) error
}

// Step adapts a typed step function to a RegisteredStep.
func Step[T any](fn func(ctx context.Context, scope *Scope, input *T) error) *RegisteredStep {
	return &RegisteredStep{
		NewInput: func() any { return new(T) },
		Fn: func(ctx context.Context, scope *Scope, input any) error {
			typed, ok := input.(*T)
			if !ok {
				return fmt.Errorf("step input has type %T, want %T", input, new(T))
			}
			return fn(ctx, scope, typed)
		},
	}
}

// Preflighter is implemented by step inputs that can verify their
// preconditions before a run starts, e.g. that a source path exists.
type Preflighter interface {
	Preflight(model *config.Model) error
}

// PathDeclarer is implemented by step inputs that read or write paths on
// disk. Paths are returned absolute.
type PathDeclarer interface {
	Reads(model *config.Model) []string
	Writes(model *config.Model) []string
}

// Registry holds all the registered step kinds for a single application instance.
type Registry struct {
	steps map[string]*RegisteredStep
}

// New creates a Registry and registers the given modules.
func New(modules ...Module) *Registry {
	r := &Registry{steps: make(map[string]*RegisteredStep)}
	for _, mod := range modules {
		mod.Register(r)
	}
	return r
}

// RegisterStep registers a Go implementation for a step kind.
func (r *Registry) RegisterStep(kind string, step *RegisteredStep) {
	if _, exists := r.steps[kind]; exists {
		panic(fmt.Sprintf("step kind '%s' already registered", kind))
	}
	slog.Debug("Registering step kind.", "kind", kind)
	r.steps[kind] = step
}

// Lookup returns the implementation of a step kind.
func (r *Registry) Lookup(kind string) (*RegisteredStep, bool) {
	step, ok := r.steps[kind]
	return step, ok
}

// Kinds returns all registered step kinds, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.steps))
	for kind := range r.steps {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
