// Package header implements the `header` step.
package header

import (
	"context"

	"github.com/vk/gridbuild/internal/fsutil"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/stream"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `header` step.
type Input struct {
	Text    string   `hcl:"text"`
	Include []string `hcl:"include,optional"`
}

// Prepend puts the text in front of every selected file.
func Prepend(ctx context.Context, scope *registry.Scope, input *Input) error {
	return scope.Stream.Each(ctx, func(_ context.Context, f *stream.File) error {
		ok, err := fsutil.Selected(input.Include, f.Path)
		if err != nil || !ok {
			return err
		}
		out := make([]byte, 0, len(input.Text)+len(f.Contents))
		out = append(out, input.Text...)
		f.Contents = append(out, f.Contents...)
		return nil
	})
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("header", registry.Step(Prepend))
}
