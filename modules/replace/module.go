// Package replace implements the `replace` step.
package replace

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"github.com/vk/gridbuild/internal/fsutil"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/stream"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `replace` step. Pattern is a regular
// expression unless Literal is set; With may refer to groups as $1.
type Input struct {
	Pattern string   `hcl:"pattern"`
	With    string   `hcl:"with"`
	Literal bool     `hcl:"literal,optional"`
	Include []string `hcl:"include,optional"`
}

// Replace rewrites every occurrence of the pattern in the selected files.
func Replace(ctx context.Context, scope *registry.Scope, input *Input) error {
	if input.Pattern == "" {
		return fmt.Errorf("pattern must not be empty")
	}

	var apply func([]byte) []byte
	if input.Literal {
		old, repl := []byte(input.Pattern), []byte(input.With)
		apply = func(b []byte) []byte { return bytes.ReplaceAll(b, old, repl) }
	} else {
		re, err := regexp.Compile(input.Pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
		repl := []byte(input.With)
		apply = func(b []byte) []byte { return re.ReplaceAll(b, repl) }
	}

	return scope.Stream.Each(ctx, func(_ context.Context, f *stream.File) error {
		ok, err := fsutil.Selected(input.Include, f.Path)
		if err != nil || !ok {
			return err
		}
		f.Contents = apply(f.Contents)
		return nil
	})
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("replace", registry.Step(Replace))
}
