// Package concat implements the `concat` step.
package concat

import (
	"bytes"
	"context"
	"strings"

	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/stream"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `concat` step. Separator defaults to a
// newline.
type Input struct {
	Name      string  `hcl:"name"`
	Separator *string `hcl:"separator,optional"`
}

// Concat replaces the stream with a single file holding every file's
// contents in path order.
func Concat(ctx context.Context, scope *registry.Scope, input *Input) error {
	logger := ctxlog.FromContext(ctx)
	files := scope.Stream.Files()
	if len(files) == 0 {
		logger.Warn("Nothing to concatenate.", "name", input.Name)
		return nil
	}

	sep := []byte("\n")
	if input.Separator != nil {
		sep = []byte(*input.Separator)
	}

	parts := make([][]byte, len(files))
	for i, f := range files {
		parts[i] = f.Contents
	}

	first := files[0]
	joined := &stream.File{
		Path:     strings.TrimPrefix(input.Name, "/"),
		Base:     first.Base,
		Contents: bytes.Join(parts, sep),
		Mode:     first.Mode,
	}
	scope.Stream.Reset(joined)
	logger.Debug("Files concatenated.", "name", joined.Path, "files", len(files))
	return nil
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("concat", registry.Step(Concat))
}
