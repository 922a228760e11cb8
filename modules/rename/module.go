// Package rename implements the `rename` step.
package rename

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/stream"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `rename` step. Name renames the only file
// of the stream and keeps its directory; Ext changes the extension of every
// file. Exactly one of them must be set.
type Input struct {
	Name string `hcl:"name,optional"`
	Ext  string `hcl:"ext,optional"`
}

// Rename changes the paths of the files in the stream.
func Rename(ctx context.Context, scope *registry.Scope, input *Input) error {
	logger := ctxlog.FromContext(ctx)
	if (input.Name == "") == (input.Ext == "") {
		return errors.New("exactly one of name or ext must be set")
	}
	if strings.Contains(input.Name, "/") {
		return fmt.Errorf("name %q must not contain a directory", input.Name)
	}

	files := scope.Stream.Files()
	if input.Name != "" {
		if len(files) != 1 {
			return fmt.Errorf("name can only rename a single file, stream has %d", len(files))
		}
		f := files[0]
		renamed := *f
		renamed.Path = path.Join(path.Dir(f.Path), input.Name)
		logger.Debug("Renaming file.", "from", f.Path, "to", renamed.Path)
		scope.Stream.Reset(&renamed)
		return nil
	}

	ext := input.Ext
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	out := make([]*stream.File, 0, len(files))
	for _, f := range files {
		renamed := *f
		renamed.Path = strings.TrimSuffix(f.Path, f.Ext()) + ext
		out = append(out, &renamed)
	}
	scope.Stream.Reset(out...)
	return nil
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("rename", registry.Step(Rename))
}
