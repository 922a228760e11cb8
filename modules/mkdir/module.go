// Package mkdir implements the `mkdir` step.
package mkdir

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/fsutil"
	"github.com/vk/gridbuild/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `mkdir` step. Mode defaults to 0755.
type Input struct {
	Path string `hcl:"path"`
	Mode string `hcl:"mode,optional"`
}

// Reads returns nothing.
func (in *Input) Reads(*config.Model) []string {
	return nil
}

// Writes returns the directory being created.
func (in *Input) Writes(m *config.Model) []string {
	return []string{m.Path(in.Path)}
}

// Mkdir creates the directory and any missing parents. An existing
// directory is not an error; its mode is set to Mode.
func Mkdir(_ context.Context, scope *registry.Scope, input *Input) error {
	mode, err := fsutil.ParseMode(input.Mode, 0o755)
	if err != nil {
		return err
	}
	dir := scope.Path(input.Path)
	if err := os.MkdirAll(dir, mode); err != nil {
		return fmt.Errorf("creating %s: %w", input.Path, err)
	}
	return os.Chmod(dir, mode)
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("mkdir", registry.Step(Mkdir))
}
