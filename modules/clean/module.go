// Package clean implements the `clean` step.
package clean

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/fsutil"
	"github.com/vk/gridbuild/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `clean` step.
type Input struct {
	Paths []string `hcl:"paths"`
}

// Reads returns nothing.
func (in *Input) Reads(*config.Model) []string {
	return nil
}

// Writes returns the paths being removed.
func (in *Input) Writes(m *config.Model) []string {
	out := make([]string, 0, len(in.Paths))
	for _, p := range in.Paths {
		out = append(out, m.Path(p))
	}
	return out
}

// Preflight rejects paths that are the project root or lie outside it.
func (in *Input) Preflight(m *config.Model) error {
	for _, p := range in.Paths {
		full := m.Path(p)
		if full == m.Root || !fsutil.Within(full, m.Root) {
			return fmt.Errorf("refusing to clean %q: only paths inside the project root may be removed", p)
		}
	}
	return nil
}

// Clean removes every path. Paths that do not exist are ignored.
func Clean(ctx context.Context, scope *registry.Scope, input *Input) error {
	logger := ctxlog.FromContext(ctx)
	if err := input.Preflight(scope.Model); err != nil {
		return err
	}
	for _, p := range input.Paths {
		if err := os.RemoveAll(scope.Path(p)); err != nil {
			return fmt.Errorf("removing %s: %w", p, err)
		}
		logger.Debug("Removed.", "path", p)
	}
	return nil
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("clean", registry.Step(Clean))
}
