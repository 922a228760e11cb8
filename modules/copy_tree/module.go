// Package copy_tree implements the `copy` step, which copies a file or a
// directory tree on disk without loading it into the stream.
package copy_tree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"
	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/fsutil"
	"github.com/vk/gridbuild/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `copy` step. Exclude patterns match
// slash-separated paths relative to From.
type Input struct {
	From    string   `hcl:"from"`
	To      string   `hcl:"to"`
	Exclude []string `hcl:"exclude,optional"`
}

// Preflight checks that the source exists, unless it is produced by the
// build.
func (in *Input) Preflight(m *config.Model) error {
	from := m.Path(in.From)
	for _, out := range m.Directories.Outputs() {
		if fsutil.Within(from, m.Path(out)) {
			return nil
		}
	}
	if _, err := os.Stat(from); err != nil {
		return fmt.Errorf("copy source %s: %w", in.From, err)
	}
	return nil
}

// Reads returns the source path.
func (in *Input) Reads(m *config.Model) []string {
	return []string{m.Path(in.From)}
}

// Writes returns the destination path.
func (in *Input) Writes(m *config.Model) []string {
	return []string{m.Path(in.To)}
}

// Copy copies From to To, keeping file modes.
func Copy(ctx context.Context, scope *registry.Scope, input *Input) error {
	logger := ctxlog.FromContext(ctx)
	from, to := scope.Path(input.From), scope.Path(input.To)
	if fsutil.Overlaps(from, to) {
		return fmt.Errorf("copy source %s and destination %s overlap", input.From, input.To)
	}

	copied := 0
	opts := cp.Options{
		PermissionControl: cp.PerservePermission,
		Skip: func(info os.FileInfo, src, _ string) (bool, error) {
			if err := ctx.Err(); err != nil {
				return true, err
			}
			rel, err := filepath.Rel(from, src)
			if err != nil {
				return true, err
			}
			if rel == "." {
				return false, nil
			}
			skip, err := fsutil.MatchAny(input.Exclude, filepath.ToSlash(rel))
			if err != nil {
				return true, err
			}
			if !skip && !info.IsDir() {
				copied++
			}
			return skip, nil
		},
	}
	if err := cp.Copy(from, to, opts); err != nil {
		return fmt.Errorf("copying %s to %s: %w", input.From, input.To, err)
	}
	logger.Debug("Copied.", "from", input.From, "to", input.To, "files", copied)
	return nil
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("copy", registry.Step(Copy))
}
