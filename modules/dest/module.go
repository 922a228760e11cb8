// Package dest implements the `dest` step, which writes the task's stream
// back to disk.
package dest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/fsutil"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/stream"
)

const defaultFileMode = 0o644

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `dest` step. Mode, when set, overrides
// the mode each file was read with.
type Input struct {
	Dir  string `hcl:"dir"`
	Mode string `hcl:"mode,optional"`
}

// Reads returns nothing; `dest` only writes.
func (in *Input) Reads(*config.Model) []string {
	return nil
}

// Writes returns the destination directory.
func (in *Input) Writes(m *config.Model) []string {
	return []string{m.Path(in.Dir)}
}

// Write stores every file of the stream under the destination directory,
// keeping its relative path.
func Write(ctx context.Context, scope *registry.Scope, input *Input) error {
	logger := ctxlog.FromContext(ctx)
	dir := scope.Path(input.Dir)

	override, err := fsutil.ParseMode(input.Mode, 0)
	if err != nil {
		return err
	}

	err = scope.Stream.Each(ctx, func(_ context.Context, f *stream.File) error {
		target := filepath.Join(dir, filepath.FromSlash(f.Path))
		if !fsutil.Within(target, dir) {
			return fmt.Errorf("file %q escapes destination %s", f.Path, input.Dir)
		}
		mode := f.Mode
		if override != 0 {
			mode = override
		}
		if mode == 0 {
			mode = defaultFileMode
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, f.Contents, mode); err != nil {
			return err
		}
		// WriteFile keeps the permissions of a file that already exists.
		return os.Chmod(target, mode)
	})
	if err != nil {
		return err
	}

	logger.Debug("Stream written.", "dir", input.Dir, "files", scope.Stream.Len())
	return nil
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("dest", registry.Step(Write))
}
