// Package src implements the `src` step, which loads files from disk into
// the task's stream.
package src

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/fsutil"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/stream"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `src` step.
type Input struct {
	Dir     string   `hcl:"dir"`
	Include []string `hcl:"include"`
	Exclude []string `hcl:"exclude,optional"`
	Dot     bool     `hcl:"dot,optional"`
}

// Preflight checks that the source directory and every literal include
// exist. Sources inside an output directory are produced by the build
// itself and are not checked.
func (in *Input) Preflight(m *config.Model) error {
	base := m.Path(in.Dir)
	for _, out := range m.Directories.Outputs() {
		if fsutil.Within(base, m.Path(out)) {
			return nil
		}
	}

	info, err := os.Stat(base)
	if err != nil {
		return fmt.Errorf("source directory %s: %w", in.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source directory %s is not a directory", in.Dir)
	}
	for _, pattern := range in.Include {
		if strings.ContainsAny(pattern, `*?[{\`) {
			continue
		}
		if _, err := os.Stat(filepath.Join(base, filepath.FromSlash(pattern))); err != nil {
			return fmt.Errorf("source file %s: %w", filepath.Join(in.Dir, pattern), err)
		}
	}
	return nil
}

// Reads returns the source directory.
func (in *Input) Reads(m *config.Model) []string {
	return []string{m.Path(in.Dir)}
}

// Writes returns nothing; `src` only reads.
func (in *Input) Writes(*config.Model) []string {
	return nil
}

// Load adds every matching file under the source directory to the stream.
func Load(ctx context.Context, scope *registry.Scope, input *Input) error {
	logger := ctxlog.FromContext(ctx)
	base := scope.Path(input.Dir)

	paths, err := fsutil.Glob(base, input.Include, input.Exclude, input.Dot)
	if err != nil {
		return err
	}

	files := make([]*stream.File, 0, len(paths))
	for _, p := range paths {
		full := filepath.Join(base, filepath.FromSlash(p))
		info, err := os.Stat(full)
		if err != nil {
			return err
		}
		contents, err := os.ReadFile(full)
		if err != nil {
			return err
		}
		files = append(files, &stream.File{
			Path:     p,
			Base:     base,
			Contents: contents,
			Mode:     info.Mode().Perm(),
		})
	}
	scope.Stream.Add(files...)

	if len(files) == 0 {
		logger.Warn("Source matched no files.", "dir", input.Dir, "include", input.Include)
	} else {
		logger.Debug("Source loaded.", "dir", input.Dir, "files", len(files))
	}
	return nil
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("src", registry.Step(Load))
}
