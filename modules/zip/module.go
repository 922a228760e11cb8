// Package zip implements the `zip` step, which archives a directory tree.
package zip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zip"
	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/fsutil"
	"github.com/vk/gridbuild/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `zip` step.
type Input struct {
	Dir    string `hcl:"dir"`
	Output string `hcl:"output"`
}

// Reads returns the archived directory.
func (in *Input) Reads(m *config.Model) []string {
	return []string{m.Path(in.Dir)}
}

// Writes returns the archive path.
func (in *Input) Writes(m *config.Model) []string {
	return []string{m.Path(in.Output)}
}

// regularFiles returns the slash-separated relative paths of all regular
// files under dir, sorted.
func regularFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(out)
	return out, err
}

// Archive writes every regular file under Dir into the Output zip, keeping
// file modes. On error no partial archive is left behind.
func Archive(ctx context.Context, scope *registry.Scope, input *Input) (err error) {
	logger := ctxlog.FromContext(ctx)
	dir, output := scope.Path(input.Dir), scope.Path(input.Output)
	if fsutil.Within(output, dir) {
		return fmt.Errorf("archive %s must not be inside the archived directory %s", input.Output, input.Dir)
	}

	files, err := regularFiles(dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", input.Dir, err)
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	zw := zip.NewWriter(out)
	defer func() {
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			if rerr := os.Remove(output); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
				logger.Error("Failed to remove partial archive.", "path", input.Output, "error", rerr)
			}
		}
	}()

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addFile(zw, dir, rel); err != nil {
			return fmt.Errorf("adding %s: %w", rel, err)
		}
	}
	logger.Debug("Archive written.", "path", input.Output, "entries", len(files))
	return nil
}

func addFile(zw *zip.Writer, dir, rel string) error {
	f, err := os.Open(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = rel
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("zip", registry.Step(Archive))
}
