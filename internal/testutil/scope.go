package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/stream"
)

// WriteTree writes files, keyed by slash-separated relative path, under root.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// ReadTree returns every regular file under dir keyed by slash-separated
// relative path. A missing dir yields an empty map.
func ReadTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == dir {
				return filepath.SkipDir
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	require.NoError(t, err)
	return out
}

// NewModel returns a model rooted at a fresh temporary directory with the
// conventional src and dist directories.
func NewModel(t *testing.T) *config.Model {
	t.Helper()
	return &config.Model{
		Root:        t.TempDir(),
		Default:     "build",
		Project:     config.Project{Name: "Test Site", Slug: "test-site", Version: "1.0.0", License: "MIT"},
		Directories: config.Directories{Src: "src", Dist: "dist", Archive: "archive"},
		Variables:   map[string]string{},
		Env:         map[string]string{},
		Tasks:       map[string]*config.Task{},
	}
}

// NewScope returns a scope for a task named "test" over a fresh model whose
// stream holds the given in-memory files.
func NewScope(t *testing.T, files map[string]string) *registry.Scope {
	t.Helper()
	m := NewModel(t)
	scope := registry.NewScope(m, "test")
	for name, content := range files {
		scope.Stream.Add(&stream.File{
			Path:     name,
			Base:     m.Path(m.Directories.Src),
			Contents: []byte(content),
			Mode:     0o644,
		})
	}
	return scope
}

// Contents returns the stream's files keyed by path.
func Contents(s *stream.Stream) map[string]string {
	out := make(map[string]string, s.Len())
	for _, f := range s.Files() {
		out[f.Path] = string(f.Contents)
	}
	return out
}
