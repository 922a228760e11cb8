// Package stream models the in-memory set of files that flows through the
// steps of a task: a `src` step fills it, transforms rewrite it, and a
// `dest` step writes it back to disk.
package stream

import (
	"context"
	"io/fs"
	"path"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// File is a single file in a stream.
type File struct {
	// Path is slash-separated and relative to Base.
	Path string
	// Base is the absolute directory the file was read from.
	Base     string
	Contents []byte
	Mode     fs.FileMode
}

// Ext returns the file name extension of Path, including the dot.
func (f *File) Ext() string {
	return path.Ext(f.Path)
}

// Name returns the last element of Path.
func (f *File) Name() string {
	return path.Base(f.Path)
}

// Stream is an ordered set of files. It is safe for concurrent use, but a
// File handed to an Each callback belongs to that callback until it returns.
type Stream struct {
	mu    sync.Mutex
	files []*File
}

// New creates a stream holding files.
func New(files ...*File) *Stream {
	s := &Stream{}
	s.Add(files...)
	return s
}

// Add appends files. A file whose Path is already present replaces the
// earlier one.
func (s *Stream) Add(files ...*File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range files {
		replaced := false
		for i, existing := range s.files {
			if existing.Path == f.Path {
				s.files[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			s.files = append(s.files, f)
		}
	}
}

// Files returns the files sorted by Path.
func (s *Stream) Files() []*File {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*File, len(s.files))
	copy(out, s.files)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len returns the number of files in the stream.
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Reset replaces the whole content of the stream.
func (s *Stream) Reset(files ...*File) {
	s.mu.Lock()
	s.files = nil
	s.mu.Unlock()
	s.Add(files...)
}

// Each calls fn for every file, several files at a time. It returns the
// first error; files not yet started when an error occurs are not visited.
func (s *Stream) Each(ctx context.Context, fn func(ctx context.Context, f *File) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, f := range s.Files() {
		f := f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, f)
		})
	}
	return g.Wait()
}
