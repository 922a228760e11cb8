// Package rev implements the `rev` step. References in markup of the form
// `href="path?rev=..."` get the `rev` value replaced by the content hash of
// the referenced file.
package rev

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/fsutil"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/stream"
)

var reference = regexp.MustCompile(`(?:href=|src=|url\()['"]([^\s>"']+?)\?rev=([^\s>"']+?)['"]`)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `rev` step. Base is the directory
// references are resolved against; it defaults to the directory each file
// was read from. Algorithm is md5 (default) or sha256.
type Input struct {
	Base      string   `hcl:"base,optional"`
	Algorithm string   `hcl:"algorithm,optional"`
	Include   []string `hcl:"include,optional"`
}

// Reads returns the base directory, if one is set.
func (in *Input) Reads(m *config.Model) []string {
	if in.Base == "" {
		return nil
	}
	return []string{m.Path(in.Base)}
}

// Writes returns nothing; `rev` only rewrites the stream.
func (in *Input) Writes(*config.Model) []string {
	return nil
}

func newHash(algorithm string) (func() hash.Hash, error) {
	switch algorithm {
	case "", "md5":
		return md5.New, nil
	case "sha256":
		return sha256.New, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
}

// Rev rewrites the revision of every reference in the selected files. A
// reference to a file that does not exist is left unchanged.
func Rev(ctx context.Context, scope *registry.Scope, input *Input) error {
	logger := ctxlog.FromContext(ctx)
	newH, err := newHash(input.Algorithm)
	if err != nil {
		return err
	}

	return scope.Stream.Each(ctx, func(_ context.Context, f *stream.File) error {
		ok, err := fsutil.Selected(input.Include, f.Path)
		if err != nil || !ok {
			return err
		}

		base := f.Base
		if input.Base != "" {
			base = scope.Path(input.Base)
		}
		dir := path.Dir(f.Path)

		var firstErr error
		f.Contents = reference.ReplaceAllFunc(f.Contents, func(match []byte) []byte {
			if firstErr != nil {
				return match
			}
			sub := reference.FindSubmatchIndex(match)
			ref := string(match[sub[2]:sub[3]])

			target := filepath.Join(base, filepath.FromSlash(path.Join(dir, ref)))
			contents, err := os.ReadFile(target)
			if os.IsNotExist(err) {
				logger.Warn("Revisioned reference not found, left unchanged.", "file", f.Path, "reference", ref)
				return match
			}
			if err != nil {
				firstErr = err
				return match
			}

			h := newH()
			h.Write(contents)
			sum := hex.EncodeToString(h.Sum(nil))

			out := make([]byte, 0, len(match)+len(sum))
			out = append(out, match[:sub[4]]...)
			out = append(out, sum...)
			return append(out, match[sub[5]:]...)
		})
		return firstErr
	})
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("rev", registry.Step(Rev))
}
