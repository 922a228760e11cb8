// Package minify implements the `minify` step on top of
// github.com/tdewolff/minify.
package minify

import (
	"context"
	"fmt"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
	"github.com/tdewolff/minify/v2/svg"
	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/fsutil"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/stream"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `minify` step. Mangle controls renaming
// of local JavaScript variables and defaults to true.
type Input struct {
	Include        []string `hcl:"include,optional"`
	KeepComments   bool     `hcl:"keep_comments,optional"`
	KeepWhitespace bool     `hcl:"keep_whitespace,optional"`
	Mangle         *bool    `hcl:"mangle,optional"`
}

// mediaTypes maps file extensions to the media types the minifier knows.
var mediaTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".mjs":  "application/javascript",
	".svg":  "image/svg+xml",
	".json": "application/json",
}

// newMinifier configures a minifier for every supported media type. HTML
// documents get their inline styles and scripts minified as well.
func newMinifier(input *Input) *minify.M {
	mangle := input.Mangle == nil || *input.Mangle

	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepComments:     input.KeepComments,
		KeepWhitespace:   input.KeepWhitespace,
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.Add("text/css", &css.Minifier{})
	m.AddRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), &js.Minifier{KeepVarNames: !mangle})
	m.Add("image/svg+xml", &svg.Minifier{})
	m.AddRegexp(regexp.MustCompile(`[/+]json$`), &json.Minifier{})
	return m
}

// Minify minifies every selected file whose extension has a minifier and
// leaves other files untouched.
func Minify(ctx context.Context, scope *registry.Scope, input *Input) error {
	logger := ctxlog.FromContext(ctx)
	m := newMinifier(input)

	return scope.Stream.Each(ctx, func(_ context.Context, f *stream.File) error {
		mediaType, ok := mediaTypes[f.Ext()]
		if !ok {
			return nil
		}
		selected, err := fsutil.Selected(input.Include, f.Path)
		if err != nil || !selected {
			return err
		}
		out, err := m.Bytes(mediaType, f.Contents)
		if err != nil {
			return fmt.Errorf("minifying %s: %w", f.Path, err)
		}
		logger.Debug("File minified.", "path", f.Path, "before", len(f.Contents), "after", len(out))
		f.Contents = out
		return nil
	})
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("minify", registry.Step(Minify))
}
