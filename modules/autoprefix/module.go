// Package autoprefix implements the `autoprefix` step, which adds
// vendor-prefixed copies of CSS declarations for a fixed table of
// properties.
//
// Stylesheets are re-emitted from the parsed grammar, so the output is
// compact: whitespace between rules and declarations is dropped while
// top-level comments are kept. Run a `minify` step afterwards for fully
// minified output; use `autoprefix` last when formatting matters.
package autoprefix

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/stream"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of an `autoprefix` step. Extra adds to, or
// replaces entries of, the built-in prefix table.
type Input struct {
	Extra map[string][]string `hcl:"extra,optional"`
}

// Prefixes maps a property to the vendor prefixes emitted before it.
var Prefixes = map[string][]string{
	"animation":           {"-webkit-"},
	"appearance":          {"-webkit-", "-moz-"},
	"backface-visibility": {"-webkit-"},
	"box-sizing":          {"-webkit-", "-moz-"},
	"column-count":        {"-webkit-", "-moz-"},
	"column-gap":          {"-webkit-", "-moz-"},
	"hyphens":             {"-webkit-", "-moz-", "-ms-"},
	"text-size-adjust":    {"-webkit-", "-ms-"},
	"transform":           {"-webkit-", "-ms-"},
	"transition":          {"-webkit-"},
	"user-select":         {"-webkit-", "-moz-", "-ms-"},
}

// Prefix rewrites every .css file of the stream.
func Prefix(ctx context.Context, scope *registry.Scope, input *Input) error {
	table := make(map[string][]string, len(Prefixes)+len(input.Extra))
	for k, v := range Prefixes {
		table[k] = v
	}
	for k, v := range input.Extra {
		table[strings.ToLower(k)] = v
	}

	return scope.Stream.Each(ctx, func(_ context.Context, f *stream.File) error {
		if f.Ext() != ".css" {
			return nil
		}
		out, err := Rewrite(f.Contents, table)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}
		f.Contents = out
		return nil
	})
}

// Rewrite re-emits a stylesheet in compact form with prefixed declarations
// inserted before each declaration found in table. A prefixed form already
// present earlier in the same block is not repeated.
func Rewrite(src []byte, table map[string][]string) ([]byte, error) {
	p := css.NewParser(parse.NewInputBytes(src), false)
	var out bytes.Buffer
	seen := make(map[string]bool)

	writeValues := func() {
		for _, val := range p.Values() {
			out.Write(val.Data)
		}
	}

	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != io.EOF {
				return nil, err
			}
			return out.Bytes(), nil
		case css.BeginRulesetGrammar, css.BeginAtRuleGrammar:
			seen = make(map[string]bool)
			out.Write(data)
			writeValues()
			out.WriteByte('{')
		case css.QualifiedRuleGrammar:
			out.Write(data)
			writeValues()
			out.WriteByte(',')
		case css.AtRuleGrammar:
			out.Write(data)
			writeValues()
			out.WriteByte(';')
		case css.DeclarationGrammar:
			name := strings.ToLower(string(data))
			for _, prefix := range table[name] {
				if seen[prefix+name] {
					continue
				}
				out.WriteString(prefix + name)
				out.WriteByte(':')
				writeValues()
				out.WriteByte(';')
			}
			seen[name] = true
			out.Write(data)
			out.WriteByte(':')
			writeValues()
			out.WriteByte(';')
		case css.CustomPropertyGrammar:
			out.Write(data)
			out.WriteByte(':')
			writeValues()
			out.WriteByte(';')
		case css.EndRulesetGrammar, css.EndAtRuleGrammar:
			seen = make(map[string]bool)
			out.Write(data)
		default:
			out.Write(data)
		}
	}
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("autoprefix", registry.Step(Prefix))
}
