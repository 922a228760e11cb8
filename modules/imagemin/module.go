// Package imagemin implements the `imagemin` step: lossless recompression
// of PNG and GIF images.
package imagemin

import (
	"bytes"
	"context"
	"fmt"
	"image/gif"
	"image/png"
	"strings"

	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/stream"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of an `imagemin` step.
type Input struct{}

var encoder = &png.Encoder{CompressionLevel: png.BestCompression}

func recompressPNG(b []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func recompressGIF(b []byte) ([]byte, error) {
	g, err := gif.DecodeAll(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Optimize recompresses every PNG and GIF in the stream and keeps whichever
// of the input and the result is smaller. Other files pass through.
func Optimize(ctx context.Context, scope *registry.Scope, _ *Input) error {
	logger := ctxlog.FromContext(ctx)
	return scope.Stream.Each(ctx, func(_ context.Context, f *stream.File) error {
		var recompress func([]byte) ([]byte, error)
		switch strings.ToLower(f.Ext()) {
		case ".png":
			recompress = recompressPNG
		case ".gif":
			recompress = recompressGIF
		default:
			return nil
		}

		out, err := recompress(f.Contents)
		if err != nil {
			return fmt.Errorf("optimizing %s: %w", f.Path, err)
		}
		if len(out) >= len(f.Contents) {
			logger.Debug("Image already optimal.", "path", f.Path, "size", len(f.Contents))
			return nil
		}
		logger.Debug("Image optimized.", "path", f.Path, "before", len(f.Contents), "after", len(out))
		f.Contents = out
		return nil
	})
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("imagemin", registry.Step(Optimize))
}
