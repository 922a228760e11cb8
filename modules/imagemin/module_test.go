package imagemin_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbuild/internal/stream"
	"github.com/vk/gridbuild/internal/testutil"
	"github.com/vk/gridbuild/modules/imagemin"
)

func uncompressedPNG(t *testing.T) ([]byte, image.Image) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 4), G: 10, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	enc := &png.Encoder{CompressionLevel: png.NoCompression}
	require.NoError(t, enc.Encode(&buf, img))
	return buf.Bytes(), img
}

func TestOptimize(t *testing.T) {
	t.Parallel()
	raw, img := uncompressedPNG(t)
	scope := testutil.NewScope(t, map[string]string{"img/notes.txt": "not an image"})
	scope.Stream.Add(&stream.File{Path: "img/tile.png", Contents: raw, Mode: 0o644})

	require.NoError(t, imagemin.Optimize(context.Background(), scope, &imagemin.Input{}))

	got := testutil.Contents(scope.Stream)
	assert.Less(t, len(got["img/tile.png"]), len(raw))
	assert.Equal(t, "not an image", got["img/notes.txt"])

	decoded, err := png.Decode(bytes.NewReader([]byte(got["img/tile.png"])))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
	for _, p := range []image.Point{{0, 0}, {17, 33}, {63, 63}} {
		r1, g1, b1, a1 := img.At(p.X, p.Y).RGBA()
		r2, g2, b2, a2 := decoded.At(p.X, p.Y).RGBA()
		assert.Equal(t, []uint32{r1, g1, b1, a1}, []uint32{r2, g2, b2, a2}, "pixel %v", p)
	}
}

func TestOptimize_KeepsSmallerOriginal(t *testing.T) {
	t.Parallel()
	raw, _ := uncompressedPNG(t)
	var best bytes.Buffer
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	require.NoError(t, (&png.Encoder{CompressionLevel: png.BestCompression}).Encode(&best, img))

	scope := testutil.NewScope(t, nil)
	scope.Stream.Add(&stream.File{Path: "a.png", Contents: best.Bytes()})
	require.NoError(t, imagemin.Optimize(context.Background(), scope, &imagemin.Input{}))
	assert.Equal(t, best.Bytes(), scope.Stream.Files()[0].Contents)
}

func TestOptimize_CorruptImage(t *testing.T) {
	t.Parallel()
	scope := testutil.NewScope(t, map[string]string{"img/bad.png": "garbage"})
	assert.ErrorContains(t, imagemin.Optimize(context.Background(), scope, &imagemin.Input{}), "img/bad.png")
}
