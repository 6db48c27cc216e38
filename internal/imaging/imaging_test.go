package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "q1.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestFit(t *testing.T) {
	big := solid(400, 200, color.Black)

	got := Fit(big, 100, 100).Bounds()
	assert.Equal(t, 100, got.Dx())
	assert.Equal(t, 50, got.Dy())

	small := solid(40, 20, color.Black)
	assert.Equal(t, small.Bounds(), Fit(small, 100, 100).Bounds(), "must not upscale")
	assert.Equal(t, big.Bounds(), Fit(big, 0, 10).Bounds())
}

func TestPrepare(t *testing.T) {
	path := writePNG(t, solid(300, 150, color.RGBA{R: 200, A: 255}))

	enc, err := Prepare(path, 100)
	require.NoError(t, err)
	assert.Equal(t, "image/png", enc.MIMEType)

	decoded, err := png.Decode(bytes.NewReader(enc.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
	assert.Equal(t, 50, decoded.Bounds().Dy())
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = Open(bad)
	assert.Error(t, err)
}

func TestRenderHalfBlocks(t *testing.T) {
	img := solid(8, 8, color.Black)

	out := RenderHalfBlocks(img, 8, 10)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 4, "two pixel rows per line")
	assert.Equal(t, 8, strings.Count(lines[0], "▀"))

	assert.Empty(t, RenderHalfBlocks(img, 0, 10))
}

func TestFlattenTransparent(t *testing.T) {
	got := flatten(color.RGBA{})
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, got)

	got = flatten(color.RGBA{R: 10, G: 20, B: 30, A: 255})
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, got)
}
