// Package imaging opens problem images, scales them for upload and renders
// them in the terminal.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/nfnt/resize"
)

// DefaultMaxDim bounds the longest side of images sent to the tutor.
const DefaultMaxDim = 1600

// Encoded is an image ready to attach to a request.
type Encoded struct {
	Data     []byte
	MIMEType string
}

// Open decodes a PNG, JPEG or GIF file.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Fit scales img down to fit within maxW x maxH, keeping its aspect ratio.
// Images that already fit are returned unchanged.
func Fit(img image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 || maxH <= 0 {
		return img
	}
	return resize.Thumbnail(uint(maxW), uint(maxH), img, resize.Lanczos3)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Prepare opens the image at path, bounds it to maxDim and encodes it as PNG.
func Prepare(path string, maxDim int) (Encoded, error) {
	img, err := Open(path)
	if err != nil {
		return Encoded{}, err
	}
	data, err := EncodePNG(Fit(img, maxDim, maxDim))
	if err != nil {
		return Encoded{}, err
	}
	return Encoded{Data: data, MIMEType: "image/png"}, nil
}

// RenderHalfBlocks draws img at most cols cells wide and rows cells tall
// using upper half blocks: the foreground paints the top pixel of a cell and
// the background the bottom one. Transparent pixels are composited on white.
func RenderHalfBlocks(img image.Image, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}

	// One cell is one pixel wide and two pixels tall.
	scaled := Fit(img, cols, rows*2)
	b := scaled.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := flatten(scaled.At(x, y))
			bottom := color.Color(color.White)
			if y+1 < b.Max.Y {
				bottom = flatten(scaled.At(x, y+1))
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(top).
				Background(bottom).
				Render("▀"))
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// flatten composites c over white and drops alpha.
func flatten(c color.Color) color.Color {
	r, g, b, a := c.RGBA()
	const max = 0xffff
	blend := func(v uint32) uint8 {
		return uint8((v + (max - a)) >> 8)
	}
	return color.RGBA{R: blend(r), G: blend(g), B: blend(b), A: 0xff}
}
