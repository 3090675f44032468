// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
)

// PixmapTarget is a CPU-backed color attachment using *image.RGBA.
//
// Pixels are stored as raw RGBA bytes. SoftwareContext writes pick colors
// into it byte for byte, so ReadPixels returns exactly what was drawn.
//
// Example:
//
//	target := render.NewPixmapTarget(800, 600)
//	target.Clear(color.RGBA{})
//	img := target.Image()
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a new CPU-backed render target.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewPixmapTargetFromImage wraps an existing *image.RGBA as a render target.
// The image is used directly without copying.
func NewPixmapTargetFromImage(img *image.RGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int {
	return t.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int {
	return t.img.Bounds().Dy()
}

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns direct access to the pixel data.
func (t *PixmapTarget) Pixels() []byte {
	return t.img.Pix
}

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int {
	return t.img.Stride
}

// Image returns the underlying *image.RGBA.
// The returned image shares memory with the target.
func (t *PixmapTarget) Image() *image.RGBA {
	return t.img
}

// Clear fills the entire target with c.
func (t *PixmapTarget) Clear(c color.RGBA) {
	t.Fill(t.img.Bounds(), c)
}

// Fill writes c into every pixel of r clipped to the target bounds.
func (t *PixmapTarget) Fill(r image.Rectangle, c color.RGBA) {
	r = r.Intersect(t.img.Bounds())
	if r.Empty() {
		return
	}

	// Build the first row, then copy it down.
	first := t.img.PixOffset(r.Min.X, r.Min.Y)
	rowLen := r.Dx() * 4
	row := t.img.Pix[first : first+rowLen]
	for i := 0; i < rowLen; i += 4 {
		row[i+0] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = c.A
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		off := t.img.PixOffset(r.Min.X, y)
		copy(t.img.Pix[off:off+rowLen], row)
	}
}

// SetPixel stores the raw bytes of c at (x, y). Out-of-bounds writes are ignored.
func (t *PixmapTarget) SetPixel(x, y int, c color.RGBA) {
	t.img.SetRGBA(x, y, c)
}

// GetPixel returns the raw bytes at (x, y).
func (t *PixmapTarget) GetPixel(x, y int) color.RGBA {
	return t.img.RGBAAt(x, y)
}

// Resize creates a new image with the given dimensions.
// The contents are not preserved.
func (t *PixmapTarget) Resize(width, height int) {
	t.img = image.NewRGBA(image.Rect(0, 0, width, height))
}
