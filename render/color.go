// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image/color"
	"math"
)

// Color represents a straight (non-premultiplied) RGBA color.
// Each component is in the range [0, 1].
type Color struct {
	R, G, B, A float64
}

// Transparent is fully transparent black, the pick background.
var Transparent = Color{}

// ByteToFloat converts a color byte to a normalized component.
func ByteToFloat(b byte) float64 {
	return float64(b) / 255
}

// FloatToByte converts a normalized component to a byte, rounding to the
// nearest value and clamping to [0, 255].
func FloatToByte(f float64) byte {
	v := math.Round(f * 255)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

// ColorFromBytes creates a color from 8-bit components.
// ColorFromBytes(c.Bytes()) round-trips exactly for every byte value.
func ColorFromBytes(r, g, b, a byte) Color {
	return Color{
		R: ByteToFloat(r),
		G: ByteToFloat(g),
		B: ByteToFloat(b),
		A: ByteToFloat(a),
	}
}

// Bytes returns the color as 8-bit components in R, G, B, A order.
func (c Color) Bytes() (r, g, b, a byte) {
	return FloatToByte(c.R), FloatToByte(c.G), FloatToByte(c.B), FloatToByte(c.A)
}

// RGBA returns the raw bytes as a color.RGBA. The bytes are copied as they
// are; pick colors are identifiers, not light.
func (c Color) RGBA() color.RGBA {
	r, g, b, a := c.Bytes()
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// String implements fmt.Stringer.
func (c Color) String() string {
	r, g, b, a := c.Bytes()
	return fmt.Sprintf("rgba(%d, %d, %d, %d)", r, g, b, a)
}
