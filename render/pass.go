// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "image"

// Rectangle is an integer pixel rectangle, origin top-left.
type Rectangle struct {
	X, Y          int
	Width, Height int
}

// Image converts r to an image.Rectangle.
func (r Rectangle) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether r covers no pixels.
func (r Rectangle) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ScissorTest restricts rasterization and clears to a rectangle.
type ScissorTest struct {
	Enabled   bool
	Rectangle Rectangle
}

// PassState is the render state a pass draws with.
type PassState struct {
	// Framebuffer is the pass target. Nil selects the context default.
	Framebuffer Framebuffer

	// BlendingEnabled composites colors over the destination. Pick passes
	// disable it so pick colors land in the framebuffer unmodified.
	BlendingEnabled bool

	ScissorTest ScissorTest
}

// NewPassState returns a pass targeting fb with blending enabled and no scissor.
func NewPassState(fb Framebuffer) *PassState {
	return &PassState{
		Framebuffer:     fb,
		BlendingEnabled: true,
	}
}

// ClipRect returns the pixels of a width×height target the pass may touch.
func (p *PassState) ClipRect(width, height int) image.Rectangle {
	r := image.Rect(0, 0, width, height)
	if p != nil && p.ScissorTest.Enabled {
		r = r.Intersect(p.ScissorTest.Rectangle.Image())
	}
	return r
}
