// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pick

import (
	"fmt"

	"github.com/gogpu/globe/render"
)

// DrawFunc renders pickable objects with their pick colors into pass.
type DrawFunc func(pass *render.PassState) error

// Picker runs complete pick requests: restricted pass, read-back and
// spiral search.
type Picker struct {
	ctx render.Context
	fb  *Framebuffer
}

// NewPicker creates a picker with its own pick framebuffer on ctx.
func NewPicker(ctx render.Context) (*Picker, error) {
	fb, err := NewFramebuffer(ctx)
	if err != nil {
		return nil, err
	}
	return &Picker{ctx: ctx, fb: fb}, nil
}

// Framebuffer returns the picker's off-screen target.
func (p *Picker) Framebuffer() *Framebuffer {
	return p.fb
}

// Pick renders region with draw and returns the object nearest its center
// in spiral order. A region showing only background yields (nil, false, nil).
//
// Pick blocks on the read-back; call it once per user pick request.
func (p *Picker) Pick(region render.Rectangle, draw DrawFunc) (any, bool, error) {
	region = normalizeRegion(region)

	pass, err := p.fb.Begin(region)
	if err != nil {
		return nil, false, err
	}
	if draw != nil {
		if err := draw(pass); err != nil {
			return nil, false, fmt.Errorf("pick: draw: %w", err)
		}
	}
	pixels, err := p.fb.End(region)
	if err != nil {
		return nil, false, err
	}

	object, ok := Resolve(pixels, region.Width, region.Height, p.ctx)
	slogger().Debug("pick: resolved",
		"x", region.X, "y", region.Y, "width", region.Width, "height", region.Height, "found", ok)
	return object, ok, nil
}

// Destroy releases the pick framebuffer.
func (p *Picker) Destroy() {
	p.fb.Destroy()
}
