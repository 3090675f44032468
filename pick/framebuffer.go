// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pick

import (
	"errors"
	"fmt"

	"github.com/gogpu/globe/render"
)

var (
	// ErrNilContext is returned when a pick component is built without a
	// rendering context.
	ErrNilContext = errors.New("pick: nil rendering context")

	// ErrNotBegun is returned by End before the first Begin.
	ErrNotBegun = errors.New("pick: End called before Begin")

	// ErrDestroyed is returned when a destroyed framebuffer is used.
	ErrDestroyed = errors.New("pick: framebuffer destroyed")
)

// Framebuffer is the off-screen target a pick pass renders into. It
// follows the context's viewport size and owns its color and depth
// attachments exclusively.
//
// Framebuffer is not safe for concurrent use; picks and resizes must be
// serialized by the caller.
type Framebuffer struct {
	ctx render.Context
	fb  render.Framebuffer

	width, height int
	allocations   int

	pass  *render.PassState
	clear *render.ClearCommand

	begun     bool
	destroyed bool
}

// NewFramebuffer creates a pick framebuffer on ctx. Attachments are
// allocated by the first Begin.
func NewFramebuffer(ctx render.Context) (*Framebuffer, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	pass := render.NewPassState(nil)
	pass.BlendingEnabled = false
	pass.ScissorTest.Enabled = true

	return &Framebuffer{
		ctx:  ctx,
		pass: pass,
		clear: render.NewClearCommand(ctx.CreateClearState(render.ClearOptions{
			Color:   render.Transparent,
			Depth:   1,
			Stencil: 0,
		})),
	}, nil
}

// Begin prepares a pick pass confined to region. The attachments are
// reallocated when the viewport size changed since the last call, and
// region is cleared to transparent black with depth 1.
//
// The returned pass state disables blending and scissors to region. It is
// owned by the framebuffer and valid until the next Begin.
func (f *Framebuffer) Begin(region render.Rectangle) (*render.PassState, error) {
	if f.destroyed {
		return nil, ErrDestroyed
	}
	if err := f.ensureSize(); err != nil {
		return nil, err
	}

	f.pass.ScissorTest.Rectangle = normalizeRegion(region)
	if err := f.clear.Execute(f.ctx, f.pass); err != nil {
		return nil, fmt.Errorf("pick: clear: %w", err)
	}
	f.begun = true
	return f.pass, nil
}

// End reads back the pixels under region as tightly packed RGBA8 rows,
// top row first. It blocks until the transfer completes.
func (f *Framebuffer) End(region render.Rectangle) ([]byte, error) {
	if f.destroyed {
		return nil, ErrDestroyed
	}
	if !f.begun {
		return nil, ErrNotBegun
	}

	region = normalizeRegion(region)
	pixels, err := f.ctx.ReadPixels(render.ReadPixelsRequest{
		X:           region.X,
		Y:           region.Y,
		Width:       region.Width,
		Height:      region.Height,
		Framebuffer: f.fb,
	})
	if err != nil {
		return nil, fmt.Errorf("pick: read pixels: %w", err)
	}
	return pixels, nil
}

// Destroy releases the attachments. Further calls do nothing.
func (f *Framebuffer) Destroy() {
	if f.destroyed {
		return
	}
	f.destroyed = true
	if f.fb != nil {
		f.fb.Destroy()
		f.fb = nil
	}
	f.pass.Framebuffer = nil
	slogger().Debug("pick: framebuffer destroyed")
}

// IsDestroyed reports whether Destroy has been called.
func (f *Framebuffer) IsDestroyed() bool {
	return f.destroyed
}

// Size returns the size of the current attachments, or zero before the
// first Begin.
func (f *Framebuffer) Size() (width, height int) {
	return f.width, f.height
}

// Allocations returns how many times the attachments have been allocated.
func (f *Framebuffer) Allocations() int {
	return f.allocations
}

// ensureSize installs attachments matching the viewport. The new
// framebuffer is installed before the old one is destroyed; on failure the
// old one stays in place.
func (f *Framebuffer) ensureSize() error {
	w, h := f.ctx.Viewport()
	if f.fb != nil && w == f.width && h == f.height {
		return nil
	}

	fb, err := f.allocate(w, h)
	if err != nil {
		return err
	}

	old := f.fb
	f.fb = fb
	f.pass.Framebuffer = fb
	f.width, f.height = w, h
	f.allocations++
	if old != nil {
		old.Destroy()
	}

	slogger().Debug("pick: framebuffer allocated", "width", w, "height", h, "allocations", f.allocations)
	return nil
}

func (f *Framebuffer) allocate(w, h int) (render.Framebuffer, error) {
	desc := render.DefaultTextureDescriptor(w, h)
	desc.Label = "pick_color"
	tex, err := f.ctx.CreateTexture2D(desc)
	if err != nil {
		return nil, fmt.Errorf("pick: create color texture: %w", err)
	}

	depth, err := f.ctx.CreateRenderbuffer(render.RenderbufferDescriptor{
		Label:  "pick_depth",
		Format: render.RenderbufferFormatDepthComponent16,
		Width:  w,
		Height: h,
	})
	if err != nil {
		tex.Destroy()
		return nil, fmt.Errorf("pick: create depth renderbuffer: %w", err)
	}

	fb, err := f.ctx.CreateFramebuffer(render.FramebufferDescriptor{
		Label:             "pick_framebuffer",
		ColorTexture:      tex,
		DepthRenderbuffer: depth,
	})
	if err != nil {
		depth.Destroy()
		tex.Destroy()
		return nil, fmt.Errorf("pick: create framebuffer: %w", err)
	}
	return fb, nil
}

func normalizeRegion(r render.Rectangle) render.Rectangle {
	r.Width, r.Height = regionSize(r.Width, r.Height)
	return r
}
