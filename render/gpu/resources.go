// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/globe/render"
)

// colorFormat is the format of every color texture the context allocates.
const colorFormat = gputypes.TextureFormatRGBA8Unorm

// depthFormat backs both render.RenderbufferFormat values. Pipelines are
// built for a single depth/stencil format.
const depthFormat = gputypes.TextureFormatDepth24PlusStencil8

// attachment is a texture and its default view.
type attachment struct {
	tex  hal.Texture
	view hal.TextureView
}

func createAttachment(device hal.Device, label string, w, h int, format gputypes.TextureFormat, usage gputypes.TextureUsage) (attachment, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}, //nolint:gosec // validated positive
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return attachment{}, fmt.Errorf("create texture %q: %w", label, err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		return attachment{}, fmt.Errorf("create texture view %q: %w", label, err)
	}
	return attachment{tex: tex, view: view}, nil
}

func (a *attachment) destroy(device hal.Device) {
	if a.view != nil {
		device.DestroyTextureView(a.view)
		a.view = nil
	}
	if a.tex != nil {
		device.DestroyTexture(a.tex)
		a.tex = nil
	}
}

// texture implements render.Texture.
type texture struct {
	owner         *Context
	width, height int
	usage         render.TextureUsage
	attachment
}

func (t *texture) Width() int        { return t.width }
func (t *texture) Height() int       { return t.height }
func (t *texture) IsDestroyed() bool { return t.tex == nil }

func (t *texture) Destroy() {
	if t.tex == nil {
		return
	}
	t.destroy(t.owner.device)
}

// renderbuffer implements render.Renderbuffer as a depth/stencil texture.
type renderbuffer struct {
	owner         *Context
	format        render.RenderbufferFormat
	width, height int
	attachment

	// initialized is false until a pass has cleared or written the buffer.
	initialized bool
}

func (r *renderbuffer) Width() int                        { return r.width }
func (r *renderbuffer) Height() int                       { return r.height }
func (r *renderbuffer) Format() render.RenderbufferFormat { return r.format }
func (r *renderbuffer) IsDestroyed() bool                 { return r.tex == nil }

func (r *renderbuffer) Destroy() {
	if r.tex == nil {
		return
	}
	r.destroy(r.owner.device)
}

// framebuffer implements render.Framebuffer. A framebuffer created without
// a depth renderbuffer gets a private one, since the pick pipelines carry
// depth/stencil state.
type framebuffer struct {
	owner     *Context
	color     *texture
	depth     *renderbuffer
	ownsDepth bool
	destroyed bool
}

func (f *framebuffer) Width() int        { return f.color.width }
func (f *framebuffer) Height() int       { return f.color.height }
func (f *framebuffer) IsDestroyed() bool { return f.destroyed }

func (f *framebuffer) ColorTexture() render.Texture {
	return f.color
}

func (f *framebuffer) DepthRenderbuffer() render.Renderbuffer {
	if f.ownsDepth {
		return nil
	}
	return f.depth
}

// Destroy releases the framebuffer and its attachments.
func (f *framebuffer) Destroy() {
	if f.destroyed {
		return
	}
	f.destroyed = true
	f.color.Destroy()
	f.depth.Destroy()
	slogger().Debug("gpu: framebuffer destroyed", "width", f.color.width, "height", f.color.height)
}

func (f *framebuffer) usable() error {
	if f.destroyed || f.color.IsDestroyed() || f.depth.IsDestroyed() {
		return render.ErrResourceDestroyed
	}
	return nil
}
