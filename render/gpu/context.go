// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/globe/render"
)

// Errors returned by NewContext and NewContextFromProvider.
var (
	// ErrNilDevice is returned when the device or queue is nil.
	ErrNilDevice = errors.New("gpu: nil device or queue")

	// ErrNoHALProvider is returned when a provider does not expose HAL types.
	ErrNoHALProvider = errors.New("gpu: provider does not expose HAL device and queue")

	// ErrGPUTimeout is returned when a submission does not finish in time.
	ErrGPUTimeout = errors.New("gpu: timed out waiting for submission")
)

// Context defaults.
const (
	// DefaultMaxTextureSize matches the default WebGPU 2D texture limit.
	DefaultMaxTextureSize = 8192

	// DefaultWaitTimeout bounds each fence wait.
	DefaultWaitTimeout = 5 * time.Second

	// copyPitchAlignment is the required BytesPerRow alignment of
	// texture-to-buffer copies.
	copyPitchAlignment = 256
)

// Option configures a Context.
type Option func(*Context)

// WithMaxTextureSize limits the dimensions of allocated textures.
func WithMaxTextureSize(n int) Option {
	return func(c *Context) {
		if n > 0 {
			c.maxTextureSize = n
		}
	}
}

// WithWaitTimeout sets how long a submission may take.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *Context) {
		if d > 0 {
			c.waitTimeout = d
		}
	}
}

// WithPickColorTable shares an existing pick color table.
func WithPickColorTable(t *render.PickColorTable) Option {
	return func(c *Context) {
		if t != nil {
			c.picks = t
		}
	}
}

// Context is a render.Context on a wgpu HAL device.
//
// The context has no default framebuffer; passes and read-backs must name
// one. Context is not safe for concurrent use.
type Context struct {
	device hal.Device
	queue  hal.Queue

	width, height  int
	maxTextureSize int
	waitTimeout    time.Duration
	picks          *render.PickColorTable

	pipelines *pipelineSet
}

// NewContext creates a context on device and queue. The context does not
// take ownership of either.
func NewContext(device hal.Device, queue hal.Queue, width, height int, opts ...Option) (*Context, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}

	c := &Context{
		device:         device,
		queue:          queue,
		maxTextureSize: DefaultMaxTextureSize,
		waitTimeout:    DefaultWaitTimeout,
		picks:          render.NewPickColorTable(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.SetViewport(width, height)

	slogger().Info("gpu: context created", "width", c.width, "height", c.height)
	return c, nil
}

// NewContextFromProvider creates a context from a host device provider.
// The provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewContextFromProvider(provider render.DeviceHandle, width, height int, opts ...Option) (*Context, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	return NewContext(device, queue, width, height, opts...)
}

// SetViewport sets the drawing-buffer size. Sizes below one pixel are
// raised to one.
func (c *Context) SetViewport(width, height int) {
	c.width = max(width, 1)
	c.height = max(height, 1)
}

// Viewport returns the drawing-buffer size.
func (c *Context) Viewport() (width, height int) {
	return c.width, c.height
}

// PickColors returns the pick color table.
func (c *Context) PickColors() *render.PickColorTable {
	return c.picks
}

// Destroy releases the pick pipelines. Resources created by the context
// must be destroyed by their owners.
func (c *Context) Destroy() {
	if c.pipelines != nil {
		c.pipelines.destroy()
		c.pipelines = nil
	}
}

func (c *Context) ensurePipelines() error {
	if c.pipelines != nil {
		return nil
	}
	p, err := newPipelineSet(c.device)
	if err != nil {
		return err
	}
	c.pipelines = p
	return nil
}

func (c *Context) resolveSize(width, height int) (int, int, error) {
	if width == 0 && height == 0 {
		width, height = c.width, c.height
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", render.ErrInvalidSize, width, height)
	}
	if width > c.maxTextureSize || height > c.maxTextureSize {
		return 0, 0, fmt.Errorf("%w: %dx%d > %d", render.ErrTextureTooLarge, width, height, c.maxTextureSize)
	}
	return width, height, nil
}

// CreateTexture2D allocates an RGBA8 color texture usable as a render
// attachment and copy source.
func (c *Context) CreateTexture2D(desc render.TextureDescriptor) (render.Texture, error) {
	if desc.Format != gputypes.TextureFormatUndefined && desc.Format != colorFormat {
		return nil, fmt.Errorf("%w: %v", render.ErrUnsupportedFormat, desc.Format)
	}
	usage, err := desc.ResolvedUsage()
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %q: %w", desc.Label, err)
	}
	w, h, err := c.resolveSize(desc.Width, desc.Height)
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %q: %w", desc.Label, err)
	}

	label := desc.Label
	if label == "" {
		label = "pick_color"
	}
	a, err := createAttachment(c.device, label, w, h, colorFormat, halTextureUsage(usage))
	if err != nil {
		return nil, fmt.Errorf("gpu: %w", err)
	}

	slogger().Debug("gpu: texture created", "label", label, "width", w, "height", h)
	return &texture{owner: c, width: w, height: h, usage: usage, attachment: a}, nil
}

// halTextureUsage maps render usage flags to WebGPU usage flags.
func halTextureUsage(u render.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&render.TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	if u&render.TextureUsageCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	return out
}

// CreateRenderbuffer allocates a depth/stencil attachment.
func (c *Context) CreateRenderbuffer(desc render.RenderbufferDescriptor) (render.Renderbuffer, error) {
	switch desc.Format {
	case render.RenderbufferFormatDepthComponent16, render.RenderbufferFormatDepth24Stencil8:
	default:
		return nil, fmt.Errorf("%w: %v", render.ErrUnsupportedFormat, desc.Format)
	}
	w, h, err := c.resolveSize(desc.Width, desc.Height)
	if err != nil {
		return nil, fmt.Errorf("gpu: create renderbuffer %q: %w", desc.Label, err)
	}

	label := desc.Label
	if label == "" {
		label = "pick_depth"
	}
	rb, err := c.newRenderbuffer(label, desc.Format, w, h)
	if err != nil {
		return nil, err
	}
	return rb, nil
}

func (c *Context) newRenderbuffer(label string, format render.RenderbufferFormat, w, h int) (*renderbuffer, error) {
	a, err := createAttachment(c.device, label, w, h, depthFormat, gputypes.TextureUsageRenderAttachment)
	if err != nil {
		return nil, fmt.Errorf("gpu: %w", err)
	}
	slogger().Debug("gpu: renderbuffer created", "label", label, "format", format, "width", w, "height", h)
	return &renderbuffer{owner: c, format: format, width: w, height: h, attachment: a}, nil
}

// CreateFramebuffer groups attachments created by this context.
func (c *Context) CreateFramebuffer(desc render.FramebufferDescriptor) (render.Framebuffer, error) {
	if desc.ColorTexture == nil {
		return nil, render.ErrMissingAttachment
	}
	tex, ok := desc.ColorTexture.(*texture)
	if !ok || tex.owner != c {
		return nil, render.ErrForeignResource
	}
	if tex.IsDestroyed() {
		return nil, render.ErrResourceDestroyed
	}
	if tex.usage&render.TextureUsageRenderAttachment == 0 {
		return nil, fmt.Errorf("%w: color texture is not a render attachment", render.ErrUnsupportedUsage)
	}

	fb := &framebuffer{owner: c, color: tex}
	if desc.DepthRenderbuffer != nil {
		rb, ok := desc.DepthRenderbuffer.(*renderbuffer)
		if !ok || rb.owner != c {
			return nil, render.ErrForeignResource
		}
		if rb.IsDestroyed() {
			return nil, render.ErrResourceDestroyed
		}
		if rb.width != tex.width || rb.height != tex.height {
			return nil, fmt.Errorf("%w: color %dx%d, depth %dx%d",
				render.ErrAttachmentSize, tex.width, tex.height, rb.width, rb.height)
		}
		fb.depth = rb
	} else {
		rb, err := c.newRenderbuffer("pick_private_depth", render.RenderbufferFormatDepth24Stencil8, tex.width, tex.height)
		if err != nil {
			return nil, err
		}
		fb.depth = rb
		fb.ownsDepth = true
	}

	slogger().Debug("gpu: framebuffer created", "width", tex.width, "height", tex.height)
	return fb, nil
}

// CreateClearState resolves clear options.
func (c *Context) CreateClearState(opts render.ClearOptions) *render.ClearState {
	return render.NewClearState(opts)
}

// CreatePickID registers object in the context's pick color table.
func (c *Context) CreatePickID(object any) (render.PickID, error) {
	return c.picks.Register(object)
}

// ObjectByPickColor looks up the object registered for col.
func (c *Context) ObjectByPickColor(col render.Color) (any, bool) {
	return c.picks.ObjectByPickColor(col)
}

func (c *Context) framebuffer(fb render.Framebuffer) (*framebuffer, error) {
	if fb == nil {
		return nil, render.ErrNoFramebuffer
	}
	gfb, ok := fb.(*framebuffer)
	if !ok || gfb.owner != c {
		return nil, render.ErrForeignResource
	}
	if err := gfb.usable(); err != nil {
		return nil, err
	}
	return gfb, nil
}

func (c *Context) passFramebuffer(pass *render.PassState) (*framebuffer, error) {
	if pass == nil {
		return nil, render.ErrNoFramebuffer
	}
	return c.framebuffer(pass.Framebuffer)
}

var _ render.Context = (*Context)(nil)
