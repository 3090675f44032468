// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
)

// Errors shared by Context implementations.
var (
	// ErrInvalidSize is returned for non-positive resource dimensions.
	ErrInvalidSize = errors.New("render: invalid size")

	// ErrTextureTooLarge is returned when a resource exceeds the context limit.
	ErrTextureTooLarge = errors.New("render: texture exceeds maximum size")

	// ErrUnsupportedFormat is returned for formats a context cannot allocate.
	ErrUnsupportedFormat = errors.New("render: unsupported format")

	// ErrUnsupportedUsage is returned for texture usages a context cannot
	// honor, and when a texture is used in a way its usage does not allow.
	ErrUnsupportedUsage = errors.New("render: unsupported texture usage")

	// ErrForeignResource is returned when a resource created by another
	// context is attached to a framebuffer.
	ErrForeignResource = errors.New("render: resource belongs to another context")

	// ErrAttachmentSize is returned when framebuffer attachments differ in size.
	ErrAttachmentSize = errors.New("render: attachment sizes differ")

	// ErrMissingAttachment is returned for a framebuffer without a color texture.
	ErrMissingAttachment = errors.New("render: framebuffer needs a color texture")

	// ErrResourceDestroyed is returned when a destroyed resource is used.
	ErrResourceDestroyed = errors.New("render: resource destroyed")

	// ErrNoFramebuffer is returned when an operation needs a framebuffer
	// and the context has no default one.
	ErrNoFramebuffer = errors.New("render: no framebuffer")
)

// Context is the rendering context a pick buffer draws through.
//
// Implementations allocate render resources, execute clears and draws for a
// pass, and read pixels back synchronously. SoftwareContext renders on the
// CPU; render/gpu.Context renders through a wgpu HAL device.
type Context interface {
	// Viewport returns the current drawing-buffer size in pixels.
	Viewport() (width, height int)

	CreateTexture2D(desc TextureDescriptor) (Texture, error)
	CreateRenderbuffer(desc RenderbufferDescriptor) (Renderbuffer, error)
	CreateFramebuffer(desc FramebufferDescriptor) (Framebuffer, error)

	// CreateClearState resolves clear options into a reusable clear state.
	CreateClearState(opts ClearOptions) *ClearState

	// Clear executes state against the pass framebuffer.
	Clear(state *ClearState, pass *PassState) error

	// Draw renders commands into the pass framebuffer.
	Draw(cmds []DrawCommand, pass *PassState) error

	// ReadPixels reads back a rectangle of RGBA8 pixels, top row first.
	// Pixels outside the framebuffer read as zero.
	ReadPixels(req ReadPixelsRequest) ([]byte, error)

	// CreatePickID registers object in the context's pick color table.
	CreatePickID(object any) (PickID, error)

	// ObjectByPickColor looks up the object registered for c.
	ObjectByPickColor(c Color) (any, bool)
}

// Texture is a 2D color texture.
type Texture interface {
	Width() int
	Height() int
	Destroy()
	IsDestroyed() bool
}

// RenderbufferFormat is the storage format of a renderbuffer.
type RenderbufferFormat uint8

const (
	// RenderbufferFormatDepthComponent16 is a 16-bit depth buffer.
	RenderbufferFormatDepthComponent16 RenderbufferFormat = iota

	// RenderbufferFormatDepth24Stencil8 is a packed depth/stencil buffer.
	RenderbufferFormatDepth24Stencil8
)

// String returns the format name.
func (f RenderbufferFormat) String() string {
	switch f {
	case RenderbufferFormatDepthComponent16:
		return "DepthComponent16"
	case RenderbufferFormatDepth24Stencil8:
		return "Depth24Stencil8"
	default:
		return fmt.Sprintf("RenderbufferFormat(%d)", f)
	}
}

// RenderbufferDescriptor describes a renderbuffer.
// Zero Width and Height select the current viewport size.
type RenderbufferDescriptor struct {
	Label  string
	Format RenderbufferFormat
	Width  int
	Height int
}

// Renderbuffer is a non-sampled attachment, typically depth.
type Renderbuffer interface {
	Width() int
	Height() int
	Format() RenderbufferFormat
	Destroy()
	IsDestroyed() bool
}

// FramebufferDescriptor describes a framebuffer. The framebuffer owns its
// attachments: destroying it destroys them.
type FramebufferDescriptor struct {
	Label             string
	ColorTexture      Texture
	DepthRenderbuffer Renderbuffer
}

// Framebuffer groups a color texture and an optional depth renderbuffer.
type Framebuffer interface {
	Width() int
	Height() int
	ColorTexture() Texture
	DepthRenderbuffer() Renderbuffer
	Destroy()
	IsDestroyed() bool
}

// ClearMask selects the attachments a clear touches.
type ClearMask uint8

// Clear mask bits.
const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
	ClearStencil

	ClearAll = ClearColor | ClearDepth | ClearStencil
)

// ClearOptions are the values a ClearState writes.
// A zero Mask clears every attachment.
type ClearOptions struct {
	Color   Color
	Depth   float32
	Stencil uint32
	Mask    ClearMask
}

// ClearState is a resolved, immutable clear description.
type ClearState struct {
	Color   Color
	Depth   float32
	Stencil uint32
	Mask    ClearMask
}

// NewClearState resolves opts: a zero mask becomes ClearAll and depth is
// clamped to [0, 1]. Context implementations use it for CreateClearState.
func NewClearState(opts ClearOptions) *ClearState {
	mask := opts.Mask
	if mask == 0 {
		mask = ClearAll
	}
	depth := opts.Depth
	if depth < 0 {
		depth = 0
	} else if depth > 1 {
		depth = 1
	}
	return &ClearState{
		Color:   opts.Color,
		Depth:   depth,
		Stencil: opts.Stencil,
		Mask:    mask,
	}
}

// ClearCommand binds a ClearState for execution against a pass.
type ClearCommand struct {
	State *ClearState
}

// NewClearCommand creates a command that executes state.
func NewClearCommand(state *ClearState) *ClearCommand {
	return &ClearCommand{State: state}
}

// Execute clears the pass framebuffer through ctx.
func (c *ClearCommand) Execute(ctx Context, pass *PassState) error {
	return ctx.Clear(c.State, pass)
}

// Point is a position in framebuffer pixel coordinates, origin top-left.
type Point struct {
	X, Y float64
}

// DrawCommand is a flat-colored polygon at a constant depth.
type DrawCommand struct {
	Points []Point
	Color  Color

	// Depth is in [0, 1]; smaller is nearer. Commands only draw where they
	// pass the LESS depth test against the framebuffer's depth attachment.
	Depth float32
}

// ReadPixelsRequest selects the pixels to read back.
type ReadPixelsRequest struct {
	X, Y          int
	Width, Height int

	// Framebuffer to read from. Nil reads the context's default target.
	Framebuffer Framebuffer
}

// Normalized returns r with non-positive Width and Height defaulted to 1.
func (r ReadPixelsRequest) Normalized() ReadPixelsRequest {
	if r.Width <= 0 {
		r.Width = 1
	}
	if r.Height <= 0 {
		r.Height = 1
	}
	return r
}
