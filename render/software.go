// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/vector"
)

// Software context defaults.
const (
	// DefaultViewportWidth is the default drawing-buffer width.
	DefaultViewportWidth = 256

	// DefaultViewportHeight is the default drawing-buffer height.
	DefaultViewportHeight = 256

	// DefaultMaxTextureSize is the largest texture dimension allocated.
	DefaultMaxTextureSize = 16384
)

// SoftwareOption configures a SoftwareContext.
type SoftwareOption func(*softwareConfig)

type softwareConfig struct {
	width, height  int
	antialias      bool
	maxTextureSize int
	picks          *PickColorTable
}

// WithViewport sets the initial drawing-buffer size.
func WithViewport(width, height int) SoftwareOption {
	return func(c *softwareConfig) {
		c.width = width
		c.height = height
	}
}

// WithAntialias enables or disables coverage anti-aliasing. When enabled,
// partially covered edge pixels are resolved like a multisampled buffer
// and hold a mix of the polygon color and what was below it.
func WithAntialias(enabled bool) SoftwareOption {
	return func(c *softwareConfig) {
		c.antialias = enabled
	}
}

// WithMaxTextureSize limits the dimensions of allocated resources.
func WithMaxTextureSize(n int) SoftwareOption {
	return func(c *softwareConfig) {
		c.maxTextureSize = n
	}
}

// WithPickColorTable shares an existing pick color table.
func WithPickColorTable(t *PickColorTable) SoftwareOption {
	return func(c *softwareConfig) {
		c.picks = t
	}
}

// SoftwareStats counts resource and command activity of a SoftwareContext.
type SoftwareStats struct {
	TexturesCreated        int64
	TexturesDestroyed      int64
	RenderbuffersCreated   int64
	RenderbuffersDestroyed int64
	FramebuffersCreated    int64
	FramebuffersDestroyed  int64
	Clears                 int64
	Draws                  int64
	ReadPixels             int64
}

type softwareCounters struct {
	texturesCreated        atomic.Int64
	texturesDestroyed      atomic.Int64
	renderbuffersCreated   atomic.Int64
	renderbuffersDestroyed atomic.Int64
	framebuffersCreated    atomic.Int64
	framebuffersDestroyed  atomic.Int64
	clears                 atomic.Int64
	draws                  atomic.Int64
	readPixels             atomic.Int64
}

// SoftwareContext is a CPU implementation of Context.
//
// Color textures are PixmapTargets and renderbuffers are float32 depth
// planes. Polygons are rasterized with golang.org/x/image/vector into a
// coverage mask and written into the color texture.
//
// Example:
//
//	ctx := render.NewSoftwareContext(render.WithViewport(800, 600))
//	id, _ := ctx.CreatePickID(obj)
//	pass := render.NewPassState(nil)
//	ctx.Draw([]render.DrawCommand{{Points: pts, Color: id.Color()}}, pass)
//	img := ctx.Screen().Image()
//
// SoftwareContext is not safe for concurrent use; Stats may be read from
// any goroutine.
type SoftwareContext struct {
	width, height  int
	antialias      bool
	maxTextureSize int
	picks          *PickColorTable

	screen *softwareFramebuffer

	raster  *vector.Rasterizer
	maskPix []byte

	counters softwareCounters
}

// NewSoftwareContext creates a CPU rendering context.
func NewSoftwareContext(opts ...SoftwareOption) *SoftwareContext {
	cfg := softwareConfig{
		width:          DefaultViewportWidth,
		height:         DefaultViewportHeight,
		antialias:      true,
		maxTextureSize: DefaultMaxTextureSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.picks == nil {
		cfg.picks = NewPickColorTable()
	}
	if cfg.maxTextureSize <= 0 {
		cfg.maxTextureSize = DefaultMaxTextureSize
	}

	c := &SoftwareContext{
		antialias:      cfg.antialias,
		maxTextureSize: cfg.maxTextureSize,
		picks:          cfg.picks,
		raster:         vector.NewRasterizer(1, 1),
	}
	c.SetViewport(cfg.width, cfg.height)
	return c
}

// SetViewport resizes the drawing buffer and its default framebuffer.
// Sizes below one pixel are raised to one.
func (c *SoftwareContext) SetViewport(width, height int) {
	c.width = max(width, 1)
	c.height = max(height, 1)
	c.screen = &softwareFramebuffer{
		owner: c,
		color: &softwareTexture{owner: c, usage: SupportedTextureUsage, target: NewPixmapTarget(c.width, c.height)},
		depth: newSoftwareRenderbuffer(c, RenderbufferFormatDepth24Stencil8, c.width, c.height),
	}
}

// Viewport returns the drawing-buffer size.
func (c *SoftwareContext) Viewport() (width, height int) {
	return c.width, c.height
}

// Screen returns the color target of the default framebuffer.
func (c *SoftwareContext) Screen() *PixmapTarget {
	return c.screen.color.target
}

// PickColors returns the pick color table.
func (c *SoftwareContext) PickColors() *PickColorTable {
	return c.picks
}

// Stats returns a snapshot of the activity counters.
func (c *SoftwareContext) Stats() SoftwareStats {
	return SoftwareStats{
		TexturesCreated:        c.counters.texturesCreated.Load(),
		TexturesDestroyed:      c.counters.texturesDestroyed.Load(),
		RenderbuffersCreated:   c.counters.renderbuffersCreated.Load(),
		RenderbuffersDestroyed: c.counters.renderbuffersDestroyed.Load(),
		FramebuffersCreated:    c.counters.framebuffersCreated.Load(),
		FramebuffersDestroyed:  c.counters.framebuffersDestroyed.Load(),
		Clears:                 c.counters.clears.Load(),
		Draws:                  c.counters.draws.Load(),
		ReadPixels:             c.counters.readPixels.Load(),
	}
}

func (c *SoftwareContext) resolveSize(width, height int) (int, int, error) {
	if width == 0 && height == 0 {
		width, height = c.width, c.height
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width > c.maxTextureSize || height > c.maxTextureSize {
		return 0, 0, fmt.Errorf("%w: %dx%d > %d", ErrTextureTooLarge, width, height, c.maxTextureSize)
	}
	return width, height, nil
}

// CreateTexture2D allocates an RGBA8 color texture.
func (c *SoftwareContext) CreateTexture2D(desc TextureDescriptor) (Texture, error) {
	if desc.Format != gputypes.TextureFormatUndefined && desc.Format != gputypes.TextureFormatRGBA8Unorm {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, desc.Format)
	}
	usage, err := desc.ResolvedUsage()
	if err != nil {
		return nil, fmt.Errorf("render: create texture %q: %w", desc.Label, err)
	}
	w, h, err := c.resolveSize(desc.Width, desc.Height)
	if err != nil {
		return nil, fmt.Errorf("render: create texture %q: %w", desc.Label, err)
	}

	c.counters.texturesCreated.Add(1)
	return &softwareTexture{owner: c, usage: usage, target: NewPixmapTarget(w, h)}, nil
}

// CreateRenderbuffer allocates a depth renderbuffer.
func (c *SoftwareContext) CreateRenderbuffer(desc RenderbufferDescriptor) (Renderbuffer, error) {
	switch desc.Format {
	case RenderbufferFormatDepthComponent16, RenderbufferFormatDepth24Stencil8:
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, desc.Format)
	}
	w, h, err := c.resolveSize(desc.Width, desc.Height)
	if err != nil {
		return nil, fmt.Errorf("render: create renderbuffer %q: %w", desc.Label, err)
	}

	c.counters.renderbuffersCreated.Add(1)
	return newSoftwareRenderbuffer(c, desc.Format, w, h), nil
}

// CreateFramebuffer groups attachments created by this context.
func (c *SoftwareContext) CreateFramebuffer(desc FramebufferDescriptor) (Framebuffer, error) {
	if desc.ColorTexture == nil {
		return nil, ErrMissingAttachment
	}
	tex, ok := desc.ColorTexture.(*softwareTexture)
	if !ok || tex.owner != c {
		return nil, ErrForeignResource
	}
	if tex.destroyed {
		return nil, ErrResourceDestroyed
	}
	if tex.usage&TextureUsageRenderAttachment == 0 {
		return nil, fmt.Errorf("%w: color texture is not a render attachment", ErrUnsupportedUsage)
	}

	fb := &softwareFramebuffer{owner: c, color: tex}
	if desc.DepthRenderbuffer != nil {
		rb, ok := desc.DepthRenderbuffer.(*softwareRenderbuffer)
		if !ok || rb.owner != c {
			return nil, ErrForeignResource
		}
		if rb.destroyed {
			return nil, ErrResourceDestroyed
		}
		if rb.width != tex.Width() || rb.height != tex.Height() {
			return nil, fmt.Errorf("%w: color %dx%d, depth %dx%d",
				ErrAttachmentSize, tex.Width(), tex.Height(), rb.width, rb.height)
		}
		fb.depth = rb
	}

	c.counters.framebuffersCreated.Add(1)
	return fb, nil
}

// CreateClearState resolves clear options.
func (c *SoftwareContext) CreateClearState(opts ClearOptions) *ClearState {
	return NewClearState(opts)
}

// Clear writes the clear values into the pass framebuffer, limited to the
// scissor rectangle when the pass enables one.
func (c *SoftwareContext) Clear(state *ClearState, pass *PassState) error {
	if state == nil {
		return nil
	}
	fb, err := c.passTarget(pass)
	if err != nil {
		return err
	}
	c.counters.clears.Add(1)

	clip := pass.ClipRect(fb.Width(), fb.Height())
	if clip.Empty() {
		return nil
	}
	if state.Mask&ClearColor != 0 {
		fb.color.target.Fill(clip, state.Color.RGBA())
	}
	if fb.depth != nil {
		fb.depth.fill(clip, state)
	}
	return nil
}

// Draw rasterizes each command into the pass framebuffer.
func (c *SoftwareContext) Draw(cmds []DrawCommand, pass *PassState) error {
	fb, err := c.passTarget(pass)
	if err != nil {
		return err
	}
	c.counters.draws.Add(1)

	clip := pass.ClipRect(fb.Width(), fb.Height())
	if clip.Empty() {
		return nil
	}
	blend := pass == nil || pass.BlendingEnabled
	for i := range cmds {
		c.fill(fb, clip, &cmds[i], blend)
	}
	return nil
}

// ReadPixels copies a rectangle of the framebuffer.
func (c *SoftwareContext) ReadPixels(req ReadPixelsRequest) ([]byte, error) {
	req = req.Normalized()
	fb, err := c.framebuffer(req.Framebuffer)
	if err != nil {
		return nil, err
	}
	if fb.color.usage&TextureUsageCopySrc == 0 {
		return nil, fmt.Errorf("%w: color texture is not a copy source", ErrUnsupportedUsage)
	}
	c.counters.readPixels.Add(1)

	out := make([]byte, req.Width*req.Height*4)
	img := fb.color.target.Image()
	want := image.Rect(req.X, req.Y, req.X+req.Width, req.Y+req.Height)
	r := want.Intersect(img.Bounds())
	if r.Empty() {
		return out, nil
	}

	rowLen := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := img.PixOffset(r.Min.X, y)
		dst := ((y-want.Min.Y)*req.Width + (r.Min.X - want.Min.X)) * 4
		copy(out[dst:dst+rowLen], img.Pix[src:src+rowLen])
	}
	return out, nil
}

// CreatePickID registers object in the context's pick color table.
func (c *SoftwareContext) CreatePickID(object any) (PickID, error) {
	return c.picks.Register(object)
}

// ObjectByPickColor looks up the object registered for col.
func (c *SoftwareContext) ObjectByPickColor(col Color) (any, bool) {
	return c.picks.ObjectByPickColor(col)
}

func (c *SoftwareContext) passTarget(pass *PassState) (*softwareFramebuffer, error) {
	if pass == nil {
		return c.screen, nil
	}
	return c.framebuffer(pass.Framebuffer)
}

func (c *SoftwareContext) framebuffer(fb Framebuffer) (*softwareFramebuffer, error) {
	if fb == nil {
		return c.screen, nil
	}
	sfb, ok := fb.(*softwareFramebuffer)
	if !ok || sfb.owner != c {
		return nil, ErrForeignResource
	}
	if sfb.destroyed {
		return nil, ErrResourceDestroyed
	}
	return sfb, nil
}

// fill rasterizes one polygon clipped to clip.
func (c *SoftwareContext) fill(fb *softwareFramebuffer, clip image.Rectangle, cmd *DrawCommand, blend bool) {
	if len(cmd.Points) < 3 {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range cmd.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	bounds := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Intersect(clip)
	if bounds.Empty() {
		return
	}

	// Rasterize in bounds-local coordinates. The rasterizer clamps
	// geometry outside its area.
	w, h := bounds.Dx(), bounds.Dy()
	c.raster.Reset(w, h)
	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	c.raster.MoveTo(float32(cmd.Points[0].X-ox), float32(cmd.Points[0].Y-oy))
	for _, p := range cmd.Points[1:] {
		c.raster.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	c.raster.ClosePath()

	mask := c.coverageMask(w, h)
	c.raster.DrawOp = draw.Src
	c.raster.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	img := fb.color.target.Image()
	src := cmd.Color.RGBA()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cov := mask.Pix[y*mask.Stride+x]
			if !c.antialias {
				if cov < 128 {
					continue
				}
				cov = 255
			}
			if cov == 0 {
				continue
			}

			px, py := bounds.Min.X+x, bounds.Min.Y+y
			if fb.depth != nil && !fb.depth.testAndSet(px, py, cmd.Depth) {
				continue
			}

			off := img.PixOffset(px, py)
			dst := img.Pix[off : off+4 : off+4]
			if blend {
				blendOver(dst, src, cov)
			} else {
				resolveCoverage(dst, src, cov)
			}
		}
	}
}

// coverageMask returns a cleared scratch mask of exactly w×h with a
// stride of w. The rasterizer writes whole-image draws as one flat run,
// so the mask must not be a sub-image of a wider buffer.
func (c *SoftwareContext) coverageMask(w, h int) *image.Alpha {
	n := w * h
	if cap(c.maskPix) < n {
		c.maskPix = make([]byte, n)
	}
	pix := c.maskPix[:n]
	clear(pix)
	return &image.Alpha{Pix: pix, Stride: w, Rect: image.Rect(0, 0, w, h)}
}

// blendOver composites src over dst with coverage cov.
// out = src * alpha + dst * (1 - alpha)
func blendOver(dst []byte, src color.RGBA, cov uint8) {
	alpha := (uint16(cov)*uint16(src.A) + 255) >> 8
	if alpha == 0 {
		return
	}
	if alpha >= 255 {
		dst[0], dst[1], dst[2], dst[3] = src.R, src.G, src.B, src.A
		return
	}
	mix(dst, src, alpha)
}

// resolveCoverage writes src unmodified where fully covered and a
// coverage-weighted average on edges, like a multisample resolve.
func resolveCoverage(dst []byte, src color.RGBA, cov uint8) {
	if cov == 255 {
		dst[0], dst[1], dst[2], dst[3] = src.R, src.G, src.B, src.A
		return
	}
	mix(dst, src, uint16(cov))
}

func mix(dst []byte, src color.RGBA, alpha uint16) {
	inv := 255 - alpha
	//nolint:gosec // G115: result is at most 255
	dst[0] = uint8((uint16(src.R)*alpha + uint16(dst[0])*inv + 127) / 255)
	//nolint:gosec // G115: result is at most 255
	dst[1] = uint8((uint16(src.G)*alpha + uint16(dst[1])*inv + 127) / 255)
	//nolint:gosec // G115: result is at most 255
	dst[2] = uint8((uint16(src.B)*alpha + uint16(dst[2])*inv + 127) / 255)
	//nolint:gosec // G115: result is at most 255
	dst[3] = uint8((uint16(src.A)*alpha + uint16(dst[3])*inv + 127) / 255)
}

type softwareTexture struct {
	owner     *SoftwareContext
	usage     TextureUsage
	target    *PixmapTarget
	destroyed bool
}

func (t *softwareTexture) Width() int        { return t.target.Width() }
func (t *softwareTexture) Height() int       { return t.target.Height() }
func (t *softwareTexture) IsDestroyed() bool { return t.destroyed }

func (t *softwareTexture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.owner.counters.texturesDestroyed.Add(1)
}

type softwareRenderbuffer struct {
	owner         *SoftwareContext
	format        RenderbufferFormat
	width, height int
	depth         []float32
	stencil       []uint8
	destroyed     bool
}

func newSoftwareRenderbuffer(owner *SoftwareContext, format RenderbufferFormat, w, h int) *softwareRenderbuffer {
	rb := &softwareRenderbuffer{
		owner:  owner,
		format: format,
		width:  w,
		height: h,
		depth:  make([]float32, w*h),
	}
	if format == RenderbufferFormatDepth24Stencil8 {
		rb.stencil = make([]uint8, w*h)
	}
	for i := range rb.depth {
		rb.depth[i] = 1
	}
	return rb
}

func (r *softwareRenderbuffer) Width() int                 { return r.width }
func (r *softwareRenderbuffer) Height() int                { return r.height }
func (r *softwareRenderbuffer) Format() RenderbufferFormat { return r.format }
func (r *softwareRenderbuffer) IsDestroyed() bool          { return r.destroyed }

func (r *softwareRenderbuffer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	r.owner.counters.renderbuffersDestroyed.Add(1)
}

func (r *softwareRenderbuffer) fill(clip image.Rectangle, state *ClearState) {
	clip = clip.Intersect(image.Rect(0, 0, r.width, r.height))
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		row := y * r.width
		for x := clip.Min.X; x < clip.Max.X; x++ {
			if state.Mask&ClearDepth != 0 {
				r.depth[row+x] = state.Depth
			}
			if state.Mask&ClearStencil != 0 && r.stencil != nil {
				r.stencil[row+x] = uint8(state.Stencil) //nolint:gosec // 8-bit stencil
			}
		}
	}
}

// testAndSet applies the LESS depth test and writes depth on pass.
func (r *softwareRenderbuffer) testAndSet(x, y int, depth float32) bool {
	i := y*r.width + x
	if depth >= r.depth[i] {
		return false
	}
	r.depth[i] = depth
	return true
}

type softwareFramebuffer struct {
	owner     *SoftwareContext
	color     *softwareTexture
	depth     *softwareRenderbuffer
	destroyed bool
}

func (f *softwareFramebuffer) Width() int        { return f.color.Width() }
func (f *softwareFramebuffer) Height() int       { return f.color.Height() }
func (f *softwareFramebuffer) IsDestroyed() bool { return f.destroyed }

func (f *softwareFramebuffer) ColorTexture() Texture {
	return f.color
}

func (f *softwareFramebuffer) DepthRenderbuffer() Renderbuffer {
	if f.depth == nil {
		return nil
	}
	return f.depth
}

// Destroy releases the framebuffer and its attachments.
func (f *softwareFramebuffer) Destroy() {
	if f.destroyed {
		return
	}
	f.destroyed = true
	f.color.Destroy()
	if f.depth != nil {
		f.depth.Destroy()
	}
	f.owner.counters.framebuffersDestroyed.Add(1)
}

var _ Context = (*SoftwareContext)(nil)
