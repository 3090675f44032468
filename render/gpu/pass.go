// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/globe/render"
)

// Clear executes state against the pass framebuffer.
//
// Without a scissor test the attachments are cleared by the render pass
// load operations. With one, a rectangle covering the scissor is drawn
// with the clear pipeline, which writes color and depth unconditionally;
// stencil is left untouched in that case.
func (c *Context) Clear(state *render.ClearState, pass *render.PassState) error {
	if state == nil {
		return nil
	}
	fb, err := c.passFramebuffer(pass)
	if err != nil {
		return err
	}

	if !pass.ScissorTest.Enabled {
		colorLoad, depthLoad, stencilLoad := gputypes.LoadOpLoad, c.depthLoadOp(fb), gputypes.LoadOpLoad
		if state.Mask&render.ClearColor != 0 {
			colorLoad = gputypes.LoadOpClear
		}
		if state.Mask&render.ClearDepth != 0 {
			depthLoad = gputypes.LoadOpClear
		}
		if state.Mask&render.ClearStencil != 0 || !fb.depth.initialized {
			stencilLoad = gputypes.LoadOpClear
		}

		depthValue := state.Depth
		if state.Mask&render.ClearDepth == 0 {
			depthValue = 1
		}
		err := c.submit("pick_clear", func(enc hal.CommandEncoder) error {
			rp := enc.BeginRenderPass(c.passDescriptor(fb, colorLoad, depthLoad, stencilLoad, state.Color, depthValue, state.Stencil))
			rp.End()
			return nil
		})
		if err != nil {
			return err
		}
		fb.depth.initialized = true
		return nil
	}

	clip := pass.ClipRect(fb.Width(), fb.Height())
	if clip.Empty() {
		return nil
	}
	quad := []render.DrawCommand{{
		Points: rectPoints(clip),
		Color:  state.Color,
		Depth:  state.Depth,
	}}
	return c.record(fb, clip, quad, func(p *pipelineSet) hal.RenderPipeline { return p.clear }, false)
}

// Draw renders commands into the pass framebuffer.
func (c *Context) Draw(cmds []render.DrawCommand, pass *render.PassState) error {
	fb, err := c.passFramebuffer(pass)
	if err != nil {
		return err
	}
	clip := pass.ClipRect(fb.Width(), fb.Height())
	if clip.Empty() {
		return nil
	}

	blend := pass.BlendingEnabled
	return c.record(fb, clip, cmds, func(p *pipelineSet) hal.RenderPipeline {
		if blend {
			return p.blended
		}
		return p.opaque
	}, blend)
}

// record draws cmds with the selected pipeline inside clip.
func (c *Context) record(fb *framebuffer, clip image.Rectangle, cmds []render.DrawCommand,
	pick func(*pipelineSet) hal.RenderPipeline, premultiply bool,
) error {
	data, count := buildVertices(cmds, fb.Width(), fb.Height(), premultiply)
	if count == 0 {
		return nil
	}
	if err := c.ensurePipelines(); err != nil {
		return err
	}

	vertBuf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pick_vertices",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create vertex buffer: %w", err)
	}
	defer c.device.DestroyBuffer(vertBuf)
	c.queue.WriteBuffer(vertBuf, 0, data)

	depthLoad := c.depthLoadOp(fb)
	stencilLoad := gputypes.LoadOpLoad
	if !fb.depth.initialized {
		stencilLoad = gputypes.LoadOpClear
	}

	err = c.submit("pick_draw", func(enc hal.CommandEncoder) error {
		rp := enc.BeginRenderPass(c.passDescriptor(fb, gputypes.LoadOpLoad, depthLoad, stencilLoad, render.Transparent, 1, 0))
		//nolint:gosec // clip lies inside the framebuffer
		rp.SetScissorRect(uint32(clip.Min.X), uint32(clip.Min.Y), uint32(clip.Dx()), uint32(clip.Dy()))
		rp.SetPipeline(pick(c.pipelines))
		rp.SetVertexBuffer(0, vertBuf, 0)
		rp.Draw(count, 1, 0, 0)
		rp.End()
		return nil
	})
	if err != nil {
		return err
	}
	fb.depth.initialized = true
	return nil
}

// depthLoadOp clears depth on the first pass that touches a renderbuffer.
func (c *Context) depthLoadOp(fb *framebuffer) gputypes.LoadOp {
	if fb.depth.initialized {
		return gputypes.LoadOpLoad
	}
	return gputypes.LoadOpClear
}

func (c *Context) passDescriptor(fb *framebuffer, colorLoad, depthLoad, stencilLoad gputypes.LoadOp,
	clearColor render.Color, clearDepth float32, clearStencil uint32,
) *hal.RenderPassDescriptor {
	return &hal.RenderPassDescriptor{
		Label: "pick_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    fb.color.view,
			LoadOp:  colorLoad,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: clearColor.R, G: clearColor.G, B: clearColor.B, A: clearColor.A,
			},
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              fb.depth.view,
			DepthLoadOp:       depthLoad,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   clearDepth,
			StencilLoadOp:     stencilLoad,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: clearStencil,
		},
	}
}

// ReadPixels copies a rectangle of the framebuffer to the CPU. The request
// is clipped to the framebuffer; pixels outside it read as zero.
func (c *Context) ReadPixels(req render.ReadPixelsRequest) ([]byte, error) {
	req = req.Normalized()
	fb, err := c.framebuffer(req.Framebuffer)
	if err != nil {
		return nil, err
	}
	if fb.color.usage&render.TextureUsageCopySrc == 0 {
		return nil, fmt.Errorf("%w: color texture is not a copy source", render.ErrUnsupportedUsage)
	}

	out := make([]byte, req.Width*req.Height*4)
	want := image.Rect(req.X, req.Y, req.X+req.Width, req.Y+req.Height)
	r := want.Intersect(image.Rect(0, 0, fb.Width(), fb.Height()))
	if r.Empty() {
		return out, nil
	}

	//nolint:gosec // r lies inside the framebuffer
	w, h := uint32(r.Dx()), uint32(r.Dy())
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pick_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	defer c.device.DestroyBuffer(stagingBuf)

	tex := fb.color.tex
	err = c.submit("pick_readback", func(enc hal.CommandEncoder) error {
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: tex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		enc.CopyTextureToBuffer(tex, stagingBuf, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
			TextureBase: hal.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				//nolint:gosec // r lies inside the framebuffer
				Origin: hal.Origin3D{X: uint32(r.Min.X), Y: uint32(r.Min.Y), Z: 0},
			},
			Size: hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		}})
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: tex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
		return nil
	})
	if err != nil {
		return nil, err
	}

	readback := make([]byte, stagingSize)
	if err := c.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, fmt.Errorf("gpu: readback: %w", err)
	}

	// Strip row padding and place the rows inside the requested rectangle.
	for row := 0; row < int(h); row++ {
		src := row * int(alignedBytesPerRow)
		dst := ((r.Min.Y-want.Min.Y+row)*req.Width + (r.Min.X - want.Min.X)) * 4
		copy(out[dst:dst+int(bytesPerRow)], readback[src:src+int(bytesPerRow)])
	}
	return out, nil
}

// submit records a command buffer, submits it and waits for completion.
func (c *Context) submit(label string, record func(hal.CommandEncoder) error) error {
	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label + "_encoder",
	})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}
	if err := record(encoder); err != nil {
		encoder.DiscardEncoding()
		return err
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	fence, err := c.device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)

	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	fenceOK, err := c.device.Wait(fence, 1, c.waitTimeout)
	if err != nil {
		return fmt.Errorf("gpu: wait for %s: %w", label, err)
	}
	if !fenceOK {
		slogger().Warn("gpu: submission timed out", "label", label, "timeout", c.waitTimeout)
		return fmt.Errorf("%w: %s", ErrGPUTimeout, label)
	}
	return nil
}

func rectPoints(r image.Rectangle) []render.Point {
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)
	return []render.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}
