// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the rendering context a globe pick buffer draws
// through, together with a CPU implementation of it.
//
// # Key Principle
//
// globe RECEIVES a rendering context from the host application, it does NOT
// create a device of its own. The host either passes a DeviceHandle to
// render/gpu.NewContextFromProvider or uses the SoftwareContext defined
// here for headless work and tests.
//
// # Core Types
//
//   - Context: resource creation, clears, draws and synchronous read-back
//   - PassState: framebuffer, blending and scissor state of one pass
//   - PickColorTable: bidirectional mapping between objects and pick colors
//   - Color: normalized RGBA with an exact byte round trip
//
// # Context Implementations
//
//   - SoftwareContext: CPU rasterizer over golang.org/x/image/vector
//   - render/gpu.Context: wgpu HAL device
//
// # Usage
//
//	ctx := render.NewSoftwareContext(render.WithViewport(800, 600))
//	id, err := ctx.CreatePickID(building)
//	if err != nil {
//	    return err
//	}
//
//	pass := render.NewPassState(nil)
//	pass.BlendingEnabled = false
//	_ = ctx.Draw([]render.DrawCommand{{Points: outline, Color: id.Color()}}, pass)
//
//	pixels, _ := ctx.ReadPixels(render.ReadPixelsRequest{X: 10, Y: 20})
//	obj, ok := ctx.ObjectByPickColor(render.ColorFromBytes(pixels[0], pixels[1], pixels[2], pixels[3]))
//
// # Thread Safety
//
// Contexts are used from one goroutine. PickColorTable is safe for
// concurrent use.
package render
