// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/globe/render"
)

// pickShaderSource draws flat-colored triangles at a per-vertex depth.
// Positions arrive in normalized device coordinates.
const pickShaderSource = `
struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) depth: f32,
    @location(2) color: vec4<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(in.position, in.depth, 1.0);
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

// vertexStride is the byte stride per vertex.
// Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes  (location 0)
//	depth    (f32)       = 4 bytes  (location 1)
//	color    (vec4<f32>) = 16 bytes (location 2)
//
// Total = 28 bytes per vertex.
const vertexStride = 28

// compileShaderToSPIRV compiles WGSL source to SPIR-V words.
func compileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return spirvCode, nil
}

// pipelineSet holds the render pipelines of the pick pass:
//
//	opaque:  no blending, depth LESS with write (pick colors)
//	blended: premultiplied blending, depth LESS with write (display colors)
//	clear:   no blending, depth ALWAYS with write (scissored clears)
type pipelineSet struct {
	device hal.Device

	shader  hal.ShaderModule
	layout  hal.PipelineLayout
	opaque  hal.RenderPipeline
	blended hal.RenderPipeline
	clear   hal.RenderPipeline
}

func newPipelineSet(device hal.Device) (*pipelineSet, error) {
	spirv, err := compileShaderToSPIRV(pickShaderSource)
	if err != nil {
		return nil, err
	}

	p := &pipelineSet{device: device}
	p.shader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "pick_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("create pick shader: %w", err)
	}

	p.layout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "pick_pipe_layout",
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("create pick pipeline layout: %w", err)
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	builds := []struct {
		dst     *hal.RenderPipeline
		label   string
		blend   *gputypes.BlendState
		compare gputypes.CompareFunction
	}{
		{&p.opaque, "pick_pipeline_opaque", nil, gputypes.CompareFunctionLess},
		{&p.blended, "pick_pipeline_blended", &premulBlend, gputypes.CompareFunctionLess},
		{&p.clear, "pick_pipeline_clear", nil, gputypes.CompareFunctionAlways},
	}
	for _, b := range builds {
		pipeline, err := p.createPipeline(b.label, b.blend, b.compare)
		if err != nil {
			p.destroy()
			return nil, err
		}
		*b.dst = pipeline
	}

	slogger().Debug("gpu: pick pipelines created")
	return p, nil
}

func (p *pipelineSet) createPipeline(label string, blend *gputypes.BlendState, compare gputypes.CompareFunction) (hal.RenderPipeline, error) {
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    colorFormat,
					Blend:     blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      compare,
			StencilFront:      keep,
			StencilBack:       keep,
			StencilReadMask:   0x00,
			StencilWriteMask:  0x00,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return pipeline, nil
}

// destroy releases all pipeline resources in reverse creation order.
func (p *pipelineSet) destroy() {
	for _, rp := range []*hal.RenderPipeline{&p.clear, &p.blended, &p.opaque} {
		if *rp != nil {
			p.device.DestroyRenderPipeline(*rp)
			*rp = nil
		}
	}
	if p.layout != nil {
		p.device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// vertexLayout returns the vertex buffer layout of the pick pipelines.
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32, Offset: 8, ShaderLocation: 1},    // depth
				{Format: gputypes.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 2}, // color
			},
		},
	}
}

// buildVertices fans every polygon from its first point into a triangle
// list. Pixel coordinates are mapped to normalized device coordinates of a
// width×height target. With premultiply set, colors are premultiplied by
// alpha to match the blended pipeline.
func buildVertices(cmds []render.DrawCommand, width, height int, premultiply bool) ([]byte, uint32) {
	var triangles int
	for i := range cmds {
		if n := len(cmds[i].Points); n >= 3 {
			triangles += n - 2
		}
	}
	if triangles == 0 {
		return nil, 0
	}

	data := make([]byte, 0, triangles*3*vertexStride)
	sx, sy := 2/float64(width), 2/float64(height)
	for i := range cmds {
		cmd := &cmds[i]
		if len(cmd.Points) < 3 {
			continue
		}

		c := cmd.Color
		if premultiply {
			c.R, c.G, c.B = c.R*c.A, c.G*c.A, c.B*c.A
		}
		vertex := func(p render.Point) {
			data = appendFloats(data,
				float32(p.X*sx-1), float32(1-p.Y*sy), cmd.Depth,
				float32(c.R), float32(c.G), float32(c.B), float32(c.A))
		}

		p0 := cmd.Points[0]
		for j := 1; j+1 < len(cmd.Points); j++ {
			vertex(p0)
			vertex(cmd.Points[j])
			vertex(cmd.Points[j+1])
		}
	}
	return data, uint32(triangles * 3) //nolint:gosec // bounded by input size
}

func appendFloats(dst []byte, values ...float32) []byte {
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}
