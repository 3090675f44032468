// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu implements render.Context on a wgpu HAL device.
//
// The context never creates a device. The host passes a hal.Device and
// hal.Queue, or a gpucontext.DeviceProvider that exposes them, and the
// context allocates pick textures and depth attachments on that device.
//
// Every Clear, Draw and ReadPixels call records its own command buffer,
// submits it and waits on a fence before returning, so results are visible
// to the next call.
//
// Polygons are drawn as triangle fans from their first vertex and must be
// convex. The pick shader is WGSL compiled to SPIR-V with naga.
package gpu
