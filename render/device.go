// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host application owns the device and hands it to the globe renderer.
// globe RECEIVES the device, it does NOT create one, so the pick buffer and
// the host's own passes share resources on the same queue.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider. The render/gpu
// package turns a provider that also exposes HAL handles into a Context.
type DeviceHandle = gpucontext.DeviceProvider

// TextureDescriptor describes parameters for creating a 2D texture.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width and Height are the texture size in pixels. Zero means the
	// current viewport size.
	Width  int
	Height int

	// Format is the texture pixel format. Contexts accept
	// gputypes.TextureFormatRGBA8Unorm; Undefined selects it.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used. Zero selects
	// SupportedTextureUsage.
	Usage TextureUsage
}

// ResolvedUsage returns the usage a context allocates for d. Flags outside
// SupportedTextureUsage are rejected with ErrUnsupportedUsage.
func (d TextureDescriptor) ResolvedUsage() (TextureUsage, error) {
	if d.Usage == 0 {
		return SupportedTextureUsage, nil
	}
	if extra := d.Usage &^ SupportedTextureUsage; extra != 0 {
		return 0, fmt.Errorf("%w: %#x", ErrUnsupportedUsage, uint32(extra))
	}
	return d.Usage, nil
}

// TextureUsage specifies how a texture can be used.
// These flags can be combined with bitwise OR.
type TextureUsage uint32

const (
	// TextureUsageCopySrc allows the texture to be used as a copy source.
	TextureUsageCopySrc TextureUsage = 1 << iota

	// TextureUsageCopyDst allows the texture to be used as a copy destination.
	TextureUsageCopyDst

	// TextureUsageTextureBinding allows the texture to be used in a texture binding.
	TextureUsageTextureBinding

	// TextureUsageRenderAttachment allows the texture to be used as a render attachment.
	TextureUsageRenderAttachment
)

// SupportedTextureUsage is every usage a Context can honor. Framebuffer
// color textures need TextureUsageRenderAttachment and ReadPixels needs
// TextureUsageCopySrc.
const SupportedTextureUsage = TextureUsageRenderAttachment | TextureUsageCopySrc

// DefaultTextureDescriptor returns a readable color attachment descriptor.
func DefaultTextureDescriptor(width, height int) TextureDescriptor {
	return TextureDescriptor{
		Width:  width,
		Height: height,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  TextureUsageRenderAttachment | TextureUsageCopySrc,
	}
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only rendering where no GPU is available; globe.NewContext
// returns a SoftwareContext for it.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo reports an unknown adapter for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "null", Type: gpucontext.AdapterTypeUnknown}
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
