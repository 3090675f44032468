package globe

import (
	"fmt"

	"github.com/gogpu/globe/render"
	"github.com/gogpu/globe/render/gpu"
)

// NewContext returns a rendering context of width×height pixels for the
// host's device. A nil handle or render.NullDeviceHandle selects the CPU
// render.SoftwareContext; any other handle must expose HAL handles and
// gets a render/gpu Context.
func NewContext(handle render.DeviceHandle, width, height int) (render.Context, error) {
	switch handle.(type) {
	case nil, render.NullDeviceHandle, *render.NullDeviceHandle:
		Logger().Info("globe: software context selected", "width", width, "height", height)
		return render.NewSoftwareContext(render.WithViewport(width, height)), nil
	}

	ctx, err := gpu.NewContextFromProvider(handle, width, height)
	if err != nil {
		return nil, fmt.Errorf("globe: %w", err)
	}
	return ctx, nil
}
