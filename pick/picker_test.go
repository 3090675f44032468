// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pick

import (
	"errors"
	"testing"

	"github.com/gogpu/globe/render"
)

func square(x0, y0, x1, y1 float64) []render.Point {
	return []render.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func newTestPicker(t *testing.T, ctx render.Context) *Picker {
	t.Helper()
	p, err := NewPicker(ctx)
	if err != nil {
		t.Fatalf("NewPicker() error = %v", err)
	}
	t.Cleanup(p.Destroy)
	return p
}

func drawAll(ctx render.Context, cmds []render.DrawCommand) DrawFunc {
	return func(pass *render.PassState) error {
		return ctx.Draw(cmds, pass)
	}
}

func TestNewPickerNilContext(t *testing.T) {
	if _, err := NewPicker(nil); !errors.Is(err, ErrNilContext) {
		t.Errorf("NewPicker(nil) error = %v, want %v", err, ErrNilContext)
	}
}

func TestPickRoundTrip(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(64, 64))
	p := newTestPicker(t, ctx)

	objects := []*marker{{"west"}, {"east"}}
	var cmds []render.DrawCommand
	for i, obj := range objects {
		id, err := ctx.CreatePickID(obj)
		if err != nil {
			t.Fatalf("CreatePickID() error = %v", err)
		}
		x := float64(8 + i*32)
		cmds = append(cmds, render.DrawCommand{Points: square(x, 8, x+16, 24), Color: id.Color()})
	}

	tests := []struct {
		name   string
		region render.Rectangle
		want   any
	}{
		{"single pixel west", render.Rectangle{X: 16, Y: 16}, objects[0]},
		{"single pixel east", render.Rectangle{X: 48, Y: 16}, objects[1]},
		{"centered 3x3", render.Rectangle{X: 15, Y: 15, Width: 3, Height: 3}, objects[0]},
		{"near miss", render.Rectangle{X: 23, Y: 15, Width: 5, Height: 5}, objects[0]},
		{"background", render.Rectangle{X: 30, Y: 40, Width: 3, Height: 3}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := p.Pick(tt.region, drawAll(ctx, cmds))
			if err != nil {
				t.Fatalf("Pick() error = %v", err)
			}
			if ok != (tt.want != nil) || got != tt.want {
				t.Errorf("Pick() = %v, %v, want %v", got, ok, tt.want)
			}
		})
	}

	if got := p.Framebuffer().Allocations(); got != 1 {
		t.Errorf("Allocations() after %d picks = %d, want 1", len(tests), got)
	}
}

func TestPickAfterDisplayDraw(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(64, 64))
	p := newTestPicker(t, ctx)

	ground, triangle := &marker{"ground"}, &marker{"triangle"}
	groundID, _ := ctx.CreatePickID(ground)
	triangleID, _ := ctx.CreatePickID(triangle)
	pickCmds := []render.DrawCommand{
		{Points: []render.Point{{X: 20, Y: 20}, {X: 30, Y: 20}, {X: 20, Y: 30}}, Color: triangleID.Color(), Depth: 0.1},
		{Points: square(0, 0, 64, 64), Color: groundID.Color(), Depth: 0.9},
	}

	// A regular frame draws display colors to the screen before the pick.
	display := []render.DrawCommand{
		{Points: pickCmds[0].Points, Color: render.Color{R: 1, A: 1}, Depth: 0.1},
		{Points: pickCmds[1].Points, Color: render.Color{G: 1, A: 1}, Depth: 0.9},
	}
	if err := ctx.Draw(display, render.NewPassState(nil)); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	tests := []struct {
		name   string
		region render.Rectangle
		want   any
	}{
		{"beside the hypotenuse", render.Rectangle{X: 27, Y: 27, Width: 3, Height: 3}, ground},
		{"inside the triangle", render.Rectangle{X: 21, Y: 21, Width: 3, Height: 3}, triangle},
		{"region wider than the triangle", render.Rectangle{X: 8, Y: 8, Width: 31, Height: 31}, triangle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := p.Pick(tt.region, drawAll(ctx, pickCmds))
			if err != nil {
				t.Fatalf("Pick() error = %v", err)
			}
			if !ok || got != tt.want {
				t.Errorf("Pick() = %v, %v, want %v", got, ok, tt.want)
			}
		})
	}
}

func TestPickNearestInSpiralOrder(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(32, 32))
	p := newTestPicker(t, ctx)

	near, _ := ctx.CreatePickID(&marker{"near"})
	far, _ := ctx.CreatePickID(&marker{"far"})
	// Region 9..13 has its center at pixel 11. The near box starts one
	// pixel east of the center, the far one two pixels west of it.
	cmds := []render.DrawCommand{
		{Points: square(12, 11, 13, 12), Color: near.Color()},
		{Points: square(9, 11, 10, 12), Color: far.Color()},
	}
	got, ok, err := p.Pick(render.Rectangle{X: 9, Y: 9, Width: 5, Height: 5}, drawAll(ctx, cmds))
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	if !ok || got != near.Object() {
		t.Errorf("Pick() = %v, %v, want %v", got, ok, near.Object())
	}
}

func TestPickDepth(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(32, 32))
	p := newTestPicker(t, ctx)

	front, _ := ctx.CreatePickID(&marker{"front"})
	back, _ := ctx.CreatePickID(&marker{"back"})
	cmds := []render.DrawCommand{
		{Points: square(4, 4, 28, 28), Color: front.Color(), Depth: 0.25},
		{Points: square(4, 4, 28, 28), Color: back.Color(), Depth: 0.75},
	}
	got, ok, err := p.Pick(render.Rectangle{X: 16, Y: 16}, drawAll(ctx, cmds))
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	if !ok || got != front.Object() {
		t.Errorf("Pick() = %v, %v, want %v", got, ok, front.Object())
	}
}

func TestPickDrawError(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(8, 8))
	p := newTestPicker(t, ctx)

	errBoom := errors.New("boom")
	_, _, err := p.Pick(render.Rectangle{}, func(*render.PassState) error { return errBoom })
	if !errors.Is(err, errBoom) {
		t.Errorf("Pick() error = %v, want %v", err, errBoom)
	}
}

func TestPickNilDraw(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(8, 8))
	p := newTestPicker(t, ctx)

	got, ok, err := p.Pick(render.Rectangle{X: 2, Y: 2, Width: 3, Height: 3}, nil)
	if err != nil || ok {
		t.Errorf("Pick(nil draw) = %v, %v, %v, want none", got, ok, err)
	}
}

func TestPickAfterDestroy(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(8, 8))
	p := newTestPicker(t, ctx)
	p.Destroy()

	if _, _, err := p.Pick(render.Rectangle{}, nil); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Pick() after Destroy error = %v, want %v", err, ErrDestroyed)
	}
}
