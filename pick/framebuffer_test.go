// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pick

import (
	"errors"
	"testing"

	"github.com/gogpu/globe/render"
)

func newTestFramebuffer(t *testing.T, ctx render.Context) *Framebuffer {
	t.Helper()
	fb, err := NewFramebuffer(ctx)
	if err != nil {
		t.Fatalf("NewFramebuffer() error = %v", err)
	}
	t.Cleanup(fb.Destroy)
	return fb
}

func TestNewFramebufferNilContext(t *testing.T) {
	if _, err := NewFramebuffer(nil); !errors.Is(err, ErrNilContext) {
		t.Errorf("NewFramebuffer(nil) error = %v, want %v", err, ErrNilContext)
	}
}

func TestFramebufferBeginPassState(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(40, 30))
	fb := newTestFramebuffer(t, ctx)

	region := render.Rectangle{X: 4, Y: 5, Width: 3, Height: 3}
	pass, err := fb.Begin(region)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if pass.BlendingEnabled {
		t.Error("Begin() pass has blending enabled")
	}
	if !pass.ScissorTest.Enabled || pass.ScissorTest.Rectangle != region {
		t.Errorf("Begin() scissor = %+v, want enabled %+v", pass.ScissorTest, region)
	}
	if pass.Framebuffer == nil {
		t.Fatal("Begin() pass has no framebuffer")
	}
	if w, h := pass.Framebuffer.Width(), pass.Framebuffer.Height(); w != 40 || h != 30 {
		t.Errorf("pass framebuffer size = %dx%d, want 40x30", w, h)
	}
	if w, h := fb.Size(); w != 40 || h != 30 {
		t.Errorf("Size() = %dx%d, want 40x30", w, h)
	}

	pass, err = fb.Begin(render.Rectangle{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if got := pass.ScissorTest.Rectangle; got.Width != 1 || got.Height != 1 {
		t.Errorf("Begin() with zero size scissor = %+v, want 1x1", got)
	}
}

func TestFramebufferNoReallocationOnSameSize(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(32, 32))
	fb := newTestFramebuffer(t, ctx)

	region := render.Rectangle{X: 10, Y: 10, Width: 3, Height: 3}
	for i := 0; i < 5; i++ {
		if _, err := fb.Begin(region); err != nil {
			t.Fatalf("Begin() #%d error = %v", i, err)
		}
		ctx.SetViewport(32, 32)
	}

	if got := fb.Allocations(); got != 1 {
		t.Errorf("Allocations() = %d, want 1", got)
	}
	stats := ctx.Stats()
	if stats.TexturesCreated != 1 || stats.RenderbuffersCreated != 1 || stats.FramebuffersCreated != 1 {
		t.Errorf("Stats() = %+v, want one of each resource", stats)
	}
}

func TestFramebufferResize(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(32, 32))
	fb := newTestFramebuffer(t, ctx)

	region := render.Rectangle{Width: 1, Height: 1}
	if _, err := fb.Begin(region); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	first, _ := fb.Begin(region)
	oldTarget := first.Framebuffer

	ctx.SetViewport(64, 48)
	pass, err := fb.Begin(region)
	if err != nil {
		t.Fatalf("Begin() after resize error = %v", err)
	}
	if w, h := fb.Size(); w != 64 || h != 48 {
		t.Errorf("Size() = %dx%d, want 64x48", w, h)
	}
	if fb.Allocations() != 2 {
		t.Errorf("Allocations() = %d, want 2", fb.Allocations())
	}
	if !oldTarget.IsDestroyed() {
		t.Error("old framebuffer not destroyed after resize")
	}
	if pass.Framebuffer.IsDestroyed() {
		t.Error("new framebuffer destroyed")
	}

	stats := ctx.Stats()
	if stats.FramebuffersCreated != 2 || stats.FramebuffersDestroyed != 1 {
		t.Errorf("framebuffers created/destroyed = %d/%d, want 2/1",
			stats.FramebuffersCreated, stats.FramebuffersDestroyed)
	}
	if stats.TexturesDestroyed != 1 || stats.RenderbuffersDestroyed != 1 {
		t.Errorf("attachments destroyed = %d/%d, want 1/1",
			stats.TexturesDestroyed, stats.RenderbuffersDestroyed)
	}
}

func TestFramebufferResizeFailureKeepsOld(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(16, 16), render.WithMaxTextureSize(32))
	fb := newTestFramebuffer(t, ctx)

	region := render.Rectangle{Width: 1, Height: 1}
	pass, err := fb.Begin(region)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	installed := pass.Framebuffer

	ctx.SetViewport(64, 64)
	if _, err := fb.Begin(region); !errors.Is(err, render.ErrTextureTooLarge) {
		t.Fatalf("Begin() after oversize resize error = %v, want %v", err, render.ErrTextureTooLarge)
	}
	if installed.IsDestroyed() {
		t.Error("installed framebuffer destroyed by failed reallocation")
	}
	if w, h := fb.Size(); w != 16 || h != 16 {
		t.Errorf("Size() = %dx%d, want 16x16", w, h)
	}
	if _, err := fb.End(region); err != nil {
		t.Errorf("End() after failed reallocation error = %v", err)
	}
}

func TestFramebufferBeginClearsRegion(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(16, 16))
	fb := newTestFramebuffer(t, ctx)
	id, _ := ctx.CreatePickID(&marker{"box"})

	region := render.Rectangle{X: 2, Y: 2, Width: 4, Height: 4}
	pass, err := fb.Begin(region)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	cmd := render.DrawCommand{
		Points: []render.Point{{X: 0, Y: 0}, {X: 16, Y: 0}, {X: 16, Y: 16}, {X: 0, Y: 16}},
		Color:  id.Color(),
	}
	if err := ctx.Draw([]render.DrawCommand{cmd}, pass); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	px, err := fb.End(region)
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	r, g, b, a := id.Color().Bytes()
	if px[0] != r || px[1] != g || px[2] != b || px[3] != a {
		t.Errorf("End() first pixel = %v, want pick color", px[:4])
	}

	if _, err := fb.Begin(region); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	px, err = fb.End(region)
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	for i, v := range px {
		if v != 0 {
			t.Fatalf("End() after Begin byte %d = %d, want 0", i, v)
		}
	}
}

func TestFramebufferScissorConfinesDraw(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(16, 16))
	fb := newTestFramebuffer(t, ctx)
	id, _ := ctx.CreatePickID(&marker{"box"})

	region := render.Rectangle{X: 6, Y: 6, Width: 3, Height: 3}
	pass, err := fb.Begin(region)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	cmd := render.DrawCommand{
		Points: []render.Point{{X: 0, Y: 0}, {X: 16, Y: 0}, {X: 16, Y: 16}, {X: 0, Y: 16}},
		Color:  id.Color(),
	}
	if err := ctx.Draw([]render.DrawCommand{cmd}, pass); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	px, err := fb.End(render.Rectangle{X: 5, Y: 5, Width: 5, Height: 5})
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			inside := x >= 1 && x <= 3 && y >= 1 && y <= 3
			if got := px[(y*5+x)*4+3] != 0 || px[(y*5+x)*4] != 0; got != inside {
				t.Errorf("pixel (%d, %d) drawn = %v, want %v", x+5, y+5, got, inside)
			}
		}
	}
}

func TestFramebufferEndErrors(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(8, 8))
	fb := newTestFramebuffer(t, ctx)

	if _, err := fb.End(render.Rectangle{}); !errors.Is(err, ErrNotBegun) {
		t.Errorf("End() before Begin error = %v, want %v", err, ErrNotBegun)
	}

	if _, err := fb.Begin(render.Rectangle{}); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	px, err := fb.End(render.Rectangle{})
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if len(px) != 4 {
		t.Errorf("End() with zero size returned %d bytes, want 4", len(px))
	}
}

func TestFramebufferDestroy(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(8, 8))
	fb := newTestFramebuffer(t, ctx)

	if fb.IsDestroyed() {
		t.Fatal("IsDestroyed() = true before Destroy")
	}
	// Destroying before any allocation is allowed.
	fb.Destroy()
	fb.Destroy()
	if !fb.IsDestroyed() {
		t.Error("IsDestroyed() = false after Destroy")
	}

	if _, err := fb.Begin(render.Rectangle{}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Begin() after Destroy error = %v, want %v", err, ErrDestroyed)
	}
	if _, err := fb.End(render.Rectangle{}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("End() after Destroy error = %v, want %v", err, ErrDestroyed)
	}
}

func TestFramebufferDestroyReleasesAttachments(t *testing.T) {
	ctx := render.NewSoftwareContext(render.WithViewport(8, 8))
	fb := newTestFramebuffer(t, ctx)

	pass, err := fb.Begin(render.Rectangle{})
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	target := pass.Framebuffer

	fb.Destroy()
	fb.Destroy()
	if !target.IsDestroyed() || !target.ColorTexture().IsDestroyed() {
		t.Error("Destroy() did not release the attachments")
	}
	stats := ctx.Stats()
	if stats.FramebuffersDestroyed != 1 || stats.TexturesDestroyed != 1 || stats.RenderbuffersDestroyed != 1 {
		t.Errorf("Stats() after double Destroy = %+v, want one of each destroyed", stats)
	}
}
