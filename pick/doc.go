// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pick resolves screen positions to rendered objects.
//
// Every pickable object is drawn with a unique pick color into an
// off-screen [Framebuffer], restricted to a small region around the
// position with blending disabled. The region is read back and searched in
// a square spiral from its center ([Resolve]); the first pixel whose color
// is registered in the context's pick color table names the object. The
// spiral tolerates clicks that miss thin or anti-aliased primitives by a
// few pixels.
//
// A minimal pick request:
//
//	picker, err := pick.NewPicker(ctx)
//	if err != nil {
//		return err
//	}
//	defer picker.Destroy()
//
//	obj, ok, err := picker.Pick(render.Rectangle{X: x - 1, Y: y - 1, Width: 3, Height: 3},
//		func(pass *render.PassState) error {
//			return ctx.Draw(pickCommands, pass)
//		})
//
// The read-back blocks until the GPU is done. Issue at most one pick per
// user request, never one per frame.
package pick
