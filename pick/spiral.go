// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pick

import "github.com/gogpu/globe/render"

// Offset is a position relative to the center of a pick region.
// Y grows upward: positive Y is above the center row.
type Offset struct {
	X, Y int
}

// ColorLookup resolves a pick color to the object drawn with it.
// render.Context and *render.PickColorTable both satisfy it.
type ColorLookup interface {
	ObjectByPickColor(render.Color) (any, bool)
}

// regionSize applies the single-pixel default to non-positive sizes.
func regionSize(width, height int) (int, int) {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return width, height
}

// SpiralLength returns the number of spiral steps taken for a
// width×height region: max(width, height)².
func SpiralLength(width, height int) int {
	width, height = regionSize(width, height)
	m := max(width, height)
	return m * m
}

// window is the part of the spiral that maps onto a width×height read-back.
//
// A spiral of n² steps covers x and y in [-(n-1)/2, n/2]. Rows are
// halfHeight-y, so y spans [-(height-1-halfHeight), halfHeight]. Columns
// start at the westmost offset the spiral reaches, which equals
// -halfWidth for odd widths.
type window struct {
	width, height int
	halfHeight    int
	minX, maxX    int
	minY, maxY    int
}

func newWindow(width, height int) window {
	halfWidth, halfHeight := width/2, height/2
	return window{
		width:      width,
		height:     height,
		halfHeight: halfHeight,
		minX:       -(width - 1 - halfWidth),
		maxX:       halfWidth,
		minY:       -(height - 1 - halfHeight),
		maxY:       halfHeight,
	}
}

func (w window) contains(x, y int) bool {
	return x >= w.minX && x <= w.maxX && y >= w.minY && y <= w.maxY
}

// index returns the byte offset of (x, y) in a tightly packed RGBA8
// read-back, top row first.
func (w window) index(x, y int) int {
	row := w.halfHeight - y
	col := x - w.minX
	return (row*w.width + col) * 4
}

// walk visits the in-bounds offsets of the spiral in order until visit
// returns false. It reports the number of steps taken.
func walk(width, height int, visit func(x, y int) bool) int {
	width, height = regionSize(width, height)
	win := newWindow(width, height)
	length := SpiralLength(width, height)

	x, y := 0, 0
	dx, dy := 0, -1
	for i := 0; i < length; i++ {
		if win.contains(x, y) && !visit(x, y) {
			return i + 1
		}
		if x == y || (x < 0 && -x == y) || (x > 0 && x == 1-y) {
			dx, dy = -dy, dx
		}
		x += dx
		y += dy
	}
	return length
}

// SpiralOffsets returns the in-bounds offsets of a width×height region in
// the order Resolve visits them.
func SpiralOffsets(width, height int) []Offset {
	width, height = regionSize(width, height)
	offsets := make([]Offset, 0, width*height)
	walk(width, height, func(x, y int) bool {
		offsets = append(offsets, Offset{X: x, Y: y})
		return true
	})
	return offsets
}

// Resolve searches pixels, a width×height RGBA8 read-back with the top row
// first, in spiral order from its center and returns the first object
// lookup knows. Pixels missing from a short buffer never match.
// The center is column width-1-width/2 and row height/2, so for even
// sizes it is the pixel just left of and below the geometric center.
func Resolve(pixels []byte, width, height int, lookup ColorLookup) (any, bool) {
	if lookup == nil {
		return nil, false
	}
	width, height = regionSize(width, height)
	win := newWindow(width, height)

	var (
		object any
		found  bool
	)
	walk(width, height, func(x, y int) bool {
		i := win.index(x, y)
		if i+4 > len(pixels) {
			return true
		}
		col := render.ColorFromBytes(pixels[i], pixels[i+1], pixels[i+2], pixels[i+3])
		object, found = lookup.ObjectByPickColor(col)
		return !found
	})
	return object, found
}
