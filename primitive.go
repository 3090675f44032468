package globe

import (
	"math"

	"github.com/gogpu/globe/render"
	"github.com/gogpu/globe/tiling"
)

// Primitive is something a Scene can draw and pick.
//
// Implementations must be comparable (typically pointers): the scene uses
// the primitive itself as its pick identity.
type Primitive interface {
	// DrawCommands returns the primitive's polygons, with display colors,
	// in framebuffer pixels of a width×height viewport.
	DrawCommands(width, height int) []render.DrawCommand
}

// Polygon is a flat-colored polygon in framebuffer pixels.
type Polygon struct {
	Points []render.Point
	Color  render.Color

	// Depth in [0, 1]; smaller is nearer.
	Depth float32
}

// DrawCommands implements Primitive.
func (p *Polygon) DrawCommands(int, int) []render.DrawCommand {
	if len(p.Points) < 3 {
		return nil
	}
	return []render.DrawCommand{{Points: p.Points, Color: p.Color, Depth: p.Depth}}
}

// TilePrimitive draws a tile's extent on a flat equirectangular map of the
// whole globe.
type TilePrimitive struct {
	Tile  tiling.Tile
	Color render.Color
	Depth float32
}

// DrawCommands implements Primitive.
func (t *TilePrimitive) DrawCommands(width, height int) []render.DrawCommand {
	return []render.DrawCommand{{
		Points: ProjectExtent(t.Tile.Extent(), width, height),
		Color:  t.Color,
		Depth:  t.Depth,
	}}
}

// ProjectPosition maps a longitude and latitude (radians) to pixels of a
// width×height equirectangular map: longitude -π is the left edge and
// latitude π/2 the top edge.
func ProjectPosition(lon, lat float64, width, height int) render.Point {
	return render.Point{
		X: (lon + math.Pi) / (2 * math.Pi) * float64(width),
		Y: (math.Pi/2 - lat) / math.Pi * float64(height),
	}
}

// UnprojectPoint is the inverse of ProjectPosition.
func UnprojectPoint(p render.Point, width, height int) (lon, lat float64) {
	lon = p.X/float64(width)*2*math.Pi - math.Pi
	lat = math.Pi/2 - p.Y/float64(height)*math.Pi
	return lon, lat
}

// ProjectExtent returns the corners of e on a width×height equirectangular
// map, clockwise from the northwest corner.
func ProjectExtent(e tiling.Extent, width, height int) []render.Point {
	nw := ProjectPosition(e.West, e.North, width, height)
	se := ProjectPosition(e.East, e.South, width, height)
	return []render.Point{
		{X: nw.X, Y: nw.Y},
		{X: se.X, Y: nw.Y},
		{X: se.X, Y: se.Y},
		{X: nw.X, Y: se.Y},
	}
}
