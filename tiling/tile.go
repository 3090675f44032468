package tiling

import "fmt"

// Tile addresses one node of a scheme's quadtree. X grows eastward and Y
// southward from the northwest corner of the scheme extent.
type Tile struct {
	X, Y, Level int

	scheme Scheme
}

// NewTile returns tile (x, y) at level of s.
func NewTile(s Scheme, x, y, level int) Tile {
	return Tile{X: x, Y: y, Level: level, scheme: s}
}

// Scheme returns the scheme the tile belongs to.
func (t Tile) Scheme() Scheme { return t.scheme }

// Extent returns the tile's geographic extent.
func (t Tile) Extent() Extent {
	return t.scheme.TileXYToExtent(t.X, t.Y, t.Level)
}

// GeometricError returns the maximum geometric error of the tile's level.
func (t Tile) GeometricError() float64 {
	return t.scheme.LevelMaximumGeometricError(t.Level)
}

// Children returns the four tiles of the next level, in the order
// northwest, northeast, southwest, southeast. Children of a tile at the
// scheme's MaxLevel have zero extents.
func (t Tile) Children() [4]Tile {
	x, y, l := t.X*2, t.Y*2, t.Level+1
	return [4]Tile{
		{X: x, Y: y, Level: l, scheme: t.scheme},
		{X: x + 1, Y: y, Level: l, scheme: t.scheme},
		{X: x, Y: y + 1, Level: l, scheme: t.scheme},
		{X: x + 1, Y: y + 1, Level: l, scheme: t.scheme},
	}
}

// Parent returns the tile one level up, or false for a root tile.
func (t Tile) Parent() (Tile, bool) {
	if t.Level == 0 {
		return Tile{}, false
	}
	return Tile{X: t.X / 2, Y: t.Y / 2, Level: t.Level - 1, scheme: t.scheme}, true
}

// Key packs the tile address into a single word: 6 bits of level and 29
// bits each of x and y.
func (t Tile) Key() uint64 {
	return tileKey(t.X, t.Y, t.Level)
}

func (t Tile) String() string {
	return fmt.Sprintf("Tile(%d/%d/%d)", t.Level, t.X, t.Y)
}

func tileKey(x, y, level int) uint64 {
	const mask = 1<<29 - 1
	return uint64(level&0x3f)<<58 | uint64(x&mask)<<29 | uint64(y&mask) //nolint:gosec // masked
}
