package tiling

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrAbstractScheme is returned by New when no projection is selected.
	// The scheme contract has no extent mapping of its own; pick
	// ProjectionGeographic or ProjectionWebMercator.
	ErrAbstractScheme = errors.New("tiling: scheme contract cannot be instantiated directly, use a geographic or web mercator scheme")

	// ErrInvalidOptions is returned for tile counts, errors or extents that
	// cannot describe a quadtree.
	ErrInvalidOptions = errors.New("tiling: invalid options")
)

// heightmapSamples is the number of height samples along a tile edge the
// default level-zero error assumes.
const heightmapSamples = 65

// maxTilesPerAxis bounds the tile count along either axis of any level so
// tile coordinates fit the 29 bits Tile.Key gives them.
const maxTilesPerAxis = 1 << 29

// Scheme is a quadtree addressing of an ellipsoid surface.
type Scheme interface {
	// Ellipsoid returns the ellipsoid being tiled.
	Ellipsoid() Ellipsoid

	// Extent returns the world extent covered by the scheme, in radians.
	Extent() Extent

	// NumberOfLevelZeroTilesX returns the number of root tiles west to east.
	NumberOfLevelZeroTilesX() int

	// NumberOfLevelZeroTilesY returns the number of root tiles north to south.
	NumberOfLevelZeroTilesY() int

	// LevelZeroMaximumGeometricError returns the maximum error, in meters,
	// of the surface geometry at level zero.
	LevelZeroMaximumGeometricError() float64

	// LevelMaximumGeometricError returns the error bound at level: the
	// level-zero error halved once per level.
	LevelMaximumGeometricError(level int) float64

	// CreateLevelZeroTiles returns the root tiles, starting with the
	// northwest tile and continuing east, then row by row to the south.
	CreateLevelZeroTiles() []Tile

	// MaxLevel returns the deepest level the scheme addresses.
	MaxLevel() int

	// TileXYToExtent returns the extent of tile (x, y) at level, or the
	// zero Extent for a level outside [0, MaxLevel].
	TileXYToExtent(x, y, level int) Extent

	// PositionToTileXY returns the tile at level containing the position,
	// or false when the position lies outside the scheme's extent or the
	// level outside [0, MaxLevel].
	PositionToTileXY(lon, lat float64, level int) (x, y int, ok bool)
}

// Projection selects a Scheme variant in New.
type Projection int

const (
	// ProjectionUnspecified is the bare scheme contract. New rejects it.
	ProjectionUnspecified Projection = iota

	// ProjectionGeographic maps longitude and latitude linearly.
	ProjectionGeographic

	// ProjectionWebMercator uses the spherical Mercator projection.
	ProjectionWebMercator
)

func (p Projection) String() string {
	switch p {
	case ProjectionUnspecified:
		return "Unspecified"
	case ProjectionGeographic:
		return "Geographic"
	case ProjectionWebMercator:
		return "WebMercator"
	default:
		return fmt.Sprintf("Projection(%d)", int(p))
	}
}

// Options configure a scheme. Zero fields select the variant defaults.
type Options struct {
	// Ellipsoid defaults to WGS84.
	Ellipsoid Ellipsoid

	// Extent defaults to the whole globe for geographic schemes. Web
	// Mercator schemes always cover the full Mercator square and reject a
	// custom extent.
	Extent Extent

	// NumberOfLevelZeroTilesX defaults to 2 (geographic) or 1 (Web Mercator).
	NumberOfLevelZeroTilesX int

	// NumberOfLevelZeroTilesY defaults to 1.
	NumberOfLevelZeroTilesY int

	// LevelZeroMaximumGeometricError defaults to an estimate for a
	// 65×65 heightmap per root tile.
	LevelZeroMaximumGeometricError float64
}

// New returns a scheme for projection configured by opts.
func New(projection Projection, opts Options) (Scheme, error) {
	switch projection {
	case ProjectionGeographic:
		return NewGeographic(opts)
	case ProjectionWebMercator:
		return NewWebMercator(opts)
	case ProjectionUnspecified:
		return nil, ErrAbstractScheme
	default:
		return nil, fmt.Errorf("%w: unknown projection %v", ErrInvalidOptions, projection)
	}
}

// schemeBase holds the fields and behavior shared by every variant.
type schemeBase struct {
	ellipsoid    Ellipsoid
	extent       Extent
	tilesX       int
	tilesY       int
	levelZeroErr float64
	maxLevel     int

	// self is the embedding variant, handed to the tiles it creates.
	self Scheme
}

func newSchemeBase(opts Options, extent Extent, defaultTilesX int) (schemeBase, error) {
	b := schemeBase{
		ellipsoid:    opts.Ellipsoid,
		extent:       extent,
		tilesX:       opts.NumberOfLevelZeroTilesX,
		tilesY:       opts.NumberOfLevelZeroTilesY,
		levelZeroErr: opts.LevelZeroMaximumGeometricError,
	}
	if b.ellipsoid.IsZero() {
		b.ellipsoid = WGS84
	}
	if b.tilesX == 0 {
		b.tilesX = defaultTilesX
	}
	if b.tilesY == 0 {
		b.tilesY = 1
	}

	switch {
	case b.tilesX < 0 || b.tilesY < 0 || b.tilesX > maxTilesPerAxis || b.tilesY > maxTilesPerAxis:
		return schemeBase{}, fmt.Errorf("%w: level-zero tiles %dx%d", ErrInvalidOptions, b.tilesX, b.tilesY)
	case !b.extent.Valid():
		return schemeBase{}, fmt.Errorf("%w: %v", ErrInvalidOptions, b.extent)
	case b.levelZeroErr < 0 || math.IsNaN(b.levelZeroErr) || math.IsInf(b.levelZeroErr, 0):
		return schemeBase{}, fmt.Errorf("%w: level-zero geometric error %v", ErrInvalidOptions, b.levelZeroErr)
	case b.ellipsoid.Radii[0] <= 0 || b.ellipsoid.Radii[1] <= 0 || b.ellipsoid.Radii[2] <= 0:
		return schemeBase{}, fmt.Errorf("%w: ellipsoid radii %v", ErrInvalidOptions, b.ellipsoid.Radii)
	}

	if b.levelZeroErr == 0 {
		b.levelZeroErr = b.ellipsoid.MaximumRadius() * 2 * math.Pi * 0.25 / float64(heightmapSamples*b.tilesX)
	}
	n := max(b.tilesX, b.tilesY)
	for n<<(b.maxLevel+1) <= maxTilesPerAxis {
		b.maxLevel++
	}
	return b, nil
}

func (b *schemeBase) Ellipsoid() Ellipsoid                    { return b.ellipsoid }
func (b *schemeBase) Extent() Extent                          { return b.extent }
func (b *schemeBase) NumberOfLevelZeroTilesX() int            { return b.tilesX }
func (b *schemeBase) NumberOfLevelZeroTilesY() int            { return b.tilesY }
func (b *schemeBase) LevelZeroMaximumGeometricError() float64 { return b.levelZeroErr }
func (b *schemeBase) MaxLevel() int                           { return b.maxLevel }

func (b *schemeBase) validLevel(level int) bool {
	return level >= 0 && level <= b.maxLevel
}

// LevelMaximumGeometricError returns the level-zero error divided by 2^level.
func (b *schemeBase) LevelMaximumGeometricError(level int) float64 {
	return math.Ldexp(b.levelZeroErr, -level)
}

// CreateLevelZeroTiles returns the root tiles in row-major order, north
// row first and west to east within a row.
func (b *schemeBase) CreateLevelZeroTiles() []Tile {
	tiles := make([]Tile, 0, b.tilesX*b.tilesY)
	for y := 0; y < b.tilesY; y++ {
		for x := 0; x < b.tilesX; x++ {
			tiles = append(tiles, Tile{X: x, Y: y, Level: 0, scheme: b.self})
		}
	}
	return tiles
}

// tilesAt returns the tile counts of level. Callers check validLevel.
func (b *schemeBase) tilesAt(level int) (int, int) {
	return b.tilesX << level, b.tilesY << level
}

// clampTile maps a fractional tile coordinate to a tile index, keeping
// positions on the far edge in the last tile.
func clampTile(f float64, n int) int {
	i := int(math.Floor(f))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
