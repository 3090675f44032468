package tiling

import (
	"fmt"
	"math"
)

// MaximumMercatorLatitude is the latitude, in radians, at which the
// Mercator square ends: atan(sinh(π)), about 85.0511°.
var MaximumMercatorLatitude = math.Atan(math.Sinh(math.Pi))

// WebMercatorScheme tiles the spherical Mercator square. Tiles are square
// in projected space, so their latitude spans shrink toward the poles.
type WebMercatorScheme struct {
	schemeBase
}

// NewWebMercator returns a Web Mercator scheme. By default the square is
// covered by a single root tile.
func NewWebMercator(opts Options) (*WebMercatorScheme, error) {
	if !opts.Extent.IsZero() {
		return nil, fmt.Errorf("%w: web mercator extent is fixed", ErrInvalidOptions)
	}
	extent := Extent{
		West:  -math.Pi,
		South: -MaximumMercatorLatitude,
		East:  math.Pi,
		North: MaximumMercatorLatitude,
	}
	base, err := newSchemeBase(opts, extent, 1)
	if err != nil {
		return nil, err
	}
	s := &WebMercatorScheme{schemeBase: base}
	s.self = s
	return s, nil
}

// TileXYToExtent returns the geographic extent of tile (x, y) at level.
func (s *WebMercatorScheme) TileXYToExtent(x, y, level int) Extent {
	if !s.validLevel(level) {
		return Extent{}
	}
	xTiles, yTiles := s.tilesAt(level)
	tileWidth := 2 * math.Pi / float64(xTiles)
	tileHeight := 2 * math.Pi / float64(yTiles)

	return Extent{
		West:  -math.Pi + float64(x)*tileWidth,
		East:  -math.Pi + float64(x+1)*tileWidth,
		North: mercatorToLatitude(math.Pi - float64(y)*tileHeight),
		South: mercatorToLatitude(math.Pi - float64(y+1)*tileHeight),
	}
}

// PositionToTileXY returns the tile at level containing the position.
func (s *WebMercatorScheme) PositionToTileXY(lon, lat float64, level int) (int, int, bool) {
	if !s.validLevel(level) || !s.extent.Contains(lon, lat) {
		return 0, 0, false
	}
	xTiles, yTiles := s.tilesAt(level)
	x := clampTile((lon+math.Pi)/(2*math.Pi)*float64(xTiles), xTiles)
	y := clampTile((math.Pi-latitudeToMercator(lat))/(2*math.Pi)*float64(yTiles), yTiles)
	return x, y, true
}

// mercatorToLatitude converts a projected y on the unit sphere to latitude.
func mercatorToLatitude(y float64) float64 {
	return math.Atan(math.Sinh(y))
}

// latitudeToMercator converts latitude to a projected y on the unit sphere.
func latitudeToMercator(lat float64) float64 {
	return math.Asinh(math.Tan(lat))
}

var _ Scheme = (*WebMercatorScheme)(nil)
