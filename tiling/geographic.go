package tiling

// GeographicScheme tiles an extent with a simple equirectangular mapping:
// longitude and latitude are split into equal angular steps.
type GeographicScheme struct {
	schemeBase
}

// NewGeographic returns a geographic scheme. By default it covers the
// whole globe with two root tiles, one per hemisphere of longitude.
func NewGeographic(opts Options) (*GeographicScheme, error) {
	extent := opts.Extent
	if extent.IsZero() {
		extent = MaxExtent
	}
	base, err := newSchemeBase(opts, extent, 2)
	if err != nil {
		return nil, err
	}
	s := &GeographicScheme{schemeBase: base}
	s.self = s
	return s, nil
}

// TileXYToExtent returns the extent of tile (x, y) at level. Tile y grows
// southward from the northern edge of the scheme extent.
func (s *GeographicScheme) TileXYToExtent(x, y, level int) Extent {
	if !s.validLevel(level) {
		return Extent{}
	}
	xTiles, yTiles := s.tilesAt(level)
	tileWidth := s.extent.Width() / float64(xTiles)
	tileHeight := s.extent.Height() / float64(yTiles)

	return Extent{
		West:  s.extent.West + float64(x)*tileWidth,
		East:  s.extent.West + float64(x+1)*tileWidth,
		North: s.extent.North - float64(y)*tileHeight,
		South: s.extent.North - float64(y+1)*tileHeight,
	}
}

// PositionToTileXY returns the tile at level containing the position.
func (s *GeographicScheme) PositionToTileXY(lon, lat float64, level int) (int, int, bool) {
	if !s.validLevel(level) || !s.extent.Contains(lon, lat) {
		return 0, 0, false
	}
	xTiles, yTiles := s.tilesAt(level)
	x := clampTile((lon-s.extent.West)/s.extent.Width()*float64(xTiles), xTiles)
	y := clampTile((s.extent.North-lat)/s.extent.Height()*float64(yTiles), yTiles)
	return x, y, true
}

var _ Scheme = (*GeographicScheme)(nil)
