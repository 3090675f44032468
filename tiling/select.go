package tiling

// TilesIntersecting returns the tiles of level whose extent overlaps
// extent, in the same row-major order as CreateLevelZeroTiles.
func TilesIntersecting(s Scheme, extent Extent, level int) []Tile {
	area, ok := s.Extent().Intersection(extent)
	if !ok || level < 0 || level > s.MaxLevel() {
		return nil
	}

	x0, y0, ok0 := s.PositionToTileXY(area.West, area.North, level)
	x1, y1, ok1 := s.PositionToTileXY(area.East, area.South, level)
	if !ok0 || !ok1 {
		return nil
	}

	tiles := make([]Tile, 0, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			// Tiles that only touch the extent along an edge are skipped.
			if !s.TileXYToExtent(x, y, level).Intersects(area) {
				continue
			}
			tiles = append(tiles, NewTile(s, x, y, level))
		}
	}
	return tiles
}
