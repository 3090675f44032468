package tiling

import "github.com/gogpu/globe/cache"

// CachedScheme memoizes TileXYToExtent of an underlying scheme in a
// sharded LRU cache. It is safe for concurrent use when the underlying
// scheme is.
type CachedScheme struct {
	Scheme

	extents *cache.ShardedCache[uint64, Extent]
}

// NewCachedScheme wraps s with an extent cache holding about capacity
// entries per shard. A non-positive capacity selects cache.DefaultCapacity.
func NewCachedScheme(s Scheme, capacity int) *CachedScheme {
	c := &CachedScheme{
		Scheme:  s,
		extents: cache.NewSharded[uint64, Extent](capacity, cache.Uint64Hasher),
	}
	return c
}

// TileXYToExtent returns the cached extent of tile (x, y) at level.
func (c *CachedScheme) TileXYToExtent(x, y, level int) Extent {
	// Keys only hold levels up to MaxLevel.
	if level < 0 || level > c.MaxLevel() {
		return Extent{}
	}
	return c.extents.GetOrCreate(tileKey(x, y, level), func() Extent {
		return c.Scheme.TileXYToExtent(x, y, level)
	})
}

// CreateLevelZeroTiles returns the root tiles bound to the cached scheme.
func (c *CachedScheme) CreateLevelZeroTiles() []Tile {
	tiles := c.Scheme.CreateLevelZeroTiles()
	for i := range tiles {
		tiles[i].scheme = c
	}
	return tiles
}

// Stats returns the extent cache statistics.
func (c *CachedScheme) Stats() cache.Stats {
	return c.extents.Stats()
}

// Purge drops every cached extent.
func (c *CachedScheme) Purge() {
	c.extents.Clear()
}

var _ Scheme = (*CachedScheme)(nil)
