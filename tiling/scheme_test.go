package tiling

import (
	"math"
	"testing"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-12

func TestNewRejectsContract(t *testing.T) {
	s, err := New(ProjectionUnspecified, Options{})
	require.ErrorIs(t, err, ErrAbstractScheme)
	require.Nil(t, s)

	_, err = New(Projection(42), Options{})
	require.ErrorIs(t, err, ErrInvalidOptions)
}

func TestNewVariants(t *testing.T) {
	geo, err := New(ProjectionGeographic, Options{})
	require.NoError(t, err)
	require.IsType(t, &GeographicScheme{}, geo)

	merc, err := New(ProjectionWebMercator, Options{})
	require.NoError(t, err)
	require.IsType(t, &WebMercatorScheme{}, merc)
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name       string
		projection Projection
		opts       Options
	}{
		{"negative tiles x", ProjectionGeographic, Options{NumberOfLevelZeroTilesX: -1}},
		{"negative tiles y", ProjectionWebMercator, Options{NumberOfLevelZeroTilesY: -2}},
		{"inverted extent", ProjectionGeographic, Options{Extent: Extent{West: 1, South: 0, East: 0, North: 1}}},
		{"negative error", ProjectionGeographic, Options{LevelZeroMaximumGeometricError: -1}},
		{"nan error", ProjectionGeographic, Options{LevelZeroMaximumGeometricError: math.NaN()}},
		{"bad ellipsoid", ProjectionGeographic, Options{Ellipsoid: NewEllipsoid(1, 0, 1)}},
		{"mercator extent", ProjectionWebMercator, Options{Extent: MaxExtent}},
		{"too many tiles", ProjectionGeographic, Options{NumberOfLevelZeroTilesX: 1<<29 + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.projection, tt.opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestMaxLevel(t *testing.T) {
	geo, err := NewGeographic(Options{})
	require.NoError(t, err)
	merc, err := NewWebMercator(Options{})
	require.NoError(t, err)
	wide, err := NewGeographic(Options{NumberOfLevelZeroTilesX: 5, NumberOfLevelZeroTilesY: 3})
	require.NoError(t, err)

	assert.Equal(t, 28, geo.MaxLevel())
	assert.Equal(t, 29, merc.MaxLevel())
	assert.Equal(t, 26, wide.MaxLevel())

	for _, s := range []Scheme{geo, merc, wide} {
		last := s.MaxLevel()
		n := s.NumberOfLevelZeroTilesX() << last
		assert.LessOrEqual(t, n, 1<<29)
		assert.False(t, s.TileXYToExtent(n-1, 0, last).IsZero())

		for _, level := range []int{-1, last + 1, 62, 64} {
			assert.True(t, s.TileXYToExtent(0, 0, level).IsZero(), "level %d", level)
			_, _, ok := s.PositionToTileXY(0, 0, level)
			assert.False(t, ok, "level %d", level)
			assert.Nil(t, TilesIntersecting(s, s.Extent(), level), "level %d", level)
		}
	}

	// Level 64 would alias level 0 in a masked key.
	cached := NewCachedScheme(geo, 0)
	assert.False(t, cached.TileXYToExtent(0, 0, 0).IsZero())
	assert.True(t, cached.TileXYToExtent(0, 0, 64).IsZero())
}

func TestGeographicDefaults(t *testing.T) {
	s, err := NewGeographic(Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, s.NumberOfLevelZeroTilesX())
	assert.Equal(t, 1, s.NumberOfLevelZeroTilesY())
	assert.Equal(t, MaxExtent, s.Extent())
	assert.Equal(t, WGS84, s.Ellipsoid())
	assert.InDelta(t, 6378137.0*2*math.Pi*0.25/(65*2), s.LevelZeroMaximumGeometricError(), 1e-9)
}

func TestWebMercatorDefaults(t *testing.T) {
	s, err := NewWebMercator(Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, s.NumberOfLevelZeroTilesX())
	assert.Equal(t, 1, s.NumberOfLevelZeroTilesY())
	assert.InDelta(t, 85.0511287798, degrees(s.Extent().North), 1e-9)
	assert.InDelta(t, -85.0511287798, degrees(s.Extent().South), 1e-9)
	assert.InDelta(t, 6378137.0*2*math.Pi*0.25/65, s.LevelZeroMaximumGeometricError(), 1e-9)
}

func TestLevelMaximumGeometricError(t *testing.T) {
	for _, p := range []Projection{ProjectionGeographic, ProjectionWebMercator} {
		s, err := New(p, Options{})
		require.NoError(t, err)

		require.Equal(t, s.LevelZeroMaximumGeometricError(), s.LevelMaximumGeometricError(0))
		for level := 0; level < 30; level++ {
			require.Equal(t, s.LevelMaximumGeometricError(level)/2, s.LevelMaximumGeometricError(level+1),
				"%v level %d", p, level)
		}
	}

	s, err := NewGeographic(Options{LevelZeroMaximumGeometricError: 1000})
	require.NoError(t, err)
	assert.Equal(t, 125.0, s.LevelMaximumGeometricError(3))
}

func TestCreateLevelZeroTiles(t *testing.T) {
	s, err := NewGeographic(Options{})
	require.NoError(t, err)

	tiles := s.CreateLevelZeroTiles()
	require.Len(t, tiles, 2)
	assert.Equal(t, [3]int{0, 0, 0}, [3]int{tiles[0].X, tiles[0].Y, tiles[0].Level})
	assert.Equal(t, [3]int{1, 0, 0}, [3]int{tiles[1].X, tiles[1].Y, tiles[1].Level})
	assert.Same(t, s, tiles[0].Scheme())

	s, err = NewGeographic(Options{NumberOfLevelZeroTilesX: 3, NumberOfLevelZeroTilesY: 2})
	require.NoError(t, err)
	var got [][2]int
	for _, tile := range s.CreateLevelZeroTiles() {
		got = append(got, [2]int{tile.X, tile.Y})
	}
	assert.Equal(t, [][2]int{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {1, 1}, {2, 1}}, got)
}

func TestGeographicTileXYToExtent(t *testing.T) {
	s, err := NewGeographic(Options{})
	require.NoError(t, err)

	west := s.TileXYToExtent(0, 0, 0)
	assert.InDelta(t, -math.Pi, west.West, eps)
	assert.InDelta(t, 0, west.East, eps)
	assert.InDelta(t, math.Pi/2, west.North, eps)
	assert.InDelta(t, -math.Pi/2, west.South, eps)

	east := s.TileXYToExtent(1, 0, 0)
	assert.InDelta(t, 0, east.West, eps)
	assert.InDelta(t, math.Pi, east.East, eps)

	// Level 2 has 8×4 tiles of 45°.
	e := s.TileXYToExtent(5, 3, 2)
	assert.InDelta(t, 45.0, degrees(e.West), 1e-9)
	assert.InDelta(t, 90.0, degrees(e.East), 1e-9)
	assert.InDelta(t, -45.0, degrees(e.North), 1e-9)
	assert.InDelta(t, -90.0, degrees(e.South), 1e-9)
}

func TestGeographicCustomExtent(t *testing.T) {
	extent := Extent{West: 0, South: 0, East: 1, North: 0.5}
	s, err := NewGeographic(Options{Extent: extent, NumberOfLevelZeroTilesX: 1})
	require.NoError(t, err)

	e := s.TileXYToExtent(1, 1, 1)
	assert.InDelta(t, 0.5, e.West, eps)
	assert.InDelta(t, 1, e.East, eps)
	assert.InDelta(t, 0.25, e.North, eps)
	assert.InDelta(t, 0, e.South, eps)
}

func TestQuadtreeSubdivision(t *testing.T) {
	for _, p := range []Projection{ProjectionGeographic, ProjectionWebMercator} {
		s, err := New(p, Options{})
		require.NoError(t, err)

		queue := s.CreateLevelZeroTiles()
		for len(queue) > 0 {
			parent := queue[0]
			queue = queue[1:]
			if parent.Level == 3 {
				continue
			}

			pe := parent.Extent()
			kids := parent.Children()
			nw, ne, sw, se := kids[0].Extent(), kids[1].Extent(), kids[2].Extent(), kids[3].Extent()

			assert.InDelta(t, pe.West, nw.West, eps, "%v %v", p, parent)
			assert.InDelta(t, pe.North, nw.North, eps)
			assert.InDelta(t, pe.East, se.East, eps)
			assert.InDelta(t, pe.South, se.South, eps)
			assert.InDelta(t, nw.East, ne.West, eps)
			assert.InDelta(t, nw.South, sw.North, eps)
			assert.InDelta(t, sw.East, se.West, eps)
			assert.InDelta(t, ne.South, se.North, eps)
			assert.InDelta(t, pe.Width()/2, nw.Width(), eps)

			for _, k := range kids {
				back, ok := k.Parent()
				require.True(t, ok)
				assert.Equal(t, parent.Key(), back.Key())
			}
			queue = append(queue, kids[:]...)
		}
	}
}

func TestLastTileMatchesExtent(t *testing.T) {
	for _, p := range []Projection{ProjectionGeographic, ProjectionWebMercator} {
		s, err := New(p, Options{})
		require.NoError(t, err)

		for level := 0; level < 6; level++ {
			nx := s.NumberOfLevelZeroTilesX() << level
			ny := s.NumberOfLevelZeroTilesY() << level
			first := s.TileXYToExtent(0, 0, level)
			last := s.TileXYToExtent(nx-1, ny-1, level)
			assert.InDelta(t, s.Extent().West, first.West, eps)
			assert.InDelta(t, s.Extent().North, first.North, 1e-12)
			assert.InDelta(t, s.Extent().East, last.East, 1e-12)
			assert.InDelta(t, s.Extent().South, last.South, 1e-12)
		}
	}
}

func TestWebMercatorMatchesMapTiles(t *testing.T) {
	s, err := NewWebMercator(Options{})
	require.NoError(t, err)

	for z := 0; z <= 6; z++ {
		n := 1 << z
		for _, xy := range [][2]int{{0, 0}, {n - 1, n - 1}, {n / 2, n / 3}, {n / 3, n / 2}} {
			want := maptile.New(uint32(xy[0]), uint32(xy[1]), maptile.Zoom(z)).Bound()
			got := s.TileXYToExtent(xy[0], xy[1], z).Bound()
			assert.InDelta(t, want.Min.Lon(), got.Min.Lon(), 1e-9, "z%d %v west", z, xy)
			assert.InDelta(t, want.Max.Lon(), got.Max.Lon(), 1e-9, "z%d %v east", z, xy)
			assert.InDelta(t, want.Min.Lat(), got.Min.Lat(), 1e-9, "z%d %v south", z, xy)
			assert.InDelta(t, want.Max.Lat(), got.Max.Lat(), 1e-9, "z%d %v north", z, xy)
		}
	}
}

func TestPositionToTileXY(t *testing.T) {
	for _, p := range []Projection{ProjectionGeographic, ProjectionWebMercator} {
		s, err := New(p, Options{})
		require.NoError(t, err)

		for level := 0; level < 5; level++ {
			nx := s.NumberOfLevelZeroTilesX() << level
			ny := s.NumberOfLevelZeroTilesY() << level
			for _, xy := range [][2]int{{0, 0}, {nx - 1, ny - 1}, {nx / 2, ny / 2}} {
				lon, lat := s.TileXYToExtent(xy[0], xy[1], level).Center()
				x, y, ok := s.PositionToTileXY(lon, lat, level)
				require.True(t, ok)
				assert.Equal(t, xy, [2]int{x, y}, "%v level %d", p, level)
			}
		}

		e := s.Extent()
		x, y, ok := s.PositionToTileXY(e.East, e.South, 2)
		require.True(t, ok)
		assert.Equal(t, s.NumberOfLevelZeroTilesX()<<2-1, x)
		assert.Equal(t, s.NumberOfLevelZeroTilesY()<<2-1, y)
	}

	merc, err := NewWebMercator(Options{})
	require.NoError(t, err)
	_, _, ok := merc.PositionToTileXY(0, radians(89), 3)
	assert.False(t, ok)
}

func TestProjectionString(t *testing.T) {
	assert.Equal(t, "Geographic", ProjectionGeographic.String())
	assert.Equal(t, "WebMercator", ProjectionWebMercator.String())
	assert.Equal(t, "Unspecified", ProjectionUnspecified.String())
	assert.Equal(t, "Projection(7)", Projection(7).String())
}
