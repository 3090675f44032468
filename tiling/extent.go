package tiling

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Extent is a geographic rectangle in radians.
type Extent struct {
	West, South, East, North float64
}

// MaxExtent covers the whole globe.
var MaxExtent = Extent{West: -math.Pi, South: -math.Pi / 2, East: math.Pi, North: math.Pi / 2}

// Width returns the east-west span in radians.
func (e Extent) Width() float64 { return e.East - e.West }

// Height returns the north-south span in radians.
func (e Extent) Height() float64 { return e.North - e.South }

// Center returns the longitude and latitude of the middle of e.
func (e Extent) Center() (lon, lat float64) {
	return (e.West + e.East) / 2, (e.South + e.North) / 2
}

// IsZero reports whether all four edges are zero.
func (e Extent) IsZero() bool {
	return e == Extent{}
}

// Valid reports whether e has a positive area.
func (e Extent) Valid() bool {
	return e.West < e.East && e.South < e.North
}

// Contains reports whether the position lies inside e, edges included.
func (e Extent) Contains(lon, lat float64) bool {
	return lon >= e.West && lon <= e.East && lat >= e.South && lat <= e.North
}

// Intersects reports whether e and o overlap with a positive area.
func (e Extent) Intersects(o Extent) bool {
	return e.West < o.East && o.West < e.East && e.South < o.North && o.South < e.North
}

// Intersection returns the overlap of e and o and whether it is non-empty.
func (e Extent) Intersection(o Extent) (Extent, bool) {
	r := Extent{
		West:  math.Max(e.West, o.West),
		South: math.Max(e.South, o.South),
		East:  math.Min(e.East, o.East),
		North: math.Min(e.North, o.North),
	}
	return r, r.Valid()
}

// Bound converts e to an orb.Bound in degrees.
func (e Extent) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{degrees(e.West), degrees(e.South)},
		Max: orb.Point{degrees(e.East), degrees(e.North)},
	}
}

// ExtentFromBound converts an orb.Bound in degrees to an Extent.
func ExtentFromBound(b orb.Bound) Extent {
	return Extent{
		West:  radians(b.Min.Lon()),
		South: radians(b.Min.Lat()),
		East:  radians(b.Max.Lon()),
		North: radians(b.Max.Lat()),
	}
}

func (e Extent) String() string {
	return fmt.Sprintf("Extent(W%.6f S%.6f E%.6f N%.6f)", e.West, e.South, e.East, e.North)
}

func degrees(r float64) float64 { return r * 180 / math.Pi }
func radians(d float64) float64 { return d * math.Pi / 180 }
