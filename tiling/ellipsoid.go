package tiling

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ellipsoid is a triaxial ellipsoid centered at the origin, in meters.
type Ellipsoid struct {
	Radii mgl64.Vec3
}

var (
	// WGS84 is the World Geodetic System 1984 ellipsoid.
	WGS84 = NewEllipsoid(6378137.0, 6378137.0, 6356752.3142451793)

	// UnitSphere is a sphere of radius one.
	UnitSphere = NewEllipsoid(1, 1, 1)
)

// NewEllipsoid returns an ellipsoid with the given radii.
func NewEllipsoid(x, y, z float64) Ellipsoid {
	return Ellipsoid{Radii: mgl64.Vec3{x, y, z}}
}

// IsZero reports whether e has no radii set.
func (e Ellipsoid) IsZero() bool {
	return e.Radii == mgl64.Vec3{}
}

// MaximumRadius returns the largest of the three radii.
func (e Ellipsoid) MaximumRadius() float64 {
	return math.Max(e.Radii[0], math.Max(e.Radii[1], e.Radii[2]))
}

// RadiiSquared returns the component-wise squared radii.
func (e Ellipsoid) RadiiSquared() mgl64.Vec3 {
	return mgl64.Vec3{e.Radii[0] * e.Radii[0], e.Radii[1] * e.Radii[1], e.Radii[2] * e.Radii[2]}
}

// GeodeticSurfaceNormal returns the unit normal of the surface at the
// given longitude and latitude (radians).
func (e Ellipsoid) GeodeticSurfaceNormal(lon, lat float64) mgl64.Vec3 {
	cosLat := math.Cos(lat)
	return mgl64.Vec3{
		cosLat * math.Cos(lon),
		cosLat * math.Sin(lon),
		math.Sin(lat),
	}.Normalize()
}

// CartographicToCartesian converts a geodetic position (radians, meters
// above the surface) to Earth-fixed Cartesian coordinates.
func (e Ellipsoid) CartographicToCartesian(lon, lat, height float64) mgl64.Vec3 {
	n := e.GeodeticSurfaceNormal(lon, lat)
	r2 := e.RadiiSquared()
	k := mgl64.Vec3{r2[0] * n[0], r2[1] * n[1], r2[2] * n[2]}
	gamma := math.Sqrt(n.Dot(k))
	return k.Mul(1 / gamma).Add(n.Mul(height))
}
