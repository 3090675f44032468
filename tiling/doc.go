// Package tiling partitions the surface of an ellipsoid into a quadtree of
// tiles.
//
// A [Scheme] fixes the root of the tree: how many tiles cover the world at
// level zero, which extent they span and how much geometric error a root
// tile may carry. Every deeper level splits each tile into four children,
// so level L holds nX·2^L × nY·2^L tiles and tolerates half the error of
// level L-1.
//
// Two projections are provided:
//
//   - [GeographicScheme]: equirectangular, 2×1 root tiles by default.
//   - [WebMercatorScheme]: spherical Mercator, one root tile, latitudes
//     limited to about ±85.0511°.
//
// Schemes are built with [New] or with the variant constructors. The
// scheme contract itself is never constructed: [New] rejects
// [ProjectionUnspecified] with [ErrAbstractScheme].
//
// Extents are in radians. [Extent.Bound] converts to an orb.Bound in
// degrees for GeoJSON and map-tile tooling.
package tiling
