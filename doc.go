// Package globe picks objects on a rendered globe and addresses its
// surface as a quadtree of tiles.
//
// # Overview
//
// A [Scene] owns a set of primitives drawn through a [render.Context].
// Every primitive gets a unique pick color. [Scene.Pick] redraws the
// primitives with those colors into an off-screen buffer, restricted to a
// few pixels around the pick position, reads the pixels back and searches
// them in a spiral from the center. The first known color names the
// primitive.
//
// # Quick Start
//
//	ctx := render.NewSoftwareContext(render.WithViewport(800, 400))
//	scene, err := globe.NewScene(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer scene.Destroy()
//
//	scheme, _ := tiling.New(tiling.ProjectionGeographic, tiling.Options{})
//	for _, tile := range scheme.CreateLevelZeroTiles() {
//		scene.Add(&globe.TilePrimitive{Tile: tile, Color: render.Color{R: 0.2, G: 0.4, B: 0.8, A: 1}})
//	}
//
//	p, ok, err := scene.Pick(600, 200)
//
// # Packages
//
//   - render: rendering context boundary, pick colors and a CPU context
//   - render/gpu: the same boundary on a wgpu HAL device
//   - pick: pick framebuffer and spiral search
//   - tiling: geographic and Web Mercator tiling schemes
//   - updater: periodic refresh of externally hosted documents
//   - cache: sharded LRU used to memoize tile extents
//
// # Logging
//
// globe is silent by default. [SetLogger] enables structured logging for
// globe and its sub-packages.
package globe
