package globe

// DefaultPickRegionSize is the side, in pixels, of the square searched
// around a pick position.
const DefaultPickRegionSize = 3

// SceneOption configures a Scene during creation.
//
// Example:
//
//	scene, err := globe.NewScene(ctx,
//	    globe.WithPickRegionSize(5),
//	    globe.WithDepthSorted(true),
//	)
type SceneOption func(*sceneOptions)

// sceneOptions holds optional configuration for Scene creation.
type sceneOptions struct {
	pickRegionSize int
	depthSorted    bool
}

// defaultSceneOptions returns the default scene options.
func defaultSceneOptions() sceneOptions {
	return sceneOptions{
		pickRegionSize: DefaultPickRegionSize,
	}
}

// WithPickRegionSize sets the side of the square pick region. Larger
// regions tolerate less precise clicks at the cost of a larger read-back.
// Values below one select a single-pixel region.
func WithPickRegionSize(n int) SceneOption {
	return func(o *sceneOptions) {
		o.pickRegionSize = max(n, 1)
	}
}

// WithDepthSorted draws primitives back to front (largest depth first)
// instead of in insertion order. Blended display passes need it when
// translucent primitives overlap.
func WithDepthSorted(enabled bool) SceneOption {
	return func(o *sceneOptions) {
		o.depthSorted = enabled
	}
}
