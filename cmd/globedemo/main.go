// Command globedemo renders the tiles of one level of a tiling scheme on
// a flat map, picks the tile under a pixel and writes the result as PNG.
//
// Tiles listed by an optional JSON feed are highlighted:
//
//	[{"x": 3, "y": 1, "level": 2}]
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/segmentio/encoding/json"

	"github.com/gogpu/globe"
	"github.com/gogpu/globe/render"
	"github.com/gogpu/globe/tiling"
	"github.com/gogpu/globe/updater"
)

type highlight struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Level int `json:"level"`
}

func main() {
	os.Exit(realMain())
}

// realMain returns the exit code so deferred cleanups, such as stopping
// the profiler, run before the process exits.
func realMain() int {
	var (
		width      = flag.Int("width", 1024, "image width")
		height     = flag.Int("height", 512, "image height")
		level      = flag.Int("level", 2, "tile level to draw")
		mercator   = flag.Bool("mercator", false, "use the Web Mercator tiling scheme")
		pickX      = flag.Int("x", 512, "pick position x")
		pickY      = flag.Int("y", 256, "pick position y")
		region     = flag.Int("region", globe.DefaultPickRegionSize, "pick region size")
		feed       = flag.String("feed", "", "URL of a JSON feed of tiles to highlight")
		output     = flag.String("output", "globe.png", "output file")
		cpuProfile = flag.String("cpuprofile", "", "write a CPU profile to this directory")
		verbose    = flag.Bool("v", false, "log debug messages")
	)
	flag.Parse()

	lvl := slog.LevelInfo
	if *verbose {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	globe.SetLogger(logger)

	if *cpuProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuProfile), profile.Quiet).Stop()
	}

	if err := run(logger, config{
		width: *width, height: *height,
		level: *level, mercator: *mercator,
		pickX: *pickX, pickY: *pickY, region: *region,
		feed: *feed, output: *output,
	}); err != nil {
		logger.Error("globedemo failed", "err", err)
		return 1
	}
	return 0
}

type config struct {
	width, height int
	level         int
	mercator      bool
	pickX, pickY  int
	region        int
	feed          string
	output        string
}

func run(logger *slog.Logger, cfg config) error {
	projection := tiling.ProjectionGeographic
	if cfg.mercator {
		projection = tiling.ProjectionWebMercator
	}
	base, err := tiling.New(projection, tiling.Options{})
	if err != nil {
		return err
	}
	scheme := tiling.NewCachedScheme(base, 0)

	highlighted, err := fetchHighlights(logger, cfg.feed)
	if err != nil {
		return err
	}

	rc, err := globe.NewContext(render.NullDeviceHandle{}, cfg.width, cfg.height)
	if err != nil {
		return err
	}
	ctx, ok := rc.(*render.SoftwareContext)
	if !ok {
		return fmt.Errorf("unexpected context %T", rc)
	}
	scene, err := globe.NewScene(ctx, globe.WithPickRegionSize(cfg.region))
	if err != nil {
		return err
	}
	defer scene.Destroy()

	for _, tile := range tiling.TilesIntersecting(scheme, base.Extent(), cfg.level) {
		col := checker(tile)
		if highlighted[highlight{X: tile.X, Y: tile.Y, Level: tile.Level}] {
			col = render.Color{R: 0.9, G: 0.3, B: 0.2, A: 1}
		}
		if _, err := scene.Add(&globe.TilePrimitive{Tile: tile, Color: col, Depth: 0.5}); err != nil {
			return err
		}
	}

	p, ok, err := scene.Pick(cfg.pickX, cfg.pickY)
	if err != nil {
		return err
	}
	if tp, isTile := p.(*globe.TilePrimitive); ok && isTile {
		logger.Info("picked tile", "tile", tp.Tile, "extent", tp.Tile.Extent())
		tp.Color = render.Color{R: 1, G: 0.85, A: 1}
		tp.Depth = 0.25
	} else {
		logger.Info("nothing picked", "x", cfg.pickX, "y", cfg.pickY)
	}

	if err := scene.Render(render.NewPassState(nil)); err != nil {
		return err
	}

	f, err := os.Create(cfg.output)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, ctx.Screen().Image()); err != nil {
		return err
	}

	stats := scheme.Stats()
	logger.Info("image written", "output", cfg.output, "tiles", scene.Len(),
		"extentCacheHits", stats.Hits, "extentCacheMisses", stats.Misses)
	return nil
}

// fetchHighlights runs a single update of the feed and collects the
// tiles it lists.
func fetchHighlights(logger *slog.Logger, url string) (map[highlight]bool, error) {
	out := make(map[highlight]bool)
	if url == "" {
		return out, nil
	}

	u, err := updater.New(updater.Config{
		URL:    url,
		Logger: logger,
		Processor: updater.ProcessorFunc(func(doc updater.Document, _ string) error {
			var h highlight
			if err := json.Unmarshal(doc, &h); err != nil {
				return err
			}
			out[h] = true
			return nil
		}),
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	// The first refresh is due one interval after construction.
	task := u.Update(time.Now().Add(u.RefreshInterval()))
	if task == nil {
		return out, nil
	}
	if err := task.Wait(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func checker(t tiling.Tile) render.Color {
	if (t.X+t.Y)%2 == 0 {
		return render.Color{R: 0.2, G: 0.4, B: 0.7, A: 1}
	}
	return render.Color{R: 0.25, G: 0.55, B: 0.35, A: 1}
}
