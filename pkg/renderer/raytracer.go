package renderer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/integrator"
	"github.com/df07/go-ltc-raytracer/pkg/scene"
)

// Config controls how an image is split and sampled
type Config struct {
	TileSize int   // Tile edge length in pixels
	Workers  int   // Parallel tiles; 0 means one per CPU
	Seed     int64 // Base seed for the per-tile random streams
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{TileSize: 32, Seed: 42}
}

// Raytracer renders a preprocessed scene with one integrator
type Raytracer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	config     Config
	logger     *zap.Logger
	onTile     func(TileResult, *Film)
}

// NewRaytracer creates a new raytracer. A nil logger discards output.
func NewRaytracer(s *scene.Scene, integratorInst integrator.Integrator, config Config, logger *zap.Logger) *Raytracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultConfig().TileSize
	}
	return &Raytracer{
		scene:      s,
		integrator: integratorInst,
		config:     config,
		logger:     logger,
	}
}

// OnTile registers fn to run after each finished tile. fn is called from the
// worker goroutines and must be safe for concurrent use; the tile's pixels
// in the film are final when it runs.
func (rt *Raytracer) OnTile(fn func(TileResult, *Film)) {
	rt.onTile = fn
}

// passSeedStride separates the tile seeds of consecutive passes. Tile ids
// stay far below it.
const passSeedStride = 1 << 20

// passSeed returns the base tile seed of a pass; pass 1 uses seed itself
func passSeed(seed int64, pass int) int64 {
	return seed + int64(pass-1)*passSeedStride
}

// validate checks that the scene can be rendered
func (rt *Raytracer) validate() error {
	sc := rt.scene.SamplingConfig
	if sc.Width <= 0 || sc.Height <= 0 || sc.SamplesPerPixel <= 0 {
		return fmt.Errorf("invalid render size %dx%d at %d spp", sc.Width, sc.Height, sc.SamplesPerPixel)
	}
	if rt.scene.Camera == nil || rt.scene.BVH == nil {
		return fmt.Errorf("scene is not preprocessed")
	}
	return nil
}

// Render samples every pixel SamplesPerPixel times in a single pass. The
// result depends only on the scene, the integrator and the seed, not on the
// worker count.
func (rt *Raytracer) Render(ctx context.Context) (*Film, RenderStats, error) {
	if err := rt.validate(); err != nil {
		return nil, RenderStats{}, err
	}
	sc := rt.scene.SamplingConfig
	film := NewFilm(sc.Width, sc.Height)

	rt.logger.Info("render started",
		zap.Int("width", sc.Width),
		zap.Int("height", sc.Height),
		zap.Int("spp", sc.SamplesPerPixel),
		zap.Int("workers", NewWorkerPool(rt.config.Workers).NumWorkers()),
		zap.Int("ltc_lights", len(rt.scene.LTCLights)),
		zap.Int("primitives", rt.scene.PrimitiveCount()))
	start := time.Now()

	stats, err := rt.RenderPass(ctx, film, 1, sc.SamplesPerPixel)
	if err != nil {
		return nil, RenderStats{}, err
	}

	rt.logger.Info("render finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("samples", stats.TotalSamples),
		zap.Float64("avg_spp", stats.AverageSamples))

	return film, stats, nil
}

// RenderPass adds samples new samples to every pixel of film. Each pass
// number draws from its own deterministic random streams, so passes can be
// accumulated into one film without repeating samples. The returned stats
// cover only this pass.
func (rt *Raytracer) RenderPass(ctx context.Context, film *Film, pass, samples int) (RenderStats, error) {
	tiles := NewTileGrid(film.Width, film.Height, rt.config.TileSize, passSeed(rt.config.Seed, pass))
	pool := NewWorkerPool(rt.config.Workers)
	tileRenderer := NewTileRenderer(rt.scene, rt.integrator)

	var completed atomic.Int64
	results, err := pool.Run(ctx, tiles,
		func(ctx context.Context, tile *Tile) (RenderStats, error) {
			sampler := core.NewRandomSampler(tile.Random)
			return tileRenderer.RenderTileBounds(ctx, tile.Bounds, film, sampler, samples)
		},
		func(result TileResult) {
			result.Pass = pass
			done := completed.Add(1)
			rt.logger.Debug("tile done",
				zap.Int("pass", pass),
				zap.Int("tile", result.TileID),
				zap.Int64("completed", done),
				zap.Int("total", len(tiles)))
			if rt.onTile != nil {
				rt.onTile(result, film)
			}
		})
	if err != nil {
		return RenderStats{}, fmt.Errorf("render pass %d: %w", pass, err)
	}

	var stats RenderStats
	for _, result := range results {
		stats.Merge(result.Stats)
	}
	return stats, nil
}
