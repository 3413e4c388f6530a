package renderer

import (
	"context"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TileResult contains the result from rendering a tile
type TileResult struct {
	TileID int
	Pass   int // Set by the raytracer; 1-based
	Bounds image.Rectangle
	Stats  RenderStats
}

// TileFunc renders one tile
type TileFunc func(ctx context.Context, tile *Tile) (RenderStats, error)

// WorkerPool runs tile tasks with bounded parallelism
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a worker pool; numWorkers <= 0 uses one per CPU
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Run renders every tile and returns the results in tile order. The first
// error cancels the remaining tiles. onDone, when set, is called from the
// rendering goroutine after each tile.
func (wp *WorkerPool) Run(ctx context.Context, tiles []*Tile, render TileFunc, onDone func(TileResult)) ([]TileResult, error) {
	results := make([]TileResult, len(tiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)

	for i, tile := range tiles {
		g.Go(func() error {
			stats, err := render(ctx, tile)
			if err != nil {
				return err
			}
			results[i] = TileResult{TileID: tile.ID, Bounds: tile.Bounds, Stats: stats}
			if onDone != nil {
				onDone(results[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
