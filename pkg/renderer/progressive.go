package renderer

import (
	"context"
	"image"
	"time"

	"go.uber.org/zap"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	InitialSamples int // Samples per pixel in the first pass (1 for a quick preview)
	MaxPasses      int // Maximum number of passes
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		InitialSamples: 1,
		MaxPasses:      4,
	}
}

// Schedule splits spp samples per pixel into passes and returns the number
// of new samples each pass takes. The first pass takes InitialSamples, the
// rest are divided evenly with the remainder going to the last pass. Passes
// that would add nothing are dropped, so the counts are all positive and
// sum to spp.
func (c ProgressiveConfig) Schedule(spp int) []int {
	if spp <= 0 {
		return nil
	}
	passes := max(1, min(c.MaxPasses, spp))
	initial := max(1, min(c.InitialSamples, spp))
	if passes == 1 || initial == spp {
		return []int{spp}
	}

	schedule := []int{initial}
	perPass := (spp - initial) / (passes - 1)
	for pass := 2; pass < passes; pass++ {
		if perPass > 0 {
			schedule = append(schedule, perPass)
		}
	}
	return append(schedule, spp-initial-perPass*(passes-2))
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber  int
	TotalPasses int
	Image       *image.RGBA // Average of every sample taken so far
	Stats       RenderStats // Cumulative over all passes so far
	Elapsed     time.Duration
	IsLast      bool
}

// ProgressiveRaytracer manages progressive rendering with multiple passes.
// Every pass adds samples to the same film, so the image after pass n is
// the average of passes 1..n weighted by their sample counts.
type ProgressiveRaytracer struct {
	raytracer *Raytracer
	config    ProgressiveConfig
}

// NewProgressiveRaytracer creates a new progressive raytracer
func NewProgressiveRaytracer(rt *Raytracer, config ProgressiveConfig) *ProgressiveRaytracer {
	return &ProgressiveRaytracer{raytracer: rt, config: config}
}

// Schedule returns the pass schedule for the scene's samples per pixel
func (pr *ProgressiveRaytracer) Schedule() []int {
	return pr.config.Schedule(pr.raytracer.scene.SamplingConfig.SamplesPerPixel)
}

// Render runs every pass and returns the accumulated film. onPass, when
// set, runs on the calling goroutine after each pass.
func (pr *ProgressiveRaytracer) Render(ctx context.Context, onPass func(PassResult)) (*Film, RenderStats, error) {
	rt := pr.raytracer
	if err := rt.validate(); err != nil {
		return nil, RenderStats{}, err
	}
	sc := rt.scene.SamplingConfig
	film := NewFilm(sc.Width, sc.Height)
	schedule := pr.Schedule()

	rt.logger.Info("progressive render started",
		zap.Int("width", sc.Width),
		zap.Int("height", sc.Height),
		zap.Int("spp", sc.SamplesPerPixel),
		zap.Ints("schedule", schedule),
		zap.Int("workers", NewWorkerPool(rt.config.Workers).NumWorkers()),
		zap.Int("ltc_lights", len(rt.scene.LTCLights)),
		zap.Int("primitives", rt.scene.PrimitiveCount()))
	start := time.Now()

	for i, samples := range schedule {
		pass := i + 1
		if err := ctx.Err(); err != nil {
			rt.logger.Info("render cancelled", zap.Int("pass", pass))
			return nil, RenderStats{}, err
		}

		passStart := time.Now()
		if _, err := rt.RenderPass(ctx, film, pass, samples); err != nil {
			return nil, RenderStats{}, err
		}
		stats := film.Stats()

		rt.logger.Info("pass finished",
			zap.Int("pass", pass),
			zap.Int("passes", len(schedule)),
			zap.Duration("elapsed", time.Since(passStart)),
			zap.Float64("avg_spp", stats.AverageSamples))

		if onPass != nil {
			onPass(PassResult{
				PassNumber:  pass,
				TotalPasses: len(schedule),
				Image:       film.ToImage(),
				Stats:       stats,
				Elapsed:     time.Since(start),
				IsLast:      pass == len(schedule),
			})
		}
	}

	stats := film.Stats()
	rt.logger.Info("render finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("samples", stats.TotalSamples),
		zap.Float64("avg_spp", stats.AverageSamples))
	return film, stats, nil
}

// RenderProgressive runs Render on its own goroutine and sends each pass as
// it finishes. Both channels are closed when rendering stops; the error
// channel carries at most one error. The caller should drain the pass
// channel before reading the error.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)

		_, _, err := pr.Render(ctx, func(result PassResult) {
			select {
			case passChan <- result:
			case <-ctx.Done():
			}
		})
		if err != nil {
			errChan <- err
		}
	}()

	return passChan, errChan
}
