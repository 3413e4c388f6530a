package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-ltc-raytracer/pkg/integrator"
	"github.com/df07/go-ltc-raytracer/pkg/renderer"
	"github.com/df07/go-ltc-raytracer/pkg/scene"
)

// TileUpdate represents a single finished tile sent via SSE
type TileUpdate struct {
	TileX       int    `json:"tileX"` // Pixel offset of the tile's top-left corner
	TileY       int    `json:"tileY"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageData   string `json:"imageData"`  // Base64 encoded PNG of just this tile
	PassNumber  int    `json:"passNumber"` // Pass the tile was rendered in (1-based)
	TotalPasses int    `json:"totalPasses"`
	TileNumber  int    `json:"tileNumber"` // Completion order within the pass (1-based)
	TotalTiles  int    `json:"totalTiles"`
}

// PassUpdate is sent after every pass with the running average image
type PassUpdate struct {
	PassNumber  int    `json:"passNumber"`
	TotalPasses int    `json:"totalPasses"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of the whole image
	Stats       Stats  `json:"stats"`     // Cumulative over all passes so far
	ElapsedMs   int64  `json:"elapsedMs"`
	IsLast      bool   `json:"isLast"`
}

// CompleteUpdate is the final event of a successful render
type CompleteUpdate struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG of the whole image
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "tile", "pass", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// handleRender renders a scene progressively and streams tiles and passes
// as they finish via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	// All writes to w happen on one goroutine; the handler waits for it
	events := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, events)
	}()
	defer func() {
		close(events)
		<-writerDone
	}()

	req, sceneObj, err := s.parseRenderRequest(r)
	if err != nil {
		s.sendEvent(ctx, events, "error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	console := make(chan ConsoleMessage, 50)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(ctx, console, events)
	}()
	defer func() {
		close(console)
		<-consoleDone
	}()

	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	logger := NewWebLogger(s.logger, renderID, console)

	rt, pr, err := s.setupRaytracer(req, sceneObj, logger)
	if err != nil {
		s.sendEvent(ctx, events, "error", err.Error())
		return
	}

	totalPasses := len(pr.Schedule())
	totalTiles := tileCount(req.Width, DefaultTileSize) * tileCount(req.Height, DefaultTileSize)
	var completed atomic.Int64
	rt.OnTile(func(result renderer.TileResult, film *renderer.Film) {
		// Passes run one after another, so earlier passes are fully counted
		number := int(completed.Add(1)) - (result.Pass-1)*totalTiles
		s.sendTile(ctx, events, result, film, TileUpdate{
			PassNumber:  result.Pass,
			TotalPasses: totalPasses,
			TileNumber:  number,
			TotalTiles:  totalTiles,
		})
	})

	var last *PassUpdate
	passChan, errChan := pr.RenderProgressive(ctx)
	for result := range passChan {
		imageData, err := imageToBase64PNG(result.Image)
		if err != nil {
			s.logger.Warn("encoding pass", zap.Int("pass", result.PassNumber), zap.Error(err))
			continue
		}
		update := PassUpdate{
			PassNumber:  result.PassNumber,
			TotalPasses: result.TotalPasses,
			ImageData:   imageData,
			Stats:       newStats(result.Stats, sceneObj),
			ElapsedMs:   result.Elapsed.Milliseconds(),
			IsLast:      result.IsLast,
		}
		s.sendJSON(ctx, events, "pass", update)
		last = &update
	}
	if err := <-errChan; err != nil {
		s.sendEvent(ctx, events, "error", fmt.Sprintf("Rendering failed: %v", err))
		return
	}
	if last == nil || !last.IsLast {
		s.sendEvent(ctx, events, "error", "Rendering failed: final pass missing")
		return
	}

	s.sendJSON(ctx, events, "complete", CompleteUpdate{
		ImageData: last.ImageData,
		Stats:     last.Stats,
		ElapsedMs: last.ElapsedMs,
	})
}

func newStats(stats renderer.RenderStats, sceneObj *scene.Scene) Stats {
	return Stats{
		TotalPixels:    stats.TotalPixels,
		TotalSamples:   int64(stats.TotalSamples),
		AverageSamples: stats.AverageSamples,
		MaxSamples:     stats.MaxSamples,
		MinSamples:     stats.MinSamples,
		PrimitiveCount: sceneObj.PrimitiveCount(),
		LTCLights:      len(sceneObj.LTCLights),
	}
}

// setupRaytracer creates the integrator and the progressive raytracer for a
// request. Tile callbacks are registered on the returned base raytracer.
func (s *Server) setupRaytracer(req *RenderRequest, sceneObj *scene.Scene, logger *zap.Logger) (*renderer.Raytracer, *renderer.ProgressiveRaytracer, error) {
	renderCfg := s.cfg.Render
	renderCfg.Integrator = req.Integrator
	renderCfg.HideEmitters = req.HideEmitters

	in, err := integrator.New(renderCfg)
	if err != nil {
		return nil, nil, err
	}
	rt := renderer.NewRaytracer(sceneObj, in, renderer.Config{
		TileSize: DefaultTileSize,
		Workers:  renderCfg.Workers,
		Seed:     renderCfg.Seed,
	}, logger)
	pr := renderer.NewProgressiveRaytracer(rt, renderer.ProgressiveConfig{
		InitialSamples: renderCfg.InitialSamples,
		MaxPasses:      req.Passes,
	})
	return rt, pr, nil
}

func tileCount(size, tileSize int) int {
	return (size + tileSize - 1) / tileSize
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents writes events until the channel closes. After the client
// disconnects the remaining events are drained and discarded.
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, events <-chan SSEEvent) {
	flusher, _ := w.(http.Flusher)
	for event := range events {
		if ctx.Err() != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// streamConsoleMessages forwards log messages as console events
func (s *Server) streamConsoleMessages(ctx context.Context, console <-chan ConsoleMessage, events chan<- SSEEvent) {
	for msg := range console {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		select {
		case events <- SSEEvent{Type: "console", Data: string(data)}:
		case <-ctx.Done():
		default:
			// Skip rather than stall the render
		}
	}
}

// sendTile encodes one finished tile into update and queues it
func (s *Server) sendTile(ctx context.Context, events chan<- SSEEvent, result renderer.TileResult, film *renderer.Film, update TileUpdate) {
	if ctx.Err() != nil {
		return
	}
	tileData, err := imageToBase64PNG(film.TileImage(result.Bounds))
	if err != nil {
		s.logger.Warn("encoding tile", zap.Int("tile", result.TileID), zap.Error(err))
		return
	}
	update.TileX = result.Bounds.Min.X
	update.TileY = result.Bounds.Min.Y
	update.Width = result.Bounds.Dx()
	update.Height = result.Bounds.Dy()
	update.ImageData = tileData
	s.sendJSON(ctx, events, "tile", update)
}

func (s *Server) sendJSON(ctx context.Context, events chan<- SSEEvent, eventType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("marshaling event", zap.String("type", eventType), zap.Error(err))
		return
	}
	s.sendEvent(ctx, events, eventType, string(data))
}

// sendEvent queues an event unless the client has gone away
func (s *Server) sendEvent(ctx context.Context, events chan<- SSEEvent, eventType, data string) {
	select {
	case events <- SSEEvent{Type: eventType, Data: data}:
	case <-ctx.Done():
	}
}
