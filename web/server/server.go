package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-ltc-raytracer/pkg/config"
	"github.com/df07/go-ltc-raytracer/pkg/scene"
)

// Request limits shared by the render and inspect endpoints
const (
	DefaultTileSize = 32
	minImageSize    = 16
	maxImageSize    = 2000
	maxSamples      = 4096
	maxPasses       = 64
)

// Server serves renders and light inspection over HTTP
type Server struct {
	port      int
	cfg       config.Config // Defaults for every request
	sceneDir  string
	staticDir string
	logger    *zap.Logger
}

// Options configure a Server
type Options struct {
	Port      int
	Config    *config.Config
	SceneDir  string // Directory of .yaml scene descriptions
	StaticDir string // Optional static frontend
	Logger    *zap.Logger
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	cfg := config.Default()
	if opts.Config != nil {
		cfg = opts.Config
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		port:      opts.Port,
		cfg:       *cfg,
		sceneDir:  opts.SceneDir,
		staticDir: opts.StaticDir,
		logger:    logger,
	}
}

// RenderRequest represents a render or inspect request from the client
type RenderRequest struct {
	Scene           string `json:"scene"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	SamplesPerPixel int    `json:"samplesPerPixel"`
	Passes          int    `json:"passes"`
	Integrator      string `json:"integrator"`
	HideEmitters    bool   `json:"hideEmitters"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int64   `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MaxSamples     int     `json:"maxSamples"`
	MinSamples     int     `json:"minSamples"`
	PrimitiveCount int     `json:"primitiveCount"`
	LTCLights      int     `json:"ltcLights"`
}

// Handler returns the routes served by s
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.staticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.staticDir)))
	}
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("GET /api/render", s.handleRender)
	mux.HandleFunc("GET /api/inspect", s.handleInspect)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server started", zap.String("addr", "http://localhost"+srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		s.logger.Info("web server stopped")
		return nil
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists builtin scenes and descriptions in the scene directory
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	groups, err := scene.ListScenes(s.sceneDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("scene")
	if name == "" {
		name = s.cfg.Scene.Name
	}

	sceneObj, err := s.loadScene(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scene": name,
		"defaults": map[string]any{
			"width":           sceneObj.SamplingConfig.Width,
			"height":          sceneObj.SamplingConfig.Height,
			"samplesPerPixel": sceneObj.SamplingConfig.SamplesPerPixel,
			"passes":          s.cfg.Render.Passes,
			"integrator":      s.cfg.Render.Integrator,
		},
		"integrators": config.Integrators,
		"limits": map[string]any{
			"width":           map[string]int{"min": minImageSize, "max": maxImageSize},
			"height":          map[string]int{"min": minImageSize, "max": maxImageSize},
			"samplesPerPixel": map[string]int{"min": 1, "max": maxSamples},
			"passes":          map[string]int{"min": 1, "max": maxPasses},
		},
	})
}

// loadScene resolves a builtin name, a scene id from the listing, or a
// description in the scene directory
func (s *Server) loadScene(name string) (*scene.Scene, error) {
	groups, err := scene.ListScenes(s.sceneDir)
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		for _, info := range group.Scenes {
			if info.ID != name && info.ID != "file:"+name {
				continue
			}
			if info.Type == "file" {
				return scene.LoadDescription(info.FilePath, s.logger)
			}
			return scene.Builtin(info.ID)
		}
	}
	return nil, fmt.Errorf("unknown scene %q", name)
}

// parseRenderRequest parses request parameters over the scene's defaults
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, *scene.Scene, error) {
	query := r.URL.Query()

	req := &RenderRequest{
		Scene:        query.Get("scene"),
		Integrator:   query.Get("integrator"),
		HideEmitters: query.Get("hideEmitters") == "true",
	}
	if req.Scene == "" {
		req.Scene = s.cfg.Scene.Name
	}
	if req.Integrator == "" {
		req.Integrator = s.cfg.Render.Integrator
	}

	sceneObj, err := s.loadScene(req.Scene)
	if err != nil {
		return nil, nil, err
	}

	if req.Width, err = parseIntParam(query, "width", sceneObj.SamplingConfig.Width, minImageSize, maxImageSize); err != nil {
		return nil, nil, err
	}
	if req.Height, err = parseIntParam(query, "height", sceneObj.SamplingConfig.Height, minImageSize, maxImageSize); err != nil {
		return nil, nil, err
	}
	if req.SamplesPerPixel, err = parseIntParam(query, "samplesPerPixel", sceneObj.SamplingConfig.SamplesPerPixel, 1, maxSamples); err != nil {
		return nil, nil, err
	}
	if req.Passes, err = parseIntParam(query, "passes", s.cfg.Render.Passes, 1, maxPasses); err != nil {
		return nil, nil, err
	}

	sceneObj.SamplingConfig = scene.SamplingConfig{
		Width:           req.Width,
		Height:          req.Height,
		SamplesPerPixel: req.SamplesPerPixel,
	}
	sceneObj.LightSampling = scene.LightSampling(s.cfg.Render.LightSampling)
	if sceneObj.Resolver, err = scene.ResolverFromConfig(s.cfg.LTC); err != nil {
		return nil, nil, err
	}
	if err := sceneObj.Preprocess(); err != nil {
		return nil, nil, err
	}

	if req.Width*req.Height > 800*600 && req.SamplesPerPixel > 256 {
		s.logger.Warn("large render requested",
			zap.Int("width", req.Width),
			zap.Int("height", req.Height),
			zap.Int("spp", req.SamplesPerPixel))
	}
	return req, sceneObj, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
	}
	return parsed, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
