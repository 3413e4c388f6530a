package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/df07/go-ltc-raytracer/pkg/config"
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/integrator"
	"github.com/df07/go-ltc-raytracer/pkg/loaders"
	"github.com/df07/go-ltc-raytracer/pkg/logging"
	"github.com/df07/go-ltc-raytracer/pkg/ltc"
	"github.com/df07/go-ltc-raytracer/pkg/renderer"
	"github.com/df07/go-ltc-raytracer/pkg/scene"
	"github.com/df07/go-ltc-raytracer/web/server"
)

// app carries the state shared by all subcommands
type app struct {
	configPath string
	logLevel   string
	logFile    string

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ltc-raytracer",
		Short:         "Render triangular area lights with linearly transformed cosines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFile, "log-file", "", "Also write JSON logs to this file")

	root.AddCommand(newRenderCmd(a), newEvalCmd(a), newCompareCmd(a), newScenesCmd(a), newTablesCmd(a), newServeCmd(a))
	return root
}

// setup loads the configuration and builds the logger
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFile != "" {
		cfg.Logging.File = a.logFile
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// renderFlags are the CLI overrides of the render and scene sections
type renderFlags struct {
	scene        string
	width        int
	height       int
	spp          int
	passes       int
	integrator   string
	output       string
	format       string
	hideEmitters bool
	lightSampler string
	workers      int
	seed         int64
}

func (f *renderFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.scene, "scene", "", "Builtin scene name or path to a .yaml description")
	flags.IntVar(&f.width, "width", 0, "Image width")
	flags.IntVar(&f.height, "height", 0, "Image height")
	flags.IntVar(&f.spp, "spp", 0, "Camera samples per pixel")
	flags.IntVar(&f.passes, "passes", 0, "Progressive passes the samples are split over")
	flags.StringVar(&f.integrator, "integrator", "", "One of "+strings.Join(config.Integrators, ", "))
	flags.StringVarP(&f.output, "output", "o", "", "Output image path")
	flags.StringVar(&f.format, "format", "", "Output format: png, bmp or tiff (default from extension)")
	flags.BoolVar(&f.hideEmitters, "hide-emitters", false, "Do not show emitters seen directly by the camera")
	flags.StringVar(&f.lightSampler, "light-sampling", "", "Light selection of the sampled integrators: "+strings.Join(config.LightSamplings, " or "))
	flags.IntVar(&f.workers, "workers", 0, "Parallel tiles (0 = one per CPU)")
	flags.Int64Var(&f.seed, "seed", 0, "Base random seed")
}

// apply copies the flags the user set over the loaded configuration
func (f *renderFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("scene") {
		if isDescriptionPath(f.scene) {
			cfg.Scene = config.SceneConfig{File: f.scene}
		} else {
			cfg.Scene = config.SceneConfig{Name: f.scene}
		}
	}
	if changed("width") {
		cfg.Render.Width = f.width
	}
	if changed("height") {
		cfg.Render.Height = f.height
	}
	if changed("spp") {
		cfg.Render.SamplesPerPixel = f.spp
	}
	if changed("passes") {
		cfg.Render.Passes = f.passes
	}
	if changed("integrator") {
		cfg.Render.Integrator = f.integrator
	}
	if changed("output") {
		cfg.Render.Output = f.output
		if !changed("format") {
			cfg.Render.Format = renderer.FormatFromPath(f.output)
		}
	}
	if changed("format") {
		cfg.Render.Format = f.format
	}
	if changed("hide-emitters") {
		cfg.Render.HideEmitters = f.hideEmitters
	}
	if changed("light-sampling") {
		cfg.Render.LightSampling = f.lightSampler
	}
	if changed("workers") {
		cfg.Render.Workers = f.workers
	}
	if changed("seed") {
		cfg.Render.Seed = f.seed
	}
}

func isDescriptionPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// createScene builds the scene named by a builtin name or description path
func createScene(sceneType string, logger *zap.Logger) (*scene.Scene, error) {
	if isDescriptionPath(sceneType) {
		return scene.LoadDescription(sceneType, logger)
	}
	if sceneType == "" {
		return nil, fmt.Errorf("no scene given")
	}
	// Bare names also match descriptions in the scenes directory
	if path := filepath.Join("scenes", sceneType+".yaml"); fileExists(path) {
		return scene.LoadDescription(path, logger)
	}
	return scene.Builtin(sceneType)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// prepareScene loads the configured scene, applies render overrides and
// preprocesses it
func prepareScene(cfg *config.Config, logger *zap.Logger) (*scene.Scene, error) {
	name := cfg.Scene.Name
	if cfg.Scene.File != "" {
		name = cfg.Scene.File
	}
	s, err := createScene(name, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Render.Width > 0 {
		s.SamplingConfig.Width = cfg.Render.Width
	}
	if cfg.Render.Height > 0 {
		s.SamplingConfig.Height = cfg.Render.Height
	}
	if cfg.Render.SamplesPerPixel > 0 {
		s.SamplingConfig.SamplesPerPixel = cfg.Render.SamplesPerPixel
	}

	s.LightSampling = scene.LightSampling(cfg.Render.LightSampling)
	s.Resolver, err = scene.ResolverFromConfig(cfg.LTC)
	if err != nil {
		return nil, err
	}
	if err := s.Preprocess(); err != nil {
		return nil, err
	}
	return s, nil
}

// renderFilm renders s with the named integrator, accumulating the
// configured passes into one film
func renderFilm(ctx context.Context, s *scene.Scene, render config.RenderConfig, logger *zap.Logger) (*renderer.Film, renderer.RenderStats, error) {
	in, err := integrator.New(render)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}
	rt := renderer.NewRaytracer(s, in, renderer.Config{
		TileSize: render.TileSize,
		Workers:  render.Workers,
		Seed:     render.Seed,
	}, logger.With(zap.String("integrator", render.Integrator)))
	pr := renderer.NewProgressiveRaytracer(rt, renderer.ProgressiveConfig{
		InitialSamples: render.InitialSamples,
		MaxPasses:      render.Passes,
	})
	return pr.Render(ctx, nil)
}

func newRenderCmd(a *app) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			s, err := prepareScene(cfg, a.logger)
			if err != nil {
				return err
			}

			start := time.Now()
			film, stats, err := renderFilm(cmd.Context(), s, cfg.Render, a.logger)
			if err != nil {
				return err
			}

			img := film.ToImage()
			if err := renderer.SaveImage(cfg.Render.Output, cfg.Render.Format, img); err != nil {
				return err
			}

			a.logger.Info("image saved",
				zap.String("path", cfg.Render.Output),
				zap.Duration("elapsed", time.Since(start)),
				zap.Float64("avg_spp", stats.AverageSamples),
				zap.Float64("avg_luminance", renderer.CalculateAverageLuminance(img)))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newCompareCmd(a *app) *cobra.Command {
	f := &renderFlags{}
	var against string
	var linear bool
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Render a scene with two integrators and report image error metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			s, err := prepareScene(cfg, a.logger)
			if err != nil {
				return err
			}

			referenceCfg := cfg.Render
			referenceCfg.Integrator = against
			referenceFilm, _, err := renderFilm(cmd.Context(), s, referenceCfg, a.logger)
			if err != nil {
				return fmt.Errorf("reference render: %w", err)
			}
			film, _, err := renderFilm(cmd.Context(), s, cfg.Render, a.logger)
			if err != nil {
				return err
			}

			metrics, err := renderer.Compare(referenceFilm, film, !linear)
			if err != nil {
				return err
			}
			printMetrics(cmd.OutOrStdout(), cfg.Render.Integrator, against, metrics)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&against, "against", config.IntegratorReference, "Integrator used as ground truth")
	cmd.Flags().BoolVar(&linear, "linear", false, "Compare linear radiance instead of display values")
	return cmd
}

func printMetrics(w io.Writer, name, against string, m renderer.Metrics) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s vs %s\n", name, against)
	fmt.Fprintf(tw, "MSE\t%.6g\n", m.MSE)
	fmt.Fprintf(tw, "MAE\t%.6g\n", m.MAE)
	fmt.Fprintf(tw, "bias\t%.6g\n", m.Bias)
	fmt.Fprintf(tw, "rel. abs\t%.6g\n", m.RelAbs)
	fmt.Fprintf(tw, "rel. squared\t%.6g\n", m.RelSq)
	tw.Flush()
}

// evalFlags describe a single shading query
type evalFlags struct {
	point     []float64
	normal    []float64
	view      []float64
	roughness float64
	vertices  [3][]float64
}

func newEvalCmd(a *app) *cobra.Command {
	f := &evalFlags{}
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate one triangle light at one shading point",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := f.query(a.cfg.LTC)
			if err != nil {
				return err
			}
			trace := ltc.EvaluateTrace(query)
			printTrace(cmd.OutOrStdout(), trace)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64SliceVar(&f.point, "point", []float64{0, 0, 0}, "Shading point x,y,z")
	flags.Float64SliceVar(&f.normal, "normal", []float64{0, 0, 1}, "Surface normal x,y,z")
	flags.Float64SliceVar(&f.view, "view", []float64{0, 0, 1}, "Direction towards the viewer x,y,z")
	flags.Float64Var(&f.roughness, "roughness", 0.5, "GGX roughness in [0,1]")
	flags.Float64SliceVar(&f.vertices[0], "v0", []float64{0, 0, 1}, "Light vertex 0")
	flags.Float64SliceVar(&f.vertices[1], "v1", []float64{0, 1, 1}, "Light vertex 1")
	flags.Float64SliceVar(&f.vertices[2], "v2", []float64{1, 0, 1}, "Light vertex 2")
	return cmd
}

func toVec3(name string, v []float64) (core.Vec3, error) {
	if len(v) != 3 {
		return core.Vec3{}, fmt.Errorf("--%s needs 3 components, got %d", name, len(v))
	}
	return core.NewVec3(v[0], v[1], v[2]), nil
}

// query builds the LTC query described by the flags
func (f *evalFlags) query(cfg config.LTCConfig) (ltc.Query, error) {
	var vecs [6]core.Vec3
	names := []string{"point", "normal", "view", "v0", "v1", "v2"}
	for i, raw := range [][]float64{f.point, f.normal, f.view, f.vertices[0], f.vertices[1], f.vertices[2]} {
		v, err := toVec3(names[i], raw)
		if err != nil {
			return ltc.Query{}, err
		}
		vecs[i] = v
	}
	if vecs[1].IsZero() {
		return ltc.Query{}, fmt.Errorf("--normal must not be zero")
	}

	resolver, err := scene.ResolverFromConfig(cfg)
	if err != nil {
		return ltc.Query{}, err
	}

	frame := core.NewFrameFromNormal(vecs[1].Normalize())
	wiLocal := frame.ToLocal(vecs[2].Normalize())
	transform := resolver.Resolve(wiLocal, f.roughness)
	light := ltc.NewTriangle(vecs[3], vecs[4], vecs[5])
	return ltc.NewQuery(vecs[0], frame, wiLocal, transform).WithLight(light), nil
}

func printTrace(w io.Writer, trace ltc.Trace) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "diffuse clip\t%s\t%d vertices\n", trace.Diffuse.Case, len(trace.Diffuse.Boundary()))
	fmt.Fprintf(tw, "specular clip\t%s\t%d vertices\n", trace.Specular.Case, len(trace.Specular.Boundary()))
	fmt.Fprintf(tw, "diffuse\t%.8f\n", trace.Result.Diffuse)
	fmt.Fprintf(tw, "specular\t%.8f\n", trace.Result.Specular)
	tw.Flush()
}

func newScenesCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "List builtin scenes and scene descriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := scene.ListScenes(dir)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, group := range groups {
				fmt.Fprintf(tw, "%s\n", group.Name)
				for _, info := range group.Scenes {
					id := info.ID
					if info.FilePath != "" {
						id = info.FilePath
					}
					fmt.Fprintf(tw, "  %s\t%s\t%s\n", id, info.DisplayName, info.Description)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "scenes", "Directory of .yaml scene descriptions")
	return cmd
}

// newTablesCmd writes the configured LTC tables as float32 binary files, so
// image tables can be converted once and loaded without quantization
func newTablesCmd(a *app) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Write the configured LTC tables in the binary LTC1 format",
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := scene.TablesFromConfig(a.cfg.LTC)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", outDir, err)
			}
			for i, table := range tables {
				path := filepath.Join(outDir, fmt.Sprintf("m%d.ltc", i+1))
				if err := loaders.WriteLTCTable(path, table); err != nil {
					return err
				}
				a.logger.Info("table written",
					zap.String("path", path),
					zap.Int("width", table.Width()),
					zap.Int("height", table.Height()))
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "ltc", "Directory for m1.ltc, m2.ltc and m3.ltc")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	opts := server.Options{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve streaming renders and light inspection over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			opts.Config = a.cfg
			opts.Logger = a.logger
			return server.NewServer(opts).Start(cmd.Context())
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&opts.Port, "port", 8080, "Port to serve on")
	flags.StringVar(&opts.SceneDir, "scene-dir", "scenes", "Directory of .yaml scene descriptions")
	flags.StringVar(&opts.StaticDir, "static", "", "Directory of static frontend files")
	return cmd
}
