// Package config handles renderer configuration loading and validation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-ltc-raytracer/pkg/logging"
)

// ErrInvalid marks every configuration validation failure
var ErrInvalid = errors.New("invalid configuration")

// Integrator names accepted by render.integrator
const (
	IntegratorLTC       = "ltc"
	IntegratorSampled   = "ltc-sampled"
	IntegratorRIS       = "ltc-ris"
	IntegratorReference = "reference"
)

// Integrators lists the valid integrator names
var Integrators = []string{IntegratorLTC, IntegratorSampled, IntegratorRIS, IntegratorReference}

// Formats lists the valid output image formats
var Formats = []string{"png", "bmp", "tiff"}

// LightSamplings lists the valid render.light_sampling strategies
var LightSamplings = []string{"power", "uniform"}

// Config holds all renderer settings
type Config struct {
	Render  RenderConfig   `yaml:"render"`
	Scene   SceneConfig    `yaml:"scene"`
	LTC     LTCConfig      `yaml:"ltc"`
	Logging logging.Config `yaml:"logging"`
}

// RenderConfig holds image and sampling settings
type RenderConfig struct {
	Width           int             `yaml:"width"`             // 0 keeps the scene's size
	Height          int             `yaml:"height"`            // 0 keeps the scene's size
	SamplesPerPixel int             `yaml:"samples_per_pixel"` // 0 keeps the scene's count
	Passes          int             `yaml:"passes"`            // Progressive passes the samples are split over
	InitialSamples  int             `yaml:"initial_samples"`   // Samples per pixel in the first pass
	TileSize        int             `yaml:"tile_size"`
	Workers         int             `yaml:"workers"` // 0 means one per CPU
	Integrator      string          `yaml:"integrator"`
	HideEmitters    bool            `yaml:"hide_emitters"`
	LightSampling   string          `yaml:"light_sampling"`
	Seed            int64           `yaml:"seed"`
	Output          string          `yaml:"output"`
	Format          string          `yaml:"format"`
	RIS             RISConfig       `yaml:"ris"`
	Reference       ReferenceConfig `yaml:"reference"`
}

// RISConfig holds resampled importance sampling settings
type RISConfig struct {
	NumProposals int `yaml:"num_proposals"`
	PDFSamples   int `yaml:"pdf_samples"` // Light samples per target estimate
}

// ReferenceConfig holds Monte Carlo reference settings
type ReferenceConfig struct {
	Samples int `yaml:"samples"` // Per light, per camera sample
}

// SceneConfig selects a builtin scene or a scene description file
type SceneConfig struct {
	Name string `yaml:"name"`
	File string `yaml:"file"` // Takes priority over Name
}

// LTCConfig locates the three matrix row tables
type LTCConfig struct {
	Tables      []string `yaml:"tables"`
	TableScale  float64  `yaml:"table_scale"`
	TableBias   float64  `yaml:"table_bias"`
	Approximate bool     `yaml:"approximate"`  // Use the built-in analytic tables
	Resolution  int      `yaml:"resolution"`   // Grid size of the analytic tables
	ColumnMajor bool     `yaml:"column_major"` // Tables hold columns of M, not rows
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			TileSize:       32,
			Passes:         4,
			InitialSamples: 1,
			Integrator:     IntegratorLTC,
			LightSampling:  "power",
			Seed:           42,
			Output:         "output/render.png",
			Format:         "png",
			RIS:            RISConfig{NumProposals: 32, PDFSamples: 4},
			Reference:      ReferenceConfig{Samples: 64},
		},
		Scene: SceneConfig{Name: "cornell"},
		LTC: LTCConfig{
			TableScale:  1,
			Approximate: true,
			Resolution:  64,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := decode(cfg, data); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// decode merges YAML into cfg, rejecting unknown keys
func decode(cfg *Config, data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate reports every problem at once; each wraps ErrInvalid
func (c *Config) Validate() error {
	var errs error
	invalid := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	r := c.Render
	if r.Width < 0 || r.Height < 0 {
		invalid("render size %dx%d must not be negative", r.Width, r.Height)
	}
	if r.SamplesPerPixel < 0 {
		invalid("render.samples_per_pixel must not be negative, got %d", r.SamplesPerPixel)
	}
	if r.Passes <= 0 {
		invalid("render.passes must be positive, got %d", r.Passes)
	}
	if r.InitialSamples <= 0 {
		invalid("render.initial_samples must be positive, got %d", r.InitialSamples)
	}
	if r.TileSize <= 0 {
		invalid("render.tile_size must be positive, got %d", r.TileSize)
	}
	if r.Workers < 0 {
		invalid("render.workers must not be negative, got %d", r.Workers)
	}
	if !contains(Integrators, r.Integrator) {
		invalid("render.integrator %q is not one of %v", r.Integrator, Integrators)
	}
	if !contains(LightSamplings, r.LightSampling) {
		invalid("render.light_sampling %q is not one of %v", r.LightSampling, LightSamplings)
	}
	if !contains(Formats, r.Format) {
		invalid("render.format %q is not one of %v", r.Format, Formats)
	}
	if r.Integrator == IntegratorRIS && r.RIS.NumProposals <= 0 {
		invalid("render.ris.num_proposals must be positive, got %d", r.RIS.NumProposals)
	}
	if r.Integrator == IntegratorRIS && r.RIS.PDFSamples <= 0 {
		invalid("render.ris.pdf_samples must be positive, got %d", r.RIS.PDFSamples)
	}
	if r.Integrator == IntegratorReference && r.Reference.Samples <= 0 {
		invalid("render.reference.samples must be positive, got %d", r.Reference.Samples)
	}

	if c.Scene.Name == "" && c.Scene.File == "" {
		invalid("scene needs a name or a file")
	}

	l := c.LTC
	if l.Approximate {
		if l.Resolution < 2 {
			invalid("ltc.resolution must be at least 2, got %d", l.Resolution)
		}
	} else if len(l.Tables) != 3 {
		invalid("ltc.tables needs 3 paths, got %d", len(l.Tables))
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		invalid("logging: %v", err)
	}

	return errs
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
