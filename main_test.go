package main

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/df07/go-ltc-raytracer/pkg/config"
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/loaders"
	"github.com/df07/go-ltc-raytracer/pkg/ltc"
	"github.com/df07/go-ltc-raytracer/pkg/scene"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		// Built-in scenes
		{"default scene", "default", false},
		{"cornell scene", "cornell", false},
		{"textured scene", "textured", false},

		// Scene descriptions
		{"description path", "scenes/panel-room.yaml", false},
		{"description by name", "panel-room", false},

		// Invalid scenes
		{"unknown scene", "nonexistent", true},
		{"missing description", "scenes/nonexistent.yaml", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, err := createScene(tt.sceneType, nil)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if scene != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s'", tt.sceneType)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if scene.SamplingConfig.Width <= 0 || scene.SamplingConfig.Height <= 0 {
				t.Errorf("Scene size should be positive, got %dx%d",
					scene.SamplingConfig.Width, scene.SamplingConfig.Height)
			}
			if len(scene.Lights) == 0 {
				t.Errorf("Scene %s has no lights", tt.sceneType)
			}
		})
	}
}

func TestPrepareSceneOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Scene = config.SceneConfig{Name: "cornell"}
	cfg.Render.Width = 20
	cfg.Render.SamplesPerPixel = 2
	cfg.Render.LightSampling = "uniform"

	s, err := prepareScene(cfg, nil)
	if err != nil {
		t.Fatalf("prepareScene: %v", err)
	}
	if s.SamplingConfig.Width != 20 || s.SamplingConfig.Height != 400 {
		t.Errorf("Expected 20x400, got %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
	}
	if s.SamplingConfig.SamplesPerPixel != 2 {
		t.Errorf("Expected 2 spp, got %d", s.SamplingConfig.SamplesPerPixel)
	}
	if s.Camera == nil || s.Resolver == nil {
		t.Error("Expected a preprocessed scene")
	}
	if s.LightSampling != scene.LightSamplingUniform || s.LightSampler.LightProbability(0, core.Vec3{}, core.Vec3{}) != 0.5 {
		t.Errorf("Expected uniform selection over the 2 ceiling triangles, got %q", s.LightSampling)
	}
}

func TestPrepareSceneFilePriority(t *testing.T) {
	cfg := config.Default()
	cfg.Scene = config.SceneConfig{Name: "cornell", File: "scenes/panel-room.yaml"}

	s, err := prepareScene(cfg, nil)
	if err != nil {
		t.Fatalf("prepareScene: %v", err)
	}
	if s.SamplingConfig.Width != 480 {
		t.Errorf("Expected the description's width 480, got %d", s.SamplingConfig.Width)
	}
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestRenderCommand(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out", "cornell.png")
	runCommand(t, "render",
		"--scene", "cornell",
		"--width", "16", "--height", "12", "--spp", "3", "--passes", "3",
		"--workers", "2",
		"--output", output)

	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("Expected an output image: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Output is not a png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Errorf("Expected 16x12 image, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderCommandRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown integrator", []string{"render", "--integrator", "bdpt"}},
		{"negative width", []string{"render", "--width", "-4"}},
		{"zero passes", []string{"render", "--passes", "0"}},
		{"unknown scene", []string{"render", "--scene", "nonexistent"}},
		{"unknown format", []string{"render", "--format", "jpeg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetArgs(append([]string{"--log-level", "error"}, tt.args...))
			if err := cmd.Execute(); err == nil {
				t.Errorf("Expected an error for %v", tt.args)
			}
		})
	}
}

func TestRenderFlagsApply(t *testing.T) {
	f := &renderFlags{}
	cmd := &cobra.Command{Use: "render"}
	f.register(cmd)

	if err := cmd.Flags().Parse([]string{"--scene", "room.yaml", "--output", "out/x.tiff", "--seed", "7",
		"--passes", "2", "--light-sampling", "uniform"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg := config.Default()
	f.apply(cmd, cfg)

	if cfg.Scene.File != "room.yaml" || cfg.Scene.Name != "" {
		t.Errorf("Expected a description file, got %+v", cfg.Scene)
	}
	if cfg.Render.Format != "tiff" {
		t.Errorf("Expected format from extension, got %q", cfg.Render.Format)
	}
	if cfg.Render.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", cfg.Render.Seed)
	}
	if cfg.Render.Passes != 2 || cfg.Render.LightSampling != "uniform" {
		t.Errorf("Expected 2 passes with uniform light sampling, got %d and %q", cfg.Render.Passes, cfg.Render.LightSampling)
	}
	if cfg.Render.Integrator != config.IntegratorLTC {
		t.Errorf("Unset flags should keep defaults, got integrator %q", cfg.Render.Integrator)
	}
}

func TestEvalCommand(t *testing.T) {
	out := runCommand(t, "eval", "--roughness", "0.3")

	for _, want := range []string{"diffuse clip", "all-above", "specular"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestEvalCommandBelowHorizon(t *testing.T) {
	out := runCommand(t, "eval",
		"--v0", "0,0,-1", "--v1", "1,0,-1", "--v2", "0,1,-1")

	if !strings.Contains(out, "all-below") && !strings.Contains(out, "facing-away") {
		t.Errorf("Expected an invisible light:\n%s", out)
	}
}

func TestEvalCommandBadVector(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "error", "eval", "--point", "1,2"})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected an error for a two component point")
	}
}

func TestCompareCommand(t *testing.T) {
	out := runCommand(t, "compare",
		"--scene", "cornell",
		"--width", "8", "--height", "8", "--spp", "1",
		"--against", config.IntegratorSampled)

	for _, want := range []string{"ltc vs ltc-sampled", "MSE", "bias"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestScenesCommand(t *testing.T) {
	out := runCommand(t, "scenes", "--dir", "scenes")

	for _, want := range []string{"Built-in Scenes", "cornell", "Example Scenes", "Panel Room"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestTablesCommand(t *testing.T) {
	dir := t.TempDir()
	out := runCommand(t, "tables", "--out", filepath.Join(dir, "approx"))

	var paths [3]string
	for i, name := range []string{"m1.ltc", "m2.ltc", "m3.ltc"} {
		paths[i] = filepath.Join(dir, "approx", name)
		if !strings.Contains(out, paths[i]) {
			t.Errorf("Expected %s in output:\n%s", paths[i], out)
		}
	}
	written, err := loaders.LoadLTCTables(paths, 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	r1, r2, r3 := ltc.ApproximateGGXTables(config.Default().LTC.Resolution)
	for i, want := range []*ltc.GridTable{r1, r2, r3} {
		got := written[i]
		if got.Width() != want.Width() || got.Height() != want.Height() {
			t.Fatalf("Row %d: size %dx%d, want %dx%d", i+1, got.Width(), got.Height(), want.Width(), want.Height())
		}
		for y := 0; y < want.Height(); y += 7 {
			for x := 0; x < want.Width(); x += 5 {
				g, w := got.At(x, y), want.At(x, y)
				diff := math.Max(math.Abs(g.X-w.X), math.Max(math.Abs(g.Y-w.Y), math.Abs(g.Z-w.Z)))
				if diff > 1e-5*math.Max(1, w.Length()) {
					t.Errorf("Row %d texel (%d,%d): %v, want %v", i+1, x, y, g, w)
				}
			}
		}
	}

	// The written files are themselves valid tables input
	configPath := filepath.Join(dir, "tables.yaml")
	yaml := "ltc:\n  approximate: false\n  tables: [" + strings.Join(paths[:], ", ") + "]\n"
	if err := os.WriteFile(configPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	runCommand(t, "--config", configPath, "tables", "--out", filepath.Join(dir, "copy"))
	for _, name := range []string{"m1.ltc", "m2.ltc", "m3.ltc"} {
		a, errA := os.ReadFile(filepath.Join(dir, "approx", name))
		b, errB := os.ReadFile(filepath.Join(dir, "copy", name))
		if errA != nil || errB != nil {
			t.Fatal(errA, errB)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s changed when rewritten from the binary table", name)
		}
	}
}
