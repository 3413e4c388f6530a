package integrator

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-ltc-raytracer/pkg/config"
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/geometry"
	"github.com/df07/go-ltc-raytracer/pkg/ltc"
	"github.com/df07/go-ltc-raytracer/pkg/material"
	"github.com/df07/go-ltc-raytracer/pkg/scene"
)

var (
	keyEmission = core.NewVec3(4, 4, 4)
	up          = core.NewVec3(0, 1, 0)
	down        = core.NewVec3(0, -1, 0)
)

// createTestScene builds a grey ground lit by downward facing triangle lights
func createTestScene(t *testing.T, withFillLight bool) *scene.Scene {
	t.Helper()
	s := &scene.Scene{
		CameraConfig: geometry.CameraConfig{
			Center: core.NewVec3(0, 1, 3),
			LookAt: core.NewVec3(0, 0, 0),
			Up:     up,
			VFov:   45,
		},
		SamplingConfig: scene.SamplingConfig{Width: 8, Height: 8, SamplesPerPixel: 1},
	}
	s.AddShapes(scene.NewGroundQuad(core.Vec3{}, 10, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))
	s.AddTriangleLight(core.NewVec3(-1, 2, -1), core.NewVec3(1, 2, -1), core.NewVec3(0, 2, 1), keyEmission)
	if withFillLight {
		s.AddTriangleLight(core.NewVec3(1, 2, 0), core.NewVec3(3, 2, 0), core.NewVec3(2, 2, 2), core.NewVec3(1, 2, 3))
	}

	r1, r2, r3 := ltc.ApproximateGGXTables(16)
	resolver, err := ltc.NewResolver(r1, r2, r3)
	if err != nil {
		t.Fatal(err)
	}
	s.Resolver = resolver
	if err := s.Preprocess(); err != nil {
		t.Fatal(err)
	}
	return s
}

func newSampler(seed int64) core.Sampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(seed)))
}

func closeVec(a, b core.Vec3, relTol float64) bool {
	scale := math.Max(b.Length(), 1e-6)
	return a.Subtract(b).Length() <= relTol*scale
}

// averageColor estimates the mean of a stochastic integrator
func averageColor(in Integrator, ray core.Ray, s *scene.Scene, n int) core.Vec3 {
	sampler := newSampler(11)
	var sum core.Vec3
	for i := 0; i < n; i++ {
		sum = sum.Add(in.RayColor(ray, s, sampler))
	}
	return sum.Multiply(1 / float64(n))
}

func TestLTCIntegratorMatchesEvaluate(t *testing.T) {
	s := createTestScene(t, false)
	point := core.NewVec3(0.1, 0, 0.2)
	ray := core.NewRay(point.Add(up), down)

	frame := core.NewFrameFromNormal(up)
	wiLocal := frame.ToLocal(up)
	query := ltc.NewQuery(point, frame, wiLocal, s.Resolver.Resolve(wiLocal, 1))
	tri, _ := s.Lights[0].Geometry()
	result := ltc.Evaluate(query.WithLight(tri))
	if result.Diffuse <= 0 {
		t.Fatalf("Expected the light to be visible, got %+v", result)
	}
	expected := keyEmission.Multiply(0.5 * result.Diffuse)

	got := NewLTCIntegrator(false).RayColor(ray, s, newSampler(1))
	if !closeVec(got, expected, 1e-9) {
		t.Errorf("RayColor = %v, expected %v", got, expected)
	}
}

type testLight struct {
	v0, v1, v2 core.Vec3
	emission   core.Vec3
}

var (
	keyLight  = testLight{core.NewVec3(-1, 2, -1), core.NewVec3(1, 2, -1), core.NewVec3(0, 2, 1), keyEmission}
	fillLight = testLight{core.NewVec3(1, 2, 0), core.NewVec3(3, 2, 0), core.NewVec3(2, 2, 2), core.NewVec3(1, 2, 3)}
)

// groundScene builds a ground of the given material under the given lights
func groundScene(t *testing.T, mat material.Material, lights ...testLight) *scene.Scene {
	t.Helper()
	s := &scene.Scene{
		CameraConfig:   geometry.CameraConfig{Center: core.NewVec3(0, 1, 3), LookAt: core.Vec3{}, Up: up, VFov: 45},
		SamplingConfig: scene.SamplingConfig{Width: 8, Height: 8, SamplesPerPixel: 1},
	}
	s.AddShapes(scene.NewGroundQuad(core.Vec3{}, 10, mat))
	for _, l := range lights {
		s.AddTriangleLight(l.v0, l.v1, l.v2, l.emission)
	}

	r1, r2, r3 := ltc.ApproximateGGXTables(16)
	resolver, err := ltc.NewResolver(r1, r2, r3)
	if err != nil {
		t.Fatal(err)
	}
	s.Resolver = resolver
	if err := s.Preprocess(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLTCIntegratorSumsLightsWithSpecular(t *testing.T) {
	albedo := core.NewVec3(0.2, 0.3, 0.4)
	specular := core.NewVec3(0.9, 0.6, 0.3)

	tests := []struct {
		name      string
		origin    core.Vec3
		target    core.Vec3
		roughness float64
	}{
		{"overhead glossy", core.NewVec3(0.5, 1, 0.2), core.NewVec3(0.5, 0, 0.2), 0.2},
		{"between lights rough", core.NewVec3(1, 1, 0.5), core.NewVec3(1, 0, 0.5), 0.7},
		{"oblique glossy", core.NewVec3(-1, 1.5, 2), core.NewVec3(0.6, 0, 0.3), 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mat := material.NewGGX(albedo, specular, tt.roughness)
			dir := tt.target.Subtract(tt.origin).Normalize()
			ray := core.NewRay(tt.origin, dir)
			in := NewLTCIntegrator(true)

			both := groundScene(t, mat, keyLight, fillLight)
			got := in.RayColor(ray, both, newSampler(1))
			keyOnly := in.RayColor(ray, groundScene(t, mat, keyLight), newSampler(1))
			fillOnly := in.RayColor(ray, groundScene(t, mat, fillLight), newSampler(1))
			if !closeVec(got, keyOnly.Add(fillOnly), 1e-9) {
				t.Errorf("Two lights give %v, separately %v + %v", got, keyOnly, fillOnly)
			}

			point := tt.origin.Add(dir.Multiply(-tt.origin.Y / dir.Y))
			frame := core.NewFrameFromNormal(up)
			wiLocal := frame.ToLocal(dir.Negate())
			query := ltc.NewQuery(point, frame, wiLocal, both.Resolver.Resolve(wiLocal, tt.roughness))

			var expected, diffuseOnly core.Vec3
			specularSeen := false
			for _, light := range both.LTCLights {
				tri, _ := light.Geometry()
				result := ltc.Evaluate(query.WithLight(tri))
				radiance := light.Radiance(tri.Centroid())
				expected = expected.Add(radiance.MultiplyVec(albedo.Multiply(result.Diffuse).Add(specular.Multiply(result.Specular))))
				diffuseOnly = diffuseOnly.Add(radiance.MultiplyVec(albedo.Multiply(result.Diffuse)))
				specularSeen = specularSeen || result.Specular > 0
			}

			if !closeVec(got, expected, 1e-9) {
				t.Errorf("RayColor = %v, per-light sum %v", got, expected)
			}
			if !specularSeen {
				t.Fatal("Expected a positive specular integral from at least one light")
			}
			if closeVec(got, diffuseOnly, 1e-3) {
				t.Errorf("Specular lobe did not contribute: %v vs diffuse only %v", got, diffuseOnly)
			}
		})
	}
}

func TestShadingPointTraceMatchesContribution(t *testing.T) {
	s := groundScene(t, material.NewGGX(core.NewVec3(0.5, 0.4, 0.3), core.NewVec3(0.8, 0.8, 0.8), 0.4), keyLight, fillLight)
	ray := core.NewRay(core.NewVec3(-0.5, 1.2, 1), core.NewVec3(0.3, -1, -0.4).Normalize())
	hit, ok := s.Hit(ray, tMin, tMax)
	if !ok {
		t.Fatal("Expected the ray to hit the ground")
	}

	sp := NewShadingPoint(ray, hit, s.Resolver)
	for i, light := range s.LTCLights {
		lt, ok := sp.TraceLight(light)
		if !ok {
			t.Fatalf("Light %d has no geometry", i)
		}
		if want := sp.Contribution(light); !closeVec(lt.Contribution, want, 1e-12) {
			t.Errorf("Light %d: trace contribution %v, Contribution %v", i, lt.Contribution, want)
		}
		if lt.Trace.Result != ltc.Evaluate(sp.Query.WithLight(lt.Light)) {
			t.Errorf("Light %d: trace result %+v differs from Evaluate", i, lt.Trace.Result)
		}
	}
}

func TestLTCIntegratorLightFacingAway(t *testing.T) {
	s := createTestScene(t, false)
	// Below the ground, looking up at its underside; the light is behind the horizon
	ray := core.NewRay(core.NewVec3(0, -1, 0), up)

	got := NewLTCIntegrator(false).RayColor(ray, s, newSampler(1))
	if !got.IsZero() {
		t.Errorf("Light above the plane cannot reach the underside, got %v", got)
	}
}

func TestIntegratorsEmitterVisibility(t *testing.T) {
	s := createTestScene(t, false)
	s.AddUniformInfiniteLight(core.NewVec3(0.2, 0.3, 0.4))
	if err := s.Preprocess(); err != nil {
		t.Fatal(err)
	}

	toLight := core.NewRay(core.NewVec3(0, 0.5, -0.3), up)
	toSky := core.NewRay(core.NewVec3(5, 1, 0), up)

	tests := []struct {
		name       string
		integrator Integrator
		hidden     bool
	}{
		{"ltc", NewLTCIntegrator(false), false},
		{"ltc hidden", NewLTCIntegrator(true), true},
		{"sampled", NewSampledLTCIntegrator(false), false},
		{"ris hidden", NewRISLTCIntegrator(true, 4, 2), true},
		{"reference", NewReferenceIntegrator(false, 8), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			light := tt.integrator.RayColor(toLight, s, newSampler(3))
			sky := tt.integrator.RayColor(toSky, s, newSampler(3))
			if tt.hidden {
				if !light.IsZero() || !sky.IsZero() {
					t.Errorf("Hidden emitters leaked: light %v, sky %v", light, sky)
				}
				return
			}
			if !closeVec(light, keyEmission, 1e-9) {
				t.Errorf("Direct view of light = %v, expected %v", light, keyEmission)
			}
			if !closeVec(sky, core.NewVec3(0.2, 0.3, 0.4), 1e-9) {
				t.Errorf("Sky = %v", sky)
			}
		})
	}
}

func TestStochasticIntegratorsConverge(t *testing.T) {
	s := createTestScene(t, true)
	ray := core.NewRay(core.NewVec3(0.8, 1, 0.3), down)
	expected := NewLTCIntegrator(false).RayColor(ray, s, newSampler(1))
	if expected.IsZero() {
		t.Fatal("Test point should be lit")
	}

	tests := []struct {
		name       string
		integrator Integrator
		samples    int
		tolerance  float64
	}{
		{"sampled", NewSampledLTCIntegrator(false), 20000, 0.03},
		{"ris", NewRISLTCIntegrator(false, 4, 4), 20000, 0.03},
		{"reference", NewReferenceIntegrator(false, 256), 2000, 0.03},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := averageColor(tt.integrator, ray, s, tt.samples)
			if !closeVec(got, expected, tt.tolerance) {
				t.Errorf("Mean %v, analytic %v", got, expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	cfg := config.Default().Render
	tests := []struct {
		name    string
		want    Integrator
		wantErr bool
	}{
		{config.IntegratorLTC, &LTCIntegrator{}, false},
		{config.IntegratorSampled, &SampledLTCIntegrator{}, false},
		{config.IntegratorRIS, &RISLTCIntegrator{}, false},
		{config.IntegratorReference, &ReferenceIntegrator{}, false},
		{"bdpt", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.Integrator = tt.name
			got, err := New(cfg)
			if tt.wantErr {
				if !errors.Is(err, config.ErrInvalid) {
					t.Errorf("Expected ErrInvalid, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			switch tt.want.(type) {
			case *LTCIntegrator:
				_, ok := got.(*LTCIntegrator)
				if !ok {
					t.Errorf("got %T", got)
				}
			case *SampledLTCIntegrator:
				_, ok := got.(*SampledLTCIntegrator)
				if !ok {
					t.Errorf("got %T", got)
				}
			case *RISLTCIntegrator:
				ris, ok := got.(*RISLTCIntegrator)
				if !ok || ris.numProposals != cfg.RIS.NumProposals {
					t.Errorf("got %T %+v", got, got)
				}
			case *ReferenceIntegrator:
				ref, ok := got.(*ReferenceIntegrator)
				if !ok || ref.samples != cfg.Reference.Samples {
					t.Errorf("got %T %+v", got, got)
				}
			}
		})
	}
}
