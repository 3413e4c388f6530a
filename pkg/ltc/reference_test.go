package ltc

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

func TestReference_MatchesAnalytic(t *testing.T) {
	resolver := ggxResolver(t)
	point := core.Vec3{}
	normal := core.NewVec3(0, 0, 1)

	tests := []struct {
		name      string
		light     Triangle
		wi        core.Vec3
		roughness float64
	}{
		{
			name:      "overhead",
			light:     facing(core.NewVec3(-0.5, -0.5, 1), core.NewVec3(0.5, -0.5, 1), core.NewVec3(0, 0.5, 1.2), point),
			wi:        core.NewVec3(0, 0, 1),
			roughness: 0.5,
		},
		{
			name:      "crossing the horizon",
			light:     facing(core.NewVec3(1, -0.5, -0.3), core.NewVec3(1, 0.5, -0.3), core.NewVec3(1, 0, 0.6), point),
			wi:        core.NewVec3(-0.6, 0, 0.8),
			roughness: 0.3,
		},
		{
			name:      "wide and low",
			light:     facing(core.NewVec3(-2, -2, 0.5), core.NewVec3(2, -2, 0.5), core.NewVec3(0, 2, 0.5), point),
			wi:        core.NewVec3(0.5, 0.5, 0.7),
			roughness: 0.7,
		},
		{
			name:      "glossy mirror direction",
			light:     facing(core.NewVec3(-1.5, -0.3, 1), core.NewVec3(-1.5, 0.3, 1), core.NewVec3(-1.2, 0, 1.4), point),
			wi:        core.NewVec3(0.7, 0, 0.7),
			roughness: 0.2,
		},
	}

	const samples = 200000
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := core.NewFrameFromNormal(normal)
			wiLocal := frame.ToLocal(tt.wi.Normalize())
			q := NewQuery(point, frame, wiLocal, resolver.Resolve(wiLocal, tt.roughness)).WithLight(tt.light)

			analytic := Evaluate(q)
			sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
			reference := Reference(q, sampler, samples)

			if analytic.Diffuse <= 0 {
				t.Fatalf("Expected the light to be visible, got %+v", analytic)
			}
			if diff := math.Abs(analytic.Diffuse - reference.Diffuse); diff > 0.01+0.03*reference.Diffuse {
				t.Errorf("Diffuse: analytic %f, reference %f", analytic.Diffuse, reference.Diffuse)
			}
			if diff := math.Abs(analytic.Specular - reference.Specular); diff > 0.01+0.03*reference.Specular {
				t.Errorf("Specular: analytic %f, reference %f", analytic.Specular, reference.Specular)
			}
		})
	}
}

func TestReference_FacingAwayAndNoSamples(t *testing.T) {
	point := core.Vec3{}
	light := facing(core.NewVec3(-1, -1, 2), core.NewVec3(1, -1, 2), core.NewVec3(0, 1, 2), point)
	frame := core.NewFrameFromNormal(core.NewVec3(0, 0, 1))
	q := NewQuery(point, frame, core.NewVec3(0, 0, 1), IdentityTransform()).WithLight(light)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(1)))

	if got := Reference(q, sampler, 0); got != (Result{}) {
		t.Errorf("Expected zero with no samples, got %+v", got)
	}

	light.Normal = light.Normal.Negate()
	if got := Reference(q.WithLight(light), sampler, 1000); got != (Result{}) {
		t.Errorf("Expected zero when facing away, got %+v", got)
	}
}

func TestInsideCone(t *testing.T) {
	cone := [3]core.Vec3{core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1)}

	if !insideCone(core.NewVec3(1, 1, 1), cone) {
		t.Error("Expected the octant diagonal to be inside")
	}
	if insideCone(core.NewVec3(-1, 1, 1), cone) {
		t.Error("Expected a direction outside the octant to be rejected")
	}
	if insideCone(core.NewVec3(-1, -1, -1), cone) {
		t.Error("Expected the opposite direction to be rejected")
	}

	// Winding does not matter
	reversed := [3]core.Vec3{cone[2], cone[1], cone[0]}
	if !insideCone(core.NewVec3(1, 2, 3), reversed) {
		t.Error("Expected reversed cone to behave the same")
	}
}
