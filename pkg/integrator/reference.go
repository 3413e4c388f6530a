package integrator

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/ltc"
	"github.com/df07/go-ltc-raytracer/pkg/scene"
)

// ReferenceIntegrator replaces the analytic polygon integrals with Monte
// Carlo estimates of the same two quantities, for validating the LTC path
type ReferenceIntegrator struct {
	hideEmitters bool
	samples      int
}

// NewReferenceIntegrator creates a reference integrator drawing samples
// directions per light per camera sample
func NewReferenceIntegrator(hideEmitters bool, samples int) *ReferenceIntegrator {
	return &ReferenceIntegrator{hideEmitters: hideEmitters, samples: max(samples, 1)}
}

// RayColor computes the Monte Carlo estimate for a camera ray
func (ri *ReferenceIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	hit, isHit := s.Hit(ray, tMin, tMax)
	if !isHit {
		if ri.hideEmitters {
			return core.Vec3{}
		}
		return emitted(ray, nil, s)
	}

	var color core.Vec3
	if !ri.hideEmitters {
		color = emitted(ray, hit, s)
	}

	sp := NewShadingPoint(ray, hit, s.Resolver)
	for _, light := range s.LTCLights {
		tri, ok := light.Geometry()
		if !ok {
			continue
		}
		result := ltc.Reference(sp.Query.WithLight(tri), sampler, ri.samples)
		color = color.Add(light.Radiance(tri.Centroid()).MultiplyVec(sp.Weight(result)))
	}
	return color
}
