package integrator

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/scene"
)

// LTCIntegrator evaluates every LTC light analytically at the first hit.
// Lights are unoccluded and there are no indirect bounces.
type LTCIntegrator struct {
	hideEmitters bool
}

// NewLTCIntegrator creates a new LTC integrator
func NewLTCIntegrator(hideEmitters bool) *LTCIntegrator {
	return &LTCIntegrator{hideEmitters: hideEmitters}
}

// RayColor computes the color for a single camera ray
func (li *LTCIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	hit, isHit := s.Hit(ray, tMin, tMax)
	if !isHit {
		if li.hideEmitters {
			return core.Vec3{}
		}
		return emitted(ray, nil, s)
	}

	var color core.Vec3
	if !li.hideEmitters {
		color = emitted(ray, hit, s)
	}

	sp := NewShadingPoint(ray, hit, s.Resolver)
	for _, light := range s.LTCLights {
		color = color.Add(sp.Contribution(light))
	}
	return color
}
