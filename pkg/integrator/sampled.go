package integrator

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/scene"
)

// SampledLTCIntegrator picks one LTC light per camera sample through the
// scene's light sampler and evaluates it analytically
type SampledLTCIntegrator struct {
	hideEmitters bool
}

// NewSampledLTCIntegrator creates a new single-light LTC integrator
func NewSampledLTCIntegrator(hideEmitters bool) *SampledLTCIntegrator {
	return &SampledLTCIntegrator{hideEmitters: hideEmitters}
}

// RayColor computes an unbiased single-light estimate for a camera ray
func (si *SampledLTCIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	hit, isHit := s.Hit(ray, tMin, tMax)
	if !isHit {
		if si.hideEmitters {
			return core.Vec3{}
		}
		return emitted(ray, nil, s)
	}

	var color core.Vec3
	if !si.hideEmitters {
		color = emitted(ray, hit, s)
	}

	light, pdf, _ := s.LightSampler.SampleLight(hit.Point, hit.Normal, sampler.Get1D())
	if light == nil || pdf <= 0 {
		return color
	}

	sp := NewShadingPoint(ray, hit, s.Resolver)
	return color.Add(sp.Contribution(light).Multiply(1 / pdf))
}
