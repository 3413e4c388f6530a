package integrator

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/lights"
	"github.com/df07/go-ltc-raytracer/pkg/ltc"
	"github.com/df07/go-ltc-raytracer/pkg/scene"
)

// RISLTCIntegrator draws several candidate lights from the scene's light
// sampler, resamples one in proportion to a cheap unoccluded estimate of its
// contribution, and evaluates only that one analytically
type RISLTCIntegrator struct {
	hideEmitters bool
	numProposals int
	pdfSamples   int
}

// NewRISLTCIntegrator creates a resampled LTC integrator. numProposals
// candidates are drawn per camera sample; the target function of each uses
// pdfSamples points on the light.
func NewRISLTCIntegrator(hideEmitters bool, numProposals, pdfSamples int) *RISLTCIntegrator {
	return &RISLTCIntegrator{
		hideEmitters: hideEmitters,
		numProposals: max(numProposals, 1),
		pdfSamples:   max(pdfSamples, 1),
	}
}

// RayColor computes a resampled single-light estimate for a camera ray
func (ri *RISLTCIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
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
	reservoir := NewReservoir()
	for i := 0; i < ri.numProposals; i++ {
		_, pdf, idx := s.LightSampler.SampleLight(hit.Point, hit.Normal, sampler.Get1D())
		if idx < 0 || pdf <= 0 {
			reservoir.Update(idx, 0, 0, 0)
			continue
		}
		target := ri.target(sp, s.LTCLights[idx], sampler)
		reservoir.Update(idx, target/pdf, target, sampler.Get1D())
	}

	weight := reservoir.Weight()
	if weight == 0 {
		return color
	}
	return color.Add(sp.Contribution(s.LTCLights[reservoir.Sample]).Multiply(weight))
}

// target estimates the luminance a light delivers to the shading point by
// treating pdfSamples points on its surface as point lights
func (ri *RISLTCIntegrator) target(sp ShadingPoint, light lights.Light, sampler core.Sampler) float64 {
	area, ok := light.(lights.AreaLight)
	if !ok {
		return 0
	}
	tri, ok := light.Geometry()
	if !ok || ltc.FacingAway(tri, sp.Hit.Point) {
		return 0
	}

	radiance := light.Radiance(tri.Centroid()).Luminance()
	reflectance := sp.Params.Albedo.Add(sp.Params.Specular).Luminance()

	sum := 0.0
	for i := 0; i < ri.pdfSamples; i++ {
		toLight := area.SamplePoint(sampler.Get2D()).Subtract(sp.Hit.Point)
		distSq := toLight.LengthSquared()
		if distSq == 0 {
			continue
		}
		dir := toLight.Normalize()
		cosSurface := dir.Dot(sp.Hit.Normal)
		cosLight := -dir.Dot(tri.Normal)
		if cosSurface <= 0 || cosLight <= 0 {
			continue
		}
		sum += cosSurface * cosLight * tri.Area() / distSq
	}

	return radiance * reflectance * sum / float64(ri.pdfSamples)
}
