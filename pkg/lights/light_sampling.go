package lights

import (
	"sort"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// UniformLightSampler picks every light with equal probability
type UniformLightSampler struct {
	lights []Light
}

// NewUniformLightSampler creates a sampler over the given lights
func NewUniformLightSampler(lights []Light) *UniformLightSampler {
	return &UniformLightSampler{lights: lights}
}

// SampleLight selects a light uniformly
func (s *UniformLightSampler) SampleLight(point core.Vec3, normal core.Vec3, u float64) (Light, float64, int) {
	n := len(s.lights)
	if n == 0 {
		return nil, 0, -1
	}
	index := min(int(u*float64(n)), n-1)
	return s.lights[index], 1.0 / float64(n), index
}

// LightProbability returns 1/N for every valid index
func (s *UniformLightSampler) LightProbability(lightIndex int, point core.Vec3, normal core.Vec3) float64 {
	if lightIndex < 0 || lightIndex >= len(s.lights) {
		return 0
	}
	return 1.0 / float64(len(s.lights))
}

// LightCount returns the number of lights in this sampler
func (s *UniformLightSampler) LightCount() int {
	return len(s.lights)
}

// PowerLightSampler picks lights proportionally to their emitted power
type PowerLightSampler struct {
	lights []Light
	pdf    []float64
	cdf    []float64
}

// powered is implemented by lights that can estimate their own flux
type powered interface {
	Power() float64
}

// NewPowerLightSampler weights lights by Power(). Lights without a power
// estimate, or a set whose total power is zero, fall back to uniform weights.
func NewPowerLightSampler(lights []Light) *PowerLightSampler {
	weights := make([]float64, len(lights))
	total := 0.0
	for i, light := range lights {
		if p, ok := light.(powered); ok {
			weights[i] = max(0, p.Power())
		} else {
			weights[i] = 0
		}
		total += weights[i]
	}
	if total <= 0 {
		for i := range weights {
			weights[i] = 1
		}
		total = float64(len(weights))
	}

	pdf := make([]float64, len(lights))
	cdf := make([]float64, len(lights))
	running := 0.0
	for i, w := range weights {
		pdf[i] = w / total
		running += pdf[i]
		cdf[i] = running
	}
	if len(cdf) > 0 {
		cdf[len(cdf)-1] = 1
	}

	return &PowerLightSampler{lights: lights, pdf: pdf, cdf: cdf}
}

// SampleLight selects a light by inverting the power CDF
func (s *PowerLightSampler) SampleLight(point core.Vec3, normal core.Vec3, u float64) (Light, float64, int) {
	if len(s.lights) == 0 {
		return nil, 0, -1
	}
	index := sort.SearchFloat64s(s.cdf, u)
	// Skip zero-probability entries sharing the same CDF value
	for index < len(s.cdf)-1 && s.pdf[index] == 0 {
		index++
	}
	if index >= len(s.lights) {
		index = len(s.lights) - 1
	}
	return s.lights[index], s.pdf[index], index
}

// LightProbability returns the power-proportional selection probability
func (s *PowerLightSampler) LightProbability(lightIndex int, point core.Vec3, normal core.Vec3) float64 {
	if lightIndex < 0 || lightIndex >= len(s.pdf) {
		return 0
	}
	return s.pdf[lightIndex]
}

// LightCount returns the number of lights in this sampler
func (s *PowerLightSampler) LightCount() int {
	return len(s.lights)
}
