package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// SampleCosineLocal generates a cosine-weighted direction around +Z
func SampleCosineLocal(sample Vec2) Vec3 {
	// Malley's method: uniform disk point lifted to the hemisphere
	a := 2.0 * math.Pi * sample.X
	r := math.Sqrt(sample.Y)
	return Vec3{
		X: r * math.Cos(a),
		Y: r * math.Sin(a),
		Z: math.Sqrt(math.Max(0, 1.0-sample.Y)),
	}
}

// SampleCosineHemisphere generates a cosine-weighted random direction in hemisphere around normal
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	return NewFrameFromNormal(normal).ToWorld(SampleCosineLocal(sample))
}

// CosineHemispherePDF returns the solid angle density of cosine sampling
func CosineHemispherePDF(cosTheta float64) float64 {
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// SampleUniformTriangle maps a sample to barycentric coordinates (b0, b1)
// distributed uniformly over a triangle's area
func SampleUniformTriangle(sample Vec2) (float64, float64) {
	su0 := math.Sqrt(sample.X)
	return 1 - su0, sample.Y * su0
}
