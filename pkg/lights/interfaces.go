package lights

import (
	"errors"

	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/ltc"
)

// ErrWorldTransform is returned when an LTC area light is configured with a
// world transform; its vertices must already be in world space.
var ErrWorldTransform = errors.New("ltc area lights do not support a world transform")

type LightType string

const (
	LightTypeArea     LightType = "area"
	LightTypeInfinite LightType = "infinite"
)

// Flags are capability markers the integrators dispatch on
type Flags uint8

const (
	// FlagLTC marks an emitter with triangle geometry for analytic evaluation
	FlagLTC Flags = 1 << iota
	// FlagSpatiallyVarying marks an emitter whose radiance depends on position
	FlagSpatiallyVarying
)

// Has reports whether all bits of flag are set
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Light is an emitter known to the scene
type Light interface {
	Type() LightType
	Flags() Flags

	// Geometry returns the emitting triangle for lights that have one
	Geometry() (ltc.Triangle, bool)

	// Radiance returns the emitted radiance at a point on the light
	Radiance(point core.Vec3) core.Vec3

	// Emit evaluates emission along a ray that escaped the scene.
	// Finite lights return zero.
	Emit(ray core.Ray) core.Vec3

	BoundingBox() core.AABB
}

// AreaLight is a finite emitter that can be sampled by position
type AreaLight interface {
	Light

	// SamplePoint maps a uniform 2D sample to a uniformly distributed
	// point on the emitting surface
	SamplePoint(sample core.Vec2) core.Vec3
}

// LightSampler interface for different light sampling strategies
type LightSampler interface {
	// SampleLight selects a light for the given surface point and returns the light, selection probability, and light index
	SampleLight(point core.Vec3, normal core.Vec3, u float64) (Light, float64, int)

	// LightProbability returns the selection probability for a specific light at a surface point
	LightProbability(lightIndex int, point core.Vec3, normal core.Vec3) float64

	// LightCount returns the number of lights in this sampler
	LightCount() int
}
