package lights

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/ltc"
)

// UniformInfiniteLight represents a uniform infinite area light (constant emission in all directions).
// It has no triangle geometry, so the analytic integrators only see it on
// camera rays that escape the scene.
type UniformInfiniteLight struct {
	emission core.Vec3
}

// NewUniformInfiniteLight creates a new uniform infinite light
func NewUniformInfiniteLight(emission core.Vec3) *UniformInfiniteLight {
	return &UniformInfiniteLight{emission: emission}
}

func (uil *UniformInfiniteLight) Type() LightType {
	return LightTypeInfinite
}

func (uil *UniformInfiniteLight) Flags() Flags {
	return 0
}

func (uil *UniformInfiniteLight) Geometry() (ltc.Triangle, bool) {
	return ltc.Triangle{}, false
}

// Radiance is the same everywhere
func (uil *UniformInfiniteLight) Radiance(point core.Vec3) core.Vec3 {
	return uil.emission
}

// Emit implements the Light interface - evaluates emission in ray direction
func (uil *UniformInfiniteLight) Emit(ray core.Ray) core.Vec3 {
	return uil.emission
}

// BoundingBox is empty; the light surrounds the scene
func (uil *UniformInfiniteLight) BoundingBox() core.AABB {
	return core.AABB{}
}
