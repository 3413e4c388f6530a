package material

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// Emissive represents a light-emitting material. Emission is one-sided:
// only the front face (the side the geometric normal points to) emits.
type Emissive struct {
	Radiance ColorSource // Emitted radiance, possibly textured
}

// NewEmissive creates a new emissive material with uniform radiance
func NewEmissive(emission core.Vec3) *Emissive {
	return &Emissive{Radiance: NewSolidColor(emission)}
}

// NewTexturedEmissive creates an emissive material with spatially varying radiance
func NewTexturedEmissive(radiance ColorSource) *Emissive {
	return &Emissive{Radiance: radiance}
}

// Shading implements Material; emitters do not reflect
func (e *Emissive) Shading(hit *SurfaceInteraction) ShadingParams {
	return ShadingParams{Roughness: 1}
}

// Emit returns the material emission at the hit, or zero from the back face
func (e *Emissive) Emit(rayIn core.Ray, hit *SurfaceInteraction) core.Vec3 {
	if hit == nil {
		return e.Radiance.Evaluate(core.Vec2{}, rayIn.Origin)
	}
	if !hit.FrontFace {
		return core.Vec3{}
	}
	return e.Radiance.Evaluate(hit.UV, hit.Point)
}

// SpatiallyVarying reports whether the radiance depends on position
func (e *Emissive) SpatiallyVarying() bool {
	return !IsUniform(e.Radiance)
}
