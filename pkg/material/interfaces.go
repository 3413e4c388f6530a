package material

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// Material describes how a surface responds to analytic area lighting
type Material interface {
	// Shading returns the reflectance parameters at a hit point
	Shading(hit *SurfaceInteraction) ShadingParams
}

// Emitter interface for materials that emit light
type Emitter interface {
	// Emit returns radiance leaving the surface towards the ray origin.
	// hit may be nil when the caller has no intersection, e.g. when
	// querying a light's radiance at an arbitrary point.
	Emit(rayIn core.Ray, hit *SurfaceInteraction) core.Vec3
}

// ShadingParams is the two-lobe surface model: a Lambertian lobe scaled by
// Albedo and an LTC-approximated GGX lobe scaled by Specular
type ShadingParams struct {
	Albedo    core.Vec3
	Specular  core.Vec3
	Roughness float64 // GGX alpha in [0,1]
}

// SurfaceInteraction contains information about a ray-object intersection
type SurfaceInteraction struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal, facing the incoming ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether ray hit the front face
	UV        core.Vec2 // Surface parameterisation for textures
	Material  Material  // Material of the hit object
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *SurfaceInteraction) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Frame returns the shading frame around the hit normal
func (h *SurfaceInteraction) Frame() core.Frame {
	return core.NewFrameFromNormal(h.Normal)
}
