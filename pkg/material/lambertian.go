package material

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo ColorSource // Base color/reflectance (can be solid or textured)
}

// NewLambertian creates a new lambertian material with solid color
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: NewSolidColor(albedo)}
}

// NewTexturedLambertian creates a new lambertian material with texture
func NewTexturedLambertian(albedoTexture ColorSource) *Lambertian {
	return &Lambertian{Albedo: albedoTexture}
}

// Shading returns the albedo with no specular lobe
func (l *Lambertian) Shading(hit *SurfaceInteraction) ShadingParams {
	return ShadingParams{
		Albedo:    l.Albedo.Evaluate(hit.UV, hit.Point),
		Roughness: 1,
	}
}
