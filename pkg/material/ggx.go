package material

import (
	"math"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// GGX is a diffuse base with a glossy GGX coat
type GGX struct {
	Albedo    ColorSource
	Specular  core.Vec3 // Specular reflectance, multiplies the LTC lobe integral
	Roughness float64   // GGX alpha
}

// NewGGX creates a glossy material with a solid diffuse base
func NewGGX(albedo, specular core.Vec3, roughness float64) *GGX {
	return &GGX{
		Albedo:    NewSolidColor(albedo),
		Specular:  specular,
		Roughness: math.Max(0, math.Min(1, roughness)),
	}
}

// Shading returns both lobes
func (g *GGX) Shading(hit *SurfaceInteraction) ShadingParams {
	return ShadingParams{
		Albedo:    g.Albedo.Evaluate(hit.UV, hit.Point),
		Specular:  g.Specular,
		Roughness: g.Roughness,
	}
}
