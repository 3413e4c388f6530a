package scene

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/geometry"
	"github.com/df07/go-ltc-raytracer/pkg/material"
)

// NewTexturedLightScene creates a floor of varying roughness lit by a quad
// light whose radiance is a gradient, so each half carries a different colour
func NewTexturedLightScene() *Scene {
	s := &Scene{
		CameraConfig: geometry.CameraConfig{
			Center: core.NewVec3(0, 2, 6),
			LookAt: core.NewVec3(0, 0.5, 0),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   45.0,
		},
		SamplingConfig: SamplingConfig{
			Width:           640,
			Height:          360,
			SamplesPerPixel: 4,
		},
	}

	// Three floor strips from glossy to rough
	for i, roughness := range []float64{0.1, 0.3, 0.6} {
		x := -3.0 + 2.0*float64(i)
		s.AddShapes(geometry.NewQuad(
			core.NewVec3(x, 0, -3),
			core.NewVec3(0, 0, 6),
			core.NewVec3(2, 0, 0),
			material.NewGGX(core.NewVec3(0.2, 0.2, 0.2), core.NewVec3(0.9, 0.9, 0.9), roughness),
		))
	}

	// Standing panel light facing +Z, red on the left and blue on the right
	s.AddTexturedQuadLight(
		core.NewVec3(-2, 0.5, -2),
		core.NewVec3(4, 0, 0),
		core.NewVec3(0, 1.5, 0),
		&material.UVGradient{
			Start: core.NewVec3(8, 1, 1),
			End:   core.NewVec3(1, 1, 8),
		},
	)

	return s
}
