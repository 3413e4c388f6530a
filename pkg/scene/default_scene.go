package scene

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/geometry"
	"github.com/df07/go-ltc-raytracer/pkg/material"
)

// NewDefaultScene creates a row of spheres on a ground quad lit by two
// triangle lights and a faint sky
func NewDefaultScene() *Scene {
	s := &Scene{
		CameraConfig: geometry.CameraConfig{
			Center: core.NewVec3(0, 0.75, 2),
			LookAt: core.NewVec3(0, 0.5, -1),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   40.0,
		},
		SamplingConfig: SamplingConfig{
			Width:           640,
			Height:          360,
			SamplesPerPixel: 4,
		},
	}

	ground := material.NewTexturedLambertian(material.NewCheckerboard(
		core.NewVec3(0.48, 0.48, 0.0),
		core.NewVec3(0.2, 0.2, 0.2),
		0.5,
	))
	blue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	silver := material.NewGGX(core.NewVec3(0.05, 0.05, 0.05), core.NewVec3(0.8, 0.8, 0.8), 0.1)
	gold := material.NewGGX(core.NewVec3(0.1, 0.08, 0.02), core.NewVec3(0.8, 0.6, 0.2), 0.35)

	s.AddShapes(
		geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, blue),
		geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, silver),
		geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, gold),
		NewGroundQuad(core.NewVec3(0, 0, 0), 100.0, ground),
	)

	// Warm key light above and to the left, facing down toward the spheres
	s.AddTriangleLight(
		core.NewVec3(-2.5, 3, -2),
		core.NewVec3(-0.5, 3, -2),
		core.NewVec3(-1.5, 3, 0),
		core.NewVec3(12, 10, 8),
	)

	// Cool rim light behind the spheres, facing the camera
	s.AddTriangleLight(
		core.NewVec3(-1, 0.2, -3),
		core.NewVec3(1, 0.2, -3),
		core.NewVec3(0, 2, -3),
		core.NewVec3(2, 3, 5),
	)

	s.AddUniformInfiniteLight(core.NewVec3(0.05, 0.07, 0.1))

	return s
}
