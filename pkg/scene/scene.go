package scene

import (
	"fmt"

	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/geometry"
	"github.com/df07/go-ltc-raytracer/pkg/lights"
	"github.com/df07/go-ltc-raytracer/pkg/loaders"
	"github.com/df07/go-ltc-raytracer/pkg/ltc"
	"github.com/df07/go-ltc-raytracer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	Shapes         []geometry.Shape    // Objects in the scene, light shapes included
	Lights         []lights.Light      // Every emitter
	LTCLights      []lights.Light      // Emitters flagged for analytic evaluation
	LightSampler   lights.LightSampler // Selects among LTCLights; rebuilt by Preprocess
	LightSampling  LightSampling       // Strategy LightSampler is built with
	Resolver       *ltc.Resolver       // LTC matrix lookup
	SamplingConfig SamplingConfig
	BVH            *geometry.BVH // Acceleration structure for ray-object intersection
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of camera rays per pixel
}

// LightSampling names a strategy for picking one LTC light
type LightSampling string

const (
	LightSamplingPower   LightSampling = "power" // Proportional to emitted power (default)
	LightSamplingUniform LightSampling = "uniform"
)

// NewGroundQuad creates a large quad to replace infinite ground planes
// Creates a horizontal quad centered at the given point with normal pointing up (0,1,0)
func NewGroundQuad(center core.Vec3, size float64, material material.Material) *geometry.Quad {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	// u × v = (0,0,size) × (size,0,0) = (0,size²,0)
	u := core.NewVec3(0, 0, size)
	v := core.NewVec3(size, 0, 0)
	return geometry.NewQuad(corner, u, v, material)
}

// Preprocess builds the camera, the BVH and the light sampler. It must be
// called after the scene is complete and before rendering.
func (s *Scene) Preprocess() error {
	if s.Resolver == nil {
		return fmt.Errorf("scene has no ltc resolver: %w", ltc.ErrMissingTable)
	}
	if s.SamplingConfig.Width <= 0 || s.SamplingConfig.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
	}

	s.CameraConfig.AspectRatio = float64(s.SamplingConfig.Width) / float64(s.SamplingConfig.Height)
	s.Camera = geometry.NewCamera(s.CameraConfig)

	s.BVH = geometry.NewBVH(s.Shapes)

	ltcLights := make([]lights.Light, 0, len(s.Lights))
	for _, light := range s.Lights {
		if light.Flags().Has(lights.FlagLTC) {
			ltcLights = append(ltcLights, light)
		}
	}
	s.LTCLights = ltcLights

	switch s.LightSampling {
	case LightSamplingPower, "":
		s.LightSampler = lights.NewPowerLightSampler(s.LTCLights)
	case LightSamplingUniform:
		s.LightSampler = lights.NewUniformLightSampler(s.LTCLights)
	default:
		return fmt.Errorf("unknown light sampling %q", s.LightSampling)
	}

	return nil
}

// Hit finds the closest intersection with the scene
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	return s.BVH.Hit(ray, tMin, tMax)
}

// PrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) PrimitiveCount() int {
	count := 0
	for _, shape := range s.Shapes {
		switch obj := shape.(type) {
		case *geometry.TriangleMesh:
			count += obj.TriangleCount()
		default:
			count++
		}
	}
	return count
}

// AddShapes appends shapes to the scene
func (s *Scene) AddShapes(shapes ...geometry.Shape) {
	s.Shapes = append(s.Shapes, shapes...)
}

// AddLight registers a triangle light and makes its shape visible to camera rays
func (s *Scene) AddLight(light *lights.TriangleLight) {
	s.Lights = append(s.Lights, light)
	s.Shapes = append(s.Shapes, light.Shape())
}

// AddTriangleLight adds a one-sided triangular area light facing along (v1-v0)x(v2-v0)
func (s *Scene) AddTriangleLight(v0, v1, v2 core.Vec3, emission core.Vec3) *lights.TriangleLight {
	light := lights.NewTriangleLight(v0, v1, v2, material.NewEmissive(emission))
	s.AddLight(light)
	return light
}

// AddQuadLight adds a rectangular area light to the scene as two triangle lights
func (s *Scene) AddQuadLight(corner, u, v core.Vec3, emission core.Vec3) {
	s.AddTexturedQuadLight(corner, u, v, material.NewSolidColor(emission))
}

// AddTexturedQuadLight adds a quad light whose radiance varies over its surface
func (s *Scene) AddTexturedQuadLight(corner, u, v core.Vec3, radiance material.ColorSource) {
	for _, light := range lights.NewQuadLights(corner, u, v, material.NewTexturedEmissive(radiance)) {
		s.AddLight(light)
	}
}

// AddMeshLights turns every triangle of a mesh into a light
func (s *Scene) AddMeshLights(mesh *loaders.MeshData, emission core.Vec3) {
	mat := material.NewEmissive(emission)
	for i := 0; i < mesh.TriangleCount(); i++ {
		v := mesh.Triangle(i)
		s.AddLight(lights.NewTriangleLight(v[0], v[1], v[2], mat))
	}
}

// AddUniformInfiniteLight adds a uniform infinite light to the scene
func (s *Scene) AddUniformInfiniteLight(emission core.Vec3) {
	s.Lights = append(s.Lights, lights.NewUniformInfiniteLight(emission))
}
