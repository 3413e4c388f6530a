package lights

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/geometry"
	"github.com/df07/go-ltc-raytracer/pkg/material"
)

// NewQuadLights splits a parallelogram emitter into two triangle lights.
// The emitting side is the one U × V points to; texture coordinates span
// the whole quad so textured emission stays continuous across the diagonal.
func NewQuadLights(corner, u, v core.Vec3, mat *material.Emissive) [2]*TriangleLight {
	tris := geometry.NewQuad(corner, u, v, mat).Triangles()
	return [2]*TriangleLight{
		newTriangleLight(tris[0], mat),
		newTriangleLight(tris[1], mat),
	}
}
