package geometry

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/ltc"
	"github.com/df07/go-ltc-raytracer/pkg/material"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3         // The three vertices
	UV0        core.Vec2         // Texture coordinates per vertex
	UV1        core.Vec2         //
	UV2        core.Vec2         //
	Material   material.Material // Material of the triangle
	normal     core.Vec3         // Cached normal vector
	bbox       core.AABB         // Cached bounding box
}

// NewTriangle creates a new triangle from three vertices. The normal follows
// the counter-clockwise winding (v1-v0)x(v2-v0) and texture coordinates
// default to (0,0), (1,0), (0,1).
func NewTriangle(v0, v1, v2 core.Vec3, material material.Material) *Triangle {
	return NewTriangleWithUVs(v0, v1, v2, core.NewVec2(0, 0), core.NewVec2(1, 0), core.NewVec2(0, 1), material)
}

// NewTriangleWithUVs creates a triangle with explicit texture coordinates
func NewTriangleWithUVs(v0, v1, v2 core.Vec3, uv0, uv1, uv2 core.Vec2, material material.Material) *Triangle {
	return &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		UV0:      uv0,
		UV1:      uv1,
		UV2:      uv2,
		Material: material,
		normal:   v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize(),
		bbox:     core.NewAABBFromPoints(v0, v1, v2).Expand(1e-6),
	}
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	const epsilon = 1e-8

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in the plane of the triangle
	if a > -epsilon && a < epsilon {
		return nil, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return nil, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return nil, false
	}

	tParam := f * edge2.Dot(q)
	if tParam < tMin || tParam > tMax {
		return nil, false
	}

	w := 1 - u - v
	hit := &material.SurfaceInteraction{
		T:     tParam,
		Point: ray.At(tParam),
		UV: core.NewVec2(
			w*t.UV0.X+u*t.UV1.X+v*t.UV2.X,
			w*t.UV0.Y+u*t.UV1.Y+v*t.UV2.Y,
		),
		Material: t.Material,
	}
	hit.SetFaceNormal(ray, t.normal)

	return hit, true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// Normal returns the triangle's geometric normal
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

// LTC returns the triangle in the form consumed by the analytic evaluator
func (t *Triangle) LTC() ltc.Triangle {
	return ltc.Triangle{V0: t.V0, V1: t.V1, V2: t.V2, Normal: t.normal}
}
