package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/material"
)

// TriangleMesh represents a collection of triangles with an internal BVH
type TriangleMesh struct {
	triangles []*Triangle
	bvh       *BVH
}

// TriangleMeshOptions contains optional parameters for triangle mesh creation
type TriangleMeshOptions struct {
	UVs      []core.Vec2 // Optional per-vertex texture coordinates
	Rotation *core.Vec3  // Optional rotation (radians around X, Y, Z) applied to vertices
	Center   *core.Vec3  // Optional center point for rotation
	Scale    float64     // Optional uniform scale, applied before rotation; 0 means 1
	Offset   core.Vec3   // Translation applied last
}

// NewTriangleMesh creates a triangle mesh from vertices and face indices.
// Each group of three indices forms a counter-clockwise triangle.
func NewTriangleMesh(vertices []core.Vec3, faces []int, mat material.Material, options *TriangleMeshOptions) (*TriangleMesh, error) {
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("face index count %d is not a multiple of 3", len(faces))
	}
	if options != nil && options.UVs != nil && len(options.UVs) != len(vertices) {
		return nil, fmt.Errorf("got %d UVs for %d vertices", len(options.UVs), len(vertices))
	}

	working := transformVertices(vertices, options)
	triangles := make([]*Triangle, 0, len(faces)/3)

	for i := 0; i < len(faces); i += 3 {
		i0, i1, i2 := faces[i], faces[i+1], faces[i+2]
		for _, idx := range [3]int{i0, i1, i2} {
			if idx < 0 || idx >= len(working) {
				return nil, fmt.Errorf("face %d: index %d out of range [0,%d)", i/3, idx, len(working))
			}
		}

		if options != nil && options.UVs != nil {
			triangles = append(triangles, NewTriangleWithUVs(working[i0], working[i1], working[i2],
				options.UVs[i0], options.UVs[i1], options.UVs[i2], mat))
		} else {
			triangles = append(triangles, NewTriangle(working[i0], working[i1], working[i2], mat))
		}
	}

	shapes := make([]Shape, len(triangles))
	for i, tri := range triangles {
		shapes[i] = tri
	}

	return &TriangleMesh{
		triangles: triangles,
		bvh:       NewBVH(shapes),
	}, nil
}

// Hit tests if a ray intersects with any triangle in the mesh
func (tm *TriangleMesh) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	return tm.bvh.Hit(ray, tMin, tMax)
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.bvh.BoundingBox()
}

// TriangleCount returns the number of triangles in this mesh
func (tm *TriangleMesh) TriangleCount() int {
	return len(tm.triangles)
}

// Triangles returns the individual triangles
func (tm *TriangleMesh) Triangles() []*Triangle {
	return tm.triangles
}

func transformVertices(vertices []core.Vec3, options *TriangleMeshOptions) []core.Vec3 {
	if options == nil {
		return vertices
	}
	out := make([]core.Vec3, len(vertices))
	for i, vertex := range vertices {
		if options.Scale != 0 {
			vertex = vertex.Multiply(options.Scale)
		}
		if options.Rotation != nil {
			if options.Center != nil {
				vertex = vertex.Subtract(*options.Center)
			}
			vertex = rotateVertex(vertex, *options.Rotation)
			if options.Center != nil {
				vertex = vertex.Add(*options.Center)
			}
		}
		out[i] = vertex.Add(options.Offset)
	}
	return out
}

// rotateVertex applies rotation around X, Y, Z axes (in that order)
func rotateVertex(vertex, rotation core.Vec3) core.Vec3 {
	if rotation.X != 0 {
		cos, sin := math.Cos(rotation.X), math.Sin(rotation.X)
		vertex = core.NewVec3(vertex.X, vertex.Y*cos-vertex.Z*sin, vertex.Y*sin+vertex.Z*cos)
	}
	if rotation.Y != 0 {
		cos, sin := math.Cos(rotation.Y), math.Sin(rotation.Y)
		vertex = core.NewVec3(vertex.X*cos+vertex.Z*sin, vertex.Y, -vertex.X*sin+vertex.Z*cos)
	}
	if rotation.Z != 0 {
		cos, sin := math.Cos(rotation.Z), math.Sin(rotation.Z)
		vertex = core.NewVec3(vertex.X*cos-vertex.Y*sin, vertex.X*sin+vertex.Y*cos, vertex.Z)
	}
	return vertex
}
