package ltc

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// Triangle is the geometry of a triangular emitter: three world-space
// vertices and the unit normal of its emitting face.
type Triangle struct {
	V0, V1, V2 core.Vec3
	Normal     core.Vec3
}

// NewTriangle creates a triangle whose emitting face follows the
// counter-clockwise winding of v0, v1, v2
func NewTriangle(v0, v1, v2 core.Vec3) Triangle {
	normal := v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
	return Triangle{V0: v0, V1: v1, V2: v2, Normal: normal}
}

// Vertices returns the three vertices in order
func (t Triangle) Vertices() [3]core.Vec3 {
	return [3]core.Vec3{t.V0, t.V1, t.V2}
}

// Centroid returns the barycentre of the triangle
func (t Triangle) Centroid() core.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Multiply(1.0 / 3.0)
}

// Area returns the surface area
func (t Triangle) Area() float64 {
	return 0.5 * t.V1.Subtract(t.V0).Cross(t.V2.Subtract(t.V0)).Length()
}

// BoundingBox returns the axis-aligned bounds of the triangle
func (t Triangle) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(t.V0, t.V1, t.V2)
}

// Reversed returns the triangle with opposite vertex order and the same emitting face
func (t Triangle) Reversed() Triangle {
	return Triangle{V0: t.V2, V1: t.V1, V2: t.V0, Normal: t.Normal}
}

// Query is everything needed to evaluate one light at one shading point.
// The shading-dependent part is built once per hit and reused for every
// light via WithLight.
type Query struct {
	Point     core.Vec3  // World-space shading point
	Frame     core.Frame // Shading frame at the point
	WiLocal   core.Vec3  // Direction towards the viewer, local frame
	Basis     Basis
	Transform Transform
	Light     Triangle
}

// NewQuery builds the per-hit part of a query
func NewQuery(point core.Vec3, frame core.Frame, wiLocal core.Vec3, transform Transform) Query {
	return Query{
		Point:     point,
		Frame:     frame,
		WiLocal:   wiLocal,
		Basis:     NewBasis(wiLocal),
		Transform: transform,
	}
}

// WithLight returns a copy of the query targeting another triangle
func (q Query) WithLight(light Triangle) Query {
	q.Light = light
	return q
}

// Projection holds the light vertices as unit directions in the two
// integration spaces
type Projection struct {
	Cosine [3]core.Vec3 // Basis space, integrated against a clamped cosine
	LTC    [3]core.Vec3 // Cosine space pushed through M⁻¹
}

// Project maps the light's vertices onto the unit sphere around the shading point
func Project(q Query) Projection {
	var p Projection
	for i, vertex := range q.Light.Vertices() {
		dir := safeNormalize(vertex.Subtract(q.Point))
		local := safeNormalize(q.Frame.ToLocal(dir))
		cosine := safeNormalize(q.Basis.Apply(local))

		p.Cosine[i] = cosine
		p.LTC[i] = safeNormalize(q.Transform.ApplyInverse(cosine))
	}
	return p
}
