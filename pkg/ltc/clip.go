package ltc

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// ClipCase classifies a projected triangle against the horizon
type ClipCase int

const (
	ClipAllAbove   ClipCase = iota // Triangle unchanged
	ClipOneAbove                   // One vertex above: triangle with two horizon points
	ClipTwoAbove                   // Two vertices above: quad with two horizon points
	ClipWrapAround                 // All below, centroid above: constant π
	ClipAllBelow                   // Nothing visible
	ClipFacingAway                 // Emitting face points away from the shading point
)

func (c ClipCase) String() string {
	switch c {
	case ClipAllAbove:
		return "all-above"
	case ClipOneAbove:
		return "one-above"
	case ClipTwoAbove:
		return "two-above"
	case ClipWrapAround:
		return "wrap-around"
	case ClipAllBelow:
		return "all-below"
	case ClipFacingAway:
		return "facing-away"
	default:
		return "unknown"
	}
}

// MaxPolygonVertices is the capacity of a clipped boundary. A triangle
// clips to at most four vertices; the extra slot matches clipping a quad.
const MaxPolygonVertices = 5

// Polygon is a clipped spherical boundary, closed implicitly from the
// last vertex back to the first
type Polygon struct {
	Vertices [MaxPolygonVertices]core.Vec3
	N        int
	Case     ClipCase
}

func newPolygon(c ClipCase, vertices ...core.Vec3) Polygon {
	p := Polygon{Case: c, N: len(vertices)}
	copy(p.Vertices[:], vertices)
	return p
}

// Boundary returns the used vertices
func (p Polygon) Boundary() []core.Vec3 {
	return p.Vertices[:p.N]
}

// clipEntry is one row of the dispatch table: the case and the index of
// the vertex that is alone on its side of the horizon
type clipEntry struct {
	clip ClipCase
	k    int
}

// clipTable is indexed by below1 | below2<<1 | below3<<2
var clipTable = [8]clipEntry{
	{ClipAllAbove, 0}, // 000
	{ClipTwoAbove, 0}, // 001: v1 below
	{ClipTwoAbove, 1}, // 010: v2 below
	{ClipOneAbove, 2}, // 011: v3 above
	{ClipTwoAbove, 2}, // 100: v3 below
	{ClipOneAbove, 1}, // 101: v2 above
	{ClipOneAbove, 0}, // 110: v1 above
	{ClipAllBelow, 0}, // 111
}

// belowHorizon reports whether a direction is on or under the z = 0 plane
func belowHorizon(v core.Vec3) bool {
	return v.Z <= 0
}

// IntersectHorizon returns where the great arc from above to below crosses
// z = 0. above.Z must be positive and below.Z non-positive.
func IntersectHorizon(above, below core.Vec3) core.Vec3 {
	t := above.Z / (above.Z - below.Z)
	p := safeNormalize(above.Add(below.Subtract(above).Multiply(t)))
	p.Z = 0
	return p
}

// Clip cuts the spherical triangle v1 v2 v3 at the horizon, keeping the
// winding of the input
func Clip(v1, v2, v3 core.Vec3) Polygon {
	v := [3]core.Vec3{v1, v2, v3}

	mask := 0
	for i, vertex := range v {
		if belowHorizon(vertex) {
			mask |= 1 << i
		}
	}

	entry := clipTable[mask]
	vk := v[entry.k]
	next := v[(entry.k+1)%3]
	prev := v[(entry.k+2)%3]

	switch entry.clip {
	case ClipAllAbove:
		return newPolygon(ClipAllAbove, v1, v2, v3)
	case ClipOneAbove:
		return newPolygon(ClipOneAbove, vk, IntersectHorizon(vk, next), IntersectHorizon(vk, prev))
	case ClipTwoAbove:
		// vk is the one below; walk next -> prev -> (into vk) -> (out of vk)
		return newPolygon(ClipTwoAbove, next, prev, IntersectHorizon(prev, vk), IntersectHorizon(next, vk))
	}

	if safeNormalize(v1.Add(v2).Add(v3)).Z > 0 {
		return Polygon{Case: ClipWrapAround}
	}
	return Polygon{Case: ClipAllBelow}
}
