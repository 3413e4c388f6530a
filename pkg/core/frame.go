package core

import "math"

// Frame is an orthonormal shading frame. Local coordinates have the
// normal along +Z, so "above the surface" means local z > 0.
type Frame struct {
	Tangent   Vec3
	Bitangent Vec3
	Normal    Vec3
}

// NewFrameFromNormal builds a frame around a unit normal
func NewFrameFromNormal(normal Vec3) Frame {
	// Pick a helper axis that is not parallel to the normal
	var nt Vec3
	if math.Abs(normal.X) > 0.1 {
		nt = NewVec3(0, 1, 0)
	} else {
		nt = NewVec3(1, 0, 0)
	}

	tangent := nt.Cross(normal).Normalize()
	bitangent := normal.Cross(tangent)
	return Frame{Tangent: tangent, Bitangent: bitangent, Normal: normal}
}

// ToLocal expresses a world-space vector in frame coordinates
func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{X: v.Dot(f.Tangent), Y: v.Dot(f.Bitangent), Z: v.Dot(f.Normal)}
}

// ToWorld converts frame coordinates back to world space
func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.Tangent.Multiply(v.X).Add(f.Bitangent.Multiply(v.Y)).Add(f.Normal.Multiply(v.Z))
}
