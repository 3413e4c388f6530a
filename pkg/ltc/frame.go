package ltc

import (
	"math"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

const (
	normalizeEpsilon = 1e-12 // floor for vector lengths before division
	tangentEpsilon   = 1e-12 // squared length below which the view has no azimuth
)

// Basis is the per-query orthonormal basis that rotates the local shading
// frame about its normal so the view direction lies in the +X half of the XZ plane.
type Basis struct {
	C1, C2, C3 core.Vec3
}

// NewBasis builds the basis from the view direction in local shading coordinates
func NewBasis(wiLocal core.Vec3) Basis {
	c3 := core.NewVec3(0, 0, 1)

	c1 := core.NewVec3(wiLocal.X, wiLocal.Y, 0)
	if c1.LengthSquared() < tangentEpsilon {
		// Looking straight down the normal: any azimuth works
		c1 = core.NewVec3(1, 0, 0)
	} else {
		c1 = c1.Normalize()
	}

	return Basis{C1: c1, C2: c3.Cross(c1), C3: c3}
}

// Apply expresses a local-frame vector in basis coordinates
func (b Basis) Apply(v core.Vec3) core.Vec3 {
	return core.Vec3{X: b.C1.Dot(v), Y: b.C2.Dot(v), Z: b.C3.Dot(v)}
}

// safeNormalize divides by the length floored at normalizeEpsilon, so a
// zero vector stays zero instead of becoming NaN.
func safeNormalize(v core.Vec3) core.Vec3 {
	return v.Multiply(1.0 / math.Max(v.Length(), normalizeEpsilon))
}
