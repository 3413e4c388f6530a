package ltc

import (
	"math"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// sinFloor guards 1/sin θ for nearly antipodal edge endpoints
const sinFloor = 1e-7

// IntegrateEdge returns the z component of the vector form factor of the
// great arc v1 -> v2. Summed over a closed boundary it gives the polygon's
// clamped-cosine integral divided by π.
func IntegrateEdge(v1, v2 core.Vec3) float64 {
	x := v1.Dot(v2)
	y := math.Abs(x)

	// Rational fit of θ/sin θ with θ = acos(x)
	a := 0.8543985 + (0.4965155+0.0145206*y)*y
	b := 3.4175940 + (4.1616724+y)*y
	v := a / b

	thetaSinTheta := v
	if x <= 0 {
		thetaSinTheta = 0.5/math.Sqrt(math.Max(1-x*x, sinFloor)) - v
	}

	return v1.Cross(v2).Z * thetaSinTheta
}

// IntegratePolygon sums the edges of a clipped boundary and returns the
// magnitude, so either winding gives the same value
func IntegratePolygon(p Polygon) float64 {
	switch p.Case {
	case ClipWrapAround:
		return math.Pi
	case ClipAllBelow, ClipFacingAway:
		return 0
	}

	sum := 0.0
	for i := 0; i < p.N; i++ {
		sum += IntegrateEdge(p.Vertices[i], p.Vertices[(i+1)%p.N])
	}
	return math.Abs(sum)
}
