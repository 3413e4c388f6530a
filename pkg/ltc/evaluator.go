package ltc

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// Result is the unscaled contribution of one light: the clamped-cosine
// integral (diffuse) and the LTC lobe integral (specular). Both are >= 0.
type Result struct {
	Diffuse  float64
	Specular float64
}

// Add returns the channel-wise sum
func (r Result) Add(other Result) Result {
	return Result{Diffuse: r.Diffuse + other.Diffuse, Specular: r.Specular + other.Specular}
}

// Trace is a Result together with the intermediate projections and clipped
// polygons, for inspection tools and tests
type Trace struct {
	Projection Projection
	Diffuse    Polygon
	Specular   Polygon
	Result     Result
}

// FacingAway reports whether the emitting face of the light points away from
// the shading point (or the point lies in the light's plane)
func FacingAway(light Triangle, point core.Vec3) bool {
	return light.Normal.Dot(point.Subtract(light.V0)) <= 0
}

// Evaluate integrates one triangular light at one shading point
func Evaluate(q Query) Result {
	return EvaluateTrace(q).Result
}

// EvaluateTrace is Evaluate but keeps the intermediate values
func EvaluateTrace(q Query) Trace {
	if FacingAway(q.Light, q.Point) {
		away := Polygon{Case: ClipFacingAway}
		return Trace{Diffuse: away, Specular: away}
	}

	proj := Project(q)
	t := Trace{
		Projection: proj,
		Diffuse:    Clip(proj.Cosine[0], proj.Cosine[1], proj.Cosine[2]),
		Specular:   Clip(proj.LTC[0], proj.LTC[1], proj.LTC[2]),
	}
	t.Result = Result{
		Diffuse:  IntegratePolygon(t.Diffuse),
		Specular: IntegratePolygon(t.Specular),
	}
	return t
}
