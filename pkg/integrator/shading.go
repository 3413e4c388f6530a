package integrator

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/lights"
	"github.com/df07/go-ltc-raytracer/pkg/ltc"
	"github.com/df07/go-ltc-raytracer/pkg/material"
	"github.com/df07/go-ltc-raytracer/pkg/scene"
)

// ShadingPoint is the light-independent state of one camera hit: the
// material parameters and the LTC query with its resolved matrix
type ShadingPoint struct {
	Hit    *material.SurfaceInteraction
	Params material.ShadingParams
	Query  ltc.Query
}

// NewShadingPoint sets up the frame and LTC matrix once for every light
// evaluated at hit
func NewShadingPoint(ray core.Ray, hit *material.SurfaceInteraction, resolver *ltc.Resolver) ShadingPoint {
	params := hit.Material.Shading(hit)
	frame := hit.Frame()
	wiLocal := frame.ToLocal(ray.Direction.Negate().Normalize())
	transform := resolver.Resolve(wiLocal, params.Roughness)

	return ShadingPoint{
		Hit:    hit,
		Params: params,
		Query:  ltc.NewQuery(hit.Point, frame, wiLocal, transform),
	}
}

// Weight combines the two integrals of one light with the surface colours
func (sp ShadingPoint) Weight(result ltc.Result) core.Vec3 {
	return sp.Params.Albedo.Multiply(result.Diffuse).
		Add(sp.Params.Specular.Multiply(result.Specular))
}

// LightTrace is the analytic evaluation of one light with its intermediate
// values kept
type LightTrace struct {
	Light        ltc.Triangle
	Radiance     core.Vec3 // Queried at the triangle centroid
	Trace        ltc.Trace
	Contribution core.Vec3
}

// TraceLight evaluates one LTC light like Contribution and keeps the
// projections and clipped polygons. ok is false for lights without geometry.
func (sp ShadingPoint) TraceLight(light lights.Light) (LightTrace, bool) {
	tri, ok := light.Geometry()
	if !ok {
		return LightTrace{}, false
	}
	trace := ltc.EvaluateTrace(sp.Query.WithLight(tri))
	radiance := light.Radiance(tri.Centroid())
	return LightTrace{
		Light:        tri,
		Radiance:     radiance,
		Trace:        trace,
		Contribution: radiance.MultiplyVec(sp.Weight(trace.Result)),
	}, true
}

// Contribution evaluates one LTC light analytically. Radiance is taken at
// the triangle centroid.
func (sp ShadingPoint) Contribution(light lights.Light) core.Vec3 {
	tri, ok := light.Geometry()
	if !ok {
		return core.Vec3{}
	}
	result := ltc.Evaluate(sp.Query.WithLight(tri))
	if result == (ltc.Result{}) {
		return core.Vec3{}
	}
	return light.Radiance(tri.Centroid()).MultiplyVec(sp.Weight(result))
}

// emitted returns what the camera sees directly: the radiance of a hit
// emitter, or the non-LTC lights on a miss
func emitted(ray core.Ray, hit *material.SurfaceInteraction, s *scene.Scene) core.Vec3 {
	if hit == nil {
		var sum core.Vec3
		for _, light := range s.Lights {
			if !light.Flags().Has(lights.FlagLTC) {
				sum = sum.Add(light.Emit(ray))
			}
		}
		return sum
	}
	if emitter, ok := hit.Material.(material.Emitter); ok {
		return emitter.Emit(ray, hit)
	}
	return core.Vec3{}
}
