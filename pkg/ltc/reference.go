package ltc

import (
	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// Reference estimates the same two integrals as Evaluate by Monte Carlo.
// Cosine-distributed directions ω are drawn in basis space. The diffuse
// estimate is the fraction that land inside the light's cone. The specular
// estimate does the same for M·ω, which is distributed like the LTC lobe.
// Both fractions converge to the normalised integrals Evaluate computes.
func Reference(q Query, sampler core.Sampler, samples int) Result {
	if samples <= 0 || FacingAway(q.Light, q.Point) {
		return Result{}
	}

	proj := Project(q)
	diffuseHits, specularHits := 0, 0
	for i := 0; i < samples; i++ {
		omega := core.SampleCosineLocal(sampler.Get2D())
		if insideCone(omega, proj.Cosine) {
			diffuseHits++
		}
		if insideCone(q.Transform.Apply(omega), proj.Cosine) {
			specularHits++
		}
	}

	n := float64(samples)
	return Result{
		Diffuse:  float64(diffuseHits) / n,
		Specular: float64(specularHits) / n,
	}
}

// insideCone reports whether d lies in the cone spanned by three directions,
// i.e. d = a·v0 + b·v1 + c·v2 with a, b, c >= 0
func insideCone(d core.Vec3, v [3]core.Vec3) bool {
	volume := v[0].Dot(v[1].Cross(v[2]))
	if volume == 0 {
		return false
	}

	a := d.Dot(v[1].Cross(v[2])) / volume
	b := v[0].Dot(d.Cross(v[2])) / volume
	c := v[0].Dot(v[1].Cross(d)) / volume
	return a >= 0 && b >= 0 && c >= 0
}
