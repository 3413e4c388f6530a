package integrator

// Reservoir keeps one candidate out of a weighted stream, each candidate
// surviving with probability proportional to its weight
type Reservoir struct {
	Sample int     // Selected candidate, -1 when empty
	Target float64 // Target function value of the selected candidate
	WSum   float64 // Sum of all weights seen
	Count  int     // Number of candidates seen
}

// NewReservoir creates an empty reservoir
func NewReservoir() Reservoir {
	return Reservoir{Sample: -1}
}

// Update streams one candidate with resampling weight w. u is a uniform
// random number in [0,1).
func (r *Reservoir) Update(candidate int, w, target, u float64) {
	r.Count++
	if w <= 0 {
		return
	}
	r.WSum += w
	if u < w/r.WSum {
		r.Sample = candidate
		r.Target = target
	}
}

// Weight is the unbiased contribution weight of the selected sample,
// WSum / (Count · target). It is zero for an empty reservoir.
func (r *Reservoir) Weight() float64 {
	if r.Sample < 0 || r.Target <= 0 || r.Count == 0 {
		return 0
	}
	return r.WSum / (float64(r.Count) * r.Target)
}
