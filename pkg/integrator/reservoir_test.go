package integrator

import (
	"math"
	"math/rand"
	"testing"
)

func TestReservoirEmpty(t *testing.T) {
	r := NewReservoir()
	if r.Sample != -1 || r.Weight() != 0 {
		t.Errorf("Empty reservoir: %+v, weight %v", r, r.Weight())
	}
	r.Update(3, 0, 0, 0.5)
	if r.Sample != -1 || r.Count != 1 || r.Weight() != 0 {
		t.Errorf("Zero weight candidate should only be counted: %+v", r)
	}
}

func TestReservoirWeight(t *testing.T) {
	r := NewReservoir()
	r.Update(0, 2, 1, 0)
	r.Update(1, 6, 3, 0.99)
	if r.Sample != 0 {
		t.Fatalf("Expected first sample kept, got %d", r.Sample)
	}
	// WSum 8 over 2 candidates at target 1
	if math.Abs(r.Weight()-4) > 1e-12 {
		t.Errorf("Weight = %v, expected 4", r.Weight())
	}
}

func TestReservoirSelectionProportionalToWeight(t *testing.T) {
	random := rand.New(rand.NewSource(5))
	weights := []float64{1, 3, 0, 4}
	counts := make([]int, len(weights))
	const trials = 40000

	for i := 0; i < trials; i++ {
		r := NewReservoir()
		for j, w := range weights {
			r.Update(j, w, w, random.Float64())
		}
		counts[r.Sample]++
	}

	for j, w := range weights {
		got := float64(counts[j]) / trials
		want := w / 8
		if math.Abs(got-want) > 0.01 {
			t.Errorf("Candidate %d chosen %.3f of the time, expected %.3f", j, got, want)
		}
	}
}
