package ltc

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

func TestNewGridTable_Validation(t *testing.T) {
	if _, err := NewGridTable(2, 2, make([]core.Vec3, 3)); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("Expected ErrInvalidTable for short data, got %v", err)
	}
	if _, err := NewGridTable(0, 2, nil); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("Expected ErrInvalidTable for zero width, got %v", err)
	}
}

func TestGridTable_Bilinear(t *testing.T) {
	// 2x2 grid, value = (x, y, 0)
	data := []core.Vec3{
		core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0), core.NewVec3(1, 1, 0),
	}
	table, err := NewGridTable(2, 2, data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		u, v     float64
		expected core.Vec3
	}{
		{"first texel centre", 0.25, 0.25, core.NewVec3(0, 0, 0)},
		{"last texel centre", 0.75, 0.75, core.NewVec3(1, 1, 0)},
		{"midpoint", 0.5, 0.5, core.NewVec3(0.5, 0.5, 0)},
		{"clamped low edge", 0, 0, core.NewVec3(0, 0, 0)},
		{"clamped high edge", 1, 1, core.NewVec3(1, 1, 0)},
		{"outside range", -3, 7, core.NewVec3(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Eval(tt.u, tt.v)
			if got.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestApproximateGGXTables_NormalIncidence(t *testing.T) {
	t1, t2, t3 := ApproximateGGXTables(32)
	alpha := (10 + 0.5) / 32.0
	u := 0.5 / 32.0 // first column, closest to θ = 0
	v := alpha

	r1, r2, r3 := t1.Eval(u, v), t2.Eval(u, v), t3.Eval(u, v)
	theta := u * math.Pi / 2
	if math.Abs(r1.X-alpha*math.Cos(theta)) > 1e-9 || math.Abs(r2.Y-alpha) > 1e-9 || math.Abs(r3.Z-math.Cos(theta)) > 1e-9 {
		t.Errorf("Unexpected rows %v %v %v for alpha %g", r1, r2, r3, alpha)
	}
}

func TestConstantTable(t *testing.T) {
	table := ConstantTable{core.NewVec3(1, 2, 3)}
	if got := table.Eval(0.3, 0.9); got != core.NewVec3(1, 2, 3) {
		t.Errorf("Expected constant value, got %v", got)
	}
}
