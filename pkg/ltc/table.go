package ltc

import (
	"fmt"
	"math"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// Table is a two-parameter lookup returning one row of the LTC matrix.
// u is the mapped view angle and v the roughness, both in [0,1].
type Table interface {
	Eval(u, v float64) core.Vec3
}

// GridTable is a regular grid of 3-vectors sampled bilinearly with
// clamp-to-edge addressing. Texel centres sit at ((x+0.5)/W, (y+0.5)/H).
type GridTable struct {
	width  int
	height int
	data   []core.Vec3 // Row-major: data[y*width + x], y follows v
}

// NewGridTable wraps row-major table data
func NewGridTable(width, height int, data []core.Vec3) (*GridTable, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidTable, width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: got %d values for %dx%d grid", ErrInvalidTable, len(data), width, height)
	}
	return &GridTable{width: width, height: height, data: data}, nil
}

// Width returns the number of texels along u
func (g *GridTable) Width() int { return g.width }

// Height returns the number of texels along v
func (g *GridTable) Height() int { return g.height }

// At returns the raw texel at integer coordinates
func (g *GridTable) At(x, y int) core.Vec3 {
	return g.data[y*g.width+x]
}

// Eval samples the table with bilinear filtering
func (g *GridTable) Eval(u, v float64) core.Vec3 {
	x := clamp(u, 0, 1)*float64(g.width) - 0.5
	y := clamp(v, 0, 1)*float64(g.height) - 0.5

	x0f, y0f := math.Floor(x), math.Floor(y)
	fx, fy := x-x0f, y-y0f

	x0 := clampIndex(int(x0f), g.width)
	x1 := clampIndex(int(x0f)+1, g.width)
	y0 := clampIndex(int(y0f), g.height)
	y1 := clampIndex(int(y0f)+1, g.height)

	top := g.At(x0, y0).Multiply(1 - fx).Add(g.At(x1, y0).Multiply(fx))
	bottom := g.At(x0, y1).Multiply(1 - fx).Add(g.At(x1, y1).Multiply(fx))
	return top.Multiply(1 - fy).Add(bottom.Multiply(fy))
}

// ConstantTable returns the same row everywhere
type ConstantTable struct {
	Value core.Vec3
}

// Eval implements Table
func (c ConstantTable) Eval(u, v float64) core.Vec3 {
	return c.Value
}

// IdentityTables returns tables for M = I, which turns the specular
// channel into a second diffuse channel. Useful for debugging.
func IdentityTables() (Table, Table, Table) {
	return ConstantTable{core.NewVec3(1, 0, 0)},
		ConstantTable{core.NewVec3(0, 1, 0)},
		ConstantTable{core.NewVec3(0, 0, 1)}
}

// ApproximateGGXTables builds tables for a rotated, scaled cosine lobe:
// M = R(θ)·diag(α, α, 1), where R tilts +Z onto the mirror direction of a
// view at angle θ = u·π/2 and α is the roughness. Not a fitted GGX table,
// but close enough to render glossy highlights without external data.
func ApproximateGGXTables(resolution int) (*GridTable, *GridTable, *GridTable) {
	if resolution < 2 {
		resolution = 2
	}

	n := resolution * resolution
	r1 := make([]core.Vec3, n)
	r2 := make([]core.Vec3, n)
	r3 := make([]core.Vec3, n)

	for y := 0; y < resolution; y++ {
		alpha := math.Max(minRoughness, (float64(y)+0.5)/float64(resolution))
		for x := 0; x < resolution; x++ {
			theta := (float64(x) + 0.5) / float64(resolution) * math.Pi / 2
			sin, cos := math.Sincos(theta)

			i := y*resolution + x
			r1[i] = core.NewVec3(alpha*cos, 0, -sin)
			r2[i] = core.NewVec3(0, alpha, 0)
			r3[i] = core.NewVec3(alpha*sin, 0, cos)
		}
	}

	t1 := &GridTable{width: resolution, height: resolution, data: r1}
	t2 := &GridTable{width: resolution, height: resolution, data: r2}
	t3 := &GridTable{width: resolution, height: resolution, data: r3}
	return t1, t2, t3
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func clampIndex(i, n int) int {
	return max(0, min(n-1, i))
}
