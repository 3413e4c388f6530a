package ltc

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

const (
	minRoughness   = 0.01
	maxRoughness   = 0.99
	minDeterminant = 1e-8 // inversion floor for near-singular table entries
)

// Transform holds an LTC matrix M and its inverse
type Transform struct {
	M   mgl64.Mat3
	Inv mgl64.Mat3
}

// NewTransform inverts m through its adjugate. The determinant is clamped
// away from zero (keeping its sign) so a singular matrix yields large but
// finite entries rather than NaN.
func NewTransform(m mgl64.Mat3) Transform {
	det := m.Det()
	if math.Abs(det) < minDeterminant {
		if det < 0 {
			det = -minDeterminant
		} else {
			det = minDeterminant
		}
	}

	r0, r1, r2 := m.Row(0), m.Row(1), m.Row(2)
	adjugate := mgl64.Mat3FromCols(r1.Cross(r2), r2.Cross(r0), r0.Cross(r1))
	return Transform{M: m, Inv: adjugate.Mul(1 / det)}
}

// IdentityTransform returns the transform with M = I
func IdentityTransform() Transform {
	return Transform{M: mgl64.Ident3(), Inv: mgl64.Ident3()}
}

// Row returns row i of M
func (t Transform) Row(i int) core.Vec3 {
	return fromMgl(t.M.Row(i))
}

// InvRow returns row i of M⁻¹
func (t Transform) InvRow(i int) core.Vec3 {
	return fromMgl(t.Inv.Row(i))
}

// Apply returns M·v
func (t Transform) Apply(v core.Vec3) core.Vec3 {
	return fromMgl(t.M.Mul3x1(toMgl(v)))
}

// ApplyInverse returns M⁻¹·v
func (t Transform) ApplyInverse(v core.Vec3) core.Vec3 {
	return core.Vec3{X: t.InvRow(0).Dot(v), Y: t.InvRow(1).Dot(v), Z: t.InvRow(2).Dot(v)}
}

// LookupCoords maps a local view direction and roughness to table coordinates
func LookupCoords(wiLocal core.Vec3, roughness float64) (u, v float64) {
	cosTheta := clamp(wiLocal.Z, -1, 1)
	u = clamp(math.Acos(cosTheta)*2/math.Pi, 0, 1)
	v = clamp(roughness, minRoughness, maxRoughness)
	return u, v
}

// Resolver assembles per-query transforms from three row tables.
// It only reads its tables, so one Resolver is shared by all render workers.
type Resolver struct {
	rows        [3]Table
	columnMajor bool
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithColumnMajor treats the three tables as columns of M instead of rows.
// Some published tables are laid out this way.
func WithColumnMajor() ResolverOption {
	return func(r *Resolver) {
		r.columnMajor = true
	}
}

// NewResolver creates a resolver; all three tables are required
func NewResolver(r1, r2, r3 Table, opts ...ResolverOption) (*Resolver, error) {
	rows := [3]Table{r1, r2, r3}
	for i, table := range rows {
		if table == nil {
			return nil, fmt.Errorf("%w: row %d", ErrMissingTable, i+1)
		}
	}

	r := &Resolver{rows: rows}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve looks up M for the given view direction and roughness
func (r *Resolver) Resolve(wiLocal core.Vec3, roughness float64) Transform {
	u, v := LookupCoords(wiLocal, roughness)

	m := mgl64.Mat3FromRows(
		toMgl(r.rows[0].Eval(u, v)),
		toMgl(r.rows[1].Eval(u, v)),
		toMgl(r.rows[2].Eval(u, v)),
	)
	if r.columnMajor {
		m = m.Transpose()
	}
	return NewTransform(m)
}

func toMgl(v core.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) core.Vec3 {
	return core.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
