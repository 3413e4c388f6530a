package lights

import (
	"fmt"
	"math"

	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/geometry"
	"github.com/df07/go-ltc-raytracer/pkg/ltc"
	"github.com/df07/go-ltc-raytracer/pkg/material"
)

// TriangleLight is a one-sided triangular area emitter evaluated with LTCs.
// It emits from the side its counter-clockwise normal points to.
type TriangleLight struct {
	shape    *geometry.Triangle
	material *material.Emissive
	triangle ltc.Triangle
}

// NewTriangleLight creates a triangle light from world-space vertices
func NewTriangleLight(v0, v1, v2 core.Vec3, mat *material.Emissive) *TriangleLight {
	return newTriangleLight(geometry.NewTriangle(v0, v1, v2, mat), mat)
}

func newTriangleLight(shape *geometry.Triangle, mat *material.Emissive) *TriangleLight {
	return &TriangleLight{
		shape:    shape,
		material: mat,
		triangle: shape.LTC(),
	}
}

// TriangleLightConfig is the declarative form of a triangle light
type TriangleLightConfig struct {
	Vertices [3]core.Vec3
	Radiance core.Vec3
	Texture  material.ColorSource // Overrides Radiance when set
	ToWorld  []float64            // Unsupported; must be empty
}

// NewTriangleLightFromConfig validates a declarative triangle light
func NewTriangleLightFromConfig(cfg TriangleLightConfig) (*TriangleLight, error) {
	if len(cfg.ToWorld) > 0 {
		return nil, ErrWorldTransform
	}
	for i, v := range cfg.Vertices {
		if !v.IsFinite() {
			return nil, fmt.Errorf("triangle light vertex %d is not finite: %v", i, v)
		}
	}

	var mat *material.Emissive
	if cfg.Texture != nil {
		mat = material.NewTexturedEmissive(cfg.Texture)
	} else {
		mat = material.NewEmissive(cfg.Radiance)
	}
	return NewTriangleLight(cfg.Vertices[0], cfg.Vertices[1], cfg.Vertices[2], mat), nil
}

func (tl *TriangleLight) Type() LightType {
	return LightTypeArea
}

// Flags reports LTC support and whether the radiance is textured
func (tl *TriangleLight) Flags() Flags {
	flags := FlagLTC
	if tl.material.SpatiallyVarying() {
		flags |= FlagSpatiallyVarying
	}
	return flags
}

// Geometry returns the emitting triangle
func (tl *TriangleLight) Geometry() (ltc.Triangle, bool) {
	return tl.triangle, true
}

// Radiance evaluates the emissive material at a point on the triangle
func (tl *TriangleLight) Radiance(point core.Vec3) core.Vec3 {
	hit := &material.SurfaceInteraction{
		Point:     point,
		Normal:    tl.triangle.Normal,
		FrontFace: true,
		UV:        tl.uvAt(point),
		Material:  tl.material,
	}
	return tl.material.Emit(core.NewRay(point, tl.triangle.Normal), hit)
}

// uvAt interpolates texture coordinates at a point in the triangle's plane
func (tl *TriangleLight) uvAt(point core.Vec3) core.Vec2 {
	s := tl.shape
	e1 := s.V1.Subtract(s.V0)
	e2 := s.V2.Subtract(s.V0)
	p := point.Subtract(s.V0)

	d00, d01, d11 := e1.Dot(e1), e1.Dot(e2), e2.Dot(e2)
	d20, d21 := p.Dot(e1), p.Dot(e2)
	denom := d00*d11 - d01*d01
	if math.Abs(denom) < 1e-20 {
		return s.UV0
	}
	b1 := (d11*d20 - d01*d21) / denom
	b2 := (d00*d21 - d01*d20) / denom
	b0 := 1 - b1 - b2
	return core.NewVec2(
		b0*s.UV0.X+b1*s.UV1.X+b2*s.UV2.X,
		b0*s.UV0.Y+b1*s.UV1.Y+b2*s.UV2.Y,
	)
}

// Emit returns zero; area lights are seen through their shape
func (tl *TriangleLight) Emit(ray core.Ray) core.Vec3 {
	return core.Vec3{}
}

// BoundingBox returns the triangle bounds
func (tl *TriangleLight) BoundingBox() core.AABB {
	return tl.triangle.BoundingBox()
}

// Shape returns the triangle for direct ray visibility
func (tl *TriangleLight) Shape() *geometry.Triangle {
	return tl.shape
}

// Power estimates emitted flux from the centroid radiance, π·L·A
func (tl *TriangleLight) Power() float64 {
	return math.Pi * tl.Radiance(tl.triangle.Centroid()).Luminance() * tl.triangle.Area()
}

// SamplePoint picks a uniformly distributed point on the light surface
func (tl *TriangleLight) SamplePoint(sample core.Vec2) core.Vec3 {
	b0, b1 := core.SampleUniformTriangle(sample)
	s := tl.shape
	return s.V0.Multiply(b0).Add(s.V1.Multiply(b1)).Add(s.V2.Multiply(1 - b0 - b1))
}
