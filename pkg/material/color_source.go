package material

import (
	"math"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// ColorSource provides spatially-varying colors for materials and emitters
type ColorSource interface {
	// Evaluate returns color at given UV coordinates and 3D point
	// UV is used for image textures, point for procedural textures
	Evaluate(uv core.Vec2, point core.Vec3) core.Vec3
}

// SolidColor provides uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV or position
func (s *SolidColor) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	return s.Color
}

// IsUniform reports whether a color source is the same everywhere
func IsUniform(source ColorSource) bool {
	_, ok := source.(*SolidColor)
	return ok
}

// Checkerboard alternates two colors on a 3D lattice of the given cell size
type Checkerboard struct {
	Even, Odd core.Vec3
	Size      float64
}

// NewCheckerboard creates a world-space checkerboard
func NewCheckerboard(even, odd core.Vec3, size float64) *Checkerboard {
	return &Checkerboard{Even: even, Odd: odd, Size: size}
}

// Evaluate picks the color of the lattice cell containing point
func (c *Checkerboard) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	if c.Size <= 0 {
		return c.Even
	}
	sum := int(math.Floor(point.X/c.Size)) + int(math.Floor(point.Y/c.Size)) + int(math.Floor(point.Z/c.Size))
	if sum%2 == 0 {
		return c.Even
	}
	return c.Odd
}

// UVGradient blends two colors along the U texture coordinate
type UVGradient struct {
	Start, End core.Vec3
}

// Evaluate interpolates between Start (u=0) and End (u=1)
func (g *UVGradient) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	t := math.Max(0, math.Min(1, uv.X))
	return g.Start.Multiply(1 - t).Add(g.End.Multiply(t))
}
