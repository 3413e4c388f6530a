package material

import (
	"math"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width    int
	Height   int
	Pixels   []core.Vec3 // Row-major: Pixels[y*Width + x], y = 0 is the top row
	Bilinear bool        // Bilinear filtering instead of nearest texel
}

// NewImageTexture creates a new nearest-neighbour image texture
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Evaluate samples the texture at given UV coordinates with repeat wrapping.
// V=0 is the bottom of the image.
func (t *ImageTexture) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	u := wrap(uv.X)
	v := wrap(uv.Y)

	x := u * float64(t.Width)
	y := (1.0 - v) * float64(t.Height)
	if !t.Bilinear {
		return t.texel(int(x), int(y))
	}

	// Texel centres sit at half-integer coordinates
	x -= 0.5
	y -= 0.5
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	top := t.texel(ix, iy).Multiply(1 - fx).Add(t.texel(ix+1, iy).Multiply(fx))
	bottom := t.texel(ix, iy+1).Multiply(1 - fx).Add(t.texel(ix+1, iy+1).Multiply(fx))
	return top.Multiply(1 - fy).Add(bottom.Multiply(fy))
}

// texel fetches a pixel with repeat addressing
func (t *ImageTexture) texel(x, y int) core.Vec3 {
	x = ((x % t.Width) + t.Width) % t.Width
	y = ((y % t.Height) + t.Height) % t.Height
	return t.Pixels[y*t.Width+x]
}

func wrap(x float64) float64 {
	return x - math.Floor(x)
}
