package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// Film accumulates linear radiance per pixel. Row 0 is the top of the image.
type Film struct {
	Width  int
	Height int
	Pixels [][]PixelStats
}

// NewFilm creates an empty film
func NewFilm(width, height int) *Film {
	pixels := make([][]PixelStats, height)
	for y := range pixels {
		pixels[y] = make([]PixelStats, width)
	}
	return &Film{Width: width, Height: height, Pixels: pixels}
}

// Color returns the averaged linear color of a pixel
func (f *Film) Color(x, y int) core.Vec3 {
	return f.Pixels[y][x].GetColor()
}

// ToImage converts the film to 8-bit RGBA with gamma 2 and clamping
func (f *Film) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetRGBA(x, y, vec3ToColor(f.Color(x, y)))
		}
	}
	return img
}

// TileImage converts the pixels inside bounds to an image whose origin is
// the tile's top-left corner
func (f *Film) TileImage(bounds image.Rectangle) *image.RGBA {
	bounds = bounds.Intersect(image.Rect(0, 0, f.Width, f.Height))
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, vec3ToColor(f.Color(x, y)))
		}
	}
	return img
}

// vec3ToColor converts a Vec3 color to RGBA with proper clamping and gamma correction
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	// Apply gamma correction (gamma = 2.0)
	colorVec = colorVec.GammaCorrect(2.0)

	// Clamp to valid color range
	colorVec = colorVec.Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}

// Stats summarises the samples accumulated in the film so far
func (f *Film) Stats() RenderStats {
	stats := RenderStats{TotalPixels: f.Width * f.Height}
	if stats.TotalPixels == 0 {
		return stats
	}
	stats.MinSamples = f.Pixels[0][0].SampleCount
	for y := range f.Pixels {
		for x := range f.Pixels[y] {
			count := f.Pixels[y][x].SampleCount
			stats.TotalSamples += count
			stats.MinSamples = min(stats.MinSamples, count)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, count)
		}
	}
	stats.MaxSamples = stats.MaxSamplesUsed
	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	return stats
}
