package loaders

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// quadrants is a 2x2 image: white, red on top; green, blue below
func quadrants() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 255, A: 255})
	img.Set(0, 1, color.RGBA{G: 255, A: 255})
	img.Set(1, 1, color.RGBA{B: 255, A: 255})
	return img
}

func writeImage(t *testing.T, path string, img image.Image, encode func(io.Writer, image.Image) error) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	defer f.Close()
	if err := encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
}

func TestLoadImage(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		encode func(io.Writer, image.Image) error
	}{
		{"png", "test.png", png.Encode},
		{"bmp", "test.bmp", bmp.Encode},
		{"tiff", "test.tiff", func(w io.Writer, img image.Image) error { return tiff.Encode(w, img, nil) }},
	}

	expected := []core.Vec3{
		core.NewVec3(1, 1, 1),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, 0, 1),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeImage(t, path, quadrants(), tt.encode)

			data, err := LoadImage(path)
			if err != nil {
				t.Fatalf("LoadImage failed: %v", err)
			}
			if data.Width != 2 || data.Height != 2 || len(data.Pixels) != 4 {
				t.Fatalf("Expected 2x2 image, got %dx%d with %d pixels", data.Width, data.Height, len(data.Pixels))
			}
			for i, want := range expected {
				if !data.Pixels[i].Subtract(want).IsZero() {
					t.Errorf("Pixel %d: expected %v, got %v", i, want, data.Pixels[i])
				}
			}
		})
	}
}

// 16-bit images keep precision beyond 8 bits, which LTC tables rely on
func TestLoadImageSixteenBit(t *testing.T) {
	img := image.NewRGBA64(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA64{R: 1, G: 32768, B: 65535, A: 65535})

	path := filepath.Join(t.TempDir(), "deep.png")
	writeImage(t, path, img, png.Encode)

	data, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	got := data.Pixels[0]
	if math.Abs(got.X-1.0/65535) > 1e-12 || math.Abs(got.Y-32768.0/65535) > 1e-12 || got.Z != 1 {
		t.Errorf("Expected 16-bit values preserved, got %v", got)
	}
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "nonexistent.png"), garbage} {
		if _, err := LoadImage(path); err == nil {
			t.Errorf("Expected error loading %s", filepath.Base(path))
		}
	}
}

// The bilinear texture keeps the image orientation: row 0 is the top (v=1)
func TestImageDataTexture(t *testing.T) {
	data := &ImageData{
		Width:  1,
		Height: 2,
		Pixels: []core.Vec3{core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1)},
	}
	tex := data.Texture()
	if !tex.Bilinear {
		t.Error("Expected bilinear filtering")
	}
	// V=0.25 is the centre of the bottom row
	got := tex.Evaluate(core.NewVec2(0.5, 0.25), core.Vec3{})
	if math.Abs(got.Z-1) > 1e-9 || math.Abs(got.X) > 1e-9 {
		t.Errorf("Expected bottom row blue, got %v", got)
	}
}
