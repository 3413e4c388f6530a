package renderer

import (
	"fmt"
	"math"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// Metrics summarises the per-channel difference between an image and a
// reference, averaged over all pixels and channels
type Metrics struct {
	MSE    float64 // Mean squared error
	MAE    float64 // Mean absolute error
	Bias   float64 // Mean signed error (image - reference)
	RelAbs float64 // Mean |x-y| / (y + 0.01)
	RelSq  float64 // Mean (x-y)² / (y² + 0.01)
}

// displayGamma is the transfer used when comparing in display space
const displayGamma = 2.2

// Compare computes error metrics of film against reference. With srgb set,
// both are mapped through a 1/2.2 power and clamped to [0,1] first.
func Compare(reference, film *Film, srgb bool) (Metrics, error) {
	if reference.Width != film.Width || reference.Height != film.Height {
		return Metrics{}, fmt.Errorf("image size %dx%d does not match reference %dx%d",
			film.Width, film.Height, reference.Width, reference.Height)
	}

	var m Metrics
	n := 0
	for y := 0; y < film.Height; y++ {
		for x := 0; x < film.Width; x++ {
			want := reference.Color(x, y)
			got := film.Color(x, y)
			if srgb {
				want = toDisplay(want)
				got = toDisplay(got)
			}
			for _, c := range [][2]float64{{got.X, want.X}, {got.Y, want.Y}, {got.Z, want.Z}} {
				diff := c[0] - c[1]
				m.MSE += diff * diff
				m.MAE += math.Abs(diff)
				m.Bias += diff
				m.RelAbs += math.Abs(diff) / (c[1] + 0.01)
				m.RelSq += diff * diff / (c[1]*c[1] + 0.01)
				n++
			}
		}
	}

	if n == 0 {
		return m, nil
	}
	inv := 1 / float64(n)
	m.MSE *= inv
	m.MAE *= inv
	m.Bias *= inv
	m.RelAbs *= inv
	m.RelSq *= inv
	return m, nil
}

func toDisplay(v core.Vec3) core.Vec3 {
	return v.GammaCorrect(displayGamma).Clamp(0, 1)
}
