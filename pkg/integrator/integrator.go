package integrator

import (
	"fmt"

	"github.com/df07/go-ltc-raytracer/pkg/config"
	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/scene"
)

// Ray parameter range for camera rays
const (
	tMin = 0.001
	tMax = 1e30
)

// Integrator defines the interface for direct lighting estimators
type Integrator interface {
	// RayColor computes the radiance arriving along a camera ray. The scene
	// must be preprocessed; the sampler is owned by the calling worker.
	RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Vec3
}

// New creates the integrator named by the render configuration
func New(cfg config.RenderConfig) (Integrator, error) {
	switch cfg.Integrator {
	case config.IntegratorLTC:
		return NewLTCIntegrator(cfg.HideEmitters), nil
	case config.IntegratorSampled:
		return NewSampledLTCIntegrator(cfg.HideEmitters), nil
	case config.IntegratorRIS:
		return NewRISLTCIntegrator(cfg.HideEmitters, cfg.RIS.NumProposals, cfg.RIS.PDFSamples), nil
	case config.IntegratorReference:
		return NewReferenceIntegrator(cfg.HideEmitters, cfg.Reference.Samples), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q: %w", cfg.Integrator, config.ErrInvalid)
	}
}
