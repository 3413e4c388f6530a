package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/geometry"
	"github.com/df07/go-ltc-raytracer/pkg/integrator"
	"github.com/df07/go-ltc-raytracer/pkg/material"
	"github.com/df07/go-ltc-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	MaterialType string         `json:"materialType"`
	GeometryType string         `json:"geometryType"`
	Point        [3]float64     `json:"point"`
	Normal       [3]float64     `json:"normal"`
	Distance     float64        `json:"distance"`
	FrontFace    bool           `json:"frontFace"`
	Properties   map[string]any `json:"properties"`
	Lights       []LightSample  `json:"lights"`
	Total        [3]float64     `json:"total"` // Sum of the LTC contributions
}

// LightSample is the analytic evaluation of one LTC light at the inspected point
type LightSample struct {
	Index        int        `json:"index"`
	Vertices     [3]vec     `json:"vertices"`
	Radiance     [3]float64 `json:"radiance"`
	DiffuseClip  string     `json:"diffuseClip"`
	SpecularClip string     `json:"specularClip"`
	Diffuse      float64    `json:"diffuse"`
	Specular     float64    `json:"specular"`
	Contribution [3]float64 `json:"contribution"`
	Probability  float64    `json:"probability"` // Chance the sampled integrators pick this light
}

type vec = [3]float64

func toArray(v core.Vec3) vec {
	return vec{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	c := v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo describes the material and its shading parameters at hit
func extractMaterialInfo(hit *material.SurfaceInteraction) (string, map[string]any) {
	properties := make(map[string]any)

	switch m := hit.Material.(type) {
	case *material.Lambertian:
		albedo := m.Albedo.Evaluate(hit.UV, hit.Point)
		properties["albedo"] = toArray(albedo)
		properties["color"] = hexColor(albedo)
		properties["textured"] = !material.IsUniform(m.Albedo)
		return "lambertian", properties

	case *material.GGX:
		params := m.Shading(hit)
		properties["albedo"] = toArray(params.Albedo)
		properties["specular"] = toArray(params.Specular)
		properties["roughness"] = params.Roughness
		properties["color"] = hexColor(params.Albedo)
		properties["textured"] = !material.IsUniform(m.Albedo)
		return "ggx", properties

	case *material.Emissive:
		emission := m.Emit(core.Ray{}, hit)
		properties["emission"] = toArray(emission)
		properties["color"] = hexColor(emission)
		properties["spatiallyVarying"] = m.SpatiallyVarying()
		return "emissive", properties

	default:
		return "unknown", properties
	}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(shape geometry.Shape) (string, map[string]any) {
	properties := make(map[string]any)

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = toArray(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Quad:
		properties["corner"] = toArray(geom.Corner)
		properties["u"] = toArray(geom.U)
		properties["v"] = toArray(geom.V)
		properties["normal"] = toArray(geom.Normal)
		return "quad", properties

	case *geometry.Triangle:
		properties["vertices"] = [3]vec{toArray(geom.V0), toArray(geom.V1), toArray(geom.V2)}
		properties["normal"] = toArray(geom.Normal())
		return "triangle", properties

	case *geometry.TriangleMesh:
		properties["triangleCount"] = geom.TriangleCount()
		bbox := geom.BoundingBox()
		properties["boundingBox"] = map[string]any{
			"min": toArray(bbox.Min),
			"max": toArray(bbox.Max),
		}
		return "triangle_mesh", properties

	default:
		return "unknown", properties
	}
}

// InspectResult contains rich information about an object hit by an inspection ray
type InspectResult struct {
	Hit       bool
	Ray       core.Ray
	HitRecord *material.SurfaceInteraction
	Shape     geometry.Shape // The shape that was hit, nil if not found
}

// inspectPixel casts a ray through the centre of a pixel of a preprocessed
// scene. Row 0 is the top of the image.
func inspectPixel(sceneObj *scene.Scene, pixelX, pixelY int) InspectResult {
	u := (float64(pixelX) + 0.5) / float64(sceneObj.SamplingConfig.Width)
	v := 1 - (float64(pixelY)+0.5)/float64(sceneObj.SamplingConfig.Height)
	ray := sceneObj.Camera.GetRay(u, v)

	hit, isHit := sceneObj.Hit(ray, 0.001, math.Inf(1))
	if !isHit {
		return InspectResult{Ray: ray}
	}

	// The BVH doesn't return the shape, so find the one at the same distance
	for _, shape := range sceneObj.Shapes {
		if shapeHit, ok := shape.Hit(ray, 0.001, hit.T+0.001); ok && shapeHit.T == hit.T {
			return InspectResult{Hit: true, Ray: ray, HitRecord: hit, Shape: shape}
		}
	}
	return InspectResult{Hit: true, Ray: ray, HitRecord: hit}
}

// evaluateLights runs the analytic evaluation of every LTC light at hit
func evaluateLights(sceneObj *scene.Scene, ray core.Ray, hit *material.SurfaceInteraction) ([]LightSample, core.Vec3) {
	sp := integrator.NewShadingPoint(ray, hit, sceneObj.Resolver)

	var total core.Vec3
	samples := make([]LightSample, 0, len(sceneObj.LTCLights))
	for i, light := range sceneObj.LTCLights {
		lt, ok := sp.TraceLight(light)
		if !ok {
			continue
		}
		total = total.Add(lt.Contribution)

		samples = append(samples, LightSample{
			Index:        i,
			Vertices:     [3]vec{toArray(lt.Light.V0), toArray(lt.Light.V1), toArray(lt.Light.V2)},
			Radiance:     toArray(lt.Radiance),
			DiffuseClip:  lt.Trace.Diffuse.Case.String(),
			SpecularClip: lt.Trace.Specular.Case.String(),
			Diffuse:      lt.Trace.Result.Diffuse,
			Specular:     lt.Trace.Result.Specular,
			Contribution: toArray(lt.Contribution),
			Probability:  sceneObj.LightSampler.LightProbability(i, hit.Point, hit.Normal),
		})
	}
	return samples, total
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, sceneObj, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	result := inspectPixel(sceneObj, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	hit := result.HitRecord
	materialType, materialProps := extractMaterialInfo(hit)
	geometryType, geometryProps := extractGeometryInfo(result.Shape)

	response := InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        toArray(hit.Point),
		Normal:       toArray(hit.Normal),
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Properties: map[string]any{
			"material": materialProps,
			"geometry": geometryProps,
		},
	}
	if _, emits := hit.Material.(material.Emitter); !emits {
		samples, total := evaluateLights(sceneObj, result.Ray, hit)
		response.Lights = samples
		response.Total = toArray(total)
	}

	writeJSON(w, http.StatusOK, response)
}
