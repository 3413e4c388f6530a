package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/geometry"
	"github.com/df07/go-ltc-raytracer/pkg/lights"
	"github.com/df07/go-ltc-raytracer/pkg/loaders"
	"github.com/df07/go-ltc-raytracer/pkg/material"
)

// Description is the YAML form of a scene
type Description struct {
	Camera    CameraDescription              `yaml:"camera"`
	Image     ImageDescription               `yaml:"image"`
	Materials map[string]MaterialDescription `yaml:"materials"`
	Shapes    []ShapeDescription             `yaml:"shapes"`
	Lights    []LightDescription             `yaml:"lights"`
}

// Vec is a YAML [x, y, z] triple
type Vec [3]float64

func (v Vec) vec3() core.Vec3 { return core.NewVec3(v[0], v[1], v[2]) }

type CameraDescription struct {
	Center Vec     `yaml:"center"`
	LookAt Vec     `yaml:"look_at"`
	Up     *Vec    `yaml:"up"` // Defaults to +Y
	VFov   float64 `yaml:"vfov"`
}

type ImageDescription struct {
	Width           int `yaml:"width"`
	Height          int `yaml:"height"`
	SamplesPerPixel int `yaml:"samples_per_pixel"`
}

// MaterialDescription is one of lambertian, ggx
type MaterialDescription struct {
	Type      string              `yaml:"type"`
	Albedo    Vec                 `yaml:"albedo"`
	Texture   *TextureDescription `yaml:"texture"` // Overrides Albedo
	Specular  Vec                 `yaml:"specular"`
	Roughness float64             `yaml:"roughness"`
}

// TextureDescription is one of checker, gradient, image
type TextureDescription struct {
	Type  string  `yaml:"type"`
	Even  Vec     `yaml:"even"`
	Odd   Vec     `yaml:"odd"`
	Size  float64 `yaml:"size"`
	Start Vec     `yaml:"start"`
	End   Vec     `yaml:"end"`
	File  string  `yaml:"file"`
	Scale float64 `yaml:"scale"` // Multiplies image texels; 0 means 1
}

// ShapeDescription is one of quad, sphere, triangle, mesh
type ShapeDescription struct {
	Type     string  `yaml:"type"`
	Material string  `yaml:"material"`
	Corner   Vec     `yaml:"corner"`
	U        Vec     `yaml:"u"`
	V        Vec     `yaml:"v"`
	Center   Vec     `yaml:"center"`
	Radius   float64 `yaml:"radius"`
	Vertices []Vec   `yaml:"vertices"`
	File     string  `yaml:"file"`
	Scale    float64 `yaml:"scale"`
	Offset   Vec     `yaml:"offset"`
	Rotation *Vec    `yaml:"rotation"` // Radians about X, Y, Z
}

// LightDescription is one of triangle, quad, gltf, infinite
type LightDescription struct {
	Type     string              `yaml:"type"`
	Radiance Vec                 `yaml:"radiance"`
	Texture  *TextureDescription `yaml:"texture"`
	Vertices []Vec               `yaml:"vertices"`
	Corner   Vec                 `yaml:"corner"`
	U        Vec                 `yaml:"u"`
	V        Vec                 `yaml:"v"`
	File     string              `yaml:"file"`
	ToWorld  []float64           `yaml:"to_world"`
}

// LoadDescription reads a YAML scene description. Relative file references
// resolve against the description's directory. Every invalid entry is
// reported in the returned error.
func LoadDescription(path string, logger *zap.Logger) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading scene %s: %w", path, err)
	}

	var desc Description
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&desc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing scene %s: %w", path, err)
	}

	s, err := desc.Build(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("building scene %s: %w", path, err)
	}
	if logger != nil {
		logger.Debug("scene description loaded",
			zap.String("path", path),
			zap.Int("shapes", len(s.Shapes)),
			zap.Int("lights", len(s.Lights)))
	}
	return s, nil
}

// Build constructs a scene, resolving relative files against baseDir
func (d *Description) Build(baseDir string) (*Scene, error) {
	b := &builder{baseDir: baseDir, materials: make(map[string]material.Material)}

	up := core.NewVec3(0, 1, 0)
	if d.Camera.Up != nil {
		up = d.Camera.Up.vec3()
	}
	vfov := d.Camera.VFov
	if vfov == 0 {
		vfov = 40
	}
	s := &Scene{
		CameraConfig: geometry.CameraConfig{
			Center: d.Camera.Center.vec3(),
			LookAt: d.Camera.LookAt.vec3(),
			Up:     up,
			VFov:   vfov,
		},
		SamplingConfig: SamplingConfig{
			Width:           orDefault(d.Image.Width, 400),
			Height:          orDefault(d.Image.Height, 400),
			SamplesPerPixel: orDefault(d.Image.SamplesPerPixel, 4),
		},
	}
	if s.CameraConfig.Center == s.CameraConfig.LookAt {
		b.fail("camera center and look_at coincide")
	}

	for name, md := range d.Materials {
		mat, err := b.material(md)
		if err != nil {
			b.fail("material %q: %v", name, err)
			continue
		}
		b.materials[name] = mat
	}

	for i, sd := range d.Shapes {
		shape, err := b.shape(sd)
		if err != nil {
			b.fail("shape %d (%s): %v", i, sd.Type, err)
			continue
		}
		s.AddShapes(shape)
	}

	for i, ld := range d.Lights {
		if err := b.light(s, ld); err != nil {
			b.fail("light %d (%s): %w", i, ld.Type, err)
		}
	}

	if b.errs != nil {
		return nil, b.errs
	}
	return s, nil
}

type builder struct {
	baseDir   string
	materials map[string]material.Material
	errs      error
}

func (b *builder) fail(format string, args ...any) {
	b.errs = multierr.Append(b.errs, fmt.Errorf(format, args...))
}

func (b *builder) path(file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(b.baseDir, file)
}

func (b *builder) texture(td TextureDescription) (material.ColorSource, error) {
	switch td.Type {
	case "checker":
		size := td.Size
		if size <= 0 {
			size = 1
		}
		return material.NewCheckerboard(td.Even.vec3(), td.Odd.vec3(), size), nil
	case "gradient":
		return &material.UVGradient{Start: td.Start.vec3(), End: td.End.vec3()}, nil
	case "image":
		img, err := loaders.LoadImage(b.path(td.File))
		if err != nil {
			return nil, err
		}
		if td.Scale != 0 {
			for i := range img.Pixels {
				img.Pixels[i] = img.Pixels[i].Multiply(td.Scale)
			}
		}
		return img.Texture(), nil
	default:
		return nil, fmt.Errorf("unknown texture type %q", td.Type)
	}
}

func (b *builder) material(md MaterialDescription) (material.Material, error) {
	var albedo material.ColorSource = material.NewSolidColor(md.Albedo.vec3())
	if md.Texture != nil {
		tex, err := b.texture(*md.Texture)
		if err != nil {
			return nil, err
		}
		albedo = tex
	}

	switch md.Type {
	case "lambertian":
		return material.NewTexturedLambertian(albedo), nil
	case "ggx":
		if md.Roughness < 0 || md.Roughness > 1 {
			return nil, fmt.Errorf("roughness %g outside [0,1]", md.Roughness)
		}
		ggx := material.NewGGX(core.Vec3{}, md.Specular.vec3(), md.Roughness)
		ggx.Albedo = albedo
		return ggx, nil
	default:
		return nil, fmt.Errorf("unknown material type %q", md.Type)
	}
}

func (b *builder) lookup(name string) (material.Material, error) {
	mat, ok := b.materials[name]
	if !ok {
		return nil, fmt.Errorf("unknown material %q", name)
	}
	return mat, nil
}

func (b *builder) shape(sd ShapeDescription) (geometry.Shape, error) {
	mat, err := b.lookup(sd.Material)
	if err != nil {
		return nil, err
	}

	switch sd.Type {
	case "quad":
		return geometry.NewQuad(sd.Corner.vec3(), sd.U.vec3(), sd.V.vec3(), mat), nil
	case "sphere":
		if sd.Radius <= 0 {
			return nil, fmt.Errorf("radius must be positive, got %g", sd.Radius)
		}
		return geometry.NewSphere(sd.Center.vec3(), sd.Radius, mat), nil
	case "triangle":
		if len(sd.Vertices) != 3 {
			return nil, fmt.Errorf("need 3 vertices, got %d", len(sd.Vertices))
		}
		return geometry.NewTriangle(sd.Vertices[0].vec3(), sd.Vertices[1].vec3(), sd.Vertices[2].vec3(), mat), nil
	case "mesh":
		mesh, err := loaders.LoadGLTFTriangles(b.path(sd.File))
		if err != nil {
			return nil, err
		}
		opts := &geometry.TriangleMeshOptions{
			UVs:    mesh.UVs,
			Scale:  sd.Scale,
			Offset: sd.Offset.vec3(),
		}
		if sd.Rotation != nil {
			rotation := sd.Rotation.vec3()
			opts.Rotation = &rotation
		}
		return geometry.NewTriangleMesh(mesh.Vertices, mesh.Faces, mat, opts)
	default:
		return nil, fmt.Errorf("unknown shape type %q", sd.Type)
	}
}

func (b *builder) light(s *Scene, ld LightDescription) error {
	if ld.Type != "infinite" && len(ld.ToWorld) > 0 {
		return lights.ErrWorldTransform
	}

	var radiance material.ColorSource
	if ld.Texture != nil {
		tex, err := b.texture(*ld.Texture)
		if err != nil {
			return err
		}
		radiance = tex
	}

	switch ld.Type {
	case "triangle":
		if len(ld.Vertices) != 3 {
			return fmt.Errorf("need 3 vertices, got %d", len(ld.Vertices))
		}
		light, err := lights.NewTriangleLightFromConfig(lights.TriangleLightConfig{
			Vertices: [3]core.Vec3{ld.Vertices[0].vec3(), ld.Vertices[1].vec3(), ld.Vertices[2].vec3()},
			Radiance: ld.Radiance.vec3(),
			Texture:  radiance,
		})
		if err != nil {
			return err
		}
		s.AddLight(light)
	case "quad":
		if radiance == nil {
			radiance = material.NewSolidColor(ld.Radiance.vec3())
		}
		s.AddTexturedQuadLight(ld.Corner.vec3(), ld.U.vec3(), ld.V.vec3(), radiance)
	case "gltf":
		mesh, err := loaders.LoadGLTFTriangles(b.path(ld.File))
		if err != nil {
			return err
		}
		s.AddMeshLights(mesh, ld.Radiance.vec3())
	case "infinite":
		s.AddUniformInfiniteLight(ld.Radiance.vec3())
	default:
		return fmt.Errorf("unknown light type %q", ld.Type)
	}
	return nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
