package loaders

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

// MeshData is triangle soup read from a model file
type MeshData struct {
	Vertices []core.Vec3
	UVs      []core.Vec2 // Per vertex; empty when the file has none
	Faces    []int       // Three indices per counter-clockwise triangle
}

// TriangleCount returns the number of triangles
func (m *MeshData) TriangleCount() int {
	return len(m.Faces) / 3
}

// Triangle returns the vertices of triangle i
func (m *MeshData) Triangle(i int) [3]core.Vec3 {
	return [3]core.Vec3{m.Vertices[m.Faces[3*i]], m.Vertices[m.Faces[3*i+1]], m.Vertices[m.Faces[3*i+2]]}
}

// LoadGLTFTriangles reads every triangle primitive of a .gltf or .glb file
// into one mesh. Node transforms are not applied; positions are used as stored.
func LoadGLTFTriangles(path string) (*MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := &MeshData{}
	haveUVs := true
	for _, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			// Skip lines and points
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: positions: %w", m.Name, pi, err)
			}

			var uvs [][2]float32
			if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
				if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
					return nil, fmt.Errorf("mesh %q primitive %d: uvs: %w", m.Name, pi, err)
				}
			}
			if len(uvs) != len(positions) {
				haveUVs = false
			}

			base := len(mesh.Vertices)
			for i, p := range positions {
				mesh.Vertices = append(mesh.Vertices, core.NewVec3(float64(p[0]), float64(p[1]), float64(p[2])))
				if i < len(uvs) {
					// glTF puts V=0 at the top of the image
					mesh.UVs = append(mesh.UVs, core.NewVec2(float64(uvs[i][0]), 1-float64(uvs[i][1])))
				}
			}

			if prim.Indices != nil {
				indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q primitive %d: indices: %w", m.Name, pi, err)
				}
				for i := 0; i+2 < len(indices); i += 3 {
					mesh.Faces = append(mesh.Faces, base+int(indices[i]), base+int(indices[i+1]), base+int(indices[i+2]))
				}
			} else {
				for i := 0; i+2 < len(positions); i += 3 {
					mesh.Faces = append(mesh.Faces, base+i, base+i+1, base+i+2)
				}
			}
		}
	}

	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("%s: no triangle primitives", path)
	}
	for _, idx := range mesh.Faces {
		if idx < 0 || idx >= len(mesh.Vertices) {
			return nil, fmt.Errorf("%s: index %d out of range", path, idx)
		}
	}
	if !haveUVs {
		mesh.UVs = nil
	}
	return mesh, nil
}
