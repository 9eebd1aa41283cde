package model

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshport/internal/engine/gfx"
	"github.com/Faultbox/meshport/internal/engine/importer"
	"github.com/Faultbox/meshport/internal/engine/texture"
	"github.com/Faultbox/meshport/internal/logger"
)

// DefaultPostProcess is the set of import steps applied by NewLoader.
const DefaultPostProcess = importer.Triangulate | importer.GenSmoothNormals |
	importer.FlipUVs | importer.CalcTangentSpace

// Loader imports model files into Models. Import is synchronous and must run
// on the thread that owns the graphics context behind Device.
type Loader struct {
	Device   gfx.Device
	Textures *texture.Cache
	Importer *importer.Importer
	Flags    importer.PostProcess

	// ShareMaterials gives meshes that use the same scene material one shared
	// Material. When false every mesh gets its own.
	ShareMaterials bool
	// SRGBAlbedo loads albedo textures in an sRGB format.
	SRGBAlbedo bool
}

// NewLoader returns a Loader with the default importer and post-process steps.
func NewLoader(dev gfx.Device, textures *texture.Cache) *Loader {
	return &Loader{
		Device:   dev,
		Textures: textures,
		Importer: importer.New(),
		Flags:    DefaultPostProcess,
	}
}

// Load imports the file at path. It never fails outright: on import failure
// the error is logged and a Model with no meshes is returned, with Err set.
func (l *Loader) Load(path string) *Model {
	scene, err := l.Importer.ReadFile(path, l.Flags)
	if err != nil || scene == nil || scene.Incomplete() || scene.Root == nil {
		reason := l.Importer.ErrorString()
		if reason == "" {
			reason = "scene has no root node"
		}
		logger.Error("failed to import model", zap.String("path", path), zap.String("error", reason))
		return &Model{
			filePath: path,
			err:      fmt.Errorf("%w: %s: %s", ErrImportFailure, path, reason),
		}
	}

	b := &sceneBuilder{
		loader:    l,
		scene:     scene,
		dir:       modelDirectory(path),
		materials: make(map[int]*Material),
	}
	m := &Model{
		name:     scene.Root.Name,
		filePath: path,
	}
	scene.Root.Walk(func(n *importer.Node) {
		for _, idx := range n.Meshes {
			if mesh := b.processMesh(scene.Meshes[idx]); mesh != nil {
				m.meshes = append(m.meshes, mesh)
			}
		}
	})
	b.releaseShared()

	logger.Info("model imported",
		zap.String("path", path),
		zap.String("name", m.name),
		zap.Int("meshes", len(m.meshes)),
	)
	return m
}

// modelDirectory returns path up to and including its last separator, or ""
// when path has none. Both separators are accepted regardless of platform.
func modelDirectory(path string) string {
	i := strings.LastIndexAny(path, `/\`)
	if i < 0 {
		return ""
	}
	return path[:i+1]
}

// sceneBuilder holds per-import state.
type sceneBuilder struct {
	loader    *Loader
	scene     *importer.Scene
	dir       string
	materials map[int]*Material
}

// processMesh copies one scene mesh into engine vertices and indices and
// attaches its material. Meshes that fail validation are logged and skipped.
func (b *sceneBuilder) processMesh(src *importer.Mesh) *Mesh {
	hasNormals := src.HasNormals()
	hasUVs := src.HasTexCoords()
	hasTangents := hasUVs && src.HasTangentSpace()

	vertices := make([]Vertex, len(src.Positions))
	for i := range src.Positions {
		v := Vertex{Position: src.Positions[i]}
		if hasNormals {
			v.Normal = src.Normals[i]
		}
		if hasUVs {
			uv := src.TexCoords[i]
			v.TexCoords[0] = uv[0]
			v.TexCoords[1] = 1 - uv[1]
		}
		if hasTangents {
			v.Tangent = src.Tangents[i]
			v.Bitangent = src.Bitangents[i]
		}
		vertices[i] = v
	}

	indices := make([]uint32, 0, len(src.Faces)*3)
	for i, f := range src.Faces {
		if len(f) != 3 {
			logger.Error("skipping mesh with non-triangle face",
				zap.String("mesh", src.Name), zap.Int("face", i), zap.Int("corners", len(f)))
			return nil
		}
		indices = append(indices, f...)
	}

	mesh, err := NewMesh(b.loader.Device, src.Name, vertices, indices)
	if err != nil {
		logger.Error("skipping mesh", zap.String("mesh", src.Name), zap.Error(err))
		return nil
	}
	mesh.SetMaterial(b.material(src.MaterialIndex))
	return mesh
}

// material returns the Material for a scene material index, sharing one
// instance per index when the loader is configured to.
func (b *sceneBuilder) material(idx int) *Material {
	if !b.loader.ShareMaterials {
		return b.resolveMaterial(b.scene.Materials[idx])
	}
	if m, ok := b.materials[idx]; ok {
		return m.Acquire()
	}
	m := b.resolveMaterial(b.scene.Materials[idx])
	b.materials[idx] = m
	return m.Acquire()
}

// releaseShared drops the builder's own references to shared materials.
func (b *sceneBuilder) releaseShared() {
	for _, m := range b.materials {
		m.Release()
	}
}

// resolveMaterial builds a Material from the first diffuse texture of src.
// Without one the albedo slot stays absent and no texture is looked up.
func (b *sceneBuilder) resolveMaterial(src *importer.Material) *Material {
	m := NewMaterial(src.Name)

	name, ok := src.Texture(importer.TextureDiffuse, 0)
	if !ok || name == "" {
		return m
	}
	m.SetTexture(SlotAlbedo, b.loader.Textures.Load(b.dir+name, b.loader.SRGBAlbedo))
	return m
}
