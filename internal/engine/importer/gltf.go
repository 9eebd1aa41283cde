package importer

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// defaultMaterialName names the material given to primitives without one.
const defaultMaterialName = "DefaultMaterial"

// ReadGLTF reads a glTF 2.0 file (.gltf or .glb). Every primitive becomes one
// Mesh. Accessor read failures mark the scene incomplete instead of failing.
func ReadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	r := &gltfReader{
		doc:   doc,
		scene: &Scene{},
		name:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}
	r.readMaterials()
	r.readMeshes()
	r.readHierarchy()
	return r.scene, nil
}

type gltfReader struct {
	doc   *gltf.Document
	scene *Scene
	name  string

	// meshMap maps a glTF mesh index to the scene meshes built from its primitives.
	meshMap [][]int
	// defaultMaterial is the index of the fallback material, -1 until needed.
	defaultMaterial int
}

func (r *gltfReader) readMaterials() {
	for i, m := range r.doc.Materials {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("material_%d", i)
		}
		mat := NewMaterial(name)
		if pbr := m.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
			if tex, ok := r.textureName(pbr.BaseColorTexture.Index); ok {
				mat.AddTexture(TextureDiffuse, tex)
			}
		}
		if m.EmissiveTexture != nil {
			if tex, ok := r.textureName(m.EmissiveTexture.Index); ok {
				mat.AddTexture(TextureEmissive, tex)
			}
		}
		r.scene.Materials = append(r.scene.Materials, mat)
	}
	r.defaultMaterial = -1
}

// textureName resolves a texture index to the image reference stored in the
// file. Embedded images have no file name and are reported as "*<image index>".
func (r *gltfReader) textureName(texIdx int) (string, bool) {
	if texIdx < 0 || texIdx >= len(r.doc.Textures) {
		r.scene.Warn(fmt.Sprintf("texture index %d out of range", texIdx))
		return "", false
	}
	src := r.doc.Textures[texIdx].Source
	if src == nil || *src < 0 || *src >= len(r.doc.Images) {
		return "", false
	}
	img := r.doc.Images[*src]
	if img.URI == "" || img.IsEmbeddedResource() {
		return fmt.Sprintf("*%d", *src), true
	}
	name, err := url.PathUnescape(img.URI)
	if err != nil {
		return img.URI, true
	}
	return name, true
}

func (r *gltfReader) materialIndex(prim *gltf.Primitive) int {
	if prim.Material != nil && *prim.Material >= 0 && *prim.Material < len(r.doc.Materials) {
		return *prim.Material
	}
	if r.defaultMaterial < 0 {
		r.scene.Materials = append(r.scene.Materials, NewMaterial(defaultMaterialName))
		r.defaultMaterial = len(r.scene.Materials) - 1
	}
	return r.defaultMaterial
}

func (r *gltfReader) readMeshes() {
	r.meshMap = make([][]int, len(r.doc.Meshes))
	for mi, gm := range r.doc.Meshes {
		for pi, prim := range gm.Primitives {
			name := gm.Name
			if len(gm.Primitives) > 1 {
				name = fmt.Sprintf("%s_%d", gm.Name, pi)
			}
			mesh, err := r.readPrimitive(name, prim)
			if err != nil {
				r.scene.MarkIncomplete(fmt.Sprintf("mesh %d primitive %d: %v", mi, pi, err))
				continue
			}
			if mesh == nil {
				continue
			}
			r.meshMap[mi] = append(r.meshMap[mi], len(r.scene.Meshes))
			r.scene.Meshes = append(r.scene.Meshes, mesh)
		}
	}
}

func (r *gltfReader) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(r.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return r.doc.Accessors[idx], nil
}

// readPrimitive converts one primitive. Point and line primitives yield nil.
func (r *gltfReader) readPrimitive(name string, prim *gltf.Primitive) (*Mesh, error) {
	switch prim.Mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
	default:
		r.scene.Warn(fmt.Sprintf("%s: skipping non-triangle primitive mode %d", name, prim.Mode))
		return nil, nil
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	acr, err := r.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(r.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	mesh := &Mesh{
		Name:          name,
		Positions:     make([]mgl32.Vec3, len(positions)),
		MaterialIndex: r.materialIndex(prim),
	}
	for i, p := range positions {
		mesh.Positions[i] = p
	}

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if acr, err = r.accessor(idx); err != nil {
			return nil, err
		}
		normals, err := modeler.ReadNormal(r.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		if len(normals) == len(positions) {
			mesh.Normals = make([]mgl32.Vec3, len(normals))
			for i, n := range normals {
				mesh.Normals[i] = n
			}
		}
	}

	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if acr, err = r.accessor(idx); err != nil {
			return nil, err
		}
		uvs, err := modeler.ReadTextureCoord(r.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
		if len(uvs) == len(positions) {
			mesh.TexCoords = make([]mgl32.Vec2, len(uvs))
			for i, uv := range uvs {
				mesh.TexCoords[i] = uv
			}
		}
	}

	// Bitangents need the normal and the handedness sign in w
	if idx, ok := prim.Attributes["TANGENT"]; ok && mesh.HasNormals() {
		if acr, err = r.accessor(idx); err != nil {
			return nil, err
		}
		tangents, err := modeler.ReadTangent(r.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read tangents: %w", err)
		}
		if len(tangents) == len(positions) {
			mesh.Tangents = make([]mgl32.Vec3, len(tangents))
			mesh.Bitangents = make([]mgl32.Vec3, len(tangents))
			for i, t := range tangents {
				tan := mgl32.Vec3{t[0], t[1], t[2]}
				mesh.Tangents[i] = tan
				mesh.Bitangents[i] = mesh.Normals[i].Cross(tan).Mul(t[3])
			}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if acr, err = r.accessor(*prim.Indices); err != nil {
			return nil, err
		}
		if indices, err = modeler.ReadIndices(r.doc, acr, nil); err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	mesh.Faces = primitiveFaces(prim.Mode, indices)
	return mesh, nil
}

// primitiveFaces converts a triangle list, strip or fan into faces.
func primitiveFaces(mode gltf.PrimitiveMode, idx []uint32) []Face {
	var faces []Face
	switch mode {
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(idx); i++ {
			// Odd triangles swap the first two vertices to keep winding
			if i%2 == 0 {
				faces = append(faces, Face{idx[i], idx[i+1], idx[i+2]})
			} else {
				faces = append(faces, Face{idx[i+1], idx[i], idx[i+2]})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(idx); i++ {
			faces = append(faces, Face{idx[0], idx[i], idx[i+1]})
		}
	default:
		faces = make([]Face, 0, len(idx)/3)
		for i := 0; i+2 < len(idx); i += 3 {
			faces = append(faces, Face{idx[i], idx[i+1], idx[i+2]})
		}
	}
	return faces
}

func (r *gltfReader) readHierarchy() {
	if len(r.doc.Scenes) == 0 {
		r.scene.MarkIncomplete("file has no scenes")
		return
	}
	sceneIdx := 0
	if r.doc.Scene != nil && *r.doc.Scene >= 0 && *r.doc.Scene < len(r.doc.Scenes) {
		sceneIdx = *r.doc.Scene
	}
	gs := r.doc.Scenes[sceneIdx]

	visiting := make(map[int]bool)
	var roots []*Node
	for _, ni := range gs.Nodes {
		if n := r.buildNode(ni, visiting); n != nil {
			roots = append(roots, n)
		}
	}

	switch len(roots) {
	case 0:
		r.scene.MarkIncomplete("scene has no nodes")
	case 1:
		r.scene.Root = roots[0]
	default:
		name := gs.Name
		if name == "" {
			name = r.name
		}
		r.scene.Root = &Node{Name: name, Children: roots}
	}
}

func (r *gltfReader) buildNode(idx int, visiting map[int]bool) *Node {
	if idx < 0 || idx >= len(r.doc.Nodes) {
		r.scene.MarkIncomplete(fmt.Sprintf("node index %d out of range", idx))
		return nil
	}
	if visiting[idx] {
		r.scene.MarkIncomplete(fmt.Sprintf("node %d is its own ancestor", idx))
		return nil
	}
	visiting[idx] = true
	defer delete(visiting, idx)

	gn := r.doc.Nodes[idx]
	node := &Node{Name: gn.Name}
	if node.Name == "" {
		node.Name = fmt.Sprintf("node_%d", idx)
	}
	if gn.Mesh != nil && *gn.Mesh >= 0 && *gn.Mesh < len(r.meshMap) {
		node.Meshes = append(node.Meshes, r.meshMap[*gn.Mesh]...)
	}
	for _, ci := range gn.Children {
		if child := r.buildNode(ci, visiting); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}
