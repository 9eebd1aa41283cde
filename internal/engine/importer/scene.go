// Package importer reads external 3D scene files into an in-memory scene graph.
//
// A Scene owns plain arrays only: no GPU resources, no decoded images. Texture
// references are kept as the names stored in the file, relative to the file's
// directory. Readers are selected by file extension and the result can be
// post-processed (triangulation, normals, tangent space, UV flip) before the
// caller walks it.
package importer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SceneFlags describe the state of an imported scene.
type SceneFlags uint32

const (
	// SceneIncomplete marks a scene whose data could not be fully read.
	// Consumers must not use its contents.
	SceneIncomplete SceneFlags = 1 << iota
)

// Scene is the root of an imported file.
type Scene struct {
	Flags     SceneFlags
	Root      *Node
	Meshes    []*Mesh
	Materials []*Material

	// Warnings collects non-fatal problems found while reading.
	Warnings []string
}

// Incomplete reports whether SceneIncomplete is set.
func (s *Scene) Incomplete() bool {
	return s.Flags&SceneIncomplete != 0
}

// MarkIncomplete flags the scene as unusable and records why.
func (s *Scene) MarkIncomplete(reason string) {
	s.Flags |= SceneIncomplete
	s.Warnings = append(s.Warnings, reason)
}

// Warn records a non-fatal problem.
func (s *Scene) Warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
}

// Node is one element of the scene hierarchy. Meshes holds indices into Scene.Meshes.
type Node struct {
	Name     string
	Meshes   []int
	Children []*Node
}

// Walk visits n and its descendants depth-first, parents before children.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Face is one polygon of vertex indices. After triangulation every face has three.
type Face []uint32

// Mesh is a single-material polygon soup. Optional arrays are either empty or
// have one element per position.
type Mesh struct {
	Name       string
	Positions  []mgl32.Vec3
	Normals    []mgl32.Vec3
	TexCoords  []mgl32.Vec2
	Tangents   []mgl32.Vec3
	Bitangents []mgl32.Vec3
	Faces      []Face

	// MaterialIndex indexes Scene.Materials.
	MaterialIndex int
}

func (m *Mesh) HasNormals() bool { return len(m.Normals) > 0 && len(m.Normals) == len(m.Positions) }
func (m *Mesh) HasTexCoords() bool { return len(m.TexCoords) > 0 && len(m.TexCoords) == len(m.Positions) }
func (m *Mesh) HasTangentSpace() bool { return len(m.Tangents) > 0 && len(m.Bitangents) > 0 }

// TextureType identifies a material texture channel.
type TextureType int

const (
	TextureDiffuse TextureType = iota
	TextureSpecular
	TextureNormals
	TextureEmissive
)

func (t TextureType) String() string {
	switch t {
	case TextureDiffuse:
		return "diffuse"
	case TextureSpecular:
		return "specular"
	case TextureNormals:
		return "normals"
	case TextureEmissive:
		return "emissive"
	}
	return "unknown"
}

// Material is a named set of texture references per channel.
type Material struct {
	Name     string
	Textures map[TextureType][]string
}

// NewMaterial returns an empty named material.
func NewMaterial(name string) *Material {
	return &Material{Name: name, Textures: make(map[TextureType][]string)}
}

// AddTexture appends a texture reference to a channel.
func (m *Material) AddTexture(typ TextureType, name string) {
	if m.Textures == nil {
		m.Textures = make(map[TextureType][]string)
	}
	m.Textures[typ] = append(m.Textures[typ], name)
}

// TextureCount returns the number of textures in a channel.
func (m *Material) TextureCount(typ TextureType) int {
	return len(m.Textures[typ])
}

// Texture returns the idx-th texture name of a channel.
func (m *Material) Texture(typ TextureType, idx int) (string, bool) {
	names := m.Textures[typ]
	if idx < 0 || idx >= len(names) {
		return "", false
	}
	return names[idx], true
}
