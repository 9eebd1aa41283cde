package model

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshport/internal/engine/gfx"
)

// ErrInvalidIndices is returned when an index buffer is not a whole number of
// triangles or references a vertex that does not exist.
var ErrInvalidIndices = errors.New("invalid mesh indices")

// ErrNoDevice is returned when a Mesh without a device is asked to build buffers.
var ErrNoDevice = errors.New("mesh has no device")

// Mesh is named triangle geometry with its GPU buffers and material.
// Buffers are built once from the arrays and rebuilt only by Rebuild or Load.
type Mesh struct {
	device   gfx.Device
	name     string
	vertices []Vertex
	indices  []uint32
	buffers  gfx.MeshBuffers
	material *Material
}

// NewMesh validates the arrays and uploads them. The mesh keeps the slices.
func NewMesh(dev gfx.Device, name string, vertices []Vertex, indices []uint32) (*Mesh, error) {
	m := &Mesh{device: dev}
	if err := m.Rebuild(name, vertices, indices); err != nil {
		return nil, err
	}
	return m, nil
}

// NewEmptyMesh returns a mesh bound to dev with no geometry, ready for Load.
func NewEmptyMesh(dev gfx.Device) *Mesh {
	return &Mesh{device: dev}
}

// ValidateIndices checks that indices form whole triangles over vertexCount vertices.
func ValidateIndices(vertexCount int, indices []uint32) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrInvalidIndices, len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return fmt.Errorf("%w: index %d at %d out of range [0,%d)", ErrInvalidIndices, idx, i, vertexCount)
		}
	}
	return nil
}

// Rebuild replaces name, vertices and indices and recreates the GPU buffers.
// The material is kept. On error the mesh is left unchanged.
func (m *Mesh) Rebuild(name string, vertices []Vertex, indices []uint32) error {
	if m.device == nil {
		return ErrNoDevice
	}
	if err := ValidateIndices(len(vertices), indices); err != nil {
		return err
	}

	buffers := m.device.CreateMeshBuffers(VertexLayout, vertexBytes(vertices), indices)
	if m.buffers.Valid() {
		m.device.DeleteMeshBuffers(m.buffers)
	}

	m.name = name
	m.vertices = vertices
	m.indices = indices
	m.buffers = buffers
	return nil
}

func (m *Mesh) Name() string { return m.name }
func (m *Mesh) Vertices() []Vertex { return m.vertices }
func (m *Mesh) Indices() []uint32 { return m.indices }
func (m *Mesh) Material() *Material { return m.material }
func (m *Mesh) VertexArray() uint32 { return m.buffers.VertexArray }
func (m *Mesh) VertexBuffer() uint32 { return m.buffers.VertexBuffer }
func (m *Mesh) IndexBuffer() uint32 { return m.buffers.IndexBuffer }
func (m *Mesh) IndexCount() int32 { return m.buffers.IndexCount }

// TriangleCount returns the number of triangles in the index buffer.
func (m *Mesh) TriangleCount() int {
	return len(m.indices) / 3
}

// SetMaterial attaches mat, taking over the caller's reference, and releases
// the previous material.
func (m *Mesh) SetMaterial(mat *Material) {
	if m.material != nil && m.material != mat {
		m.material.Release()
	}
	m.material = mat
}

// Release frees the GPU buffers and drops the material reference.
func (m *Mesh) Release() {
	if m.buffers.Valid() {
		m.device.DeleteMeshBuffers(m.buffers)
		m.buffers = gfx.MeshBuffers{}
	}
	if m.material != nil {
		m.material.Release()
		m.material = nil
	}
}
