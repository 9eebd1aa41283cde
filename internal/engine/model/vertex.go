// Package model turns imported scenes into GPU-ready meshes with resolved
// materials, and persists individual meshes in a compact binary record.
package model

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshport/internal/engine/gfx"
)

// Vertex is the interleaved vertex format uploaded verbatim to the GPU.
// Attribute locations: 0 position, 1 uv, 2 normal, 3 tangent, 4 bitangent.
type Vertex struct {
	Position  mgl32.Vec3
	TexCoords mgl32.Vec2
	Normal    mgl32.Vec3
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// VertexSize is the size of one Vertex in bytes.
const VertexSize = 56

// Fails to compile if Vertex gains padding or fields.
var _ [VertexSize]byte = [unsafe.Sizeof(Vertex{})]byte{}

// VertexLayout describes Vertex for gfx.Device.
var VertexLayout = gfx.VertexLayout{
	Stride: VertexSize,
	Attributes: []gfx.VertexAttribute{
		{Location: 0, Components: 3, Offset: unsafe.Offsetof(Vertex{}.Position)},
		{Location: 1, Components: 2, Offset: unsafe.Offsetof(Vertex{}.TexCoords)},
		{Location: 2, Components: 3, Offset: unsafe.Offsetof(Vertex{}.Normal)},
		{Location: 3, Components: 3, Offset: unsafe.Offsetof(Vertex{}.Tangent)},
		{Location: 4, Components: 3, Offset: unsafe.Offsetof(Vertex{}.Bitangent)},
	},
}

// vertexBytes views vertices as raw bytes without copying.
func vertexBytes(vertices []Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*VertexSize)
}
