package gfx

// VertexAttribute describes one float attribute inside an interleaved vertex.
type VertexAttribute struct {
	Location   uint32
	Components int32
	Offset     uintptr
}

// VertexLayout describes an interleaved vertex buffer.
type VertexLayout struct {
	Stride     int32
	Attributes []VertexAttribute
}

// MeshBuffers are the GPU objects built for one indexed mesh.
// The zero value means nothing was allocated.
type MeshBuffers struct {
	VertexArray  uint32
	VertexBuffer uint32
	IndexBuffer  uint32
	IndexCount   int32
}

// Valid reports whether all three buffer objects exist.
func (b MeshBuffers) Valid() bool {
	return b.VertexArray != 0 && b.VertexBuffer != 0 && b.IndexBuffer != 0
}

// Device allocates and releases GPU resources. Handles are never zero for live
// objects; zero is the "no resource" sentinel and must be accepted as a no-op
// by BindTexture, DeleteTexture and DeleteMeshBuffers.
type Device interface {
	// CreateTexture allocates storage for props without pixel data.
	// mipmapped selects trilinear minification for textures that will get a mip chain.
	CreateTexture(props TextureProperties, mipmapped bool) uint32
	// UploadTexture replaces level 0 of handle with pixels laid out as props describes.
	UploadTexture(handle uint32, props TextureProperties, pixels []byte)
	// GenerateMipmaps builds the mip chain from level 0.
	GenerateMipmaps(handle uint32)
	// BindTexture binds handle to the given texture unit.
	BindTexture(slot uint32, handle uint32)
	// DeleteTexture frees the storage behind handle.
	DeleteTexture(handle uint32)

	// CreateMeshBuffers uploads interleaved vertex bytes and 32-bit indices.
	CreateMeshBuffers(layout VertexLayout, vertices []byte, indices []uint32) MeshBuffers
	// DeleteMeshBuffers frees the objects in b.
	DeleteMeshBuffers(b MeshBuffers)
}
