// Package opengl implements gfx.Device on top of OpenGL 4.1 core.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshport/internal/engine/gfx"
	"github.com/Faultbox/meshport/internal/logger"
)

// Device issues OpenGL calls. It carries no state of its own; the GL context
// current on the calling thread is the real owner of every handle it returns.
type Device struct{}

var _ gfx.Device = (*Device)(nil)

// New loads the OpenGL function pointers for the current context.
// IMPORTANT: Must be called AFTER the OpenGL context is created, on the thread that owns it.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return &Device{}, nil
}

// CreateTexture allocates a 2D texture with undefined contents.
func (d *Device) CreateTexture(props gfx.TextureProperties, mipmapped bool) uint32 {
	var handle uint32
	gl.GenTextures(1, &handle)
	gl.BindTexture(gl.TEXTURE_2D, handle)
	gl.TexImage2D(gl.TEXTURE_2D, 0, InternalFormat(props.Format),
		int32(props.Width), int32(props.Height), 0,
		PixelFormat(props.Format), PixelType(props.Format), nil)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	if mipmapped {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return handle
}

// UploadTexture writes level 0. Short pixel slices are rejected instead of
// letting the driver read past the end of Go memory.
func (d *Device) UploadTexture(handle uint32, props gfx.TextureProperties, pixels []byte) {
	if handle == 0 || len(pixels) == 0 {
		return
	}
	if need := props.ByteSize(); len(pixels) < need {
		logger.Warn("texture upload skipped: pixel data too short",
			zap.Uint32("texture", handle),
			zap.Int("have", len(pixels)),
			zap.Int("need", need),
		)
		return
	}

	gl.BindTexture(gl.TEXTURE_2D, handle)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(props.Width), int32(props.Height),
		PixelFormat(props.Format), PixelType(props.Format), unsafe.Pointer(&pixels[0]))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// GenerateMipmaps builds the mip chain for handle.
func (d *Device) GenerateMipmaps(handle uint32) {
	if handle == 0 {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, handle)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// BindTexture binds handle to texture unit slot. Handle 0 unbinds the unit.
func (d *Device) BindTexture(slot uint32, handle uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + slot)
	gl.BindTexture(gl.TEXTURE_2D, handle)
}

// DeleteTexture frees handle. Zero is ignored.
func (d *Device) DeleteTexture(handle uint32) {
	if handle == 0 {
		return
	}
	gl.DeleteTextures(1, &handle)
}

// CreateMeshBuffers builds a VAO with an interleaved VBO and a uint32 EBO.
func (d *Device) CreateMeshBuffers(layout gfx.VertexLayout, vertices []byte, indices []uint32) gfx.MeshBuffers {
	var b gfx.MeshBuffers

	gl.GenVertexArrays(1, &b.VertexArray)
	gl.BindVertexArray(b.VertexArray)

	gl.GenBuffers(1, &b.VertexBuffer)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.VertexBuffer)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices), bytesPtr(vertices), gl.STATIC_DRAW)

	for _, attr := range layout.Attributes {
		gl.VertexAttribPointerWithOffset(attr.Location, attr.Components, gl.FLOAT, false, layout.Stride, attr.Offset)
		gl.EnableVertexAttribArray(attr.Location)
	}

	gl.GenBuffers(1, &b.IndexBuffer)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.IndexBuffer)
	var indexPtr unsafe.Pointer
	if len(indices) > 0 {
		indexPtr = unsafe.Pointer(&indices[0])
	}
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, indexPtr, gl.STATIC_DRAW)
	b.IndexCount = int32(len(indices))

	// Unbind the VAO first so the element buffer binding stays recorded in it
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	return b
}

// DeleteMeshBuffers frees whichever objects in b exist.
func (d *Device) DeleteMeshBuffers(b gfx.MeshBuffers) {
	if b.VertexArray != 0 {
		gl.DeleteVertexArrays(1, &b.VertexArray)
	}
	if b.VertexBuffer != 0 {
		gl.DeleteBuffers(1, &b.VertexBuffer)
	}
	if b.IndexBuffer != 0 {
		gl.DeleteBuffers(1, &b.IndexBuffer)
	}
}

func bytesPtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}
