package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/meshport/internal/engine/gfx"
)

// InternalFormat maps an image format to the GL sized internal format.
func InternalFormat(f gfx.ImageFormat) int32 {
	switch f {
	case gfx.FormatR8:
		return gl.R8
	case gfx.FormatRG8:
		return gl.RG8
	case gfx.FormatRGB8:
		return gl.RGB8
	case gfx.FormatSRGB8:
		return gl.SRGB8
	case gfx.FormatRGBA8:
		return gl.RGBA8
	case gfx.FormatSRGBA8:
		return gl.SRGB8_ALPHA8
	case gfx.FormatRGBA32F:
		return gl.RGBA32F
	case gfx.FormatDepth24Stencil8:
		return gl.DEPTH24_STENCIL8
	}
	return gl.RGBA8
}

// PixelFormat maps an image format to the GL client pixel format.
func PixelFormat(f gfx.ImageFormat) uint32 {
	switch f {
	case gfx.FormatR8:
		return gl.RED
	case gfx.FormatRG8:
		return gl.RG
	case gfx.FormatRGB8, gfx.FormatSRGB8:
		return gl.RGB
	case gfx.FormatDepth24Stencil8:
		return gl.DEPTH_STENCIL
	}
	return gl.RGBA
}

// PixelType maps an image format to the GL client component type.
func PixelType(f gfx.ImageFormat) uint32 {
	switch f {
	case gfx.FormatRGBA32F:
		return gl.FLOAT
	case gfx.FormatDepth24Stencil8:
		return gl.UNSIGNED_INT_24_8
	}
	return gl.UNSIGNED_BYTE
}
