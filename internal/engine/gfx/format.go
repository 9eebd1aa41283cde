// Package gfx defines the GPU-facing types shared by textures and meshes and the
// Device interface that allocates them.
//
// Every Device call must be made from the thread that owns the active graphics
// context. Nothing in this package enforces that; it is a caller contract.
package gfx

import "fmt"

// ImageFormat is the storage format of a texture.
type ImageFormat uint8

// Image formats. FormatNone is the zero value and marks storage that was never allocated.
const (
	FormatNone ImageFormat = iota
	FormatR8
	FormatRG8
	FormatRGB8
	FormatSRGB8
	FormatRGBA8
	FormatSRGBA8
	FormatRGBA32F
	FormatDepth24Stencil8
)

var formatNames = [...]string{
	FormatNone:            "None",
	FormatR8:              "R8",
	FormatRG8:             "RG8",
	FormatRGB8:            "RGB8",
	FormatSRGB8:           "SRGB8",
	FormatRGBA8:           "RGBA8",
	FormatSRGBA8:          "SRGBA8",
	FormatRGBA32F:         "RGBA32F",
	FormatDepth24Stencil8: "DEPTH24STENCIL8",
}

func (f ImageFormat) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("ImageFormat(%d)", uint8(f))
}

// Channels returns the number of color channels stored per pixel.
func (f ImageFormat) Channels() int {
	switch f {
	case FormatR8:
		return 1
	case FormatRG8, FormatDepth24Stencil8:
		return 2
	case FormatRGB8, FormatSRGB8:
		return 3
	case FormatRGBA8, FormatSRGBA8, FormatRGBA32F:
		return 4
	}
	return 0
}

// BytesPerPixel returns the size of one pixel in client memory.
func (f ImageFormat) BytesPerPixel() int {
	switch f {
	case FormatRGBA32F:
		return 16
	case FormatDepth24Stencil8:
		return 4
	}
	return f.Channels()
}

// IsSRGB reports whether the format stores gamma-encoded color.
func (f ImageFormat) IsSRGB() bool {
	return f == FormatSRGB8 || f == FormatSRGBA8
}

// FormatForChannels picks the 8-bit format for a decoded image with the given
// channel count. ok is false for channel counts that have no mapping.
func FormatForChannels(channels int, srgb bool) (format ImageFormat, ok bool) {
	switch channels {
	case 1:
		return FormatR8, true
	case 2:
		return FormatRG8, true
	case 3:
		if srgb {
			return FormatSRGB8, true
		}
		return FormatRGB8, true
	case 4:
		if srgb {
			return FormatSRGBA8, true
		}
		return FormatRGBA8, true
	}
	return FormatNone, false
}

// TextureProperties describes a texture allocation. It is used both to request
// storage and as metadata for decoded images.
type TextureProperties struct {
	Format ImageFormat
	Width  uint32
	Height uint32
	SRGB   bool
}

// ByteSize returns the size of one full level-0 image in client memory.
func (p TextureProperties) ByteSize() int {
	return int(p.Width) * int(p.Height) * p.Format.BytesPerPixel()
}
