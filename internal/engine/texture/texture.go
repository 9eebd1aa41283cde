// Package texture owns GPU-resident images: decoding, allocation, upload and
// reference-counted release, plus a Cache that shares one Texture per source file.
//
// All methods that touch the GPU must run on the thread that owns the graphics
// context the gfx.Device talks to.
package texture

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/meshport/internal/engine/gfx"
	"github.com/Faultbox/meshport/internal/logger"
)

// Texture is a single GPU image. A Texture whose Handle is zero is the sentinel
// for "unusable": decoding failed or storage was never allocated. A nil *Texture
// behaves the same way, so callers can bind or release absent textures freely.
//
// Textures are shared: every owner holds one reference, taken with Acquire and
// dropped with Release. The GPU storage is freed when the last reference goes.
type Texture struct {
	device gfx.Device
	props  gfx.TextureProperties
	path   string
	handle uint32
	refs   atomic.Int32
}

// New allocates storage for props without uploading pixels.
// The returned texture holds one reference owned by the caller.
func New(dev gfx.Device, props gfx.TextureProperties) *Texture {
	t := &Texture{device: dev, props: props}
	t.refs.Store(1)
	t.handle = dev.CreateTexture(props, false)
	return t
}

// NewSize allocates a width x height texture of the given format.
func NewSize(dev gfx.Device, width, height uint32, format gfx.ImageFormat) *Texture {
	return New(dev, gfx.TextureProperties{
		Format: format,
		Width:  width,
		Height: height,
		SRGB:   format.IsSRGB(),
	})
}

// Load decodes the image at path, uploads it and generates mipmaps.
// The image is flipped vertically on load. The format follows the decoded
// channel count: 1 is R8, 3 is RGB8 (SRGB8 if srgb), 4 is RGBA8 (SRGBA8 if srgb).
//
// Decode failures are logged and produce a Texture with a zero handle instead
// of an error.
func Load(dev gfx.Device, path string, srgb bool) *Texture {
	t := &Texture{
		device: dev,
		path:   path,
		props:  gfx.TextureProperties{SRGB: srgb},
	}
	t.refs.Store(1)

	img, err := DecodeFile(path)
	if err != nil {
		logger.Error("failed to load texture", zap.String("path", path), zap.Error(err))
		return t
	}

	format, ok := gfx.FormatForChannels(img.Channels, srgb)
	if !ok {
		logger.Error("failed to load texture",
			zap.String("path", path),
			zap.Int("channels", img.Channels),
			zap.Error(ErrDecodeFailure),
		)
		return t
	}

	t.props.Format = format
	t.props.Width = uint32(img.Width)
	t.props.Height = uint32(img.Height)

	t.handle = dev.CreateTexture(t.props, true)
	dev.UploadTexture(t.handle, t.props, img.Pix)
	dev.GenerateMipmaps(t.handle)

	logger.Debug("texture loaded",
		zap.String("path", path),
		zap.Stringer("format", format),
		zap.Uint32("width", t.props.Width),
		zap.Uint32("height", t.props.Height),
		zap.Uint32("handle", t.handle),
	)
	return t
}

// Handle returns the GPU handle, zero for the sentinel.
func (t *Texture) Handle() uint32 {
	if t == nil {
		return 0
	}
	return t.handle
}

// Valid reports whether the texture has GPU storage.
func (t *Texture) Valid() bool {
	return t.Handle() != 0
}

// Equal reports whether both textures refer to the same GPU handle.
// Identity is the handle, not the pixel contents.
func (t *Texture) Equal(other *Texture) bool {
	return t.Handle() == other.Handle()
}

// Properties returns the allocation description.
func (t *Texture) Properties() gfx.TextureProperties {
	if t == nil {
		return gfx.TextureProperties{}
	}
	return t.props
}

func (t *Texture) Width() uint32 { return t.Properties().Width }
func (t *Texture) Height() uint32 { return t.Properties().Height }
func (t *Texture) Format() gfx.ImageFormat { return t.Properties().Format }
func (t *Texture) SRGB() bool { return t.Properties().SRGB }

// Path returns the source file, empty for textures created from properties.
func (t *Texture) Path() string {
	if t == nil {
		return ""
	}
	return t.path
}

// Bind binds the texture to a texture unit. Sentinel textures are skipped.
func (t *Texture) Bind(slot uint32) {
	if !t.Valid() {
		return
	}
	t.device.BindTexture(slot, t.handle)
}

// Resize replaces the GPU storage with a new allocation of the same format.
// Previous contents are lost; repopulate with SetData.
func (t *Texture) Resize(width, height uint32) {
	if t == nil {
		return
	}
	if t.props.Format == gfx.FormatNone {
		logger.Warn("resize of texture without a format ignored", zap.String("path", t.path))
		return
	}

	if t.handle != 0 {
		t.device.DeleteTexture(t.handle)
	}
	t.props.Width = width
	t.props.Height = height
	t.handle = t.device.CreateTexture(t.props, false)
}

// SetData uploads raw pixel bytes into the existing allocation. The bytes must
// match the texture's format and dimensions.
func (t *Texture) SetData(data []byte) {
	if !t.Valid() {
		return
	}
	t.device.UploadTexture(t.handle, t.props, data)
}

// Acquire adds a reference and returns t for chaining.
func (t *Texture) Acquire() *Texture {
	if t == nil {
		return nil
	}
	t.refs.Add(1)
	return t
}

// Release drops a reference. The GPU storage is freed exactly once, when the
// last reference is released.
func (t *Texture) Release() {
	if t == nil {
		return
	}
	switch n := t.refs.Add(-1); {
	case n == 0:
		if t.handle != 0 {
			t.device.DeleteTexture(t.handle)
			t.handle = 0
		}
	case n < 0:
		t.refs.Store(0)
		logger.Warn("texture released more times than acquired", zap.String("path", t.path))
	}
}

// RefCount returns the number of live references.
func (t *Texture) RefCount() int32 {
	if t == nil {
		return 0
	}
	return t.refs.Load()
}
