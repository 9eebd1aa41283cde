package texture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshport/internal/engine/gfx"
	"github.com/Faultbox/meshport/internal/engine/gfx/gfxtest"
)

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	rgb := writePNG(t, dir, "rgb.png", opaqueRGB())
	rgba := writePNG(t, dir, "rgba.png", translucent())
	gray := writePNG(t, dir, "gray.png", grayRamp())

	tests := []struct {
		path string
		srgb bool
		want gfx.ImageFormat
	}{
		{rgb, false, gfx.FormatRGB8},
		{rgb, true, gfx.FormatSRGB8},
		{rgba, false, gfx.FormatRGBA8},
		{rgba, true, gfx.FormatSRGBA8},
		{gray, false, gfx.FormatR8},
		{gray, true, gfx.FormatR8},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.path)+"/"+tt.want.String(), func(t *testing.T) {
			dev := gfxtest.NewDevice()
			tex := Load(dev, tt.path, tt.srgb)

			require.True(t, tex.Valid())
			assert.Equal(t, tt.want, tex.Format())
			assert.Equal(t, tt.srgb, tex.SRGB())
			assert.Equal(t, tt.path, tex.Path())
			assert.EqualValues(t, 1, tex.RefCount())

			rec, ok := dev.Texture(tex.Handle())
			require.True(t, ok)
			assert.True(t, rec.Mipmapped)
			assert.Equal(t, 1, rec.Uploads)
			assert.Equal(t, 1, rec.Mipmaps)
			assert.Len(t, rec.Pixels, tex.Properties().ByteSize())
		})
	}
}

func TestLoadUploadsFlippedPixels(t *testing.T) {
	dev := gfxtest.NewDevice()
	tex := Load(dev, writePNG(t, t.TempDir(), "rgb.png", opaqueRGB()), false)

	rec, ok := dev.Texture(tex.Handle())
	require.True(t, ok)
	assert.EqualValues(t, 2, tex.Width())
	assert.EqualValues(t, 2, tex.Height())
	assert.Equal(t, []byte{
		0, 0, 255, 255, 255, 255,
		255, 0, 0, 0, 255, 0,
	}, rec.Pixels)
}

func TestLoadFailureIsSentinel(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.jpg")
	require.NoError(t, os.WriteFile(corrupt, []byte{0xff, 0xd8, 0x00}, 0644))

	for _, path := range []string{filepath.Join(dir, "missing.png"), corrupt} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			dev := gfxtest.NewDevice()
			tex := Load(dev, path, true)

			require.NotNil(t, tex)
			assert.False(t, tex.Valid())
			assert.Zero(t, tex.Handle())
			assert.Equal(t, path, tex.Path())
			assert.Zero(t, dev.TextureCount())

			assert.NotPanics(t, func() {
				tex.Bind(0)
				tex.SetData([]byte{1, 2, 3})
				tex.Release()
			})
			assert.Zero(t, dev.Bound(0))
		})
	}
}

func TestNilTexture(t *testing.T) {
	var tex *Texture

	assert.Zero(t, tex.Handle())
	assert.False(t, tex.Valid())
	assert.Zero(t, tex.Width())
	assert.Equal(t, gfx.FormatNone, tex.Format())
	assert.Empty(t, tex.Path())
	assert.Nil(t, tex.Acquire())
	assert.Zero(t, tex.RefCount())
	assert.True(t, tex.Equal(nil))
	assert.NotPanics(t, func() {
		tex.Bind(3)
		tex.Resize(4, 4)
		tex.SetData(nil)
		tex.Release()
	})
}

func TestNewAllocatesWithoutUpload(t *testing.T) {
	dev := gfxtest.NewDevice()
	tex := NewSize(dev, 8, 4, gfx.FormatSRGBA8)

	require.True(t, tex.Valid())
	assert.True(t, tex.SRGB())
	assert.Empty(t, tex.Path())

	rec, ok := dev.Texture(tex.Handle())
	require.True(t, ok)
	assert.False(t, rec.Mipmapped)
	assert.Zero(t, rec.Uploads)
	assert.EqualValues(t, 8, rec.Props.Width)
	assert.EqualValues(t, 4, rec.Props.Height)
}

func TestSetData(t *testing.T) {
	dev := gfxtest.NewDevice()
	tex := NewSize(dev, 1, 1, gfx.FormatRGBA8)

	tex.SetData([]byte{255, 255, 255, 255})

	rec, _ := dev.Texture(tex.Handle())
	assert.Equal(t, 1, rec.Uploads)
	assert.Equal(t, []byte{255, 255, 255, 255}, rec.Pixels)
}

func TestResize(t *testing.T) {
	dev := gfxtest.NewDevice()
	tex := NewSize(dev, 4, 4, gfx.FormatRGB8)
	old := tex.Handle()

	tex.Resize(16, 8)

	assert.NotEqual(t, old, tex.Handle())
	assert.EqualValues(t, 16, tex.Width())
	assert.EqualValues(t, 8, tex.Height())
	assert.Equal(t, gfx.FormatRGB8, tex.Format())

	prev, _ := dev.Texture(old)
	assert.Equal(t, 1, prev.Deletes)

	rec, _ := dev.Texture(tex.Handle())
	assert.Zero(t, rec.Uploads)
	assert.EqualValues(t, 16, rec.Props.Width)
	assert.Equal(t, 1, dev.LiveTextures())
}

func TestResizeWithoutFormatIgnored(t *testing.T) {
	dev := gfxtest.NewDevice()
	tex := Load(dev, filepath.Join(t.TempDir(), "missing.png"), false)

	tex.Resize(4, 4)

	assert.False(t, tex.Valid())
	assert.Zero(t, dev.TextureCount())
}

func TestReleaseFreesOnce(t *testing.T) {
	dev := gfxtest.NewDevice()
	tex := NewSize(dev, 2, 2, gfx.FormatRGBA8)
	handle := tex.Handle()

	same := tex.Acquire()
	assert.Same(t, tex, same)
	assert.EqualValues(t, 2, tex.RefCount())

	tex.Release()
	rec, _ := dev.Texture(handle)
	assert.Zero(t, rec.Deletes)
	assert.True(t, tex.Valid())

	same.Release()
	rec, _ = dev.Texture(handle)
	assert.Equal(t, 1, rec.Deletes)
	assert.False(t, tex.Valid())

	// Over-release is logged, never a second delete
	tex.Release()
	rec, _ = dev.Texture(handle)
	assert.Equal(t, 1, rec.Deletes)
	assert.Zero(t, tex.RefCount())
}

func TestBind(t *testing.T) {
	dev := gfxtest.NewDevice()
	tex := NewSize(dev, 1, 1, gfx.FormatR8)

	tex.Bind(2)
	assert.Equal(t, tex.Handle(), dev.Bound(2))
}

func TestEqualByHandle(t *testing.T) {
	dev := gfxtest.NewDevice()
	a := NewSize(dev, 1, 1, gfx.FormatR8)
	b := NewSize(dev, 1, 1, gfx.FormatR8)

	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
}
