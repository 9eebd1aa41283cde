package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Registered decoders for image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

// ErrDecodeFailure is wrapped by every error returned from DecodeFile and Decode.
var ErrDecodeFailure = errors.New("texture decode failure")

// Image is decoded pixel data packed tightly with Channels bytes per pixel.
// Rows are stored bottom row first, matching OpenGL's texture origin.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true, ".tga": true,
}

// IsImageFile reports whether path has an extension Decode understands.
func IsImageFile(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// DecodeFile reads and decodes the image at path.
func DecodeFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	return Decode(data, path)
}

// Decode decodes data. name is only used to detect TGA, which has no magic number.
func Decode(data []byte, name string) (*Image, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecodeFailure)
	}

	channels := channelCount(img)
	return &Image{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: channels,
		Pix:      packPixels(img, channels),
	}, nil
}

// channelCount reports how many channels the source image carries.
// Opaque color images count as RGB.
func channelCount(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.YCbCr, *image.CMYK:
		return 3
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

// packPixels converts img to tightly packed 8-bit rows, flipped vertically.
func packPixels(img image.Image, channels int) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*channels)
	rect := image.Rect(0, 0, w, h)

	if channels == 1 {
		gray := image.NewGray(rect)
		draw.Draw(gray, rect, img, b.Min, draw.Src)
		for y := 0; y < h; y++ {
			copy(out[(h-1-y)*w:], gray.Pix[y*gray.Stride:y*gray.Stride+w])
		}
		return out
	}

	nrgba := image.NewNRGBA(rect)
	draw.Draw(nrgba, rect, img, b.Min, draw.Src)
	for y := 0; y < h; y++ {
		src := nrgba.Pix[y*nrgba.Stride:]
		dst := out[(h-1-y)*w*channels:]
		for x := 0; x < w; x++ {
			copy(dst[x*channels:(x+1)*channels], src[x*4:x*4+channels])
		}
	}
	return out
}
