package texture

import (
	"errors"
	"fmt"
	"image"
)

// TGA image type constants.
const (
	TGATypeTrueColor    = 2  // Uncompressed true-color
	TGATypeGrayscale    = 3  // Uncompressed grayscale
	TGATypeTrueColorRLE = 10 // RLE compressed true-color
	TGATypeGrayscaleRLE = 11 // RLE compressed grayscale
)

const tgaHeaderSize = 18

var errTGATruncated = errors.New("TGA data truncated")

// DecodeTGA decodes a TGA image. Supported: uncompressed and RLE true-color
// (24/32 bpp) and grayscale (8 bpp). True-color images decode to *image.NRGBA,
// grayscale images to *image.Gray, always with the first row at the top.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("TGA data too short: %d bytes", len(data))
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("TGA has zero size %dx%d", width, height)
	}

	gray := imageType == TGATypeGrayscale || imageType == TGATypeGrayscaleRLE
	switch imageType {
	case TGATypeTrueColor, TGATypeTrueColorRLE:
		if bpp != 24 && bpp != 32 {
			return nil, fmt.Errorf("unsupported TGA true-color depth %d", bpp)
		}
	case TGATypeGrayscale, TGATypeGrayscaleRLE:
		if bpp != 8 {
			return nil, fmt.Errorf("unsupported TGA grayscale depth %d", bpp)
		}
	default:
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	// Bit 5 of the descriptor set means rows are stored top to bottom
	p := tgaPlotter{
		width:       width,
		height:      height,
		bytesPerPix: bpp / 8,
		topToBottom: descriptor&0x20 != 0,
	}
	if gray {
		img := image.NewGray(image.Rect(0, 0, width, height))
		p.put = func(x, y int, px []byte) { img.Pix[img.PixOffset(x, y)] = px[0] }
		if err := p.run(data[offset:], imageType == TGATypeGrayscaleRLE); err != nil {
			return nil, err
		}
		return img, nil
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	p.put = func(x, y int, px []byte) {
		i := img.PixOffset(x, y)
		// Stored as BGR(A)
		img.Pix[i+0] = px[2]
		img.Pix[i+1] = px[1]
		img.Pix[i+2] = px[0]
		img.Pix[i+3] = 255
		if len(px) == 4 {
			img.Pix[i+3] = px[3]
		}
	}
	if err := p.run(data[offset:], imageType == TGATypeTrueColorRLE); err != nil {
		return nil, err
	}
	return img, nil
}

// tgaPlotter walks pixel packets in file order and writes them at their image position.
type tgaPlotter struct {
	width, height int
	bytesPerPix   int
	topToBottom   bool
	put           func(x, y int, px []byte)
}

func (p *tgaPlotter) plot(idx int, px []byte) {
	x := idx % p.width
	y := idx / p.width
	if !p.topToBottom {
		y = p.height - 1 - y
	}
	p.put(x, y, px)
}

func (p *tgaPlotter) run(pix []byte, rle bool) error {
	count := p.width * p.height
	bpp := p.bytesPerPix

	if !rle {
		if len(pix) < count*bpp {
			return errTGATruncated
		}
		for i := 0; i < count; i++ {
			p.plot(i, pix[i*bpp:(i+1)*bpp])
		}
		return nil
	}

	idx, pos := 0, 0
	for idx < count {
		if pos >= len(pix) {
			return errTGATruncated
		}
		packet := pix[pos]
		pos++
		n := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run-length packet: one pixel repeated n times
			if pos+bpp > len(pix) {
				return errTGATruncated
			}
			px := pix[pos : pos+bpp]
			pos += bpp
			for i := 0; i < n && idx < count; i++ {
				p.plot(idx, px)
				idx++
			}
			continue
		}

		// Raw packet: n literal pixels
		if pos+n*bpp > len(pix) {
			return errTGATruncated
		}
		for i := 0; i < n && idx < count; i++ {
			p.plot(idx, pix[pos:pos+bpp])
			pos += bpp
			idx++
		}
	}
	return nil
}
