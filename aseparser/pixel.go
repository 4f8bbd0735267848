package aseparser

import (
	"image/color"
	"math"
	"math/bits"

	"github.com/pkg/errors"
)

// ColorDepth is the number of bits per pixel.
type ColorDepth uint16

const (
	ColorDepthIndexed   ColorDepth = 8
	ColorDepthGrayscale ColorDepth = 16
	ColorDepthRGBA      ColorDepth = 32
)

// BytesPerPixel returns the size of one encoded pixel.
func (d ColorDepth) BytesPerPixel() int {
	switch d {
	case ColorDepthRGBA:
		return 4
	case ColorDepthGrayscale:
		return 2
	default:
		return 1
	}
}

func (d ColorDepth) valid() bool {
	return d == ColorDepthIndexed || d == ColorDepthGrayscale || d == ColorDepthRGBA
}

// imageSize returns the pixel count of an image with the given dimensions and
// its encoded size at bpp bytes per pixel. Sizes past math.MaxInt fail with
// ErrDecompression.
func imageSize(bpp int, dims ...uint64) (count, size int, err error) {
	total := uint64(1)
	mul := func(f uint64) bool {
		hi, lo := bits.Mul64(total, f)
		total = lo
		return hi == 0 && lo <= math.MaxInt
	}
	for _, d := range dims {
		if !mul(d) {
			return 0, 0, errors.Wrapf(ErrDecompression, "image %v overflows", dims)
		}
	}
	count = int(total)
	if !mul(uint64(bpp)) {
		return 0, 0, errors.Wrapf(ErrDecompression, "image %v at %d bytes per pixel overflows", dims, bpp)
	}
	return count, int(total), nil
}

// DecodePixels converts count raw samples into NRGBA values.
//
// Indexed samples are not resolved against a palette: the index is stored in
// all four channels.
func DecodePixels(raw []byte, count int, depth ColorDepth) ([]color.NRGBA, error) {
	bpp := depth.BytesPerPixel()
	if need := count * bpp; len(raw) < need {
		return nil, errors.Wrapf(ErrTruncatedInput, "%d pixels need %d bytes, have %d", count, need, len(raw))
	}

	pix := make([]color.NRGBA, count)
	switch depth {
	case ColorDepthRGBA:
		for i := range pix {
			p := raw[i*4 : i*4+4 : i*4+4]
			pix[i] = color.NRGBA{p[0], p[1], p[2], p[3]}
		}
	case ColorDepthGrayscale:
		for i := range pix {
			v, a := raw[i*2], raw[i*2+1]
			pix[i] = color.NRGBA{v, v, v, a}
		}
	default:
		for i := range pix {
			v := raw[i]
			pix[i] = color.NRGBA{v, v, v, v}
		}
	}
	return pix, nil
}
