package asefile

import (
	"image"
	"image/color"
	"io"

	"github.com/setanarut/asefile/aseparser"
)

func init() {
	image.RegisterFormat("aseprite", "????\xE0\xA5", Decode, DecodeConfig)
}

// Decode decodes an Aseprite file from r and returns its Sprite atlas.
func Decode(r io.Reader) (image.Image, error) {
	ase, err := aseparser.Read(r)
	if err != nil {
		return nil, err
	}
	s, err := NewSprite(ase, nil)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DecodeConfig returns the color model and atlas dimensions of an Aseprite
// file, reading only its header.
func DecodeConfig(r io.Reader) (image.Config, error) {
	hdr, err := aseparser.ReadHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	atlas, _ := makeAtlasFrames(int(hdr.Frames), int(hdr.Width), int(hdr.Height))
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      atlas.Dx(),
		Height:     atlas.Dy(),
	}, nil
}
