package aseparser

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/setanarut/asefile/internal/cursor"
)

type CelType uint16

const (
	CelRaw CelType = iota
	CelLinked
	CelCompressed
	CelCompressedTilemap
)

const (
	celPreludeSize     = chunkHeaderSize + 16
	imagePreludeSize   = celPreludeSize + 4
	tilemapPreludeSize = celPreludeSize + 32
)

// Cel Chunk (0x2005)
type Cel struct {
	Annotation
	LayerIndex uint16
	X, Y       int16
	Opacity    uint8
	Type       CelType
	// ZIndex moves the cel N layers forward or back in paint order.
	ZIndex int16
	// Width and Height are in pixels, or in tiles for tilemap cels.
	Width, Height uint16
	// Pixels holds Width*Height decoded pixels, row by row. Indexed sprites
	// keep the palette index in every channel. Nil for linked and tilemap cels
	// unless links were resolved at decode time.
	Pixels []color.NRGBA
	// LinkedFrame is the frame whose cel on the same layer this cel shows.
	LinkedFrame uint16
	Tilemap     *Tilemap
	// Extra is the cel extra chunk that followed this cel, if any.
	Extra *CelExtra
}

func (*Cel) ChunkType() ChunkType { return ChunkCel }

// Bounds returns the cel rectangle in sprite coordinates. Tilemap cels need
// the tile size, see Tileset.
func (c *Cel) Bounds() image.Rectangle {
	return image.Rect(int(c.X), int(c.Y), int(c.X)+int(c.Width), int(c.Y)+int(c.Height))
}

// Tilemap is the payload of a compressed tilemap cel.
type Tilemap struct {
	BitsPerTile  uint16
	IDMask       uint32
	XFlipMask    uint32
	YFlipMask    uint32
	DiagFlipMask uint32
	// Tiles holds Width*Height tile values, row by row.
	Tiles []uint32
}

// Tile splits a tile value into its tile ID and flip flags.
func (t *Tilemap) Tile(i int) (id uint32, xflip, yflip, dflip bool) {
	v := t.Tiles[i]
	return v & t.IDMask, v&t.XFlipMask != 0, v&t.YFlipMask != 0, v&t.DiagFlipMask != 0
}

// decodeCel reads a cel chunk. size is the declared chunk size, which bounds
// the compressed stream.
func decodeCel(c *cursor.Cursor, size int, hdr *Header) (*Cel, error) {
	cel := &Cel{
		LayerIndex: c.U16(),
		X:          c.I16(),
		Y:          c.I16(),
		Opacity:    c.U8(),
		Type:       CelType(c.U16()),
		ZIndex:     c.I16(),
	}
	c.Skip(5)
	if err := c.Err(); err != nil {
		return nil, err
	}

	depth := hdr.ColorDepth

	switch cel.Type {
	case CelRaw:
		cel.Width, cel.Height = c.U16(), c.U16()
		n, want, err := imageSize(depth.BytesPerPixel(), uint64(cel.Width), uint64(cel.Height))
		if err != nil {
			return nil, errors.Wrap(err, "raw cel")
		}
		raw := c.Bytes(want)
		if err := c.Err(); err != nil {
			return nil, errors.Wrap(err, "raw cel")
		}
		pix, err := DecodePixels(raw, n, depth)
		if err != nil {
			return nil, err
		}
		cel.Pixels = pix

	case CelLinked:
		cel.LinkedFrame = c.U16()

	case CelCompressed:
		cel.Width, cel.Height = c.U16(), c.U16()
		src := c.Bytes(size - imagePreludeSize)
		if err := c.Err(); err != nil {
			return nil, errors.Wrap(err, "compressed cel")
		}
		n, want, err := imageSize(depth.BytesPerPixel(), uint64(cel.Width), uint64(cel.Height))
		if err != nil {
			return nil, errors.Wrapf(err, "cel on layer %d", cel.LayerIndex)
		}
		raw, err := inflate(src, want)
		if err != nil {
			return nil, errors.Wrapf(err, "cel on layer %d", cel.LayerIndex)
		}
		if cel.Pixels, err = DecodePixels(raw, n, depth); err != nil {
			return nil, err
		}

	case CelCompressedTilemap:
		cel.Width, cel.Height = c.U16(), c.U16()
		tm := &Tilemap{
			BitsPerTile:  c.U16(),
			IDMask:       c.U32(),
			XFlipMask:    c.U32(),
			YFlipMask:    c.U32(),
			DiagFlipMask: c.U32(),
		}
		c.Skip(10)
		src := c.Bytes(size - tilemapPreludeSize)
		if err := c.Err(); err != nil {
			return nil, errors.Wrap(err, "tilemap cel")
		}
		n := int(cel.Width) * int(cel.Height)
		tiles, err := decodeTiles(src, n, tm.BitsPerTile)
		if err != nil {
			return nil, errors.Wrapf(err, "tilemap on layer %d", cel.LayerIndex)
		}
		tm.Tiles = tiles
		cel.Tilemap = tm

	default:
		return nil, errors.Wrapf(ErrUnsupportedCelType, "%d", cel.Type)
	}

	return cel, c.Err()
}

func decodeTiles(src []byte, n int, bitsPerTile uint16) ([]uint32, error) {
	size := int(bitsPerTile) / 8
	if size != 1 && size != 2 && size != 4 {
		return nil, errors.Errorf("unsupported tile size %d bits", bitsPerTile)
	}
	_, want, err := imageSize(size, uint64(n))
	if err != nil {
		return nil, err
	}
	raw, err := inflate(src, want)
	if err != nil {
		return nil, err
	}

	tc := cursor.New(raw)
	tiles := make([]uint32, n)
	for i := range tiles {
		switch size {
		case 1:
			tiles[i] = uint32(tc.U8())
		case 2:
			tiles[i] = uint32(tc.U16())
		default:
			tiles[i] = tc.U32()
		}
	}
	return tiles, tc.Err()
}
