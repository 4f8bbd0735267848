package aseparser

import (
	"image/color"

	"github.com/pkg/errors"

	"github.com/setanarut/asefile/internal/cursor"
)

const (
	TilesetExternal  = 1
	TilesetEmbedded  = 2
	TilesetEmptyZero = 4
)

// Tileset Chunk (0x2023)
type Tileset struct {
	Annotation
	ID         uint32
	Flags      uint32
	TileCount  uint32
	TileWidth  uint16
	TileHeight uint16
	// BaseIndex is the number shown in the UI for tile 1.
	BaseIndex int16
	Name      string

	// External file entry and tileset ID, set with TilesetExternal.
	ExternalFileID    uint32
	ExternalTilesetID uint32

	// Pixels is the tile image, one tile below the other, set with
	// TilesetEmbedded.
	Pixels []color.NRGBA

	// TileUserData holds the user data chunks that followed the tileset's
	// own user data, one per tile.
	TileUserData []*UserData

	annotated bool
}

func (*Tileset) ChunkType() ChunkType { return ChunkTileset }

func (t *Tileset) attach(ud *UserData) {
	if !t.annotated {
		t.UserData = ud
		t.annotated = true
		return
	}
	t.TileUserData = append(t.TileUserData, ud)
}

// Tile returns the pixels of tile id, or nil if the id is out of range or the
// tileset has no embedded image.
func (t *Tileset) Tile(id uint32) []color.NRGBA {
	n := int(t.TileWidth) * int(t.TileHeight)
	if id >= t.TileCount || len(t.Pixels) < int(id+1)*n {
		return nil
	}
	return t.Pixels[int(id)*n : int(id+1)*n]
}

func decodeTileset(c *cursor.Cursor, hdr *Header) (*Tileset, error) {
	t := &Tileset{
		ID:         c.U32(),
		Flags:      c.U32(),
		TileCount:  c.U32(),
		TileWidth:  c.U16(),
		TileHeight: c.U16(),
		BaseIndex:  c.I16(),
	}
	c.Skip(14)
	t.Name = c.Str()

	if t.Flags&TilesetExternal != 0 {
		t.ExternalFileID = c.U32()
		t.ExternalTilesetID = c.U32()
	}
	if t.Flags&TilesetEmbedded != 0 {
		src := c.Bytes(int(c.U32()))
		if err := c.Err(); err != nil {
			return nil, errors.Wrapf(err, "tileset %d", t.ID)
		}
		n, want, err := imageSize(hdr.ColorDepth.BytesPerPixel(),
			uint64(t.TileWidth), uint64(t.TileHeight), uint64(t.TileCount))
		if err != nil {
			return nil, errors.Wrapf(err, "tileset %d", t.ID)
		}
		raw, err := inflate(src, want)
		if err != nil {
			return nil, errors.Wrapf(err, "tileset %d", t.ID)
		}
		if t.Pixels, err = DecodePixels(raw, n, hdr.ColorDepth); err != nil {
			return nil, err
		}
	}
	return t, c.Err()
}
