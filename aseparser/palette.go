package aseparser

import (
	"image/color"

	"github.com/pkg/errors"

	"github.com/setanarut/asefile/internal/cursor"
)

type PaletteEntry struct {
	Color color.NRGBA
	// Name is empty unless the entry has the name flag.
	Name string
}

// Palette Chunk (0x2019)
type Palette struct {
	Annotation
	// Size is the total number of palette entries.
	Size uint32
	// First and Last are the range of indices this chunk changes.
	First, Last uint32
	Entries     []PaletteEntry
}

func (*Palette) ChunkType() ChunkType { return ChunkPalette }

func decodePalette(c *cursor.Cursor) (*Palette, error) {
	p := &Palette{
		Size:  c.U32(),
		First: c.U32(),
		Last:  c.U32(),
	}
	c.Skip(8)
	if err := c.Err(); err != nil {
		return nil, err
	}
	if p.Last < p.First {
		return nil, errors.Errorf("palette range %d..%d", p.First, p.Last)
	}

	n := p.Last - p.First + 1
	p.Entries = make([]PaletteEntry, 0, min(n, uint32(c.Len()/6)))
	for range n {
		flags := c.U16()
		e := PaletteEntry{Color: color.NRGBA{c.U8(), c.U8(), c.U8(), c.U8()}}
		if flags&1 != 0 {
			e.Name = c.Str()
		}
		if err := c.Err(); err != nil {
			return nil, err
		}
		p.Entries = append(p.Entries, e)
	}
	return p, nil
}

type OldPalettePacket struct {
	// Skip is the number of entries to skip from the last packet.
	Skip   uint8
	Colors []color.NRGBA
}

// Old palette chunk (0x0004 and 0x0011)
//
// Colors of a 0x0011 chunk are stored in the range 0-63 and are scaled to
// 0-255 when decoded.
type OldPalette struct {
	Annotation
	Type    ChunkType
	Packets []OldPalettePacket
}

func (p *OldPalette) ChunkType() ChunkType { return p.Type }

func decodeOldPalette(c *cursor.Cursor, typ ChunkType) (*OldPalette, error) {
	scale := uint8(1)
	if typ == ChunkOldPalette64 {
		scale = 4
	}

	packets := int(c.U16())
	p := &OldPalette{Type: typ, Packets: make([]OldPalettePacket, 0, packets)}
	for range packets {
		pk := OldPalettePacket{Skip: c.U8()}
		n := int(c.U8())
		if n == 0 {
			n = 256
		}
		if err := c.Err(); err != nil {
			return nil, err
		}
		pk.Colors = make([]color.NRGBA, n)
		for i := range pk.Colors {
			pk.Colors[i] = color.NRGBA{c.U8() * scale, c.U8() * scale, c.U8() * scale, 255}
		}
		p.Packets = append(p.Packets, pk)
	}
	return p, c.Err()
}

// apply writes the packets into pal starting at index 0.
func (p *OldPalette) apply(pal color.Palette) {
	i := 0
	for _, pk := range p.Packets {
		i += int(pk.Skip)
		for _, col := range pk.Colors {
			if i >= len(pal) {
				return
			}
			pal[i] = col
			i++
		}
	}
}
