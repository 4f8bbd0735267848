package aseparser

import (
	"image/color"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/setanarut/v"

	"github.com/setanarut/asefile/aseparser/blend"
	"github.com/setanarut/asefile/internal/cursor"
)

// ChunkType is the 16-bit type code of a chunk.
type ChunkType uint16

const (
	ChunkOldPalette    ChunkType = 0x0004
	ChunkOldPalette64  ChunkType = 0x0011
	ChunkLayer         ChunkType = 0x2004
	ChunkCel           ChunkType = 0x2005
	ChunkCelExtra      ChunkType = 0x2006
	ChunkColorProfile  ChunkType = 0x2007
	ChunkExternalFiles ChunkType = 0x2008
	ChunkMask          ChunkType = 0x2016
	ChunkPath          ChunkType = 0x2017
	ChunkTags          ChunkType = 0x2018
	ChunkPalette       ChunkType = 0x2019
	ChunkUserData      ChunkType = 0x2020
	ChunkSlice         ChunkType = 0x2022
	ChunkTileset       ChunkType = 0x2023
)

const chunkHeaderSize = 6

// Chunk is one decoded chunk record. The concrete type is one of
// *OldPalette, *Layer, *Cel, *CelExtra, *ColorProfile, *ExternalFiles,
// *Tags, *Palette, *UserData, *Slice, *Tileset or *Skipped.
type Chunk interface {
	ChunkType() ChunkType
}

// decodeChunk decodes the payload of a chunk whose 6-byte header has been read.
// size is the declared chunk size including the header.
func decodeChunk(c *cursor.Cursor, typ ChunkType, size int, hdr *Header, cfg *Config) (Chunk, error) {
	payload := size - chunkHeaderSize

	switch typ {
	case ChunkOldPalette, ChunkOldPalette64:
		return decodeOldPalette(c, typ)
	case ChunkLayer:
		return decodeLayer(c, hdr)
	case ChunkCel:
		return decodeCel(c, size, hdr)
	case ChunkCelExtra:
		return decodeCelExtra(c)
	case ChunkColorProfile:
		return decodeColorProfile(c)
	case ChunkExternalFiles:
		return decodeExternalFiles(c)
	case ChunkMask, ChunkPath:
		return &Skipped{Type: typ, Data: c.Bytes(payload)}, c.Err()
	case ChunkTags:
		return decodeTags(c)
	case ChunkPalette:
		return decodePalette(c)
	case ChunkUserData:
		return decodeUserData(c)
	case ChunkSlice:
		return decodeSlice(c)
	case ChunkTileset:
		return decodeTileset(c, hdr)
	}

	if cfg.SkipUnknownChunks {
		glog.Warningf("skipping unknown chunk 0x%04x (%d bytes)", uint16(typ), size)
		return &Skipped{Type: typ, Data: c.Bytes(payload)}, c.Err()
	}
	return nil, errors.Wrapf(ErrUnsupportedChunkType, "0x%04x", uint16(typ))
}

// Skipped holds the raw payload of a chunk that is not interpreted:
// the deprecated mask and path chunks, and unknown chunks when
// Config.SkipUnknownChunks is set.
type Skipped struct {
	Annotation
	Type ChunkType
	Data []byte
}

func (s *Skipped) ChunkType() ChunkType { return s.Type }

// LayerFlags is the bit set of layer flags.
type LayerFlags uint16

const (
	LayerVisible LayerFlags = 1 << iota
	LayerEditable
	LayerLockMovement
	LayerBackground
	LayerPreferLinkedCels
	LayerCollapsed
	LayerReference
)

type LayerType uint16

const (
	LayerNormal LayerType = iota
	LayerGroup
	LayerTilemap
)

// Layer Chunk (0x2004)
type Layer struct {
	Annotation
	Flags LayerFlags
	Type  LayerType
	// ChildLevel is the nesting depth. A layer is a child of the nearest
	// preceding layer with a smaller child level.
	ChildLevel    uint16
	DefaultWidth  uint16
	DefaultHeight uint16
	BlendMode     blend.Mode
	// Opacity is valid only if the header has the layer opacity flag.
	Opacity uint8
	Name    string
	// TilesetIndex is set for tilemap layers.
	TilesetIndex uint32
	// UUID is set when the header has the layer UUID flag.
	UUID UUID
}

func (*Layer) ChunkType() ChunkType { return ChunkLayer }

func (l *Layer) Visible() bool   { return l.Flags&LayerVisible != 0 }
func (l *Layer) Reference() bool { return l.Flags&LayerReference != 0 }
func (l *Layer) Group() bool     { return l.Type == LayerGroup }

func decodeLayer(c *cursor.Cursor, hdr *Header) (*Layer, error) {
	l := &Layer{
		Flags:         LayerFlags(c.U16()),
		Type:          LayerType(c.U16()),
		ChildLevel:    c.U16(),
		DefaultWidth:  c.U16(),
		DefaultHeight: c.U16(),
		BlendMode:     blend.Mode(c.U16()),
		Opacity:       c.U8(),
	}
	c.Skip(3)
	l.Name = c.Str()
	if l.Type == LayerTilemap {
		l.TilesetIndex = c.U32()
	}
	if hdr.Flags&HeaderLayerUUID != 0 {
		copy(l.UUID[:], c.Bytes(16))
	}
	return l, c.Err()
}

// CelExtra Chunk (0x2006)
type CelExtra struct {
	Annotation
	Flags uint32
	// Position and Size are the precise cel bounds in sprite pixels,
	// valid when Flags&1 is set.
	Position v.Vec
	Size     v.Vec
}

func (*CelExtra) ChunkType() ChunkType { return ChunkCelExtra }

func decodeCelExtra(c *cursor.Cursor) (*CelExtra, error) {
	e := &CelExtra{
		Flags:    c.U32(),
		Position: v.Vec{X: c.Fixed(), Y: c.Fixed()},
		Size:     v.Vec{X: c.Fixed(), Y: c.Fixed()},
	}
	c.Skip(16)
	return e, c.Err()
}

const (
	ColorProfileNone = iota
	ColorProfileSRGB
	ColorProfileICC
)

// ColorProfile Chunk (0x2007)
type ColorProfile struct {
	Annotation
	Type  uint16
	Flags uint16
	// Gamma is meaningful when Flags&1 is set.
	Gamma float64
	// ICC is the embedded profile when Type is ColorProfileICC.
	ICC []byte
}

func (*ColorProfile) ChunkType() ChunkType { return ChunkColorProfile }

func decodeColorProfile(c *cursor.Cursor) (*ColorProfile, error) {
	p := &ColorProfile{
		Type:  c.U16(),
		Flags: c.U16(),
		Gamma: c.Fixed(),
	}
	c.Skip(8)
	if p.Type == ColorProfileICC {
		n := int(c.U32())
		p.ICC = append([]byte(nil), c.Bytes(n)...)
	}
	return p, c.Err()
}

type ExternalFile struct {
	ID uint32
	// Type is 0 for an external palette, 1 for an external tileset,
	// 2 for an extension name and 3 for an extension name of a tile management plugin.
	Type uint8
	Name string
}

// ExternalFiles Chunk (0x2008)
type ExternalFiles struct {
	Annotation
	Entries []ExternalFile
}

func (*ExternalFiles) ChunkType() ChunkType { return ChunkExternalFiles }

func decodeExternalFiles(c *cursor.Cursor) (*ExternalFiles, error) {
	n := c.U32()
	c.Skip(8)
	ef := &ExternalFiles{}
	for range n {
		if c.Err() != nil {
			break
		}
		e := ExternalFile{ID: c.U32(), Type: c.U8()}
		c.Skip(7)
		e.Name = c.Str()
		ef.Entries = append(ef.Entries, e)
	}
	return ef, c.Err()
}

// LoopDirection enumerates all loop animation directions.
type LoopDirection uint8

const (
	Forward LoopDirection = iota
	Reverse
	PingPong
	PingPongReverse
)

func (d LoopDirection) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case PingPong:
		return "pingpong"
	case PingPongReverse:
		return "pingpong_reverse"
	}
	return "unknown"
}

// Tag is an animation tag.
type Tag struct {
	// Annotation holds the user data chunk that followed the tags chunk
	// in this tag's position.
	Annotation
	// Name is the name of the tag. Can be duplicate.
	Name string
	// Lo is the first frame in the animation.
	Lo uint16
	// Hi is the last frame in the animation.
	Hi uint16
	// Repeat specifies how many times to repeat the animation. 0 is infinite.
	Repeat uint16
	// LoopDirection is the looping direction of the animation.
	LoopDirection LoopDirection
	// Color is the deprecated tag color. New files use the user data color.
	Color color.NRGBA
}

// Tags Chunk (0x2018)
type Tags struct {
	Annotation
	Tags []Tag
}

func (*Tags) ChunkType() ChunkType { return ChunkTags }

func decodeTags(c *cursor.Cursor) (*Tags, error) {
	n := int(c.U16())
	c.Skip(8)
	if err := c.Err(); err != nil {
		return nil, err
	}

	tc := &Tags{Tags: make([]Tag, 0, n)}
	for range n {
		t := Tag{
			Lo:            c.U16(),
			Hi:            c.U16(),
			LoopDirection: LoopDirection(c.U8()),
			Repeat:        c.U16(),
		}
		c.Skip(6)
		t.Color = color.NRGBA{c.U8(), c.U8(), c.U8(), 255}
		c.Skip(1)
		t.Name = c.Str()
		if err := c.Err(); err != nil {
			return nil, err
		}
		tc.Tags = append(tc.Tags, t)
	}
	return tc, nil
}

func (*UserData) ChunkType() ChunkType { return ChunkUserData }
