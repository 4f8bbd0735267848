package aseparser

import (
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/setanarut/asefile/internal/cursor"
)

const (
	frameMagic      = 0xF1FA
	frameHeaderSize = 16
)

// Frame represents a single frame in the sprite.
//
// Layers, tags and palettes are normally found in the first frame only.
type Frame struct {
	// Size is the declared byte length of the frame, header included.
	Size uint32
	// Duration is the time that the frame should be displayed for.
	Duration time.Duration

	// Chunks lists every decoded chunk in file order, user data included.
	Chunks []Chunk

	Layers        []*Layer
	Cels          []*Cel
	Palettes      []*Palette
	OldPalettes   []*OldPalette
	ColorProfiles []*ColorProfile
	ExternalFiles []*ExternalFiles
	Tags          []Tag
	Slices        []*Slice
	Tilesets      []*Tileset
}

// Cel returns the cel of layer in this frame, or nil.
func (f *Frame) Cel(layer int) *Cel {
	for _, c := range f.Cels {
		if int(c.LayerIndex) == layer {
			return c
		}
	}
	return nil
}

func decodeFrame(c *cursor.Cursor, hdr *Header, cfg *Config) (*Frame, error) {
	start := c.Pos()
	f := &Frame{Size: c.U32()}
	if magic := c.U16(); c.Err() == nil && magic != frameMagic {
		return nil, errors.Wrapf(ErrInvalidMagicNumber, "frame magic 0x%04x", magic)
	}
	oldChunks := c.U16()
	f.Duration = time.Duration(c.U16()) * time.Millisecond
	c.Skip(2)
	nchunks := c.U32()
	if nchunks == 0 {
		nchunks = uint32(oldChunks)
	}
	if err := c.Err(); err != nil {
		return nil, errors.Wrap(err, "frame header")
	}

	// last is the chunk that a following user data chunk belongs to.
	var last annotated

	for i := uint32(0); i < nchunks; i++ {
		ch, err := decodeFrameChunk(c, hdr, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "chunk %d", i)
		}
		f.Chunks = append(f.Chunks, ch)

		switch ch := ch.(type) {
		case *UserData:
			if last == nil {
				return nil, errors.Wrapf(ErrMissingUserDataTarget, "chunk %d", i)
			}
			last.attach(ch)
			continue
		case *CelExtra:
			if len(f.Cels) == 0 {
				return nil, errors.Wrapf(ErrMissingCelExtraTarget, "chunk %d", i)
			}
			f.Cels[len(f.Cels)-1].Extra = ch
		case *Tags:
			n, err := f.decodeTagUserData(c, ch, nchunks-i-1, hdr, cfg)
			if err != nil {
				return nil, errors.Wrapf(err, "tags chunk %d", i)
			}
			i += n
			f.Tags = append(f.Tags, ch.Tags...)
		case *Layer:
			f.Layers = append(f.Layers, ch)
		case *Cel:
			f.Cels = append(f.Cels, ch)
		case *Palette:
			f.Palettes = append(f.Palettes, ch)
		case *OldPalette:
			f.OldPalettes = append(f.OldPalettes, ch)
		case *ColorProfile:
			f.ColorProfiles = append(f.ColorProfiles, ch)
		case *ExternalFiles:
			f.ExternalFiles = append(f.ExternalFiles, ch)
		case *Slice:
			f.Slices = append(f.Slices, ch)
		case *Tileset:
			f.Tilesets = append(f.Tilesets, ch)
		}

		if a, ok := ch.(annotated); ok {
			last = a
		}
	}

	if got := c.Since(start); got != int(f.Size) {
		return nil, errors.Wrapf(ErrFrameSizeMismatch, "read %d bytes, declared %d", got, f.Size)
	}
	return f, nil
}

// decodeFrameChunk reads one chunk header and payload. A payload shorter than
// the declared size is padded over; a longer one is an error.
func decodeFrameChunk(c *cursor.Cursor, hdr *Header, cfg *Config) (Chunk, error) {
	start := c.Pos()
	size := int(c.U32())
	typ := ChunkType(c.U16())
	if err := c.Err(); err != nil {
		return nil, err
	}
	if size < chunkHeaderSize {
		return nil, errors.Wrapf(ErrFrameSizeMismatch, "chunk 0x%04x declares %d bytes", uint16(typ), size)
	}

	ch, err := decodeChunk(c, typ, size, hdr, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "chunk 0x%04x at offset %d", uint16(typ), start)
	}

	switch got := c.Since(start); {
	case got > size:
		return nil, errors.Wrapf(ErrFrameSizeMismatch, "chunk 0x%04x read %d bytes, declared %d", uint16(typ), got, size)
	case got < size:
		glog.V(3).Infof("chunk 0x%04x: skipping %d trailing bytes", uint16(typ), size-got)
		c.Skip(size - got)
	default:
		glog.V(3).Infof("chunk 0x%04x: %d bytes", uint16(typ), size)
	}
	return ch, c.Err()
}

// decodeTagUserData attaches the user data chunks that follow a tags chunk,
// one per tag in order. It stops at the first chunk that is not user data and
// never reads past the remaining chunk count. It returns the number of chunks
// consumed.
func (f *Frame) decodeTagUserData(c *cursor.Cursor, tc *Tags, remaining uint32, hdr *Header, cfg *Config) (uint32, error) {
	var n uint32
	for i := range tc.Tags {
		if n == remaining || c.Len() < chunkHeaderSize {
			break
		}
		peek := c.Pos()
		c.Skip(4)
		typ := ChunkType(c.U16())
		if err := c.Seek(peek); err != nil {
			return n, err
		}
		if typ != ChunkUserData {
			break
		}

		ch, err := decodeFrameChunk(c, hdr, cfg)
		if err != nil {
			return n, errors.Wrapf(err, "user data of tag %q", tc.Tags[i].Name)
		}
		ud := ch.(*UserData)
		tc.Tags[i].attach(ud)
		f.Chunks = append(f.Chunks, ud)
		n++
	}
	return n, nil
}
