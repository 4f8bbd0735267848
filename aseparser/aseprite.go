// Package aseparser implements a decoder for Aseprite sprite files.
//
// The decoder reads the whole file into a document tree: a header and one
// Frame per animation frame, each holding the chunks found in it. Cel pixels
// are decoded to color.NRGBA but are not composited; see the asefile package
// for rendering frames.
//
// Aseprite file format spec: https://github.com/aseprite/aseprite/blob/main/docs/ase-file-specs.md
package aseparser

import (
	"fmt"
	"image/color"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/setanarut/asefile/internal/cursor"
)

const (
	headerSize = 128
	fileMagic  = 0xA5E0
)

// HeaderFlags is the bit set of file header flags.
type HeaderFlags uint32

const (
	HeaderLayerOpacity HeaderFlags = 1 << iota
	HeaderGroupOpacity
	HeaderLayerUUID
)

// Header is the 128-byte file header.
type Header struct {
	FileSize   uint32
	Frames     uint16
	Width      uint16
	Height     uint16
	ColorDepth ColorDepth
	Flags      HeaderFlags
	// Speed is the deprecated frame duration in milliseconds.
	Speed uint16
	// TransparentIndex is the palette entry that is transparent in indexed
	// sprites.
	TransparentIndex uint8
	// NumColors is the palette size. 0 means 256 in old files.
	NumColors   uint16
	PixelWidth  uint8
	PixelHeight uint8
	GridX       int16
	GridY       int16
	GridWidth   uint16
	GridHeight  uint16
}

func (h Header) String() string {
	return fmt.Sprintf("%dx%d %dbpp, %d frames, %s", h.Width, h.Height, h.ColorDepth, h.Frames, humanize.Bytes(uint64(h.FileSize)))
}

func decodeHeader(c *cursor.Cursor) (Header, error) {
	var h Header
	h.FileSize = c.U32()
	if magic := c.U16(); c.Err() == nil && magic != fileMagic {
		return h, errors.Wrapf(ErrInvalidMagicNumber, "file magic 0x%04x", magic)
	}
	h.Frames = c.U16()
	h.Width = c.U16()
	h.Height = c.U16()
	h.ColorDepth = ColorDepth(c.U16())
	h.Flags = HeaderFlags(c.U32())
	h.Speed = c.U16()
	c.Skip(8)
	h.TransparentIndex = c.U8()
	c.Skip(3)
	h.NumColors = c.U16()
	h.PixelWidth = c.U8()
	h.PixelHeight = c.U8()
	h.GridX = c.I16()
	h.GridY = c.I16()
	h.GridWidth = c.U16()
	h.GridHeight = c.U16()
	c.Skip(84)

	if err := c.Err(); err != nil {
		return h, errors.Wrap(err, "header")
	}
	if !h.ColorDepth.valid() {
		return h, errors.Wrapf(ErrInvalidColorDepth, "%d", h.ColorDepth)
	}
	return h, nil
}

// Aseprite holds the results of a parsed Aseprite image file.
type Aseprite struct {
	Header Header
	Frames []*Frame
}

func (a *Aseprite) Width() int             { return int(a.Header.Width) }
func (a *Aseprite) Height() int            { return int(a.Header.Height) }
func (a *Aseprite) ColorDepth() ColorDepth { return a.Header.ColorDepth }

// Layers returns the layers in file order. Layer chunks live in the first frame.
func (a *Aseprite) Layers() []*Layer {
	if len(a.Frames) == 0 {
		return nil
	}
	return a.Frames[0].Layers
}

// Tags lists all animation tags.
func (a *Aseprite) Tags() []Tag {
	var tags []Tag
	for _, f := range a.Frames {
		tags = append(tags, f.Tags...)
	}
	return tags
}

// Tag returns the first tag with the given name.
func (a *Aseprite) Tag(name string) (Tag, error) {
	for _, f := range a.Frames {
		for _, t := range f.Tags {
			if t.Name == name {
				return t, nil
			}
		}
	}
	return Tag{}, errors.Wrapf(ErrUnknownTagReference, "%q", name)
}

// Slices lists all slices.
func (a *Aseprite) Slices() []*Slice {
	var s []*Slice
	for _, f := range a.Frames {
		s = append(s, f.Slices...)
	}
	return s
}

// Tileset returns the tileset referenced by a tilemap layer, or nil.
func (a *Aseprite) Tileset(index uint32) *Tileset {
	for _, f := range a.Frames {
		for _, t := range f.Tilesets {
			if t.ID == index {
				return t
			}
		}
	}
	return nil
}

// LayerParent returns the index of the group containing layer i, or -1.
func (a *Aseprite) LayerParent(i int) int {
	layers := a.Layers()
	level := layers[i].ChildLevel
	for j := i - 1; j >= 0; j-- {
		if layers[j].ChildLevel < level {
			return j
		}
	}
	return -1
}

// LayerVisible reports whether layer i and every group containing it are visible.
func (a *Aseprite) LayerVisible(i int) bool {
	layers := a.Layers()
	for ; i >= 0; i = a.LayerParent(i) {
		if !layers[i].Visible() {
			return false
		}
	}
	return true
}

// Palette returns the sprite palette from the first frame. A palette chunk
// (0x2019) takes precedence over the old 0x0004 chunk, which takes precedence
// over 0x0011. Entries not set by any chunk are black. In indexed sprites the
// transparent index is transparent.
func (a *Aseprite) Palette() color.Palette {
	n := int(a.Header.NumColors)
	if n == 0 {
		n = 256
	}
	pal := make(color.Palette, n)
	for i := range pal {
		pal[i] = color.NRGBA{A: 255}
	}

	if len(a.Frames) > 0 {
		f := a.Frames[0]
		switch {
		case len(f.Palettes) > 0:
			for _, p := range f.Palettes {
				for len(pal) < int(p.Size) {
					pal = append(pal, color.NRGBA{A: 255})
				}
				for i, e := range p.Entries {
					if j := int(p.First) + i; j < len(pal) {
						pal[j] = e.Color
					}
				}
			}
		case len(f.OldPalettes) > 0:
			old := f.OldPalettes[0]
			for _, p := range f.OldPalettes {
				if p.Type == ChunkOldPalette {
					old = p
					break
				}
			}
			old.apply(pal)
		}
	}

	if a.Header.ColorDepth == ColorDepthIndexed && int(a.Header.TransparentIndex) < len(pal) {
		pal[a.Header.TransparentIndex] = color.NRGBA{}
	}
	return pal
}

// ResolveCel returns the cel that provides the content of layer in frame,
// following linked cels. Linked cels share position, opacity and pixels with
// their target. It returns nil if the frame has no cel on the layer.
func (a *Aseprite) ResolveCel(frame, layer int) (*Cel, error) {
	if frame < 0 || frame >= len(a.Frames) {
		return nil, errors.Wrapf(ErrInvalidLink, "frame %d out of range", frame)
	}
	cel := a.Frames[frame].Cel(layer)
	for hops := 0; cel != nil && cel.Type == CelLinked; hops++ {
		if hops == len(a.Frames) {
			return nil, errors.Wrapf(ErrInvalidLink, "cycle at frame %d layer %d", frame, layer)
		}
		target := int(cel.LinkedFrame)
		if target >= len(a.Frames) {
			return nil, errors.Wrapf(ErrInvalidLink, "frame %d links to frame %d", frame, target)
		}
		frame = target
		cel = a.Frames[frame].Cel(layer)
		if cel == nil {
			return nil, errors.Wrapf(ErrInvalidLink, "frame %d has no cel on layer %d", frame, layer)
		}
	}
	return cel, nil
}

// resolveLinks copies the content of the linked cels into the linking cels.
func (a *Aseprite) resolveLinks() error {
	for i, f := range a.Frames {
		for _, cel := range f.Cels {
			if cel.Type != CelLinked {
				continue
			}
			src, err := a.ResolveCel(i, int(cel.LayerIndex))
			if err != nil {
				return err
			}
			cel.X, cel.Y, cel.Opacity = src.X, src.Y, src.Opacity
			cel.Width, cel.Height = src.Width, src.Height
			cel.Pixels = src.Pixels
			cel.Tilemap = src.Tilemap
		}
	}
	return nil
}
