// Package asetest builds Aseprite files byte by byte for tests.
package asetest

import (
	"bytes"
	"encoding/binary"

	"github.com/klauspost/compress/zlib"
)

const (
	ChunkOldPalette64  = 0x0011
	ChunkLayer         = 0x2004
	ChunkCel           = 0x2005
	ChunkCelExtra      = 0x2006
	ChunkColorProfile  = 0x2007
	ChunkExternalFiles = 0x2008
	ChunkTags          = 0x2018
	ChunkPalette       = 0x2019
	ChunkUserData      = 0x2020
	ChunkSlice         = 0x2022
	ChunkTileset       = 0x2023
)

// Writer appends little-endian values.
type Writer struct {
	b []byte
}

func (w *Writer) Bytes() []byte { return w.b }

func (w *Writer) U8(v uint8) *Writer {
	w.b = append(w.b, v)
	return w
}

func (w *Writer) U16(v uint16) *Writer {
	w.b = binary.LittleEndian.AppendUint16(w.b, v)
	return w
}

func (w *Writer) I16(v int16) *Writer { return w.U16(uint16(v)) }

func (w *Writer) U32(v uint32) *Writer {
	w.b = binary.LittleEndian.AppendUint32(w.b, v)
	return w
}

func (w *Writer) I32(v int32) *Writer { return w.U32(uint32(v)) }

func (w *Writer) U64(v uint64) *Writer {
	w.b = binary.LittleEndian.AppendUint64(w.b, v)
	return w
}

// Fixed writes a 16.16 fixed point number.
func (w *Writer) Fixed(v float64) *Writer { return w.I32(int32(v * 65536)) }

func (w *Writer) Str(s string) *Writer {
	w.U16(uint16(len(s)))
	w.b = append(w.b, s...)
	return w
}

func (w *Writer) Raw(p []byte) *Writer {
	w.b = append(w.b, p...)
	return w
}

func (w *Writer) Zero(n int) *Writer {
	w.b = append(w.b, make([]byte, n)...)
	return w
}

// Header holds the header fields that tests vary.
type Header struct {
	Width, Height  uint16
	Depth          uint16
	Flags          uint32
	Transparent    uint8
	NumColors      uint16
	GridX, GridY   int16
	GridW, GridH   uint16
	PixelW, PixelH uint8
}

// File lays out a header followed by frames, with the file size filled in.
func File(h Header, frames ...[]byte) []byte {
	if h.PixelW == 0 {
		h.PixelW, h.PixelH = 1, 1
	}
	body := bytes.Join(frames, nil)
	w := &Writer{}
	w.U32(uint32(128 + len(body))).U16(0xA5E0).U16(uint16(len(frames)))
	w.U16(h.Width).U16(h.Height).U16(h.Depth).U32(h.Flags).U16(100).Zero(8)
	w.U8(h.Transparent).Zero(3).U16(h.NumColors).U8(h.PixelW).U8(h.PixelH)
	w.I16(h.GridX).I16(h.GridY).U16(h.GridW).U16(h.GridH).Zero(84)
	return w.Raw(body).Bytes()
}

// Frame lays out a frame header and its chunks. Both chunk count fields are set.
func Frame(duration uint16, chunks ...[]byte) []byte {
	return frame(duration, uint16(len(chunks)), uint32(len(chunks)), chunks)
}

// OldFrame sets only the old 16-bit chunk count.
func OldFrame(duration uint16, chunks ...[]byte) []byte {
	return frame(duration, uint16(len(chunks)), 0, chunks)
}

func frame(duration, oldCount uint16, newCount uint32, chunks [][]byte) []byte {
	body := bytes.Join(chunks, nil)
	w := &Writer{}
	w.U32(uint32(16 + len(body))).U16(0xF1FA).U16(oldCount).U16(duration).Zero(2).U32(newCount)
	return w.Raw(body).Bytes()
}

// Chunk prefixes payload with its size and type.
func Chunk(typ uint16, payload []byte) []byte {
	w := &Writer{}
	return w.U32(uint32(len(payload) + 6)).U16(typ).Raw(payload).Bytes()
}

func Deflate(p []byte) []byte {
	var b bytes.Buffer
	zw := zlib.NewWriter(&b)
	zw.Write(p)
	zw.Close()
	return b.Bytes()
}

// Fill repeats one pixel n times.
func Fill(n int, pixel ...byte) []byte {
	return bytes.Repeat(pixel, n)
}

func Layer(flags, typ, level, mode uint16, opacity uint8, name string) []byte {
	w := &Writer{}
	w.U16(flags).U16(typ).U16(level).U16(0).U16(0).U16(mode).U8(opacity).Zero(3).Str(name)
	if typ == 2 {
		w.U32(0)
	}
	return Chunk(ChunkLayer, w.Bytes())
}

func celPrelude(layer uint16, x, y int16, opacity uint8, typ uint16) *Writer {
	w := &Writer{}
	return w.U16(layer).I16(x).I16(y).U8(opacity).U16(typ).I16(0).Zero(5)
}

func RawCel(layer uint16, x, y int16, opacity uint8, width, height uint16, pix []byte) []byte {
	w := celPrelude(layer, x, y, opacity, 0)
	return Chunk(ChunkCel, w.U16(width).U16(height).Raw(pix).Bytes())
}

func CompressedCel(layer uint16, x, y int16, opacity uint8, width, height uint16, pix []byte) []byte {
	return CompressedCelData(layer, x, y, opacity, width, height, Deflate(pix))
}

// CompressedCelData writes data as the compressed stream without deflating it.
func CompressedCelData(layer uint16, x, y int16, opacity uint8, width, height uint16, data []byte) []byte {
	w := celPrelude(layer, x, y, opacity, 2)
	return Chunk(ChunkCel, w.U16(width).U16(height).Raw(data).Bytes())
}

func LinkedCel(layer, frame uint16) []byte {
	w := celPrelude(layer, 0, 0, 255, 1)
	return Chunk(ChunkCel, w.U16(frame).Bytes())
}

// Tile flag masks of 32-bit tilemaps.
const (
	TileID    = 0x1fffffff
	TileFlipX = 0x20000000
	TileFlipY = 0x40000000
	TileFlipD = 0x80000000
)

func TilemapCel(layer uint16, x, y int16, width, height uint16, tiles []uint32) []byte {
	raw := &Writer{}
	for _, t := range tiles {
		raw.U32(t)
	}
	w := celPrelude(layer, x, y, 255, 3)
	w.U16(width).U16(height).U16(32).U32(TileID).U32(TileFlipX).U32(TileFlipY).U32(TileFlipD).Zero(10)
	return Chunk(ChunkCel, w.Raw(Deflate(raw.Bytes())).Bytes())
}

func CelExtra(x, y, width, height float64) []byte {
	w := &Writer{}
	w.U32(1).Fixed(x).Fixed(y).Fixed(width).Fixed(height).Zero(16)
	return Chunk(ChunkCelExtra, w.Bytes())
}

func ColorProfileSRGB() []byte {
	w := &Writer{}
	return Chunk(ChunkColorProfile, w.U16(1).U16(0).Fixed(0).Zero(8).Bytes())
}

type Tag struct {
	From, To uint16
	Dir      uint8
	Repeat   uint16
	Color    [3]byte
	Name     string
}

func Tags(tags ...Tag) []byte {
	w := &Writer{}
	w.U16(uint16(len(tags))).Zero(8)
	for _, t := range tags {
		w.U16(t.From).U16(t.To).U8(t.Dir).U16(t.Repeat).Zero(6)
		w.Raw(t.Color[:]).Zero(1).Str(t.Name)
	}
	return Chunk(ChunkTags, w.Bytes())
}

// UserData writes a user data chunk. rgba and props are optional; props is
// the properties block from Properties.
func UserData(text string, rgba []byte, props []byte) []byte {
	var flags uint32
	if text != "" {
		flags |= 1
	}
	if rgba != nil {
		flags |= 2
	}
	if props != nil {
		flags |= 4
	}
	w := &Writer{}
	w.U32(flags)
	if text != "" {
		w.Str(text)
	}
	if rgba != nil {
		w.Raw(rgba[:4])
	}
	w.Raw(props)
	return Chunk(ChunkUserData, w.Bytes())
}

// Properties wraps property maps, each already encoded as key, count and
// properties, into a sized properties block.
func Properties(maps ...[]byte) []byte {
	body := bytes.Join(maps, nil)
	w := &Writer{}
	return w.U32(uint32(8 + len(body))).U32(uint32(len(maps))).Raw(body).Bytes()
}

// Palette writes a palette chunk setting entries first.. from RGBA quads.
// Entries with a non-empty name in names get the name flag.
func Palette(first uint32, colors [][4]byte, names ...string) []byte {
	w := &Writer{}
	w.U32(first + uint32(len(colors))).U32(first).U32(first + uint32(len(colors)) - 1).Zero(8)
	for i, c := range colors {
		if i < len(names) && names[i] != "" {
			w.U16(1).Raw(c[:]).Str(names[i])
			continue
		}
		w.U16(0).Raw(c[:])
	}
	return Chunk(ChunkPalette, w.Bytes())
}

// OldPalette64 writes a single packet 0x0011 chunk with 6-bit components.
func OldPalette64(skip uint8, colors ...[3]byte) []byte {
	w := &Writer{}
	w.U16(1).U8(skip).U8(uint8(len(colors)))
	for _, c := range colors {
		w.Raw(c[:])
	}
	return Chunk(ChunkOldPalette64, w.Bytes())
}

type SliceKey struct {
	Frame          uint32
	X, Y           int32
	W, H           uint32
	PivotX, PivotY int32
}

// Slice writes a slice chunk whose keys carry a pivot.
func Slice(name string, keys ...SliceKey) []byte {
	w := &Writer{}
	w.U32(uint32(len(keys))).U32(2).U32(0).Str(name)
	for _, k := range keys {
		w.U32(k.Frame).I32(k.X).I32(k.Y).U32(k.W).U32(k.H).I32(k.PivotX).I32(k.PivotY)
	}
	return Chunk(ChunkSlice, w.Bytes())
}

// Tileset writes an embedded tileset; pix holds count tiles one below the other.
func Tileset(id uint32, count uint32, tileW, tileH uint16, name string, pix []byte) []byte {
	data := Deflate(pix)
	w := &Writer{}
	w.U32(id).U32(2).U32(count).U16(tileW).U16(tileH).I16(1).Zero(14).Str(name)
	w.U32(uint32(len(data))).Raw(data)
	return Chunk(ChunkTileset, w.Bytes())
}

func ExternalFiles(id uint32, typ uint8, name string) []byte {
	w := &Writer{}
	w.U32(1).Zero(8).U32(id).U8(typ).Zero(7).Str(name)
	return Chunk(ChunkExternalFiles, w.Bytes())
}
