package aseparser

import (
	"image"

	"github.com/setanarut/asefile/internal/cursor"
)

const (
	sliceNinePatch = 1
	slicePivot     = 2
)

// SliceKey is the slice geometry starting at Frame.
type SliceKey struct {
	Frame uint32

	// Bounds is the bounds of the slice.
	Bounds image.Rectangle

	// Center is the 9-slices center relative to Bounds.
	Center image.Rectangle

	// Pivot is the pivot point relative to Bounds.
	Pivot image.Point
}

// Slice Chunk (0x2022)
type Slice struct {
	Annotation
	// Name is the name of the slice. Can be duplicate.
	Name  string
	Flags uint32
	Keys  []SliceKey
}

func (*Slice) ChunkType() ChunkType { return ChunkSlice }

// NinePatch reports whether the keys carry a 9-slices center.
func (s *Slice) NinePatch() bool { return s.Flags&sliceNinePatch != 0 }

// HasPivot reports whether the keys carry a pivot.
func (s *Slice) HasPivot() bool { return s.Flags&slicePivot != 0 }

// Expand returns one key per frame. A key holds until the next key; the first
// key also covers the frames before it.
func (s *Slice) Expand(frames int) []SliceKey {
	if len(s.Keys) == 0 {
		return nil
	}
	out := make([]SliceKey, frames)
	k := 0
	cur := s.Keys[0]
	for i := range out {
		if k < len(s.Keys) && int(s.Keys[k].Frame) == i {
			cur = s.Keys[k]
			k++
		}
		out[i] = cur
	}
	return out
}

func decodeSlice(c *cursor.Cursor) (*Slice, error) {
	n := c.U32()
	s := &Slice{Flags: c.U32()}
	c.Skip(4)
	s.Name = c.Str()

	for range n {
		if c.Err() != nil {
			break
		}
		k := SliceKey{Frame: c.U32()}
		x, y := int(c.I32()), int(c.I32())
		w, h := int(c.U32()), int(c.U32())
		k.Bounds = image.Rect(x, y, x+w, y+h)

		if s.Flags&sliceNinePatch != 0 {
			cx, cy := int(c.I32()), int(c.I32())
			cw, ch := int(c.U32()), int(c.U32())
			k.Center = image.Rect(cx, cy, cx+cw, cy+ch)
		}
		if s.Flags&slicePivot != 0 {
			k.Pivot = image.Pt(int(c.I32()), int(c.I32()))
		}
		s.Keys = append(s.Keys, k)
	}
	return s, c.Err()
}
