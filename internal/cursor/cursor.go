// Package cursor reads little-endian Aseprite primitives from a byte slice.
//
// A Cursor has a sticky error state: once a read runs past the end of the
// buffer every following read is skipped and returns a zero value, and Err
// reports the first failure. Callers check Err at record boundaries.
package cursor

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrTruncated is reported when a read needs more bytes than remain.
var ErrTruncated = errors.New("truncated input")

type Cursor struct {
	buf []byte
	pos int
	err error
}

func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the absolute read position.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the number of unread bytes.
func (c *Cursor) Len() int { return len(c.buf) - c.pos }

// Since returns the number of bytes consumed after position start.
func (c *Cursor) Since(start int) int { return c.pos - start }

// Err returns the first error encountered, if any.
func (c *Cursor) Err() error { return c.err }

// Seek moves to an absolute position. Seeking to len(buf) is allowed.
func (c *Cursor) Seek(pos int) error {
	if c.err != nil {
		return c.err
	}
	if pos < 0 || pos > len(c.buf) {
		c.err = errors.Wrapf(ErrTruncated, "seek to %d of %d", pos, len(c.buf))
		return c.err
	}
	c.pos = pos
	return nil
}

// Skip advances n bytes.
func (c *Cursor) Skip(n int) {
	c.take(n)
}

// Bytes returns the next n bytes. The result aliases the underlying buffer.
func (c *Cursor) Bytes(n int) []byte {
	return c.take(n)
}

func (c *Cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || n > c.Len() {
		c.err = errors.Wrapf(ErrTruncated, "need %d bytes at offset %d, have %d", n, c.pos, c.Len())
		return nil
	}
	b := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return b
}

func (c *Cursor) U8() uint8 {
	if b := c.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (c *Cursor) I8() int8 { return int8(c.U8()) }

func (c *Cursor) U16() uint16 {
	if b := c.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (c *Cursor) I16() int16 { return int16(c.U16()) }

func (c *Cursor) U32() uint32 {
	if b := c.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (c *Cursor) I32() int32 { return int32(c.U32()) }

func (c *Cursor) U64() uint64 {
	if b := c.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (c *Cursor) I64() int64 { return int64(c.U64()) }

func (c *Cursor) F32() float32 { return math.Float32frombits(c.U32()) }

func (c *Cursor) F64() float64 { return math.Float64frombits(c.U64()) }

// Fixed reads a 16.16 fixed point number.
func (c *Cursor) Fixed() float64 {
	return float64(c.I32()) / 65536
}

// Str reads a WORD length followed by that many UTF-8 bytes.
func (c *Cursor) Str() string {
	n := int(c.U16())
	return string(c.take(n))
}
