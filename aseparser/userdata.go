package aseparser

import (
	"fmt"
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/setanarut/asefile/internal/cursor"
)

// UserData is optional text, color and properties attached to a chunk or tag.
type UserData struct {
	Flags uint32
	Text  string
	// Color is nil unless the color flag is set.
	Color color.Color
	// Properties maps a properties-map key to its properties. Key 0 holds the
	// user properties, other keys are external file entry IDs of extensions.
	Properties map[uint32]Properties
}

const (
	userDataText       = 1
	userDataColor      = 2
	userDataProperties = 4
)

// Annotation carries the user data attached to a chunk.
type Annotation struct {
	UserData *UserData
}

func (a *Annotation) attach(ud *UserData) { a.UserData = ud }

type annotated interface {
	attach(*UserData)
}

func decodeUserData(c *cursor.Cursor) (*UserData, error) {
	ud := &UserData{Flags: c.U32()}

	if ud.Flags&userDataText != 0 {
		ud.Text = c.Str()
	}
	if ud.Flags&userDataColor != 0 {
		ud.Color = color.NRGBA{c.U8(), c.U8(), c.U8(), c.U8()}
	}
	if ud.Flags&userDataProperties != 0 {
		start := c.Pos()
		size := int(c.U32())
		nmaps := c.U32()
		// each map takes at least 8 bytes
		ud.Properties = make(map[uint32]Properties, min(nmaps, uint32(c.Len()/8)))
		for range nmaps {
			key := c.U32()
			props, err := decodePropertyMap(c)
			if err != nil {
				return nil, errors.Wrapf(err, "properties map %d", key)
			}
			ud.Properties[key] = props
		}
		if c.Err() == nil && c.Since(start) != size {
			return nil, errors.Wrapf(ErrSizeMismatch, "properties block read %d bytes, declared %d", c.Since(start), size)
		}
	}
	return ud, c.Err()
}

// PropertyType is the 16-bit type code of a user data property.
type PropertyType uint16

const (
	PropertyBool PropertyType = iota + 1
	PropertyInt8
	PropertyUint8
	PropertyInt16
	PropertyUint16
	PropertyInt32
	PropertyUint32
	PropertyInt64
	PropertyUint64
	PropertyFixed
	PropertyFloat
	PropertyDouble
	PropertyString
	PropertyPoint
	PropertySize
	PropertyRect
	PropertyVector
	PropertyMap
	PropertyUUID
)

// Property is a typed user data value. The concrete type is one of Bool,
// Int8, Uint8, Int16, Uint16, Int32, Uint32, Int64, Uint64, Fixed, Float,
// Double, String, Point, Size, Rect, Vector, Properties or UUID.
type Property interface {
	PropertyType() PropertyType
	isProperty()
}

type (
	Bool   bool
	Int8   int8
	Uint8  uint8
	Int16  int16
	Uint16 uint16
	Int32  int32
	Uint32 uint32
	Int64  int64
	Uint64 uint64
	// Fixed is a 16.16 fixed point number converted to float64.
	Fixed  float64
	Float  float32
	Double float64
	String string
	Point  image.Point
	Size   image.Point
	Rect   image.Rectangle
	Vector []Property
	// Properties is a named set of properties. It is also the nested map property.
	Properties map[string]Property
	UUID       [16]byte
)

func (Bool) PropertyType() PropertyType       { return PropertyBool }
func (Int8) PropertyType() PropertyType       { return PropertyInt8 }
func (Uint8) PropertyType() PropertyType      { return PropertyUint8 }
func (Int16) PropertyType() PropertyType      { return PropertyInt16 }
func (Uint16) PropertyType() PropertyType     { return PropertyUint16 }
func (Int32) PropertyType() PropertyType      { return PropertyInt32 }
func (Uint32) PropertyType() PropertyType     { return PropertyUint32 }
func (Int64) PropertyType() PropertyType      { return PropertyInt64 }
func (Uint64) PropertyType() PropertyType     { return PropertyUint64 }
func (Fixed) PropertyType() PropertyType      { return PropertyFixed }
func (Float) PropertyType() PropertyType      { return PropertyFloat }
func (Double) PropertyType() PropertyType     { return PropertyDouble }
func (String) PropertyType() PropertyType     { return PropertyString }
func (Point) PropertyType() PropertyType      { return PropertyPoint }
func (Size) PropertyType() PropertyType       { return PropertySize }
func (Rect) PropertyType() PropertyType       { return PropertyRect }
func (Vector) PropertyType() PropertyType     { return PropertyVector }
func (Properties) PropertyType() PropertyType { return PropertyMap }
func (UUID) PropertyType() PropertyType       { return PropertyUUID }

func (Bool) isProperty()       {}
func (Int8) isProperty()       {}
func (Uint8) isProperty()      {}
func (Int16) isProperty()      {}
func (Uint16) isProperty()     {}
func (Int32) isProperty()      {}
func (Uint32) isProperty()     {}
func (Int64) isProperty()      {}
func (Uint64) isProperty()     {}
func (Fixed) isProperty()      {}
func (Float) isProperty()      {}
func (Double) isProperty()     {}
func (String) isProperty()     {}
func (Point) isProperty()      {}
func (Size) isProperty()       {}
func (Rect) isProperty()       {}
func (Vector) isProperty()     {}
func (Properties) isProperty() {}
func (UUID) isProperty()       {}

func (u UUID) String() string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}

type propertyDecoder func(c *cursor.Cursor) (Property, error)

// propertyDecoders is indexed by PropertyType. Vector and map entries are
// filled in init because they recurse through the table.
var propertyDecoders = [...]propertyDecoder{
	PropertyBool:   func(c *cursor.Cursor) (Property, error) { return Bool(c.U8() != 0), nil },
	PropertyInt8:   func(c *cursor.Cursor) (Property, error) { return Int8(c.I8()), nil },
	PropertyUint8:  func(c *cursor.Cursor) (Property, error) { return Uint8(c.U8()), nil },
	PropertyInt16:  func(c *cursor.Cursor) (Property, error) { return Int16(c.I16()), nil },
	PropertyUint16: func(c *cursor.Cursor) (Property, error) { return Uint16(c.U16()), nil },
	PropertyInt32:  func(c *cursor.Cursor) (Property, error) { return Int32(c.I32()), nil },
	PropertyUint32: func(c *cursor.Cursor) (Property, error) { return Uint32(c.U32()), nil },
	PropertyInt64:  func(c *cursor.Cursor) (Property, error) { return Int64(c.I64()), nil },
	PropertyUint64: func(c *cursor.Cursor) (Property, error) { return Uint64(c.U64()), nil },
	PropertyFixed:  func(c *cursor.Cursor) (Property, error) { return Fixed(c.Fixed()), nil },
	PropertyFloat:  func(c *cursor.Cursor) (Property, error) { return Float(c.F32()), nil },
	PropertyDouble: func(c *cursor.Cursor) (Property, error) { return Double(c.F64()), nil },
	PropertyString: func(c *cursor.Cursor) (Property, error) { return String(c.Str()), nil },
	PropertyPoint: func(c *cursor.Cursor) (Property, error) {
		x, y := c.I32(), c.I32()
		return Point{int(x), int(y)}, nil
	},
	PropertySize: func(c *cursor.Cursor) (Property, error) {
		w, h := c.I32(), c.I32()
		return Size{int(w), int(h)}, nil
	},
	PropertyRect: func(c *cursor.Cursor) (Property, error) {
		x, y, w, h := int(c.I32()), int(c.I32()), int(c.I32()), int(c.I32())
		return Rect(image.Rect(x, y, x+w, y+h)), nil
	},
	PropertyVector: nil,
	PropertyMap:    nil,
	PropertyUUID: func(c *cursor.Cursor) (Property, error) {
		var u UUID
		copy(u[:], c.Bytes(16))
		return u, nil
	},
}

func init() {
	propertyDecoders[PropertyVector] = decodeVector
	propertyDecoders[PropertyMap] = func(c *cursor.Cursor) (Property, error) {
		return decodePropertyMap(c)
	}
}

func decodeProperty(c *cursor.Cursor, typ PropertyType) (Property, error) {
	if int(typ) >= len(propertyDecoders) || propertyDecoders[typ] == nil {
		return nil, errors.Wrapf(ErrUnknownPropertyType, "0x%04x", uint16(typ))
	}
	p, err := propertyDecoders[typ](c)
	if err != nil {
		return nil, err
	}
	return p, c.Err()
}

func decodeVector(c *cursor.Cursor) (Property, error) {
	n := c.U32()
	elemType := PropertyType(c.U16())
	if err := c.Err(); err != nil {
		return nil, err
	}

	vec := make(Vector, 0, min(n, uint32(c.Len())))
	for i := range n {
		typ := elemType
		if typ == 0 {
			typ = PropertyType(c.U16())
		}
		p, err := decodeProperty(c, typ)
		if err != nil {
			return nil, errors.Wrapf(err, "vector element %d", i)
		}
		vec = append(vec, p)
	}
	return vec, nil
}

func decodePropertyMap(c *cursor.Cursor) (Properties, error) {
	n := c.U32()
	if err := c.Err(); err != nil {
		return nil, err
	}

	props := make(Properties, min(n, uint32(c.Len()/4)))
	for range n {
		name := c.Str()
		p, err := decodeProperty(c, PropertyType(c.U16()))
		if err != nil {
			return nil, errors.Wrapf(err, "property %q", name)
		}
		props[name] = p
	}
	return props, nil
}
