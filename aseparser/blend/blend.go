// Package blend implements the Aseprite layer blend modes on 8-bit
// non-premultiplied colors.
//
// Every mode first computes a blended color from the opaque backdrop and
// source colors, then composites it over the backdrop with the source alpha
// scaled by the layer opacity. The fixed point rounding follows Aseprite, so
// results match the editor bit for bit.
package blend

import (
	"fmt"
	"image/color"

	"github.com/pkg/errors"
)

// ErrUnsupportedMode is returned for modes that have no formula.
var ErrUnsupportedMode = errors.New("unsupported blend mode")

// Mode is a layer blend mode as stored in the layer chunk.
type Mode uint16

const (
	Normal Mode = iota
	Multiply
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion
	Hue
	Saturation
	Color
	Luminosity
	Addition
	Subtract
	Divide
)

var modeNames = [...]string{
	Normal:     "Normal",
	Multiply:   "Multiply",
	Screen:     "Screen",
	Overlay:    "Overlay",
	Darken:     "Darken",
	Lighten:    "Lighten",
	ColorDodge: "ColorDodge",
	ColorBurn:  "ColorBurn",
	HardLight:  "HardLight",
	SoftLight:  "SoftLight",
	Difference: "Difference",
	Exclusion:  "Exclusion",
	Hue:        "Hue",
	Saturation: "Saturation",
	Color:      "Color",
	Luminosity: "Luminosity",
	Addition:   "Addition",
	Subtract:   "Subtract",
	Divide:     "Divide",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint16(m))
}

// Func blends src onto backdrop. An opacity of 0 leaves the backdrop
// unchanged and 255 applies the full effect.
type Func func(src, backdrop color.NRGBA, opacity uint8) color.NRGBA

// rgbFunc returns the blended color of opaque backdrop b and source s.
// The alpha of the result is ignored.
type rgbFunc func(b, s color.NRGBA) color.NRGBA

// modes lists the color function of every mode. Saturation, Color and
// Luminosity have none.
var modes = [...]rgbFunc{
	Normal:     func(_, s color.NRGBA) color.NRGBA { return s },
	Multiply:   channels(func(b, s int) int { return int(MulUn8(uint8(b), uint8(s))) }),
	Screen:     channels(screen),
	Overlay:    channels(overlay),
	Darken:     channels(func(b, s int) int { return min(b, s) }),
	Lighten:    channels(func(b, s int) int { return max(b, s) }),
	ColorDodge: channels(colorDodge),
	ColorBurn:  channels(colorBurn),
	HardLight:  channels(hardLight),
	SoftLight:  channels(softLight),
	Difference: channels(func(b, s int) int { return abs(b - s) }),
	Exclusion:  channels(func(b, s int) int { return b + s - 2*int(MulUn8(uint8(b), uint8(s))) }),
	Hue:        hue,
	Saturation: nil,
	Color:      nil,
	Luminosity: nil,
	Addition:   channels(func(b, s int) int { return min(b+s, 255) }),
	Subtract:   channels(func(b, s int) int { return max(b-s, 0) }),
	Divide:     channels(divide),
}

// GetBlender returns the blend function of mode.
func GetBlender(mode Mode) (Func, error) {
	if int(mode) >= len(modes) || modes[mode] == nil {
		return nil, errors.Wrap(ErrUnsupportedMode, mode.String())
	}
	fn := modes[mode]

	return func(src, backdrop color.NRGBA, opacity uint8) color.NRGBA {
		switch {
		case opacity == 0:
			return backdrop
		case src.A == 0 && backdrop.A == 0:
			return color.NRGBA{}
		case backdrop.A == 0:
			src.A = MulUn8(src.A, opacity)
			return src
		case src.A == 0:
			return backdrop
		}
		c := fn(backdrop, src)
		c.A = src.A
		return composite(backdrop, c, opacity)
	}, nil
}

// composite is the normal mode: it draws s over b with alpha s.A*opacity.
func composite(b, s color.NRGBA, opacity uint8) color.NRGBA {
	sa := int(MulUn8(s.A, opacity))
	ba := int(b.A)
	ra := sa + ba - int(MulUn8(b.A, uint8(sa)))

	lerp := func(bc, sc uint8) uint8 {
		return uint8(int(bc) + (int(sc)-int(bc))*sa/ra)
	}
	return color.NRGBA{
		R: lerp(b.R, s.R),
		G: lerp(b.G, s.G),
		B: lerp(b.B, s.B),
		A: uint8(ra),
	}
}

// MulUn8 returns a*b/255 rounded to nearest.
func MulUn8(a, b uint8) uint8 {
	t := int(a)*int(b) + 0x80
	return uint8(((t >> 8) + t) >> 8)
}

// DivUn8 returns a*255/b rounded to nearest. b must be greater than a.
func DivUn8(a, b uint8) uint8 {
	return uint8((int(a)*0xFF + int(b)/2) / int(b))
}

func channels(f func(b, s int) int) rgbFunc {
	return func(b, s color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: uint8(f(int(b.R), int(s.R))),
			G: uint8(f(int(b.G), int(s.G))),
			B: uint8(f(int(b.B), int(s.B))),
		}
	}
}

func screen(b, s int) int {
	return 255 - (255-b)*(255-s)/255
}

func overlay(b, s int) int {
	if b < 128 {
		return 2 * b * s / 255
	}
	return 255 - 2*(255-b)*(255-s)/255
}

func colorDodge(b, s int) int {
	if s == 255 {
		return 255
	}
	return min(255, b*255/(255-s))
}

func colorBurn(b, s int) int {
	if s == 0 {
		return 0
	}
	return max(0, 255-(255-b)*255/s)
}

func hardLight(b, s int) int {
	if s < 128 {
		return int(MulUn8(uint8(b), uint8(2*s)))
	}
	t := 2*s - 255
	return b + t - int(MulUn8(uint8(b), uint8(t)))
}

func divide(b, s int) int {
	switch {
	case b == 0:
		return 0
	case b >= s:
		return 255
	}
	return int(DivUn8(uint8(b), uint8(s)))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
