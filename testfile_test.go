package asefile

import (
	"image"
	"image/color"
	"testing"

	"github.com/setanarut/asefile/aseparser"
	"github.com/setanarut/asefile/internal/asetest"
	"github.com/setanarut/asefile/internal/require"
)

const visible = uint16(aseparser.LayerVisible | aseparser.LayerEditable)

var (
	red   = color.NRGBA{255, 0, 0, 255}
	green = color.NRGBA{0, 255, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
	white = color.NRGBA{255, 255, 255, 255}
)

func rgba(c color.NRGBA) []byte { return []byte{c.R, c.G, c.B, c.A} }

func layer(flags uint16, name string) []byte {
	return asetest.Layer(flags, uint16(aseparser.LayerNormal), 0, uint16(0), 255, name)
}

// pixel writes a 1x1 raw cel.
func pixel(layer uint16, x, y int16, c color.NRGBA) []byte {
	return asetest.RawCel(layer, x, y, 255, 1, 1, rgba(c))
}

// rgbaFile wraps frames into a w x h RGBA file with layer opacity enabled.
func rgbaFile(w, h uint16, frames ...[]byte) []byte {
	return asetest.File(asetest.Header{
		Width:  w,
		Height: h,
		Depth:  32,
		Flags:  uint32(aseparser.HeaderLayerOpacity),
	}, frames...)
}

func parse(t *testing.T, data []byte) *aseparser.Aseprite {
	t.Helper()
	ase, err := aseparser.Parse(data, nil)
	require.NoError(t, err)
	return ase
}

// playerFile is a 4x4 sprite with four single-colored frames and tags in
// every direction.
func playerFile() []byte {
	colors := []color.NRGBA{red, green, blue, white}
	durations := []uint16{62, 62, 100, 100}

	frames := [][]byte{asetest.Frame(durations[0],
		layer(visible, "body"),
		asetest.Tags(
			asetest.Tag{From: 0, To: 3, Dir: uint8(aseparser.Forward), Name: "fly"},
			asetest.Tag{From: 2, To: 3, Dir: uint8(aseparser.PingPong), Name: "sub_fly"},
			asetest.Tag{From: 0, To: 1, Dir: uint8(aseparser.Forward), Repeat: 1, Name: "once"},
			asetest.Tag{From: 0, To: 2, Dir: uint8(aseparser.Reverse), Name: "back"},
		),
		asetest.UserData("flying", nil, nil),
		asetest.Slice("origin", asetest.SliceKey{Frame: 0, X: 1, Y: 1, W: 2, H: 2, PivotX: 1, PivotY: 0}),
		asetest.RawCel(0, 0, 0, 255, 4, 4, asetest.Fill(16, rgba(colors[0])...)),
		asetest.UserData("cel 0", nil, nil),
	)}
	for i := 1; i < len(colors); i++ {
		frames = append(frames, asetest.Frame(durations[i],
			asetest.RawCel(0, 0, 0, 255, 4, 4, asetest.Fill(16, rgba(colors[i])...)),
		))
	}
	return rgbaFile(4, 4, frames...)
}

// at returns the pixel at x, y relative to the image origin.
func at(img image.Image, x, y int) color.NRGBA {
	b := img.Bounds()
	return color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
}
