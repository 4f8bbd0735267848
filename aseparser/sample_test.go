package aseparser

import (
	"github.com/setanarut/asefile/aseparser/blend"
	"github.com/setanarut/asefile/internal/asetest"
)

var sampleDurations = []uint16{100, 500, 200, 250, 100, 100, 100, 100, 100, 100, 100, 100, 100}

var (
	red   = []byte{255, 0, 0, 255}
	green = []byte{0, 255, 0, 255}
)

// sampleFile is a 32x32 RGBA sprite with 13 frames, a layer group, tags with
// trailing user data and linked cels.
func sampleFile() []byte {
	const visible = uint16(LayerVisible | LayerEditable)

	frames := [][]byte{asetest.Frame(sampleDurations[0],
		asetest.ColorProfileSRGB(),
		asetest.Palette(0, [][4]byte{{0, 0, 0, 255}, {255, 255, 255, 255}}),
		asetest.Layer(visible, uint16(LayerNormal), 0, uint16(blend.Normal), 255, "Ornament"),
		asetest.UserData("ornament", nil, nil),
		asetest.Layer(visible, uint16(LayerGroup), 0, uint16(blend.Normal), 255, "Group 1"),
		asetest.Layer(visible, uint16(LayerNormal), 1, uint16(blend.Normal), 255, "Layer 1"),
		asetest.Layer(visible, uint16(LayerNormal), 0, uint16(blend.Lighten), 191, "TestLayer"),
		asetest.Layer(visible, uint16(LayerNormal), 0, uint16(blend.Normal), 255, "Base/Hair"),
		asetest.Tags(
			asetest.Tag{From: 1, To: 5, Dir: uint8(Forward), Name: "IdleDown"},
			asetest.Tag{From: 6, To: 7, Dir: uint8(PingPong), Repeat: 5, Name: "WalkDown"},
			asetest.Tag{From: 8, To: 12, Dir: uint8(Reverse), Name: "SpearDown"},
		),
		asetest.UserData("idle", nil, nil),
		asetest.UserData("", red, nil),
		asetest.Slice("hitbox",
			asetest.SliceKey{Frame: 0, X: 4, Y: 4, W: 8, H: 8, PivotX: 4, PivotY: 8},
			asetest.SliceKey{Frame: 6, X: 0, Y: 0, W: 16, H: 16},
		),
		asetest.UserData("slice", nil, nil),
		asetest.CompressedCel(4, 2, 3, 255, 4, 4, asetest.Fill(16, red...)),
		asetest.CelExtra(2.5, 3.25, 4, 4),
		asetest.RawCel(0, 0, 0, 255, 2, 2, asetest.Fill(4, green...)),
	)}

	for i := 1; i < len(sampleDurations); i++ {
		frames = append(frames, asetest.Frame(sampleDurations[i],
			asetest.RawCel(4, 0, 0, 255, 2, 2, asetest.Fill(4, uint8(i), 0, 0, 255)),
			asetest.LinkedCel(0, 0),
		))
	}

	return asetest.File(asetest.Header{
		Width:  32,
		Height: 32,
		Depth:  32,
		Flags:  uint32(HeaderLayerOpacity),
		GridX:  4,
		GridW:  8,
		GridH:  8,
	}, frames...)
}

// singleFrame wraps chunks into a one-frame 8x8 RGBA file.
func singleFrame(chunks ...[]byte) []byte {
	return asetest.File(asetest.Header{Width: 8, Height: 8, Depth: 32}, asetest.Frame(100, chunks...))
}
