package asefile

import (
	"context"
	"image/color"
	"testing"

	"github.com/setanarut/asefile/aseparser"
	"github.com/setanarut/asefile/aseparser/blend"
	"github.com/setanarut/asefile/internal/asetest"
	"github.com/setanarut/asefile/internal/require"
)

func TestComposeFrame(t *testing.T) {
	ase := parse(t, rgbaFile(4, 4, asetest.Frame(100,
		layer(visible, "bottom"),
		asetest.Layer(visible, uint16(aseparser.LayerNormal), 0, uint16(blend.Normal), 128, "top"),
		asetest.RawCel(0, 0, 0, 255, 4, 4, asetest.Fill(16, rgba(red)...)),
		asetest.RawCel(1, 1, 1, 255, 2, 2, asetest.Fill(4, rgba(blue)...)),
	)))

	img, err := ComposeFrame(ase, 0, nil)
	require.NoError(t, err)
	require.Equal(t, img.Bounds().Dx(), 4)

	normal, err := blend.GetBlender(blend.Normal)
	require.NoError(t, err)
	want := normal(blue, red, blend.MulUn8(255, 128))

	require.Equal(t, img.NRGBAAt(0, 0), red)
	require.Equal(t, img.NRGBAAt(1, 1), want)
	require.Equal(t, img.NRGBAAt(2, 2), want)
	require.Equal(t, img.NRGBAAt(3, 3), red)
}

func TestComposeBlendMode(t *testing.T) {
	ase := parse(t, rgbaFile(2, 1, asetest.Frame(100,
		layer(visible, "bottom"),
		asetest.Layer(visible, uint16(aseparser.LayerNormal), 0, uint16(blend.Multiply), 255, "mul"),
		asetest.RawCel(0, 0, 0, 255, 2, 1, asetest.Fill(2, 200, 100, 50, 255)),
		pixel(1, 0, 0, color.NRGBA{100, 100, 100, 255}),
	)))

	img, err := ComposeFrame(ase, 0, nil)
	require.NoError(t, err)

	mul, _ := blend.GetBlender(blend.Multiply)
	require.Equal(t, img.NRGBAAt(0, 0), mul(color.NRGBA{100, 100, 100, 255}, color.NRGBA{200, 100, 50, 255}, 255))
	require.Equal(t, img.NRGBAAt(1, 0), color.NRGBA{200, 100, 50, 255})
}

func TestComposeLayerVisibility(t *testing.T) {
	hidden := uint16(aseparser.LayerEditable)
	ase := parse(t, rgbaFile(4, 1, asetest.Frame(100,
		asetest.Layer(hidden, uint16(aseparser.LayerGroup), 0, 0, 255, "group"),
		asetest.Layer(visible, uint16(aseparser.LayerNormal), 1, 0, 255, "child"),
		layer(visible, "top"),
		layer(hidden, "hidden"),
		layer(visible|uint16(aseparser.LayerReference), "reference"),
		pixel(1, 0, 0, red),
		pixel(2, 1, 0, green),
		pixel(3, 2, 0, blue),
		pixel(4, 3, 0, white),
	)))

	tests := []struct {
		name string
		opts *Options
		want []color.NRGBA
	}{
		{"default", nil, []color.NRGBA{{}, green, {}, {}}},
		{"hidden", &Options{IncludeHidden: true}, []color.NRGBA{red, green, blue, {}}},
		{"reference", &Options{IncludeReference: true}, []color.NRGBA{{}, green, {}, white}},
		{"all", &Options{IncludeHidden: true, IncludeReference: true}, []color.NRGBA{red, green, blue, white}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ComposeFrame(ase, 0, tt.opts)
			require.NoError(t, err)
			for x, want := range tt.want {
				require.Equal(t, img.NRGBAAt(x, 0), want, x)
			}
		})
	}
}

func TestComposeUnsupportedMode(t *testing.T) {
	ase := parse(t, rgbaFile(1, 1, asetest.Frame(100,
		asetest.Layer(visible, uint16(aseparser.LayerNormal), 0, uint16(blend.Saturation), 255, "sat"),
		pixel(0, 0, 0, red),
	)))
	_, err := ComposeFrame(ase, 0, nil)
	require.ErrorIs(t, err, blend.ErrUnsupportedMode)
}

func TestComposeUnsupportedModeWithoutCels(t *testing.T) {
	ase := parse(t, rgbaFile(1, 1, asetest.Frame(100,
		asetest.Layer(visible, uint16(aseparser.LayerNormal), 0, uint16(blend.Luminosity), 255, "lum"),
		layer(visible, "normal"),
		pixel(1, 0, 0, red),
	)))
	img, err := ComposeFrame(ase, 0, nil)
	require.NoError(t, err)
	require.Equal(t, img.NRGBAAt(0, 0), red)
}

func TestComposeClipping(t *testing.T) {
	ase := parse(t, rgbaFile(2, 2, asetest.Frame(100,
		layer(visible, "a"),
		asetest.RawCel(0, -1, -1, 255, 2, 2, asetest.Fill(4, rgba(red)...)),
		asetest.RawCel(0, 1, 1, 255, 3, 3, asetest.Fill(9, rgba(green)...)),
	)))
	img, err := ComposeFrame(ase, 0, nil)
	require.NoError(t, err)
	require.Equal(t, img.NRGBAAt(0, 0), red)
	require.Equal(t, img.NRGBAAt(1, 0), color.NRGBA{})
	require.Equal(t, img.NRGBAAt(1, 1), green)
}

func TestComposeLinkedCel(t *testing.T) {
	ase := parse(t, rgbaFile(2, 1,
		asetest.Frame(100, layer(visible, "a"), pixel(0, 1, 0, green)),
		asetest.Frame(100, asetest.LinkedCel(0, 0)),
	))
	img, err := ComposeFrame(ase, 1, nil)
	require.NoError(t, err)
	require.Equal(t, img.NRGBAAt(0, 0), color.NRGBA{})
	require.Equal(t, img.NRGBAAt(1, 0), green)
}

func TestComposeIndexed(t *testing.T) {
	data := asetest.File(asetest.Header{Width: 3, Height: 1, Depth: 8, NumColors: 3},
		asetest.Frame(100,
			asetest.Palette(0, [][4]byte{{0, 0, 0, 255}, {255, 0, 0, 255}, {0, 255, 0, 255}}),
			layer(visible, "a"),
			asetest.RawCel(0, 0, 0, 255, 3, 1, []byte{0, 1, 2}),
		),
	)
	img, err := ComposeFrame(parse(t, data), 0, nil)
	require.NoError(t, err)
	require.Equal(t, img.NRGBAAt(0, 0), color.NRGBA{})
	require.Equal(t, img.NRGBAAt(1, 0), red)
	require.Equal(t, img.NRGBAAt(2, 0), green)
}

func TestComposeTilemap(t *testing.T) {
	tile := append(asetest.Fill(4, 0, 0, 0, 0), append(append(rgba(red), rgba(green)...), append(rgba(blue), rgba(white)...)...)...)
	ase := parse(t, rgbaFile(4, 2, asetest.Frame(100,
		asetest.Tileset(0, 2, 2, 2, "tiles", tile),
		asetest.Layer(visible, uint16(aseparser.LayerTilemap), 0, 0, 255, "map"),
		asetest.TilemapCel(0, 0, 0, 2, 1, []uint32{1, 1 | asetest.TileFlipX}),
	)))
	img, err := ComposeFrame(ase, 0, nil)
	require.NoError(t, err)

	want := [2][4]color.NRGBA{
		{red, green, green, red},
		{blue, white, white, blue},
	}
	for y, row := range want {
		for x, c := range row {
			require.Equal(t, img.NRGBAAt(x, y), c, x, y)
		}
	}
}

func twoFrames(t *testing.T) *aseparser.Aseprite {
	return parse(t, rgbaFile(2, 1,
		asetest.Frame(100,
			layer(visible, "a"),
			asetest.Tags(asetest.Tag{From: 1, To: 1, Name: "second"}),
			pixel(0, 0, 0, red),
		),
		asetest.Frame(100, pixel(0, 0, 0, green)),
	))
}

func TestComposeStrip(t *testing.T) {
	ase := twoFrames(t)
	strip, err := ComposeStrip(ase, 0, 2, nil)
	require.NoError(t, err)
	require.Equal(t, strip.Bounds().Dx(), 4)
	require.Equal(t, strip.NRGBAAt(0, 0), red)
	require.Equal(t, strip.NRGBAAt(2, 0), green)
	require.Equal(t, strip.NRGBAAt(3, 0), color.NRGBA{})

	tag, err := ComposeTag(ase, "second", nil)
	require.NoError(t, err)
	require.Equal(t, tag.Bounds().Dx(), 2)
	require.Equal(t, tag.NRGBAAt(0, 0), green)

	_, err = ComposeTag(ase, "missing", nil)
	require.ErrorIs(t, err, aseparser.ErrUnknownTagReference)

	_, err = ComposeStrip(ase, 1, 3, nil)
	require.True(t, err != nil, "range past the last frame")
}

func TestComposeFrames(t *testing.T) {
	ase := twoFrames(t)
	imgs, err := ComposeFrames(context.Background(), ase, 0, 2, &Options{Workers: 1})
	require.NoError(t, err)
	require.Equal(t, len(imgs), 2)
	for i, img := range imgs {
		want, err := ComposeFrame(ase, i, nil)
		require.NoError(t, err)
		require.Equal(t, img.Pix, want.Pix, i)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ComposeFrames(ctx, ase, 0, 2, nil)
	require.ErrorIs(t, err, context.Canceled)
}
