package aseparser

import (
	"image/color"
	"testing"

	"github.com/setanarut/asefile/internal/require"
)

func TestDecodePixels(t *testing.T) {
	tests := []struct {
		name  string
		depth ColorDepth
		raw   []byte
		want  []color.NRGBA
	}{
		{"rgba", ColorDepthRGBA, []byte{1, 2, 3, 4, 5, 6, 7, 8}, []color.NRGBA{{1, 2, 3, 4}, {5, 6, 7, 8}}},
		{"grayscale", ColorDepthGrayscale, []byte{9, 200, 0, 0}, []color.NRGBA{{9, 9, 9, 200}, {0, 0, 0, 0}}},
		{"indexed", ColorDepthIndexed, []byte{3, 250}, []color.NRGBA{{3, 3, 3, 3}, {250, 250, 250, 250}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePixels(tt.raw, 2, tt.depth)
			require.NoError(t, err)
			require.Equal(t, got, tt.want)
		})
	}
}

func TestDecodePixelsShort(t *testing.T) {
	_, err := DecodePixels([]byte{1, 2, 3}, 1, ColorDepthRGBA)
	require.ErrorIs(t, err, ErrTruncatedInput)
}
