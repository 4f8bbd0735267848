package aseparser

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// maxDeflateRatio bounds how many bytes one compressed byte can expand to.
const maxDeflateRatio = 1032

// inflate decompresses a zlib stream and returns exactly want bytes.
// Streams that yield fewer bytes than want fail with ErrTruncatedInput.
// The output buffer grows with the data actually decompressed.
func inflate(src []byte, want int) ([]byte, error) {
	if len(src) == 0 {
		return nil, errors.Wrap(ErrDecompression, "empty stream")
	}
	if want < 0 || want/maxDeflateRatio > len(src) {
		return nil, errors.Wrapf(ErrDecompression, "%d compressed bytes cannot hold %d bytes", len(src), want)
	}

	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, errors.Wrapf(ErrDecompression, "zlib header: %v", err)
	}
	defer zr.Close()

	var out bytes.Buffer
	out.Grow(min(want, len(src)*4))
	n, err := out.ReadFrom(io.LimitReader(zr, int64(want)))
	switch {
	case err != nil && !errors.Is(err, io.ErrUnexpectedEOF):
		return nil, errors.Wrapf(ErrDecompression, "%v", err)
	case int(n) < want:
		return nil, errors.Wrapf(ErrTruncatedInput, "inflated %d bytes, want %d", n, want)
	}
	return out.Bytes(), nil
}
