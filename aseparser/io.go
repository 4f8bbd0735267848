package aseparser

import (
	"io"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/setanarut/asefile/internal/cursor"
)

// Config controls decoding. A nil *Config means the zero value.
type Config struct {
	// SkipUnknownChunks skips chunks with unknown type codes by their declared
	// size instead of failing with ErrUnsupportedChunkType.
	SkipUnknownChunks bool

	// ResolveLinks copies the pixels, position and opacity of linked cels
	// from their targets after decoding, so every cel carries its content.
	ResolveLinks bool
}

// NewAsepriteFromFile loads and parses an Aseprite file from the given path.
// It panics if the file cannot be opened or parsed.
func NewAsepriteFromFile(path string) (ase *Aseprite) {
	f, err := os.Open(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	ase, err = Read(f)
	if err != nil {
		panic(errors.Wrap(err, path))
	}
	return
}

// NewAsepriteFromFileSystem loads and parses an Aseprite file from the given fs path.
// It panics if the file cannot be opened or parsed.
func NewAsepriteFromFileSystem(fsys fs.FS, path string) (ase *Aseprite) {
	file, err := fsys.Open(path)
	if err != nil {
		panic(err)
	}
	defer file.Close()
	ase, err = Read(file)
	if err != nil {
		panic(errors.Wrap(err, path))
	}
	return
}

// Read decodes an Aseprite file from r with the default config.
func Read(r io.Reader) (*Aseprite, error) {
	return ReadWithConfig(r, nil)
}

// ReadWithConfig reads all of r and decodes it.
func ReadWithConfig(r io.Reader, cfg *Config) (*Aseprite, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading aseprite file")
	}
	return Parse(data, cfg)
}

// ReadHeader decodes only the 128-byte file header.
func ReadHeader(r io.Reader) (Header, error) {
	var raw [headerSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Header{}, errors.Wrap(ErrTruncatedInput, "header")
		}
		return Header{}, errors.Wrap(err, "reading header")
	}
	return decodeHeader(cursor.New(raw[:]))
}

// Parse decodes a complete Aseprite file held in data.
func Parse(data []byte, cfg *Config) (*Aseprite, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	c := cursor.New(data)
	hdr, err := decodeHeader(c)
	if err != nil {
		return nil, err
	}

	ase := &Aseprite{Header: hdr, Frames: make([]*Frame, 0, hdr.Frames)}
	for i := range int(hdr.Frames) {
		f, err := decodeFrame(c, &ase.Header, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", i)
		}
		glog.V(2).Infof("frame %d: %d chunks, %d cels, %v", i, len(f.Chunks), len(f.Cels), f.Duration)
		ase.Frames = append(ase.Frames, f)
	}

	if c.Pos() != int(hdr.FileSize) {
		return nil, errors.Wrapf(ErrSizeMismatch, "read %d bytes, header declares %d", c.Pos(), hdr.FileSize)
	}

	if cfg.ResolveLinks {
		if err := ase.resolveLinks(); err != nil {
			return nil, err
		}
	}

	glog.V(1).Infof("decoded %s aseprite file: %v, %d layers", humanize.Bytes(uint64(hdr.FileSize)), hdr, len(ase.Layers()))
	return ase, nil
}
