package aseparser

import (
	"github.com/pkg/errors"

	"github.com/setanarut/asefile/internal/cursor"
)

var (
	ErrInvalidMagicNumber    = errors.New("invalid magic number")
	ErrInvalidColorDepth     = errors.New("invalid color depth")
	ErrUnsupportedChunkType  = errors.New("unsupported chunk type")
	ErrUnsupportedCelType    = errors.New("unsupported cel type")
	ErrUnknownPropertyType   = errors.New("unknown property type")
	ErrFrameSizeMismatch     = errors.New("frame size mismatch")
	ErrSizeMismatch          = errors.New("inconsistent read size")
	ErrTruncatedInput        = cursor.ErrTruncated
	ErrDecompression         = errors.New("decompression failed")
	ErrMissingUserDataTarget = errors.New("user data chunk has no preceding chunk")
	ErrMissingCelExtraTarget = errors.New("cel extra chunk has no preceding cel")
	ErrUnknownTagReference   = errors.New("unknown tag")
	ErrInvalidLink           = errors.New("invalid linked cel")
)
