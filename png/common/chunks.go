package common

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Signature is the fixed 8-byte PNG file signature.
var Signature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// ChunkType is a 4-byte ASCII chunk tag.
type ChunkType [4]byte

// Critical chunk types
var (
	// Image header
	ChunkIHDR = ChunkType{'I', 'H', 'D', 'R'}

	// Image data
	ChunkIDAT = ChunkType{'I', 'D', 'A', 'T'}

	// Image trailer
	ChunkIEND = ChunkType{'I', 'E', 'N', 'D'}
)

func (t ChunkType) String() string {
	return string(t[:])
}

// Valid reports whether every byte of the tag is an ASCII letter.
func (t ChunkType) Valid() bool {
	for _, c := range t {
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}

// Critical reports whether the ancillary bit (bit 5 of the first byte) is clear.
func (t ChunkType) Critical() bool {
	return t[0]&0x20 == 0
}

// ParseChunkType converts a 4-character string to a ChunkType.
func ParseChunkType(s string) (ChunkType, error) {
	var t ChunkType
	if len(s) != 4 {
		return t, fmt.Errorf("%w: %q", ErrInvalidChunkType, s)
	}
	copy(t[:], s)
	if !t.Valid() {
		return t, fmt.Errorf("%w: %q", ErrInvalidChunkType, s)
	}
	return t, nil
}

// IHDR field values fixed by this encoder
const (
	BitDepth          = 8
	CompressionMethod = 0
	FilterMethod      = 0
	InterlaceMethod   = 0

	// HeaderLength is the IHDR payload size in bytes
	HeaderLength = 13

	// MaxDimension is the largest width or height PNG allows (2^31 - 1)
	MaxDimension = math.MaxInt32
)

// Header describes the image announced in the IHDR chunk.
type Header struct {
	Width      int
	Height     int
	ColorSpace ColorSpace
}

// NewHeader validates the dimensions and color space and returns a Header.
func NewHeader(width, height int, cs ColorSpace) (Header, error) {
	h := Header{Width: width, Height: height, ColorSpace: cs}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Validate checks dimensions and color space.
func (h Header) Validate() error {
	if !h.ColorSpace.Supported() {
		return fmt.Errorf("%w: %s", ErrUnsupportedColorSpace, h.ColorSpace)
	}
	if h.Width <= 0 || h.Height <= 0 || h.Width > MaxDimension || h.Height > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, h.Width, h.Height)
	}
	if h.Width > math.MaxInt/h.ColorSpace.BytesPerPixel() {
		return fmt.Errorf("%w: row of %d pixels overflows", ErrInvalidDimensions, h.Width)
	}
	return nil
}

// BytesPerPixel returns the pixel stride of a row.
func (h Header) BytesPerPixel() int {
	return h.ColorSpace.BytesPerPixel()
}

// RowLength returns the number of raw bytes in one scanline.
func (h Header) RowLength() int {
	return h.Width * h.ColorSpace.BytesPerPixel()
}

// Bytes serializes the 13-byte IHDR payload.
func (h Header) Bytes() []byte {
	data := make([]byte, HeaderLength)
	binary.BigEndian.PutUint32(data[0:4], uint32(h.Width))
	binary.BigEndian.PutUint32(data[4:8], uint32(h.Height))
	data[8] = BitDepth
	data[9] = h.ColorSpace.ColorType()
	data[10] = CompressionMethod
	data[11] = FilterMethod
	data[12] = InterlaceMethod
	return data
}
