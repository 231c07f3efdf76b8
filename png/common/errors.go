package common

import "errors"

// Common errors
var (
	ErrInvalidDimensions     = errors.New("invalid image dimensions")
	ErrUnsupportedColorSpace = errors.New("unsupported color space")
	ErrInvalidChunkType      = errors.New("invalid chunk type")
	ErrChunkTooLarge         = errors.New("chunk payload too large")
)
