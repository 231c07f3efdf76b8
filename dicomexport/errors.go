package dicomexport

import "errors"

var (
	// ErrUnsupportedFrame is returned for compressed pixel data or a sample
	// layout that cannot be mapped to an 8-bit PNG
	ErrUnsupportedFrame = errors.New("dicomexport: unsupported frame")

	// ErrFrameSize is returned when frame data is shorter than its geometry requires
	ErrFrameSize = errors.New("dicomexport: frame data size mismatch")

	// ErrFrameIndex is returned for a frame number outside the pixel data
	ErrFrameIndex = errors.New("dicomexport: frame index out of range")
)
