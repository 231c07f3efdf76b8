package dicomexport

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"
)

// PixelData holds native (uncompressed) frames in memory and implements
// imagetypes.PixelData
type PixelData struct {
	frames    [][]byte
	frameInfo *imagetypes.FrameInfo
}

// NewPixelData creates an empty PixelData with the given frame info
func NewPixelData(frameInfo *imagetypes.FrameInfo) *PixelData {
	return &PixelData{
		frames:    make([][]byte, 0),
		frameInfo: frameInfo,
	}
}

// GetFrame returns the pixel data for the specified frame (0-indexed)
func (p *PixelData) GetFrame(frameIndex int) ([]byte, error) {
	if frameIndex < 0 || frameIndex >= len(p.frames) {
		return nil, fmt.Errorf("%w: %d of %d", ErrFrameIndex, frameIndex, len(p.frames))
	}
	return p.frames[frameIndex], nil
}

// AddFrame appends a new frame
func (p *PixelData) AddFrame(frameData []byte) error {
	p.frames = append(p.frames, frameData)
	return nil
}

// FrameCount returns the number of frames
func (p *PixelData) FrameCount() int {
	return len(p.frames)
}

// GetFrameInfo returns the frame metadata
func (p *PixelData) GetFrameInfo() *imagetypes.FrameInfo {
	return p.frameInfo
}

// IsEncapsulated always reports false; frames are stored uncompressed
func (p *PixelData) IsEncapsulated() bool {
	return false
}

// SplitFrames cuts a native Pixel Data value into frames of the size given
// by info and adds them to a new PixelData. A trailing pad byte is ignored.
func SplitFrames(info *imagetypes.FrameInfo, data []byte) (*PixelData, error) {
	l, err := newLayout(info)
	if err != nil {
		return nil, err
	}
	size := l.frameSize()
	if size == 0 || len(data) < size {
		return nil, fmt.Errorf("%w: %d bytes, frame needs %d", ErrFrameSize, len(data), size)
	}

	pd := NewPixelData(info)
	for off := 0; off+size <= len(data); off += size {
		_ = pd.AddFrame(data[off : off+size])
	}
	return pd, nil
}
