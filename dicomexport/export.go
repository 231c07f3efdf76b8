// Package dicomexport streams native DICOM frames out as 8-bit PNG images.
package dicomexport

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-pngstream/png/common"
	"github.com/cocosip/go-pngstream/png/stream"
)

// Window is a fixed VOI window. Values at or below Center-Width/2 map to 0,
// values at or above Center+Width/2 map to 255.
type Window struct {
	Center float64
	Width  float64
}

// Options controls the export
type Options struct {
	// Encoder options; nil uses stream.DefaultOptions
	Encoder *stream.Options

	// Window overrides the min/max window applied to 16-bit frames
	Window *Window
}

// layout is the decoded geometry of one frame
type layout struct {
	width, height int
	samples       int
	bytesPer      int
	bitsStored    int
	signed        bool
	planar        bool
	invert        bool
}

func newLayout(info *imagetypes.FrameInfo) (layout, error) {
	if info == nil {
		return layout{}, fmt.Errorf("%w: missing frame info", ErrUnsupportedFrame)
	}
	l := layout{
		width:      int(info.Width),
		height:     int(info.Height),
		samples:    int(info.SamplesPerPixel),
		bitsStored: int(info.BitsStored),
		signed:     info.PixelRepresentation == 1,
		planar:     info.PlanarConfiguration == 1,
		invert:     info.PhotometricInterpretation == "MONOCHROME1",
	}

	switch info.BitsAllocated {
	case 8:
		l.bytesPer = 1
	case 16:
		l.bytesPer = 2
	default:
		return layout{}, fmt.Errorf("%w: %d bits allocated", ErrUnsupportedFrame, info.BitsAllocated)
	}
	if l.bitsStored <= 0 || l.bitsStored > 8*l.bytesPer {
		l.bitsStored = 8 * l.bytesPer
	}

	if l.samples != 1 && l.samples != 3 {
		return layout{}, fmt.Errorf("%w: %d samples per pixel", ErrUnsupportedFrame, l.samples)
	}
	if l.width <= 0 || l.height <= 0 {
		return layout{}, fmt.Errorf("%w: %dx%d", ErrUnsupportedFrame, l.width, l.height)
	}
	return l, nil
}

func (l layout) frameSize() int {
	return l.width * l.height * l.samples * l.bytesPer
}

func (l layout) colorSpace() common.ColorSpace {
	if l.samples == 3 {
		return common.RGB
	}
	return common.Gray
}

// offset returns the byte offset of sample c of pixel i
func (l layout) offset(i, c int) int {
	if l.planar {
		return (c*l.width*l.height + i) * l.bytesPer
	}
	return (i*l.samples + c) * l.bytesPer
}

// value reads a sample, masked to BitsStored and sign extended when signed
func (l layout) value(data []byte, off int) int32 {
	var u uint32
	if l.bytesPer == 1 {
		u = uint32(data[off])
	} else {
		u = uint32(binary.LittleEndian.Uint16(data[off:]))
	}
	u &= 1<<l.bitsStored - 1
	v := int32(u)
	if l.signed && u&(1<<(l.bitsStored-1)) != 0 {
		v -= 1 << l.bitsStored
	}
	return v
}

// Export writes frame of src to w as a PNG, one row at a time. Export always
// closes w.
func Export(src imagetypes.PixelData, frame int, w io.WriteCloser, opts Options) error {
	l, data, err := loadFrame(src, frame)
	if err != nil {
		_ = w.Close()
		return err
	}

	enc, err := stream.NewEncoder(w, l.width, l.height, l.colorSpace(), opts.Encoder)
	if err != nil {
		_ = w.Close()
		return err
	}
	if err := enc.Start(); err != nil {
		return err
	}

	lo, hi := l.window(data, opts.Window)
	row := make([]byte, l.width*l.samples)
	for y := 0; y < l.height; y++ {
		for x := 0; x < l.width; x++ {
			i := y*l.width + x
			for c := 0; c < l.samples; c++ {
				row[x*l.samples+c] = l.scale(l.value(data, l.offset(i, c)), lo, hi)
			}
		}
		if err := enc.WritePixels(row); err != nil {
			return fmt.Errorf("dicomexport: row %d: %w", y, err)
		}
	}
	return enc.End()
}

func loadFrame(src imagetypes.PixelData, frame int) (layout, []byte, error) {
	if src.IsEncapsulated() {
		return layout{}, nil, fmt.Errorf("%w: encapsulated pixel data", ErrUnsupportedFrame)
	}
	l, err := newLayout(src.GetFrameInfo())
	if err != nil {
		return layout{}, nil, err
	}
	if frame < 0 || frame >= src.FrameCount() {
		return layout{}, nil, fmt.Errorf("%w: %d of %d", ErrFrameIndex, frame, src.FrameCount())
	}
	data, err := src.GetFrame(frame)
	if err != nil {
		return layout{}, nil, err
	}
	if len(data) < l.frameSize() {
		return layout{}, nil, fmt.Errorf("%w: frame %d has %d bytes, want %d", ErrFrameSize, frame, len(data), l.frameSize())
	}
	return l, data, nil
}

// window returns the input range mapped onto 0..255. 8-bit unsigned data
// passes through unchanged.
func (l layout) window(data []byte, w *Window) (lo, hi float64) {
	if w != nil && w.Width > 0 {
		return w.Center - w.Width/2, w.Center + w.Width/2
	}
	if l.bytesPer == 1 && !l.signed {
		return 0, 255
	}

	minv, maxv := int32(math.MaxInt32), int32(math.MinInt32)
	n := l.width * l.height
	for i := 0; i < n; i++ {
		for c := 0; c < l.samples; c++ {
			v := l.value(data, l.offset(i, c))
			minv = min(minv, v)
			maxv = max(maxv, v)
		}
	}
	if maxv == minv {
		maxv = minv + 1
	}
	return float64(minv), float64(maxv)
}

func (l layout) scale(v int32, lo, hi float64) uint8 {
	f := (float64(v) - lo) / (hi - lo)
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	b := uint8(f*255 + 0.5)
	if l.invert {
		b = 255 - b
	}
	return b
}
