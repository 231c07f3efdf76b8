package dicomexport

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"testing"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocosip/go-pngstream/png/stream"
)

type closeBuffer struct {
	bytes.Buffer
	closed bool
}

func (c *closeBuffer) Close() error {
	c.closed = true
	return nil
}

func grayInfo(width, height uint16, bits uint16) *imagetypes.FrameInfo {
	return &imagetypes.FrameInfo{
		Width:                     width,
		Height:                    height,
		BitsAllocated:             bits,
		BitsStored:                bits,
		HighBit:                   bits - 1,
		SamplesPerPixel:           1,
		PixelRepresentation:       0,
		PlanarConfiguration:       0,
		PhotometricInterpretation: "MONOCHROME2",
	}
}

func export(t *testing.T, src imagetypes.PixelData, frame int, opts Options) image.Image {
	t.Helper()
	var out closeBuffer
	require.NoError(t, Export(src, frame, &out, opts))
	assert.True(t, out.closed)

	img, err := png.Decode(&out)
	require.NoError(t, err)
	return img
}

func grayPixels(t *testing.T, img image.Image) []byte {
	t.Helper()
	g, ok := img.(*image.Gray)
	require.True(t, ok, "decoded %T, want *image.Gray", img)
	return g.Pix
}

func le16(values ...int) []byte {
	b := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(v))
	}
	return b
}

func TestExport8BitPassthrough(t *testing.T) {
	pixels := []byte{0, 10, 20, 30, 128, 255}
	src := NewPixelData(grayInfo(3, 2, 8))
	require.NoError(t, src.AddFrame(pixels))

	img := export(t, src, 0, Options{})
	assert.Equal(t, pixels, grayPixels(t, img))
}

func TestExportMonochrome1Inverted(t *testing.T) {
	info := grayInfo(2, 1, 8)
	info.PhotometricInterpretation = "MONOCHROME1"
	src := NewPixelData(info)
	require.NoError(t, src.AddFrame([]byte{0, 200}))

	img := export(t, src, 0, Options{})
	assert.Equal(t, []byte{255, 55}, grayPixels(t, img))
}

func TestExport16BitWindow(t *testing.T) {
	src := NewPixelData(grayInfo(4, 1, 16))
	require.NoError(t, src.AddFrame(le16(100, 200, 300, 500)))

	img := export(t, src, 0, Options{})
	// min 100 -> 0, max 500 -> 255
	assert.Equal(t, []byte{0, 64, 128, 255}, grayPixels(t, img))
}

func TestExport16BitSigned(t *testing.T) {
	info := grayInfo(3, 1, 16)
	info.PixelRepresentation = 1
	src := NewPixelData(info)
	require.NoError(t, src.AddFrame(le16(-1000&0xffff, 0, 1000)))

	img := export(t, src, 0, Options{})
	assert.Equal(t, []byte{0, 128, 255}, grayPixels(t, img))
}

func TestExport12BitStoredMasked(t *testing.T) {
	info := grayInfo(2, 1, 16)
	info.BitsStored = 12
	info.HighBit = 11
	src := NewPixelData(info)
	// High nibble carries overlay bits that must be ignored
	require.NoError(t, src.AddFrame(le16(0xF000, 0xF000|4095)))

	img := export(t, src, 0, Options{})
	assert.Equal(t, []byte{0, 255}, grayPixels(t, img))
}

func TestExportFixedWindow(t *testing.T) {
	src := NewPixelData(grayInfo(3, 1, 16))
	require.NoError(t, src.AddFrame(le16(0, 1040, 4000)))

	img := export(t, src, 0, Options{Window: &Window{Center: 1040, Width: 400}})
	assert.Equal(t, []byte{0, 128, 255}, grayPixels(t, img))
}

func TestExportRGB(t *testing.T) {
	info := &imagetypes.FrameInfo{
		Width:                     2,
		Height:                    1,
		BitsAllocated:             8,
		BitsStored:                8,
		HighBit:                   7,
		SamplesPerPixel:           3,
		PhotometricInterpretation: "RGB",
	}
	interleaved := []byte{255, 0, 0, 0, 128, 255}
	planar := []byte{255, 0, 0, 128, 0, 255}

	tests := []struct {
		name   string
		planar uint16
		data   []byte
	}{
		{"interleaved", 0, interleaved},
		{"planar", 1, planar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fi := *info
			fi.PlanarConfiguration = tt.planar
			src := NewPixelData(&fi)
			require.NoError(t, src.AddFrame(tt.data))

			img := export(t, src, 0, Options{Encoder: stream.DefaultOptions().WithFlushThreshold(1)})
			rgba, ok := img.(*image.RGBA)
			require.True(t, ok, "decoded %T", img)
			assert.Equal(t, []byte{255, 0, 0, 255, 0, 128, 255, 255}, rgba.Pix)
		})
	}
}

func TestExportMultiFrame(t *testing.T) {
	info := grayInfo(2, 2, 8)
	pd, err := SplitFrames(info, []byte{1, 2, 3, 4, 5, 6, 7, 8, 0})
	require.NoError(t, err)
	require.Equal(t, 2, pd.FrameCount())

	assert.Equal(t, []byte{5, 6, 7, 8}, grayPixels(t, export(t, pd, 1, Options{})))
}

func TestExportErrors(t *testing.T) {
	tests := []struct {
		name  string
		info  *imagetypes.FrameInfo
		frame []byte
		index int
		want  error
	}{
		{"12 bits allocated", func() *imagetypes.FrameInfo { i := grayInfo(2, 2, 8); i.BitsAllocated = 12; return i }(), make([]byte, 8), 0, ErrUnsupportedFrame},
		{"two samples", func() *imagetypes.FrameInfo { i := grayInfo(2, 2, 8); i.SamplesPerPixel = 2; return i }(), make([]byte, 8), 0, ErrUnsupportedFrame},
		{"short frame", grayInfo(2, 2, 16), make([]byte, 7), 0, ErrFrameSize},
		{"bad index", grayInfo(2, 2, 8), make([]byte, 4), 3, ErrFrameIndex},
		{"empty image", grayInfo(0, 2, 8), nil, 0, ErrUnsupportedFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewPixelData(tt.info)
			require.NoError(t, src.AddFrame(tt.frame))

			var out closeBuffer
			err := Export(src, tt.index, &out, Options{})
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, out.closed)
			assert.Zero(t, out.Len())
		})
	}
}

type encapsulated struct {
	*PixelData
}

func (encapsulated) IsEncapsulated() bool { return true }

func TestExportRejectsEncapsulated(t *testing.T) {
	pd := NewPixelData(grayInfo(1, 1, 8))
	require.NoError(t, pd.AddFrame([]byte{0}))

	var out closeBuffer
	err := Export(encapsulated{pd}, 0, &out, Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFrame)
}

func TestSplitFramesTooShort(t *testing.T) {
	_, err := SplitFrames(grayInfo(4, 4, 8), make([]byte, 10))
	assert.ErrorIs(t, err, ErrFrameSize)
}
