package main

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocosip/go-pngstream/dicomexport"
)

// part10 builds an Explicit VR Little Endian DICOM file in memory
type part10 struct {
	buf bytes.Buffer
}

func (p *part10) element(group, elem uint16, vr string, value []byte) {
	if len(value)%2 == 1 {
		pad := byte(0)
		if vr == "CS" {
			pad = ' '
		}
		value = append(value, pad)
	}
	var hdr [12]byte
	binary.LittleEndian.PutUint16(hdr[0:], group)
	binary.LittleEndian.PutUint16(hdr[2:], elem)
	copy(hdr[4:], vr)
	switch vr {
	case "OB", "OW":
		binary.LittleEndian.PutUint32(hdr[8:], uint32(len(value)))
		p.buf.Write(hdr[:12])
	default:
		binary.LittleEndian.PutUint16(hdr[6:], uint16(len(value)))
		p.buf.Write(hdr[:8])
	}
	p.buf.Write(value)
}

func (p *part10) us(group, elem, v uint16) {
	p.element(group, elem, "US", binary.LittleEndian.AppendUint16(nil, v))
}

func writeDICOM(t *testing.T, body func(p *part10)) string {
	t.Helper()

	var meta part10
	meta.element(0x0002, 0x0001, "OB", []byte{0, 1})
	meta.element(0x0002, 0x0002, "UI", []byte("1.2.840.10008.5.1.4.1.1.7"))
	meta.element(0x0002, 0x0003, "UI", []byte("1.2.826.0.1.3680043.2.1125.1"))
	meta.element(0x0002, 0x0010, "UI", []byte("1.2.840.10008.1.2.1"))

	var file part10
	file.buf.Write(make([]byte, 128))
	file.buf.WriteString("DICM")
	file.element(0x0002, 0x0000, "UL", binary.LittleEndian.AppendUint32(nil, uint32(meta.buf.Len())))
	file.buf.Write(meta.buf.Bytes())
	body(&file)

	path := filepath.Join(t.TempDir(), "image.dcm")
	require.NoError(t, os.WriteFile(path, file.buf.Bytes(), 0o644))
	return path
}

func TestReadPixelData8Bit(t *testing.T) {
	frames := []byte{
		0, 10, 20, 30,
		40, 50, 60, 70,
		200, 210, 220, 230,
		240, 250, 255, 1,
	}
	path := writeDICOM(t, func(p *part10) {
		p.us(0x0028, 0x0002, 1)
		p.element(0x0028, 0x0004, "CS", []byte("MONOCHROME2"))
		p.us(0x0028, 0x0010, 2)
		p.us(0x0028, 0x0011, 4)
		p.us(0x0028, 0x0100, 8)
		p.us(0x0028, 0x0101, 8)
		p.us(0x0028, 0x0102, 7)
		p.us(0x0028, 0x0103, 0)
		p.element(0x7FE0, 0x0010, "OB", frames)
	})

	pd, err := readPixelData(path)
	require.NoError(t, err)

	info := pd.GetFrameInfo()
	assert.EqualValues(t, 4, info.Width)
	assert.EqualValues(t, 2, info.Height)
	assert.EqualValues(t, 8, info.BitsAllocated)
	assert.EqualValues(t, 8, info.BitsStored)
	assert.EqualValues(t, 1, info.SamplesPerPixel)
	assert.Equal(t, "MONOCHROME2", info.PhotometricInterpretation)
	require.Equal(t, 2, pd.FrameCount())

	names := outputNames(filepath.Join(t.TempDir(), "out.png"), pd.FrameCount())
	require.Len(t, names, 2)
	for i, name := range names {
		require.NoError(t, exportFrame(pd, i, name, dicomexport.Options{}))

		f, err := os.Open(name)
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)

		gray, ok := img.(*image.Gray)
		require.True(t, ok, "decoded %T", img)
		assert.Equal(t, frames[i*8:(i+1)*8], gray.Pix, "frame %d", i+1)
	}
}

func TestReadPixelDataDefaults(t *testing.T) {
	// Samples Per Pixel and Bits Allocated absent: 1 sample, 16 bits from the OW value
	path := writeDICOM(t, func(p *part10) {
		p.element(0x0028, 0x0004, "CS", []byte("MONOCHROME2"))
		p.us(0x0028, 0x0010, 1)
		p.us(0x0028, 0x0011, 3)
		p.us(0x0028, 0x0101, 12)
		p.element(0x7FE0, 0x0010, "OW", []byte{0x00, 0x00, 0x00, 0x08, 0xFF, 0x0F})
	})

	pd, err := readPixelData(path)
	require.NoError(t, err)

	info := pd.GetFrameInfo()
	assert.EqualValues(t, 16, info.BitsAllocated)
	assert.EqualValues(t, 12, info.BitsStored)
	assert.EqualValues(t, 1, info.SamplesPerPixel)
	require.Equal(t, 1, pd.FrameCount())

	name := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, exportFrame(pd, 0, name, dicomexport.Options{}))
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 128, 255}, img.(*image.Gray).Pix)
}

func TestOutputNames(t *testing.T) {
	assert.Equal(t, []string{"scan.png"}, outputNames("scan.png", 1))
	assert.Equal(t, []string{"scan_1.png", "scan_2.png", "scan_3.png"}, outputNames("scan.png", 3))
}
