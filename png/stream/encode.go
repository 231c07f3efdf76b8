package stream

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/cocosip/go-pngstream/png/common"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NopCloser wraps w so that closing it is a no-op
func NopCloser(w io.Writer) io.WriteCloser {
	return nopWriteCloser{w}
}

// Encode writes a complete PNG for pixels in one call.
// w is not closed.
func Encode(w io.Writer, pixels []byte, width, height int, cs common.ColorSpace, opts *Options) error {
	enc, err := NewEncoder(NopCloser(w), width, height, cs, opts)
	if err != nil {
		return err
	}
	if err := enc.Start(); err != nil {
		return err
	}
	if err := enc.WritePixels(pixels); err != nil {
		return err
	}
	return enc.End()
}

// EncodeImage streams img to w row by row. The color space follows the
// image's color model: gray images stay gray, opaque images drop alpha.
// w is not closed.
func EncodeImage(w io.Writer, img image.Image, opts *Options) error {
	b := img.Bounds()
	cs := colorSpaceOf(img)

	enc, err := NewEncoder(NopCloser(w), b.Dx(), b.Dy(), cs, opts)
	if err != nil {
		return err
	}
	if err := enc.Start(); err != nil {
		return err
	}

	row := make([]byte, enc.Header().RowLength())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		pixelRow(row, img, y, cs)
		if err := enc.WritePixels(row); err != nil {
			return fmt.Errorf("png: row %d: %w", y-b.Min.Y, err)
		}
	}
	return enc.End()
}

func colorSpaceOf(img image.Image) common.ColorSpace {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return common.Gray
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return common.RGB
	}
	return common.RGBA
}

func pixelRow(dst []byte, img image.Image, y int, cs common.ColorSpace) {
	b := img.Bounds()

	// Fast paths copy straight from the backing array
	switch m := img.(type) {
	case *image.Gray:
		copy(dst, m.Pix[m.PixOffset(b.Min.X, y):])
		return
	case *image.NRGBA:
		if cs == common.RGBA {
			copy(dst, m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)])
			return
		}
	}

	i := 0
	for x := b.Min.X; x < b.Max.X; x++ {
		switch cs {
		case common.Gray:
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			dst[i] = g.Y
			i++
		case common.RGB:
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst[i], dst[i+1], dst[i+2] = c.R, c.G, c.B
			i += 3
		default:
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst[i], dst[i+1], dst[i+2], dst[i+3] = c.R, c.G, c.B, c.A
			i += 4
		}
	}
}
