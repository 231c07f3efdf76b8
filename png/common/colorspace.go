package common

import "fmt"

// ColorSpace identifies the pixel layout of an image.
type ColorSpace int

const (
	Gray ColorSpace = iota
	GrayAlpha
	RGB
	RGBA
	// Indexed is listed so callers can name it; encoders reject it.
	Indexed
)

// PNG color type codes (IHDR byte 9)
const (
	ColorTypeGray      = 0
	ColorTypeRGB       = 2
	ColorTypeIndexed   = 3
	ColorTypeGrayAlpha = 4
	ColorTypeRGBA      = 6
)

type colorInfo struct {
	code  byte
	bytes int
	name  string
}

var colorTable = map[ColorSpace]colorInfo{
	Gray:      {ColorTypeGray, 1, "gray"},
	GrayAlpha: {ColorTypeGrayAlpha, 2, "gray+alpha"},
	RGB:       {ColorTypeRGB, 3, "rgb"},
	RGBA:      {ColorTypeRGBA, 4, "rgba"},
}

// Supported reports whether the color space can be encoded.
func (c ColorSpace) Supported() bool {
	_, ok := colorTable[c]
	return ok
}

// ColorType returns the IHDR color type code.
func (c ColorSpace) ColorType() byte {
	if c == Indexed {
		return ColorTypeIndexed
	}
	return colorTable[c].code
}

// BytesPerPixel returns the number of bytes one pixel occupies at 8 bits per sample.
func (c ColorSpace) BytesPerPixel() int {
	if c == Indexed {
		return 1
	}
	return colorTable[c].bytes
}

func (c ColorSpace) String() string {
	if c == Indexed {
		return "indexed"
	}
	if info, ok := colorTable[c]; ok {
		return info.name
	}
	return fmt.Sprintf("ColorSpace(%d)", int(c))
}

// ColorSpaceForComponents maps a sample count (1-4) to a color space.
func ColorSpaceForComponents(components int) (ColorSpace, error) {
	switch components {
	case 1:
		return Gray, nil
	case 2:
		return GrayAlpha, nil
	case 3:
		return RGB, nil
	case 4:
		return RGBA, nil
	default:
		return 0, fmt.Errorf("%w: %d components", ErrUnsupportedColorSpace, components)
	}
}
