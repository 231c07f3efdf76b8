package codec

import "io"

// Codec is the universal interface for image encoders
type Codec interface {
	// Encode encodes a complete pixel buffer
	Encode(params EncodeParams) ([]byte, error)

	// NewStreamEncoder returns an encoder that writes to w while pixels
	// are pushed to it
	NewStreamEncoder(w io.WriteCloser, width, height, components int) (StreamEncoder, error)

	// MediaType returns the MIME type of the encoded output
	MediaType() string

	// Name returns a short identifier
	Name() string
}

// StreamEncoder encodes an image whose pixels arrive in pieces
type StreamEncoder interface {
	// Start writes everything that precedes the pixel data
	Start() error

	// Write pushes tightly packed pixel bytes, rows top to bottom
	Write(p []byte) (int, error)

	// End finishes the image and closes the output
	End() error
}

// EncodeParams contains parameters for encoding
type EncodeParams struct {
	PixelData  []byte // Raw pixel data
	Width      int    // Image width
	Height     int    // Image height
	Components int    // Number of color components (1=gray, 2=gray+alpha, 3=RGB, 4=RGBA)
	BitDepth   int    // Bits per sample (8)
}

// Validate checks dimensions, sample layout and buffer size
func (p *EncodeParams) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return ErrInvalidParameter
	}
	if p.Components < 1 || p.Components > 4 {
		return ErrInvalidParameter
	}
	if p.BitDepth != 8 {
		return ErrUnsupportedFormat
	}
	if len(p.PixelData) != p.Width*p.Height*p.Components {
		return ErrInvalidParameter
	}
	return nil
}
