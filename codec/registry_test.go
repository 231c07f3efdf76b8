package codec_test

import (
	"bytes"
	"errors"
	"image/png"
	"io"
	"testing"

	"github.com/cocosip/go-pngstream/codec"
	_ "github.com/cocosip/go-pngstream/png"
)

func TestCodecRegistry(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		wantFound bool
		wantName  string
		wantType  string
	}{
		{
			name:      "Get png by media type",
			key:       "image/png",
			wantFound: true,
			wantName:  "png",
			wantType:  "image/png",
		},
		{
			name:      "Get png by name",
			key:       "png",
			wantFound: true,
			wantName:  "png",
			wantType:  "image/png",
		},
		{
			name:      "Get non-existent codec",
			key:       "non-existent",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := codec.Get(tt.key)

			if tt.wantFound {
				if err != nil {
					t.Errorf("Get(%q) unexpected error: %v", tt.key, err)
					return
				}
				if c == nil {
					t.Errorf("Get(%q) returned nil codec", tt.key)
					return
				}
				if c.MediaType() != tt.wantType {
					t.Errorf("Get(%q).MediaType() = %q, want %q", tt.key, c.MediaType(), tt.wantType)
				}
				if c.Name() != tt.wantName {
					t.Errorf("Get(%q).Name() = %q, want %q", tt.key, c.Name(), tt.wantName)
				}
			} else {
				if err == nil {
					t.Errorf("Get(%q) expected error, got nil", tt.key)
				}
				if !errors.Is(err, codec.ErrCodecNotFound) {
					t.Errorf("Get(%q) error = %v, want %v", tt.key, err, codec.ErrCodecNotFound)
				}
			}
		})
	}
}

func TestListCodecs(t *testing.T) {
	codecs := codec.List()

	if len(codecs) != 1 {
		t.Errorf("List() returned %d codecs, want 1 (registered under two keys)", len(codecs))
	}
	if len(codecs) > 0 && codecs[0].Name() != "png" {
		t.Errorf("List()[0].Name() = %q, want %q", codecs[0].Name(), "png")
	}
}

func TestPNGCodecEncode(t *testing.T) {
	c, err := codec.Get("png")
	if err != nil {
		t.Fatalf("Get(png) failed: %v", err)
	}

	width, height := 32, 16
	pixels := make([]byte, width*height*3)
	for i := range pixels {
		pixels[i] = byte(i % 251)
	}

	encoded, err := c.Encode(codec.EncodeParams{
		PixelData:  pixels,
		Width:      width,
		Height:     height,
		Components: 3,
		BitDepth:   8,
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	t.Logf("Encoded %d bytes -> %d bytes (%.2fx)", len(pixels), len(encoded), float64(len(pixels))/float64(len(encoded)))

	img, err := png.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
		t.Errorf("decoded bounds %v, want %dx%d", img.Bounds(), width, height)
	}
}

func TestPNGCodecEncodeInvalidParams(t *testing.T) {
	c, err := codec.Get("png")
	if err != nil {
		t.Fatalf("Get(png) failed: %v", err)
	}

	tests := []struct {
		name   string
		params codec.EncodeParams
		want   error
	}{
		{"zero width", codec.EncodeParams{PixelData: nil, Width: 0, Height: 1, Components: 1, BitDepth: 8}, codec.ErrInvalidParameter},
		{"short buffer", codec.EncodeParams{PixelData: make([]byte, 3), Width: 2, Height: 2, Components: 1, BitDepth: 8}, codec.ErrInvalidParameter},
		{"five components", codec.EncodeParams{PixelData: make([]byte, 5), Width: 1, Height: 1, Components: 5, BitDepth: 8}, codec.ErrInvalidParameter},
		{"16 bit", codec.EncodeParams{PixelData: make([]byte, 1), Width: 1, Height: 1, Components: 1, BitDepth: 16}, codec.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Encode(tt.params); err != tt.want {
				t.Errorf("Encode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestPNGStreamEncoder(t *testing.T) {
	c, err := codec.Get("image/png")
	if err != nil {
		t.Fatalf("Get(image/png) failed: %v", err)
	}

	out := &closeRecorder{}
	enc, err := c.NewStreamEncoder(out, 4, 4, 1)
	if err != nil {
		t.Fatalf("NewStreamEncoder failed: %v", err)
	}
	if err := enc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for y := 0; y < 4; y++ {
		if _, err := io.Copy(enc, bytes.NewReader([]byte{byte(y), 1, 2, 3})); err != nil {
			t.Fatalf("row %d: %v", y, err)
		}
	}
	if err := enc.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if !out.closed {
		t.Error("End did not close the output")
	}
	if _, err := png.Decode(&out.Buffer); err != nil {
		t.Errorf("png.Decode failed: %v", err)
	}
}
