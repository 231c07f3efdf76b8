// Package png registers the streaming PNG encoder with the codec registry.
package png

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cocosip/go-pngstream/codec"
	"github.com/cocosip/go-pngstream/png/common"
	"github.com/cocosip/go-pngstream/png/stream"
)

var _ codec.Codec = (*Codec)(nil)

const (
	// Name is the registry name of the PNG codec
	Name = "png"

	// MediaType is the MIME type of PNG output
	MediaType = "image/png"
)

// Codec adapts the streaming PNG encoder to codec.Codec
type Codec struct {
	opts *stream.Options
}

// NewCodec creates a PNG codec; opts may be nil for defaults
func NewCodec(opts *stream.Options) *Codec {
	if opts == nil {
		opts = stream.DefaultOptions()
	}
	return &Codec{opts: opts}
}

// Name returns the codec name
func (c *Codec) Name() string {
	return Name
}

// MediaType returns the MIME type
func (c *Codec) MediaType() string {
	return MediaType
}

// Options returns a copy of the encoder options
func (c *Codec) Options() stream.Options {
	return *c.opts
}

// Encode encodes a complete pixel buffer
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	cs, err := common.ColorSpaceForComponents(params.Components)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := stream.Encode(&buf, params.PixelData, params.Width, params.Height, cs, c.opts); err != nil {
		return nil, fmt.Errorf("PNG encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// NewStreamEncoder creates a streaming encoder writing to w
func (c *Codec) NewStreamEncoder(w io.WriteCloser, width, height, components int) (codec.StreamEncoder, error) {
	cs, err := common.ColorSpaceForComponents(components)
	if err != nil {
		return nil, err
	}
	enc, err := stream.NewEncoder(w, width, height, cs, c.opts)
	if err != nil {
		return nil, err
	}
	return enc, nil
}

// RegisterCodec registers the PNG codec with the global registry
func RegisterCodec(opts *stream.Options) {
	codec.Register(NewCodec(opts))
}

func init() {
	RegisterCodec(nil)
}
