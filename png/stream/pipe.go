package stream

import (
	"io"

	"github.com/cocosip/go-pngstream/png/common"
)

// NewPipeEncoder returns an encoder whose output can be read from the
// returned reader while pixels are still being pushed. Writes block until
// the reader consumes them, so a slow consumer throttles the producer.
//
// The reader sees io.EOF after End, or the failure cause after an error or Abort.
func NewPipeEncoder(width, height int, cs common.ColorSpace, opts *Options) (*Encoder, io.ReadCloser, error) {
	if _, err := common.NewHeader(width, height, cs); err != nil {
		return nil, nil, err
	}

	pr, pw := io.Pipe()
	enc, err := NewEncoder(pw, width, height, cs, opts)
	if err != nil {
		_ = pw.Close()
		_ = pr.Close()
		return nil, nil, err
	}
	return enc, pr, nil
}
