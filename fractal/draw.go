package fractal

import (
	"context"
	"fmt"
)

// Encoder is the part of a streaming image encoder Draw needs.
// *stream.Encoder satisfies it; it must be configured for RGB.
type Encoder interface {
	Start() error
	WritePixels(p []byte) error
	End() error
	Abort(cause error) error
}

// Draw renders a width x height image with parameters p into enc, one RGB
// row per push. If ctx is cancelled between rows the encoder is aborted and
// ctx.Err() is returned.
func Draw(ctx context.Context, enc Encoder, width, height int, p Params) error {
	r, err := NewRenderer(width, height, p)
	if err != nil {
		_ = enc.Abort(err)
		return err
	}

	if err := enc.Start(); err != nil {
		return err
	}

	line := make([]byte, width*3)
	for y := 0; y < height; y++ {
		if err := ctx.Err(); err != nil {
			_ = enc.Abort(err)
			return err
		}
		r.Row(line, y)
		if err := enc.WritePixels(line); err != nil {
			return fmt.Errorf("fractal: row %d: %w", y, err)
		}
	}

	return enc.End()
}
