package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/cocosip/go-pngstream/png/common"
	"github.com/cocosip/go-pngstream/png/filter"
)

// Encoder writes a PNG image to a sink while pixels are pushed to it in
// pieces of any size.
//
// Call order: Start, WritePixels (any number of times), End. The output is
// append-only: signature, IHDR, IDAT chunks, IEND. An Encoder is owned by a
// single goroutine; it has no internal locking.
type Encoder struct {
	header common.Header
	opts   Options

	sink  io.WriteCloser
	cw    *common.Writer
	rows  *rowAssembler
	z     *deflater
	state State
	err   error

	bytesIn int64
}

// NewEncoder creates an encoder for a width x height image in color space cs
// writing to w. opts may be nil. Nothing is written until Start.
func NewEncoder(w io.WriteCloser, width, height int, cs common.ColorSpace, opts *Options) (*Encoder, error) {
	header, err := common.NewHeader(width, height, cs)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("png: nil sink")
	}

	enc := &Encoder{
		header: header,
		opts:   *opts,
		sink:   w,
		cw:     common.NewWriter(w),
		state:  StateCreated,
	}

	enc.z, err = newDeflater(enc.cw, opts.CompressionLevel)
	if err != nil {
		return nil, err
	}
	enc.rows = newRowAssembler(header.RowLength(), header.BytesPerPixel(),
		header.Height, opts.FlushThreshold, enc.z.push)

	return enc, nil
}

// Header returns the image header
func (e *Encoder) Header() common.Header {
	return e.header
}

// State returns the current lifecycle state
func (e *Encoder) State() State {
	return e.state
}

// Err returns the error that failed the encoder, if any
func (e *Encoder) Err() error {
	return e.err
}

// Start writes the PNG signature and the IHDR chunk.
func (e *Encoder) Start() error {
	if err := e.expect("Start", StateCreated); err != nil {
		return err
	}

	if err := e.cw.WriteSignature(); err != nil {
		return e.fail(fmt.Errorf("png: write signature: %w", err))
	}
	if err := e.cw.WriteHeader(e.header); err != nil {
		return e.fail(fmt.Errorf("png: write IHDR: %w", err))
	}
	// StateHeaderWritten is only passed through here
	e.state = StateStreaming
	return nil
}

// WritePixels pushes tightly packed pixel bytes, rows top to bottom.
// p may end anywhere, including mid-pixel; the encoder does not retain p.
func (e *Encoder) WritePixels(p []byte) error {
	if err := e.expect("WritePixels", StateStreaming); err != nil {
		return err
	}

	if err := e.rows.ingest(p); err != nil {
		if errors.Is(err, ErrTooManyRows) {
			return err
		}
		return e.fail(err)
	}
	e.bytesIn += int64(len(p))
	return nil
}

// Write implements io.Writer on top of WritePixels
func (e *Encoder) Write(p []byte) (int, error) {
	if err := e.WritePixels(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// End flushes queued rows, terminates the compressed stream, writes IEND
// and closes the sink.
//
// A trailing partial row or a missing row is reported without writing
// anything; the encoder stays in StateStreaming so the caller may push the
// rest and call End again.
func (e *Encoder) End() error {
	if err := e.expect("End", StateStreaming); err != nil {
		return err
	}
	if n := e.rows.pendingBytes(); n != 0 {
		return fmt.Errorf("%w: %d of %d bytes", ErrIncompleteRow, n, e.header.RowLength())
	}
	if e.rows.rows != e.header.Height {
		return fmt.Errorf("%w: got %d of %d rows", ErrIncompleteImage, e.rows.rows, e.header.Height)
	}

	e.state = StateFinalizing

	if err := e.rows.drain(); err != nil {
		return e.fail(err)
	}
	if err := e.z.finish(); err != nil {
		return e.fail(err)
	}
	if err := e.cw.WriteEnd(); err != nil {
		return e.fail(fmt.Errorf("png: write IEND: %w", err))
	}
	if err := e.sink.Close(); err != nil {
		return e.fail(fmt.Errorf("png: close sink: %w", err))
	}

	e.state = StateClosed
	return nil
}

// Abort abandons the image. The output written so far is not a valid PNG.
// If the sink supports CloseWithError (io.PipeWriter does) the reader sees
// cause; otherwise the sink is closed.
func (e *Encoder) Abort(cause error) error {
	if e.state == StateClosed || e.state == StateFailed {
		return fmt.Errorf("%w: Abort in state %s", ErrInvalidState, e.state)
	}
	if cause == nil {
		cause = ErrAborted
	}
	e.fail(cause)
	return nil
}

// Stats reports progress counters
func (e *Encoder) Stats() Stats {
	return Stats{
		Rows:       e.rows.rows,
		Chunks:     e.cw.Chunks(),
		DataChunks: e.z.chunks,
		BytesIn:    e.bytesIn,
		BytesOut:   e.cw.BytesWritten(),
		Filters:    e.rows.selector.Counts(),
	}
}

// Stats holds encoder counters
type Stats struct {
	Rows       int   // rows filtered so far
	Chunks     int   // chunks written, all types
	DataChunks int   // IDAT chunks written
	BytesIn    int64 // pixel bytes accepted
	BytesOut   int64 // bytes written to the sink
	Filters    [filter.NumTypes]int
}

func (e *Encoder) expect(op string, want State) error {
	if e.state == StateFailed {
		return fmt.Errorf("%w: %w", ErrEncoderFailed, e.err)
	}
	if e.state != want {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidState, op, e.state)
	}
	return nil
}

// fail records err, moves to StateFailed and releases the sink.
func (e *Encoder) fail(err error) error {
	e.err = err
	e.state = StateFailed
	if cw, ok := e.sink.(interface{ CloseWithError(error) error }); ok {
		_ = cw.CloseWithError(err)
	} else {
		_ = e.sink.Close()
	}
	return err
}
