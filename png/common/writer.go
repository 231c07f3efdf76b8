package common

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Writer frames chunks onto an output sink
type Writer struct {
	w      io.Writer
	buf    []byte
	chunks int
	n      int64
}

// NewWriter creates a new chunk writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteSignature writes the 8-byte PNG signature
func (w *Writer) WriteSignature() error {
	return w.write(Signature[:])
}

// WriteChunk writes length, type, data and CRC as a single write.
// Sink errors are returned as is; nothing is retried.
func (w *Writer) WriteChunk(t ChunkType, data []byte) error {
	if uint64(len(data)) > math.MaxInt32 {
		return fmt.Errorf("%w: %d bytes", ErrChunkTooLarge, len(data))
	}

	size := 12 + len(data)
	if cap(w.buf) < size {
		w.buf = make([]byte, size)
	}
	buf := w.buf[:size]

	binary.BigEndian.PutUint32(buf[0:4], uint32(len(data)))
	copy(buf[4:8], t[:])
	copy(buf[8:], data)
	binary.BigEndian.PutUint32(buf[8+len(data):], chunkChecksum(t, data))

	if err := w.write(buf); err != nil {
		return err
	}
	w.chunks++
	return nil
}

// WriteHeader writes the IHDR chunk for h
func (w *Writer) WriteHeader(h Header) error {
	return w.WriteChunk(ChunkIHDR, h.Bytes())
}

// WriteEnd writes the empty IEND chunk
func (w *Writer) WriteEnd() error {
	return w.WriteChunk(ChunkIEND, nil)
}

// Chunks returns the number of chunks written so far
func (w *Writer) Chunks() int {
	return w.chunks
}

// BytesWritten returns the number of bytes accepted by the sink
func (w *Writer) BytesWritten() int64 {
	return w.n
}

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return err
}
