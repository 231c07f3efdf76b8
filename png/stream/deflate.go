package stream

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zlib"

	"github.com/cocosip/go-pngstream/png/common"
)

// deflater feeds filtered rows into one zlib stream and frames whatever
// compressed output becomes available as IDAT chunks.
type deflater struct {
	zw     *zlib.Writer
	out    bytes.Buffer
	cw     *common.Writer
	chunks int
}

func newDeflater(cw *common.Writer, level int) (*deflater, error) {
	d := &deflater{cw: cw}
	zw, err := zlib.NewWriterLevel(&d.out, level)
	if err != nil {
		return nil, fmt.Errorf("png: create compressor: %w", err)
	}
	d.zw = zw
	return d, nil
}

// push compresses rows in order and sync-flushes the compressor once at the
// end of the batch so that every row handed in is on the wire afterwards.
func (d *deflater) push(rows [][]byte) error {
	for _, row := range rows {
		if _, err := d.zw.Write(row); err != nil {
			return fmt.Errorf("png: compress row: %w", err)
		}
		if err := d.emit(); err != nil {
			return err
		}
	}
	if err := d.zw.Flush(); err != nil {
		return fmt.Errorf("png: flush compressor: %w", err)
	}
	return d.emit()
}

// finish terminates the zlib stream and writes the trailing bytes.
func (d *deflater) finish() error {
	if err := d.zw.Close(); err != nil {
		return fmt.Errorf("png: close compressor: %w", err)
	}
	return d.emit()
}

func (d *deflater) emit() error {
	if d.out.Len() == 0 {
		return nil
	}
	if err := d.cw.WriteChunk(common.ChunkIDAT, d.out.Bytes()); err != nil {
		return fmt.Errorf("png: write IDAT: %w", err)
	}
	d.out.Reset()
	d.chunks++
	return nil
}
