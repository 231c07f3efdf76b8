package stream

import (
	"fmt"

	"github.com/klauspost/compress/zlib"
)

// DefaultFlushThreshold is the number of queued filtered rows above which
// the queue is pushed through the compressor
const DefaultFlushThreshold = 20

// Options tunes an Encoder
type Options struct {
	// FlushThreshold bounds the number of filtered rows held before they are
	// compressed and written. Lower values reduce memory and latency at the
	// cost of more, smaller IDAT chunks.
	FlushThreshold int

	// CompressionLevel is a zlib level (zlib.HuffmanOnly .. zlib.BestCompression).
	// Default: zlib.BestCompression
	CompressionLevel int
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() *Options {
	return &Options{
		FlushThreshold:   DefaultFlushThreshold,
		CompressionLevel: zlib.BestCompression,
	}
}

// Validate checks the option values
func (o *Options) Validate() error {
	if o.FlushThreshold < 1 {
		return fmt.Errorf("png: flush threshold must be positive, got %d", o.FlushThreshold)
	}
	if o.CompressionLevel < zlib.HuffmanOnly || o.CompressionLevel > zlib.BestCompression {
		return fmt.Errorf("png: invalid compression level %d", o.CompressionLevel)
	}
	return nil
}

// WithFlushThreshold sets the flush threshold and returns the options for chaining
func (o *Options) WithFlushThreshold(rows int) *Options {
	o.FlushThreshold = rows
	return o
}

// WithCompressionLevel sets the zlib level and returns the options for chaining
func (o *Options) WithCompressionLevel(level int) *Options {
	o.CompressionLevel = level
	return o
}
