package stream

import (
	"fmt"

	"github.com/cocosip/go-pngstream/png/filter"
)

// rowAssembler cuts an arbitrarily split byte stream into rows, filters each
// row and queues it until the queue grows past the flush threshold.
type rowAssembler struct {
	rowLength int
	maxRows   int
	threshold int

	pending  []byte
	queue    [][]byte
	rows     int
	selector *filter.Selector
	flush    func(rows [][]byte) error
}

func newRowAssembler(rowLength, bpp, maxRows, threshold int, flush func([][]byte) error) *rowAssembler {
	return &rowAssembler{
		rowLength: rowLength,
		maxRows:   maxRows,
		threshold: threshold,
		pending:   make([]byte, 0, rowLength),
		queue:     make([][]byte, 0, threshold+1),
		selector:  filter.NewSelector(rowLength, bpp),
		flush:     flush,
	}
}

// ingest consumes p, or nothing if p runs past the last row. The threshold is checked after every queued row so that
// the batches handed to flush depend only on the row sequence, never on how
// the caller split its pushes.
func (a *rowAssembler) ingest(p []byte) error {
	limit := a.maxRows * a.rowLength
	if total := a.rows*a.rowLength + len(a.pending) + len(p); total > limit {
		return fmt.Errorf("%w: image holds %d bytes, push would make %d",
			ErrTooManyRows, limit, total)
	}

	for len(p) > 0 {
		// Whole rows straight from the caller's buffer
		if len(a.pending) == 0 && len(p) >= a.rowLength {
			if err := a.addRow(p[:a.rowLength]); err != nil {
				return err
			}
			p = p[a.rowLength:]
			continue
		}

		n := min(a.rowLength-len(a.pending), len(p))
		a.pending = append(a.pending, p[:n]...)
		p = p[n:]

		if len(a.pending) == a.rowLength {
			if err := a.addRow(a.pending); err != nil {
				return err
			}
			a.pending = a.pending[:0]
		}
	}
	return nil
}

func (a *rowAssembler) addRow(row []byte) error {
	a.queue = append(a.queue, a.selector.Select(row))
	a.rows++
	if len(a.queue) > a.threshold {
		return a.drain()
	}
	return nil
}

// drain hands every queued row to flush and empties the queue.
func (a *rowAssembler) drain() error {
	if len(a.queue) == 0 {
		return nil
	}
	err := a.flush(a.queue)
	clear(a.queue)
	a.queue = a.queue[:0]
	return err
}

func (a *rowAssembler) pendingBytes() int {
	return len(a.pending)
}
