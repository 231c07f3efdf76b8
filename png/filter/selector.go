package filter

// Selector picks the cheapest filter for each row of an image.
// It remembers the previous raw row, so one Selector serves exactly one image
// and rows must be passed top to bottom.
type Selector struct {
	bpp     int
	prev    []byte
	hasPrev bool
	scratch []byte
	counts  [NumTypes]int
}

// NewSelector creates a Selector for rows of rowLength bytes with bpp bytes per pixel.
func NewSelector(rowLength, bpp int) *Selector {
	return &Selector{
		bpp:     bpp,
		prev:    make([]byte, rowLength),
		scratch: make([]byte, 1+rowLength),
	}
}

// Select filters row and returns a new slice holding the filter type byte
// followed by the filtered bytes.
//
// Without a previous row only None and Sub are tried. Candidates are tried in
// ascending type order and only a strictly lower Cost replaces the current best,
// so ties go to the lower type.
func (s *Selector) Select(row []byte) []byte {
	best := make([]byte, 1+len(row))
	tmp := s.scratch[:1+len(row)]
	minCost := -1

	maxType := Sub
	if s.hasPrev {
		maxType = Paeth
	}

	var prev []byte
	if s.hasPrev {
		prev = s.prev
	}

	for t := None; t <= maxType; t++ {
		tmp[0] = byte(t)
		Apply(t, tmp[1:], row, prev, s.bpp)

		cost := Cost(tmp[1:])
		if minCost < 0 || cost < minCost {
			best, tmp = tmp, best
			minCost = cost
		}
	}
	s.scratch = tmp

	// The raw row, not the filtered one, is the reference for the next row
	s.prev = append(s.prev[:0], row...)
	s.hasPrev = true
	s.counts[best[0]]++

	return best
}

// Counts returns how many rows selected each filter type.
func (s *Selector) Counts() [NumTypes]int {
	return s.counts
}

// Reset forgets the previous row so the next row is treated as the first.
func (s *Selector) Reset() {
	s.hasPrev = false
	s.counts = [NumTypes]int{}
}
