package filter

import "fmt"

// PNG filter method 0 defines 5 per-byte filters.
// a = left byte, b = byte above, c = byte above-left.
// a and c are 0 for the first pixel of a row; b and c are 0 without a previous row.

// Type is a filter type; it is written as the first byte of every filtered row
type Type byte

const (
	None Type = iota
	Sub
	Up
	Average
	Paeth
)

// NumTypes is the number of filter types
const NumTypes = 5

func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case Sub:
		return "Sub"
	case Up:
		return "Up"
	case Average:
		return "Average"
	case Paeth:
		return "Paeth"
	default:
		return fmt.Sprintf("Type(%d)", byte(t))
	}
}

// PaethPredictor returns whichever of a, b, c is closest to a + b - c.
// Ties resolve in the order a, b, c.
func PaethPredictor(a, b, c int) int {
	p := b - c
	q := a - c
	pa := abs(p)
	pb := abs(q)
	pc := abs(p + q)

	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

// Apply writes the filtered form of row into dst (len(dst) >= len(row)).
// prev is the previous raw row; nil means there is none.
// bpp is the number of bytes per complete pixel.
func Apply(t Type, dst, row, prev []byte, bpp int) {
	if prev == nil && t >= Up {
		prev = make([]byte, len(row))
	}

	switch t {
	case None:
		// Filt(x) = Orig(x)
		copy(dst, row)

	case Sub:
		// Filt(x) = Orig(x) - Orig(a)
		for i := 0; i < len(row); i++ {
			var a byte
			if i >= bpp {
				a = row[i-bpp]
			}
			dst[i] = row[i] - a
		}

	case Up:
		// Filt(x) = Orig(x) - Orig(b)
		for i := 0; i < len(row); i++ {
			dst[i] = row[i] - prev[i]
		}

	case Average:
		// Filt(x) = Orig(x) - floor((Orig(a) + Orig(b)) / 2)
		for i := 0; i < len(row); i++ {
			var a int
			if i >= bpp {
				a = int(row[i-bpp])
			}
			dst[i] = row[i] - byte((a+int(prev[i]))>>1)
		}

	case Paeth:
		// Filt(x) = Orig(x) - PaethPredictor(Orig(a), Orig(b), Orig(c))
		for i := 0; i < len(row); i++ {
			var a, c int
			if i >= bpp {
				a = int(row[i-bpp])
				c = int(prev[i-bpp])
			}
			dst[i] = row[i] - byte(PaethPredictor(a, int(prev[i]), c))
		}

	default:
		panic(fmt.Sprintf("filter: unknown filter type %d", byte(t)))
	}
}

// Cost estimates how well a filtered row will compress: every byte is
// read as a signed residual and its magnitude summed.
func Cost(filtered []byte) int {
	sum := 0
	for _, v := range filtered {
		if v < 128 {
			sum += int(v)
		} else {
			sum += 256 - int(v)
		}
	}
	return sum
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
