package fractal

import (
	"fmt"
	"math"
)

// Bailout radius on |z|
const escape = 4.0

// Renderer maps pixel coordinates of a width x height image to colors.
// It is immutable and safe for concurrent use.
type Renderer struct {
	width, height int
	p             Params

	ssWidth, ssHeight float64
	scale             float64 // 4 / zoom^1.1
	offX, offY        float64
	samples           float64
}

// NewRenderer validates p and precomputes the view transform
func NewRenderer(width, height int, p Params) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidParam, width, height)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	zoom := math.Pow(float64(p.Zoom), 1.1)
	ss := p.Supersample
	return &Renderer{
		width:    width,
		height:   height,
		p:        p,
		ssWidth:  float64(width * ss),
		ssHeight: float64(height * ss),
		scale:    4 / zoom,
		offX:     p.ZoomX - p.ZoomX/zoom,
		offY:     p.ZoomY - p.ZoomY/zoom,
		samples:  float64(ss * ss),
	}, nil
}

// Size returns the image dimensions
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// Pixel returns the color of pixel (x, y): the root mean square of the
// colors of its Supersample x Supersample sub-samples. Sub-samples inside
// the set contribute black.
func (r *Renderer) Pixel(x, y int) (red, green, blue uint8) {
	ss := r.p.Supersample
	x0, y0 := x*ss, y*ss

	var sr, sg, sb float64
	for xi := x0; xi < x0+ss; xi++ {
		for yi := y0; yi < y0+ss; yi++ {
			cx := r.scale*(float64(xi)/r.ssWidth-0.5) + r.offX
			cy := r.scale*(float64(yi)/r.ssHeight-0.5) + r.offY

			cr, cg, cb, ok := r.sample(cx, cy)
			if !ok {
				continue
			}
			sr += cr * cr
			sg += cg * cg
			sb += cb * cb
		}
	}

	return toByte(math.Sqrt(sr / r.samples)),
		toByte(math.Sqrt(sg / r.samples)),
		toByte(math.Sqrt(sb / r.samples))
}

// Row fills dst (3 * width bytes) with the RGB pixels of row y
func (r *Renderer) Row(dst []byte, y int) {
	for x := 0; x < r.width; x++ {
		dst[3*x], dst[3*x+1], dst[3*x+2] = r.Pixel(x, y)
	}
}

// sample iterates z = z^2 + c and returns the smooth-colored channels,
// or ok = false if c did not escape within the iteration limit.
func (r *Renderer) sample(cx, cy float64) (red, green, blue float64, ok bool) {
	var zx, zy, zn float64
	i := 0
	for i < r.p.Iterations && zn < escape {
		xt := zx * zy
		zx = zx*zx - zy*zy + cx
		zy = 2*xt + cy
		zn = math.Sqrt(zx*zx + zy*zy)
		i++
	}
	if i >= r.p.Iterations {
		return 0, 0, 0, false
	}

	// Fractional escape count smooths the color bands
	frac := math.Log2(math.Log(zn) / math.Log(escape))
	norm := math.Sqrt((float64(i) - frac) / float64(r.p.Iterations))

	red = channel(norm, 0.3)
	green = channel(norm, 0.45)
	blue = channel(norm, 0.65)
	return red, green, blue, true
}

func channel(norm, freq float64) float64 {
	return (math.Sin(norm*20*freq)*0.5 + 0.5) * 255
}

// toByte truncates v to 0..255; NaN maps to 0
func toByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// Pixel is a convenience wrapper around NewRenderer(...).Pixel
func Pixel(x, y, width, height int, p Params) (red, green, blue uint8, err error) {
	r, err := NewRenderer(width, height, p)
	if err != nil {
		return 0, 0, 0, err
	}
	red, green, blue = r.Pixel(x, y)
	return red, green, blue, nil
}
