package fractal

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
)

// ErrInvalidParam is returned for out-of-range or unparsable parameters
var ErrInvalidParam = errors.New("fractal: invalid parameter")

// Limits keep a single request from monopolising a CPU
const (
	MaxIterations  = 10000
	MaxSupersample = 8
	MaxZoom        = 1 << 20
)

// Params controls what part of the Mandelbrot set is drawn and how
type Params struct {
	// Iterations is the escape-time iteration limit
	Iterations int `yaml:"iterations"`

	// Zoom is the magnification level; the effective scale is Zoom^1.1
	Zoom int `yaml:"zoom"`

	// ZoomX, ZoomY is the point on the complex plane the zoom converges on
	ZoomX float64 `yaml:"zoom_x"`
	ZoomY float64 `yaml:"zoom_y"`

	// Supersample is the number of samples per pixel along each axis
	Supersample int `yaml:"supersample"`
}

// DefaultParams returns the parameters used when a request sets none
func DefaultParams() Params {
	return Params{
		Iterations:  255,
		Zoom:        1,
		ZoomX:       -0.7496,
		ZoomY:       -0.1005999,
		Supersample: 1,
	}
}

// Validate checks parameter ranges
func (p Params) Validate() error {
	if p.Iterations < 1 || p.Iterations > MaxIterations {
		return fmt.Errorf("%w: iterations %d (1-%d)", ErrInvalidParam, p.Iterations, MaxIterations)
	}
	if p.Zoom < 1 || p.Zoom > MaxZoom {
		return fmt.Errorf("%w: zoom %d (1-%d)", ErrInvalidParam, p.Zoom, MaxZoom)
	}
	if p.Supersample < 1 || p.Supersample > MaxSupersample {
		return fmt.Errorf("%w: supersample %d (1-%d)", ErrInvalidParam, p.Supersample, MaxSupersample)
	}
	if !finite(p.ZoomX) || !finite(p.ZoomY) {
		return fmt.Errorf("%w: zoom target (%g, %g)", ErrInvalidParam, p.ZoomX, p.ZoomY)
	}
	return nil
}

// ParseQuery overlays query parameters on base:
//
//	i  iterations (int)
//	z  zoom (int)
//	zx zoom target, real part (float)
//	zy zoom target, imaginary part (float)
//	ss supersample (int)
func ParseQuery(q url.Values, base Params) (Params, error) {
	p := base

	ints := []struct {
		key string
		dst *int
	}{
		{"i", &p.Iterations},
		{"z", &p.Zoom},
		{"ss", &p.Supersample},
	}
	for _, f := range ints {
		if v := q.Get(f.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return base, fmt.Errorf("%w: %s=%q", ErrInvalidParam, f.key, v)
			}
			*f.dst = n
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"zx", &p.ZoomX},
		{"zy", &p.ZoomY},
	}
	for _, f := range floats {
		if v := q.Get(f.key); v != "" {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return base, fmt.Errorf("%w: %s=%q", ErrInvalidParam, f.key, v)
			}
			*f.dst = x
		}
	}

	if err := p.Validate(); err != nil {
		return base, err
	}
	return p, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
