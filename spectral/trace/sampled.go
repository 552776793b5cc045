package trace

import (
	"fmt"
	"math"
)

// Interpolation selects the kernel used by Sampled for fractional lookup.
type Interpolation int

const (
	// InterpLinear uses 2-point linear interpolation.
	InterpLinear Interpolation = iota

	// InterpHermite uses 4-point cubic Hermite interpolation, which keeps
	// the interpolated trace smooth through the sample points.
	InterpHermite
)

// Sampled is a trace defined by one spatial position per column.
type Sampled struct {
	positions []float64
	interp    Interpolation
}

// NewSampled creates a trace from per-column sampled positions. Positions
// are copied and must all be finite.
func NewSampled(positions []float64, interp Interpolation) (*Sampled, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: 0", ErrInvalidColumns)
	}

	for i, p := range positions {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: sample %d is %v", ErrInvalidPosition, i, p)
		}
	}

	return &Sampled{
		positions: append([]float64(nil), positions...),
		interp:    interp,
	}, nil
}

// At returns the sampled position at an integer column.
func (s *Sampled) At(col int) (float64, error) {
	if err := checkColumn(col, len(s.positions)); err != nil {
		return 0, err
	}

	return s.positions[col], nil
}

// Columns returns the covered dispersion extent.
func (s *Sampled) Columns() int { return len(s.positions) }

// FracAt returns the interpolated position at a fractional column in
// [0, Columns()-1].
func (s *Sampled) FracAt(x float64) (float64, error) {
	last := float64(len(s.positions) - 1)
	if math.IsNaN(x) || x < 0 || x > last {
		return 0, fmt.Errorf("%w: %v not in [0,%v]", ErrOutOfBounds, x, last)
	}

	i := int(x)
	if i >= len(s.positions)-1 {
		return s.positions[len(s.positions)-1], nil
	}

	frac := x - float64(i)

	if s.interp == InterpHermite && len(s.positions) >= 4 {
		// Clamp the 4-point stencil inside the sample range.
		im1 := maxInt(i-1, 0)
		ip2 := minInt(i+2, len(s.positions)-1)

		return hermite4(frac, s.positions[im1], s.positions[i], s.positions[i+1], s.positions[ip2]), nil
	}

	return s.positions[i] + frac*(s.positions[i+1]-s.positions[i]), nil
}

// hermite4 computes cubic 4-point interpolation from x0 to x1 using the
// neighbor points xm1 and x2.
func hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)

	return ((c3*t+c2)*t+c1)*t + c0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}
