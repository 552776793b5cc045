package extract

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-spectral/spectral/aperture"
	"github.com/cwbudde/algo-spectral/spectral/image"
	"github.com/cwbudde/algo-spectral/spectral/trace"
)

// Boxcar extracts a spectrum by uniform summation over the aperture window,
// with fractional weights at the window edges. It is bound to one frame and
// one trace; Extract may be called repeatedly with different widths.
type Boxcar struct {
	frame *image.Frame
	tr    trace.Trace
}

// NewBoxcar binds a boxcar extractor to a frame and trace. The trace must
// cover the frame's dispersion extent.
func NewBoxcar(frame *image.Frame, tr trace.Trace) (*Boxcar, error) {
	if frame == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrInvalidParameter)
	}

	if tr == nil {
		return nil, fmt.Errorf("%w: nil trace", ErrInvalidParameter)
	}

	if tr.Columns() != frame.Cols() {
		return nil, fmt.Errorf("%w: trace covers %d columns, frame has %d", ErrInvalidParameter, tr.Columns(), frame.Cols())
	}

	return &Boxcar{frame: frame, tr: tr}, nil
}

// BoxcarExtract is the one-shot form of NewBoxcar followed by Extract.
func BoxcarExtract(frame *image.Frame, tr trace.Trace, halfWidth float64) (*Spectrum, error) {
	b, err := NewBoxcar(frame, tr)
	if err != nil {
		return nil, err
	}

	return b.Extract(halfWidth)
}

// Extract sums each column over the aperture of the given half-width.
//
// flux[c] = sum over rows of data * weight; when the frame carries variance,
// uncertainty[c] = sqrt(sum of variance * weight^2) under the
// independent-pixel-noise assumption. Masked pixels get weight 0 in both
// sums. A column whose aperture holds no unmasked pixel is reported as NaN
// and listed in BadColumns.
//
// The half-width must be positive and smaller than half the spatial extent.
func (b *Boxcar) Extract(halfWidth float64) (*Spectrum, error) {
	rows, cols := b.frame.Rows(), b.frame.Cols()

	if halfWidth <= 0 || math.IsNaN(halfWidth) || halfWidth >= float64(rows)/2 {
		return nil, fmt.Errorf("%w: half-width %v must be in (0, %v)", ErrInvalidParameter, halfWidth, float64(rows)/2)
	}

	win, err := aperture.New(b.tr, halfWidth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	s := &Spectrum{
		flux:        make([]float64, cols),
		uncertainty: make([]float64, cols),
		unit:        b.frame.Unit(),
		converged:   true,
		rows:        rows,
		cols:        cols,
	}

	weights := make([]float64, rows)
	col := make([]float64, rows)
	varCol := make([]float64, rows)

	for c := 0; c < cols; c++ {
		if err := win.Weights(weights, c, rows); err != nil {
			return nil, err
		}

		if err := b.frame.Col(col, c); err != nil {
			return nil, err
		}

		usable := 0.0

		for r := 0; r < rows; r++ {
			if b.frame.MaskedAt(r, c) {
				weights[r] = 0
			}

			// Masked pixels may hold NaN; zero the sample as well so it
			// cannot reach the dot products below.
			if weights[r] == 0 {
				col[r] = 0
			}

			usable += weights[r]
		}

		if usable == 0 {
			s.flux[c] = math.NaN()
			s.uncertainty[c] = math.NaN()
			s.badColumns = append(s.badColumns, c)

			continue
		}

		s.flux[c] = vecmath.DotProduct(col, weights)

		if b.frame.HasVariance() {
			if err := b.frame.VarCol(varCol, c); err != nil {
				return nil, err
			}

			for r := 0; r < rows; r++ {
				if weights[r] == 0 {
					varCol[r] = 0
				}
			}

			// Square the weights in place; they are rebuilt next column.
			vecmath.MulBlockInPlace(weights, weights)
			s.uncertainty[c] = math.Sqrt(vecmath.DotProduct(varCol, weights))
		}
	}

	return s, nil
}
