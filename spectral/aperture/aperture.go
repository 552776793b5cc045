// Package aperture computes fractional-pixel inclusion weights for the
// extraction window around a trace.
//
// Spatial row r is treated as the interval [r-0.5, r+0.5] with its center at
// the integer coordinate, so a flat trace at position r with half-width 0.5
// covers exactly row r. Rows fully inside the window get weight 1, rows
// straddling a window edge get the overlap fraction, all others 0.
//
// Edge policy: a window extending past the spatial extent is clipped. Rows
// that would lie outside the frame simply do not exist, so the weight sum
// drops below 2*halfWidth near the boundary and the extracted flux
// under-counts the source there. Callers that need complete flux must keep
// the trace at least halfWidth away from the edges.
package aperture

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-spectral/spectral/trace"
)

var (
	// ErrInvalidWidth is returned for non-positive or non-finite half-widths.
	ErrInvalidWidth = errors.New("aperture: half-width must be > 0 and finite")

	// ErrLengthMismatch is returned when a destination slice does not match
	// the spatial extent.
	ErrLengthMismatch = errors.New("aperture: weight slice length mismatch")

	// ErrNilTrace is returned when no trace is supplied.
	ErrNilTrace = errors.New("aperture: trace must not be nil")
)

// Window derives per-column inclusion weights from a trace and a half-width.
// It is stateless after construction and safe for concurrent use.
type Window struct {
	tr        trace.Trace
	halfWidth float64
}

// New creates a window of the given half-width around tr.
func New(tr trace.Trace, halfWidth float64) (*Window, error) {
	if tr == nil {
		return nil, ErrNilTrace
	}

	if halfWidth <= 0 || math.IsNaN(halfWidth) || math.IsInf(halfWidth, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWidth, halfWidth)
	}

	return &Window{tr: tr, halfWidth: halfWidth}, nil
}

// HalfWidth returns the window half-width.
func (w *Window) HalfWidth() float64 { return w.halfWidth }

// Weights fills dst with the inclusion weight of every spatial row for the
// given column. dst must have length rows. Weights sum to 2*halfWidth except
// where the window is clipped at the spatial boundary.
func (w *Window) Weights(dst []float64, col, rows int) error {
	if len(dst) != rows {
		return fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(dst), rows)
	}

	center, err := w.tr.At(col)
	if err != nil {
		return err
	}

	Coverage(dst, center, w.halfWidth)

	return nil
}

// Coverage fills dst with the overlap fraction between each row interval
// [r-0.5, r+0.5] and the window [center-halfWidth, center+halfWidth].
func Coverage(dst []float64, center, halfWidth float64) {
	lower := center - halfWidth
	upper := center + halfWidth

	for r := range dst {
		lo := math.Max(lower, float64(r)-0.5)
		hi := math.Min(upper, float64(r)+0.5)

		wt := hi - lo
		if wt < 0 {
			wt = 0
		}

		dst[r] = wt
	}
}
