package extract

import "math"

// Spectrum is the immutable result of one extraction call: per-column flux
// and uncertainty, tagged with the frame's physical unit, plus diagnostics
// from the extraction run. All accessors return copies or values; a Spectrum
// never changes after it is returned.
type Spectrum struct {
	flux        []float64
	uncertainty []float64
	unit        string

	converged  bool
	iterations int
	rejected   int
	badColumns []int

	// Final working mask of the extraction, row-major. Nil for extractors
	// that do not reject pixels.
	mask []bool
	rows int
	cols int
}

// Len returns the number of dispersion columns.
func (s *Spectrum) Len() int { return len(s.flux) }

// FluxAt returns the flux at column i. NaN marks a column without usable
// pixels.
func (s *Spectrum) FluxAt(i int) float64 { return s.flux[i] }

// UncertaintyAt returns the 1-sigma uncertainty at column i.
func (s *Spectrum) UncertaintyAt(i int) float64 { return s.uncertainty[i] }

// Flux returns a copy of the per-column flux values.
func (s *Spectrum) Flux() []float64 {
	return append([]float64(nil), s.flux...)
}

// Uncertainty returns a copy of the per-column uncertainty values.
func (s *Spectrum) Uncertainty() []float64 {
	return append([]float64(nil), s.uncertainty...)
}

// Unit returns the propagated physical unit tag, which may be empty.
func (s *Spectrum) Unit() string { return s.unit }

// Converged reports whether the extraction stabilized within its iteration
// limit. Always true for single-pass extractors. A false value is a warning,
// not a failure: the returned values are the state at the iteration limit.
func (s *Spectrum) Converged() bool { return s.converged }

// Iterations returns the number of profile iterations performed.
func (s *Spectrum) Iterations() int { return s.iterations }

// RejectedPixels returns the number of pixels newly masked by outlier
// rejection during the extraction.
func (s *Spectrum) RejectedPixels() int { return s.rejected }

// BadColumns returns the columns that ended with no usable pixels and were
// degraded to NaN.
func (s *Spectrum) BadColumns() []int {
	return append([]int(nil), s.badColumns...)
}

// MaskAt reports whether pixel (r, c) was excluded in the final working mask
// of the extraction, including pixels newly rejected as outliers. It returns
// false for extractors that carry no working mask.
func (s *Spectrum) MaskAt(r, c int) bool {
	if s.mask == nil {
		return false
	}

	return s.mask[r*s.cols+c]
}

// Equal reports element-wise equality of the flux arrays. NaN entries are
// considered equal to NaN, so spectra with matching bad columns compare
// equal. Uncertainty and diagnostics do not participate.
func (s *Spectrum) Equal(other *Spectrum) bool {
	if other == nil || len(s.flux) != len(other.flux) {
		return false
	}

	for i := range s.flux {
		a, b := s.flux[i], other.flux[i]
		if math.IsNaN(a) && math.IsNaN(b) {
			continue
		}

		if a != b {
			return false
		}
	}

	return true
}
