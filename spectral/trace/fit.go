package trace

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-spectral/internal/polyfit"
	"github.com/cwbudde/algo-spectral/spectral/image"
)

// ErrInsufficientBins is returned when too few bins contain usable signal to
// constrain the requested polynomial degree.
var ErrInsufficientBins = errors.New("trace: insufficient usable bins for fit")

const (
	defaultFitBins   = 20
	defaultFitDegree = 2
)

// PeakMethod selects how the source peak is located within a bin.
type PeakMethod int

const (
	// PeakCentroid locates the peak as the flux-weighted centroid of the
	// binned spatial profile. Robust default for well-sampled profiles.
	PeakCentroid PeakMethod = iota

	// PeakMax locates the peak at the brightest spatial row.
	PeakMax
)

// FitConfig holds trace-fitting parameters. Zero values select defaults:
// 20 bins (clamped to the column count), degree 2, centroid peaks, and the
// full spatial extent as search window.
type FitConfig struct {
	Bins   int
	Degree int
	Peak   PeakMethod

	// LowRow and HighRow restrict the spatial search window to
	// [LowRow, HighRow). Both zero means the full extent.
	LowRow  int
	HighRow int
}

func normalizeFitConfig(cfg FitConfig, rows, cols int) (FitConfig, error) {
	if cfg.Bins <= 0 {
		cfg.Bins = defaultFitBins
	}

	if cfg.Bins > cols {
		cfg.Bins = cols
	}

	if cfg.Degree <= 0 {
		cfg.Degree = defaultFitDegree
	}

	if cfg.LowRow == 0 && cfg.HighRow == 0 {
		cfg.HighRow = rows
	}

	if cfg.LowRow < 0 || cfg.HighRow > rows || cfg.LowRow >= cfg.HighRow {
		return cfg, fmt.Errorf("trace: invalid search window [%d,%d) for %d rows", cfg.LowRow, cfg.HighRow, rows)
	}

	return cfg, nil
}

// Fit estimates the source trace from the frame itself. Columns are grouped
// into bins, each bin's unmasked pixels are summed per spatial row, the peak
// of the binned profile is located, and a polynomial of cfg.Degree is fitted
// through the (bin center, peak position) points.
//
// Bins whose profile carries no positive signal are skipped; the fit fails
// with ErrInsufficientBins when fewer than Degree+1 bins remain.
func Fit(frame *image.Frame, cfg FitConfig) (*Polynomial, error) {
	if frame == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrInvalidPosition)
	}

	rows, cols := frame.Rows(), frame.Cols()

	cfg, err := normalizeFitConfig(cfg, rows, cols)
	if err != nil {
		return nil, err
	}

	binWidth := float64(cols) / float64(cfg.Bins)

	xs := make([]float64, 0, cfg.Bins)
	ys := make([]float64, 0, cfg.Bins)

	rowSum := make([]float64, rows)

	for b := 0; b < cfg.Bins; b++ {
		lo := int(float64(b) * binWidth)

		hi := int(float64(b+1) * binWidth)
		if b == cfg.Bins-1 {
			hi = cols
		}

		for r := range rowSum {
			rowSum[r] = 0
		}

		for c := lo; c < hi; c++ {
			for r := cfg.LowRow; r < cfg.HighRow; r++ {
				if frame.MaskedAt(r, c) {
					continue
				}

				rowSum[r] += frame.At(r, c)
			}
		}

		peak, ok := locatePeak(rowSum, cfg.LowRow, cfg.HighRow, cfg.Peak)
		if !ok {
			continue
		}

		xs = append(xs, 0.5*float64(lo+hi-1))
		ys = append(ys, peak)
	}

	if len(xs) < cfg.Degree+1 {
		return nil, fmt.Errorf("%w: %d bins with signal, need %d", ErrInsufficientBins, len(xs), cfg.Degree+1)
	}

	coeffs, err := polyfit.Fit(xs, ys, cfg.Degree)
	if err != nil {
		return nil, fmt.Errorf("trace: fit failed: %w", err)
	}

	return NewPolynomial(coeffs, cols)
}

func locatePeak(rowSum []float64, lo, hi int, method PeakMethod) (float64, bool) {
	switch method {
	case PeakMax:
		best := lo
		found := false

		for r := lo; r < hi; r++ {
			if rowSum[r] > 0 && (!found || rowSum[r] > rowSum[best]) {
				best = r
				found = true
			}
		}

		if !found {
			return 0, false
		}

		return float64(best), true

	default: // PeakCentroid
		var sum, weighted float64

		for r := lo; r < hi; r++ {
			v := rowSum[r]
			if v <= 0 {
				continue
			}

			sum += v
			weighted += v * float64(r)
		}

		if sum <= 0 {
			return 0, false
		}

		return weighted / sum, true
	}
}
