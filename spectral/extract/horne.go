package extract

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-spectral/spectral/aperture"
	"github.com/cwbudde/algo-spectral/spectral/image"
	"github.com/cwbudde/algo-spectral/spectral/trace"
)

const (
	defaultIterationLimit = 10
	defaultRejectionSigma = 5.0
)

// Config holds optimal-extraction parameters. Zero values select defaults.
type Config struct {
	// IterationLimit bounds the profile/rejection iterations. Default 10.
	IterationLimit int

	// RejectionSigma is the standardized-residual threshold above which a
	// pixel is masked as an outlier. Default 5.
	RejectionSigma float64

	// HalfWidth restricts the extraction aperture around the trace. Zero
	// means the full spatial extent. Rows whose aperture weight is zero are
	// excluded entirely; partially covered edge rows participate at full
	// profile weight.
	HalfWidth float64

	// Smoother regularizes the spatial profile along dispersion. Default is
	// PolySmoother with degree 2.
	Smoother Smoother
}

func normalizeConfig(cfg Config) Config {
	if cfg.IterationLimit == 0 {
		cfg.IterationLimit = defaultIterationLimit
	}

	if cfg.RejectionSigma == 0 {
		cfg.RejectionSigma = defaultRejectionSigma
	}

	if cfg.Smoother == nil {
		cfg.Smoother = PolySmoother{}
	}

	return cfg
}

// Horne performs variance-weighted optimal extraction after Horne (1986):
// the spatial profile is estimated from the data, smoothed along dispersion,
// and used to form the variance-minimizing linear flux estimate per column,
// with iterative sigma-rejection of outlier pixels.
type Horne struct {
	frame *image.Frame
	tr    trace.Trace
	cfg   Config
}

// NewHorne binds an optimal extractor to a frame and trace. The frame must
// carry a variance array; parameter and shape problems are reported here,
// before any computation.
func NewHorne(frame *image.Frame, tr trace.Trace, cfg Config) (*Horne, error) {
	if frame == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrInvalidParameter)
	}

	if tr == nil {
		return nil, fmt.Errorf("%w: nil trace", ErrInvalidParameter)
	}

	if tr.Columns() != frame.Cols() {
		return nil, fmt.Errorf("%w: trace covers %d columns, frame has %d", ErrInvalidParameter, tr.Columns(), frame.Cols())
	}

	if !frame.HasVariance() {
		return nil, ErrVarianceRequired
	}

	cfg = normalizeConfig(cfg)

	if cfg.IterationLimit < 0 {
		return nil, fmt.Errorf("%w: iteration limit %d", ErrInvalidParameter, cfg.IterationLimit)
	}

	if cfg.RejectionSigma < 0 || math.IsNaN(cfg.RejectionSigma) {
		return nil, fmt.Errorf("%w: rejection sigma %v", ErrInvalidParameter, cfg.RejectionSigma)
	}

	if cfg.HalfWidth < 0 || math.IsNaN(cfg.HalfWidth) || cfg.HalfWidth >= float64(frame.Rows())/2 {
		return nil, fmt.Errorf("%w: half-width %v must be 0 (full extent) or in (0, %v)", ErrInvalidParameter, cfg.HalfWidth, float64(frame.Rows())/2)
	}

	return &Horne{frame: frame, tr: tr, cfg: cfg}, nil
}

// HorneExtract is the one-shot form of NewHorne with default configuration
// followed by Extract.
func HorneExtract(frame *image.Frame, tr trace.Trace) (*Spectrum, error) {
	h, err := NewHorne(frame, tr, Config{})
	if err != nil {
		return nil, err
	}

	return h.Extract()
}

// Extract runs the optimal extraction.
//
// Each iteration takes an immutable snapshot of (profile, mask): the profile
// is rebuilt from the current flux estimate and smoothed along dispersion
// (columns with masked in-aperture pixels contribute nothing to the fit),
// the flux is re-estimated with weights profile^2/variance, and the worst
// pixel per column whose standardized residual against flux*profile exceeds
// RejectionSigma is masked. Masking is monotonic within one call and happens
// on an internal copy; the caller's frame is never written.
//
// A column that ends with no usable pixels yields NaN flux and uncertainty
// and is listed in BadColumns; other columns are unaffected. The returned
// Spectrum reports Converged() false when the iteration limit was reached
// while rejections were still occurring.
func (h *Horne) Extract() (*Spectrum, error) {
	rows, cols := h.frame.Rows(), h.frame.Cols()
	n := rows * cols

	// Working mask, true = unusable. Starts from the caller mask plus
	// everything outside the aperture; outside records the aperture part
	// alone, which the profile-fit weighting below needs separately.
	workMask := make([]bool, n)
	outside := make([]bool, n)

	if err := h.seedMask(workMask, outside, rows, cols); err != nil {
		return nil, err
	}

	// Eager variance validation on every pixel that can enter the sums.
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if workMask[r*cols+c] {
				continue
			}

			if v := h.frame.VarAt(r, c); v <= 0 {
				return nil, fmt.Errorf("%w: variance %v at pixel (%d,%d)", ErrInvalidParameter, v, r, c)
			}
		}
	}

	flux := h.initialFlux(workMask, rows, cols)

	praw := make([]float64, n)
	profile := make([]float64, n)
	smoothW := make([]float64, n)

	s := &Spectrum{
		unit: h.frame.Unit(),
		rows: rows,
		cols: cols,
	}

	for it := 1; it <= h.cfg.IterationLimit; it++ {
		s.iterations = it

		h.buildRawProfile(praw, flux, workMask, rows, cols)

		// A column holding a masked in-aperture pixel is excluded from the
		// profile fit entirely: its data/flux fractions are computed against
		// a partial flux and would bias the fitted profile. Its own profile
		// comes from the neighboring columns instead.
		for c := 0; c < cols; c++ {
			colMasked := false

			for r := 0; r < rows; r++ {
				i := r*cols + c
				if workMask[i] && !outside[i] {
					colMasked = true
					break
				}
			}

			for r := 0; r < rows; r++ {
				i := r*cols + c
				if colMasked || workMask[i] {
					smoothW[i] = 0
				} else {
					smoothW[i] = 1
				}
			}
		}

		if err := h.cfg.Smoother.Smooth(profile, praw, smoothW, rows, cols); err != nil {
			return nil, err
		}

		normalizeProfile(profile, workMask, rows, cols)

		h.reestimateFlux(flux, profile, workMask, rows, cols)

		if h.reject(flux, profile, workMask, rows, cols, s) == 0 {
			s.converged = true
			break
		}
	}

	s.flux = flux
	s.uncertainty = make([]float64, cols)
	s.mask = workMask

	for c := 0; c < cols; c++ {
		den := 0.0

		for r := 0; r < rows; r++ {
			i := r*cols + c
			if workMask[i] {
				continue
			}

			p := profile[i]
			den += p * p / h.frame.VarAt(r, c)
		}

		if den > 0 && !math.IsNaN(flux[c]) {
			s.uncertainty[c] = math.Sqrt(1 / den)
		} else {
			s.flux[c] = math.NaN()
			s.uncertainty[c] = math.NaN()
			s.badColumns = append(s.badColumns, c)
		}
	}

	if len(s.badColumns) == cols {
		return nil, ErrInsufficientData
	}

	return s, nil
}

// seedMask marks caller-masked pixels and pixels outside the aperture in
// workMask, and the aperture exclusions alone in outside.
func (h *Horne) seedMask(workMask, outside []bool, rows, cols int) error {
	var win *aperture.Window

	if h.cfg.HalfWidth > 0 {
		w, err := aperture.New(h.tr, h.cfg.HalfWidth)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
		}

		win = w
	}

	weights := make([]float64, rows)

	for c := 0; c < cols; c++ {
		if win != nil {
			if err := win.Weights(weights, c, rows); err != nil {
				return err
			}
		}

		for r := 0; r < rows; r++ {
			i := r*cols + c
			outside[i] = win != nil && weights[r] == 0
			workMask[i] = outside[i] || h.frame.MaskedAt(r, c)
		}
	}

	return nil
}

// initialFlux computes the first-pass boxcar estimate over usable pixels.
func (h *Horne) initialFlux(workMask []bool, rows, cols int) []float64 {
	flux := make([]float64, cols)

	for c := 0; c < cols; c++ {
		sum := 0.0
		usable := 0

		for r := 0; r < rows; r++ {
			if workMask[r*cols+c] {
				continue
			}

			sum += h.frame.At(r, c)
			usable++
		}

		if usable == 0 {
			flux[c] = math.NaN()
		} else {
			flux[c] = sum
		}
	}

	return flux
}

// buildRawProfile fills praw with data/flux per pixel: the per-column
// candidate profile fraction before smoothing. Columns without a usable
// flux estimate contribute zeros; normalizeProfile falls back to a uniform
// profile for them.
func (h *Horne) buildRawProfile(praw, flux []float64, workMask []bool, rows, cols int) {
	for c := 0; c < cols; c++ {
		f := flux[c]
		ok := !math.IsNaN(f) && f != 0

		for r := 0; r < rows; r++ {
			i := r*cols + c

			if ok && !workMask[i] {
				praw[i] = h.frame.At(r, c) / f
			} else {
				praw[i] = 0
			}
		}
	}
}

// normalizeProfile clamps negative smoothed values to zero and renormalizes
// each column to unit sum over usable rows. Columns whose smoothed profile
// vanished fall back to a uniform profile over their usable rows.
func normalizeProfile(profile []float64, workMask []bool, rows, cols int) {
	for c := 0; c < cols; c++ {
		sum := 0.0
		usable := 0

		for r := 0; r < rows; r++ {
			i := r*cols + c

			if workMask[i] {
				profile[i] = 0
				continue
			}

			if profile[i] < 0 {
				profile[i] = 0
			}

			sum += profile[i]
			usable++
		}

		if usable == 0 {
			continue
		}

		if sum > 0 {
			for r := 0; r < rows; r++ {
				i := r*cols + c
				if !workMask[i] {
					profile[i] /= sum
				}
			}
		} else {
			uniform := 1 / float64(usable)

			for r := 0; r < rows; r++ {
				i := r*cols + c
				if !workMask[i] {
					profile[i] = uniform
				}
			}
		}
	}
}

// reestimateFlux applies the optimal estimator: the inverse-variance
// weighted combination of data/profile with weights profile^2/variance.
func (h *Horne) reestimateFlux(flux, profile []float64, workMask []bool, rows, cols int) {
	for c := 0; c < cols; c++ {
		num := 0.0
		den := 0.0

		for r := 0; r < rows; r++ {
			i := r*cols + c
			if workMask[i] {
				continue
			}

			p := profile[i]
			if p <= 0 {
				continue
			}

			v := h.frame.VarAt(r, c)
			num += p * h.frame.At(r, c) / v
			den += p * p / v
		}

		if den > 0 {
			flux[c] = num / den
		} else {
			flux[c] = math.NaN()
		}
	}
}

// reject masks outliers against the model flux*profile. At most the single
// worst pixel per column is masked per iteration: a strong cosmic ray
// inflates the column's flux estimate and with it every residual in the
// column, so masking all threshold crossers at once would wipe out columns
// that one more iteration repairs. Every pixel whose residual stays above
// the threshold is still masked eventually through iteration. Returns the
// number of newly masked pixels.
func (h *Horne) reject(flux, profile []float64, workMask []bool, rows, cols int, s *Spectrum) int {
	newlyMasked := 0

	for c := 0; c < cols; c++ {
		f := flux[c]
		if math.IsNaN(f) {
			continue
		}

		worst := -1
		worstRes := h.cfg.RejectionSigma

		for r := 0; r < rows; r++ {
			i := r*cols + c
			if workMask[i] {
				continue
			}

			res := math.Abs(h.frame.At(r, c)-f*profile[i]) / math.Sqrt(h.frame.VarAt(r, c))
			if res > worstRes {
				worst = i
				worstRes = res
			}
		}

		if worst >= 0 {
			workMask[worst] = true
			newlyMasked++
			s.rejected++
		}
	}

	return newlyMasked
}
