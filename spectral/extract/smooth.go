package extract

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-spectral/internal/polyfit"
)

// Smoother regularizes the raw spatial profile along the dispersion axis.
// Smooth reads the row-major rows x cols array src and writes the smoothed
// profile to dst; each spatial row is processed independently along
// dispersion. weights carries per-pixel credibility in [0,1] (0 = ignore the
// pixel, used for masked and rejected pixels); nil means uniform. dst and
// src must not alias.
//
// The physical justification: the spatial profile of a point source varies
// slowly with wavelength, so combining information across neighboring
// columns suppresses per-column noise without biasing the profile.
type Smoother interface {
	Smooth(dst, src, weights []float64, rows, cols int) error
}

const defaultPolyDegree = 2

// PolySmoother fits a low-order polynomial to each spatial row's profile
// fraction as a function of column, weighted by the pixel weights. This is
// the smoothing form of the original Horne prescription. A zero Degree
// selects 2.
//
// Rows with fewer weighted points than Degree+1, and rows where the fit
// degenerates, are passed through unchanged.
type PolySmoother struct {
	Degree int
}

// Smooth implements Smoother.
func (s PolySmoother) Smooth(dst, src, weights []float64, rows, cols int) error {
	if err := checkSmoothArgs(dst, src, weights, rows, cols); err != nil {
		return err
	}

	degree := s.Degree
	if degree <= 0 {
		degree = defaultPolyDegree
	}

	if cols < degree+1 {
		copy(dst, src)
		return nil
	}

	xs := make([]float64, cols)
	for c := range xs {
		xs[c] = float64(c)
	}

	for r := 0; r < rows; r++ {
		row := src[r*cols : (r+1)*cols]
		out := dst[r*cols : (r+1)*cols]

		var wrow []float64
		if weights != nil {
			wrow = weights[r*cols : (r+1)*cols]
		}

		coeffs, err := polyfit.FitWeighted(xs, row, wrow, degree)
		if err != nil {
			copy(out, row)
			continue
		}

		for c := range out {
			out[c] = polyfit.Eval(coeffs, xs[c])
		}
	}

	return nil
}

// fftKernelThreshold is the kernel length above which FFT convolution beats
// the direct loop.
const fftKernelThreshold = 32

// KernelSmoother convolves each spatial row with a normalized Gaussian of
// the given FWHM (in columns) along dispersion. Zero-weight pixels
// contribute nothing, and the kernel mass actually reaching each column is
// divided out, so masked pixels and the clipped dispersion edges do not dim
// the profile.
//
// Short kernels use direct convolution; long kernels switch to an FFT. Both
// paths produce the same result up to floating-point rounding.
type KernelSmoother struct {
	FWHM float64
}

// Smooth implements Smoother.
func (s KernelSmoother) Smooth(dst, src, weights []float64, rows, cols int) error {
	if err := checkSmoothArgs(dst, src, weights, rows, cols); err != nil {
		return err
	}

	if s.FWHM <= 0 || math.IsNaN(s.FWHM) || math.IsInf(s.FWHM, 0) {
		return fmt.Errorf("%w: kernel FWHM %v must be > 0", ErrInvalidParameter, s.FWHM)
	}

	conv, err := newKernelConv(gaussianKernel(s.FWHM), cols)
	if err != nil {
		return err
	}

	weighted := make([]float64, cols)
	wrow := make([]float64, cols)
	norm := make([]float64, cols)

	for r := 0; r < rows; r++ {
		row := src[r*cols : (r+1)*cols]
		out := dst[r*cols : (r+1)*cols]

		for c := 0; c < cols; c++ {
			w := 1.0
			if weights != nil {
				w = weights[r*cols+c]
			}

			wrow[c] = w

			// Zero-weight pixels may hold NaN; keep them out of the product.
			if w == 0 {
				weighted[c] = 0
			} else {
				weighted[c] = row[c] * w
			}
		}

		if err := conv.same(out, weighted); err != nil {
			return err
		}

		if err := conv.same(norm, wrow); err != nil {
			return err
		}

		for c := range out {
			if norm[c] > 0 {
				out[c] /= norm[c]
			} else {
				out[c] = 0
			}
		}
	}

	return nil
}

func checkSmoothArgs(dst, src, weights []float64, rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: smooth shape %dx%d", ErrInvalidParameter, rows, cols)
	}

	if len(src) != rows*cols || len(dst) != rows*cols {
		return fmt.Errorf("%w: smooth buffers %d/%d, want %d", ErrInvalidParameter, len(dst), len(src), rows*cols)
	}

	if weights != nil && len(weights) != rows*cols {
		return fmt.Errorf("%w: smooth weights %d, want %d", ErrInvalidParameter, len(weights), rows*cols)
	}

	return nil
}

// gaussianKernel builds a unit-sum Gaussian kernel truncated at 3 sigma.
func gaussianKernel(fwhm float64) []float64 {
	sigma := fwhm / (2 * math.Sqrt(2*math.Ln2))

	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}

	kernel := make([]float64, 2*radius+1)

	sum := 0.0

	for i := range kernel {
		d := float64(i-radius) / sigma
		kernel[i] = math.Exp(-0.5 * d * d)
		sum += kernel[i]
	}

	for i := range kernel {
		kernel[i] /= sum
	}

	return kernel
}

// kernelConv performs same-length 1D convolution, choosing direct or FFT
// evaluation by kernel length.
type kernelConv struct {
	kernel []float64
	radius int
	cols   int

	// FFT path state, nil for direct convolution.
	plan      *algofft.Plan[complex128]
	kernelFFT []complex128
	scratchIn []complex128
	scratchTm []complex128
}

func newKernelConv(kernel []float64, cols int) (*kernelConv, error) {
	kc := &kernelConv{
		kernel: kernel,
		radius: len(kernel) / 2,
		cols:   cols,
	}

	if len(kernel) < fftKernelThreshold {
		return kc, nil
	}

	fftSize := nextPowerOf2(cols + len(kernel) - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("extract: failed to create FFT plan: %w", err)
	}

	kernelPadded := make([]complex128, fftSize)
	for i, v := range kernel {
		kernelPadded[i] = complex(v, 0)
	}

	kernelFFT := make([]complex128, fftSize)
	if err := plan.Forward(kernelFFT, kernelPadded); err != nil {
		return nil, fmt.Errorf("extract: kernel FFT failed: %w", err)
	}

	kc.plan = plan
	kc.kernelFFT = kernelFFT
	kc.scratchIn = make([]complex128, fftSize)
	kc.scratchTm = make([]complex128, fftSize)

	return kc, nil
}

// same writes the same-length convolution of src with the kernel into dst.
// Samples beyond the signal edges contribute nothing.
func (kc *kernelConv) same(dst, src []float64) error {
	if kc.plan == nil {
		for i := range dst {
			acc := 0.0

			for k, kv := range kc.kernel {
				j := i + k - kc.radius
				if j < 0 || j >= len(src) {
					continue
				}

				acc += kv * src[j]
			}

			dst[i] = acc
		}

		return nil
	}

	for i := range kc.scratchIn {
		kc.scratchIn[i] = 0
	}

	for i, v := range src {
		kc.scratchIn[i] = complex(v, 0)
	}

	if err := kc.plan.Forward(kc.scratchTm, kc.scratchIn); err != nil {
		return fmt.Errorf("extract: forward FFT failed: %w", err)
	}

	for i := range kc.scratchTm {
		kc.scratchTm[i] *= kc.kernelFFT[i]
	}

	if err := kc.plan.Inverse(kc.scratchIn, kc.scratchTm); err != nil {
		return fmt.Errorf("extract: inverse FFT failed: %w", err)
	}

	for i := range dst {
		dst[i] = real(kc.scratchIn[i+kc.radius])
	}

	return nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
