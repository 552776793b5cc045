// Package polyfit provides least-squares polynomial fitting shared by the
// trace-fitting and profile-smoothing code.
package polyfit

import (
	"errors"
	"math"
)

var (
	// ErrInsufficientPoints is returned when fewer usable points than
	// coefficients are supplied.
	ErrInsufficientPoints = errors.New("polyfit: insufficient points for degree")

	// ErrIllConditioned is returned when the normal equations cannot be
	// solved reliably.
	ErrIllConditioned = errors.New("polyfit: ill-conditioned system")

	// ErrLengthMismatch is returned when input slices differ in length.
	ErrLengthMismatch = errors.New("polyfit: length mismatch")
)

const pivotTolerance = 1e-12

// Fit computes the least-squares polynomial of the given degree through the
// points (x[i], y[i]). Coefficients are returned in ascending power order.
func Fit(x, y []float64, degree int) ([]float64, error) {
	return FitWeighted(x, y, nil, degree)
}

// FitWeighted computes a weighted least-squares polynomial fit. Weights must
// be non-negative; points with zero weight are ignored. A nil weight slice
// means uniform weighting.
//
// The abscissa is centered and scaled internally before solving the normal
// equations, which keeps the system well conditioned even for column indices
// in the thousands. The returned coefficients are expressed in the original
// abscissa, ascending power order.
func FitWeighted(x, y, w []float64, degree int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, ErrLengthMismatch
	}

	if w != nil && len(w) != len(x) {
		return nil, ErrLengthMismatch
	}

	if degree < 0 {
		return nil, ErrInsufficientPoints
	}

	n := degree + 1

	usable := 0

	for i := range x {
		if w != nil && w[i] <= 0 {
			continue
		}

		usable++
	}

	if usable < n {
		return nil, ErrInsufficientPoints
	}

	center, scale := normalization(x, w)

	// Moment sums of the scaled abscissa up to x^(2*degree).
	moments := make([]float64, 2*n-1)
	rhs := make([]float64, n)

	for i := range x {
		wi := 1.0
		if w != nil {
			wi = w[i]
			if wi <= 0 {
				continue
			}
		}

		u := (x[i] - center) / scale

		p := wi
		for k := 0; k < len(moments); k++ {
			moments[k] += p
			if k < n {
				rhs[k] += p * y[i]
			}

			p *= u
		}
	}

	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		for j := range mat[i] {
			mat[i][j] = moments[i+j]
		}
	}

	scaled, err := solve(mat, rhs)
	if err != nil {
		return nil, err
	}

	return expand(scaled, center, scale), nil
}

// Eval evaluates a polynomial with ascending-power coefficients at x using
// Horner's rule.
func Eval(coeffs []float64, x float64) float64 {
	v := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		v = v*x + coeffs[i]
	}

	return v
}

// normalization picks a center and scale so the working abscissa spans
// roughly [-1, 1].
func normalization(x, w []float64) (center, scale float64) {
	minX := math.Inf(1)
	maxX := math.Inf(-1)

	for i, v := range x {
		if w != nil && w[i] <= 0 {
			continue
		}

		if v < minX {
			minX = v
		}

		if v > maxX {
			maxX = v
		}
	}

	center = 0.5 * (minX + maxX)

	scale = 0.5 * (maxX - minX)
	if scale == 0 {
		scale = 1
	}

	return center, scale
}

// solve performs Gaussian elimination with partial pivoting on a small dense
// system. mat and rhs are clobbered.
func solve(mat [][]float64, rhs []float64) ([]float64, error) {
	n := len(rhs)

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(mat[r][col]) > math.Abs(mat[pivot][col]) {
				pivot = r
			}
		}

		if math.Abs(mat[pivot][col]) < pivotTolerance {
			return nil, ErrIllConditioned
		}

		mat[col], mat[pivot] = mat[pivot], mat[col]
		rhs[col], rhs[pivot] = rhs[pivot], rhs[col]

		for r := col + 1; r < n; r++ {
			f := mat[r][col] / mat[col][col]
			for c := col; c < n; c++ {
				mat[r][c] -= f * mat[col][c]
			}

			rhs[r] -= f * rhs[col]
		}
	}

	out := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		s := rhs[i]
		for j := i + 1; j < n; j++ {
			s -= mat[i][j] * out[j]
		}

		out[i] = s / mat[i][i]
	}

	return out, nil
}

// expand rewrites p(u) with u = (x-center)/scale as a polynomial in x.
// The composition is accumulated by Horner's rule in coefficient space.
func expand(scaled []float64, center, scale float64) []float64 {
	// u as a degree-1 polynomial in x.
	u0 := -center / scale
	u1 := 1 / scale

	out := make([]float64, 1, len(scaled))

	for i := len(scaled) - 1; i >= 0; i-- {
		// out = out*u + scaled[i]
		next := make([]float64, len(out)+1)
		for j, c := range out {
			next[j] += c * u0
			next[j+1] += c * u1
		}

		next[0] += scaled[i]
		out = next
	}

	// Trim the trailing zero introduced on the final multiply step, keeping
	// exactly degree+1 coefficients.
	if len(out) > len(scaled) {
		out = out[:len(scaled)]
	}

	return out
}
