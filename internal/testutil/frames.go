package testutil

import (
	"math"
	"math/rand"
)

// GaussianFrame synthesizes a noiseless 2D spectral frame in row-major order
// (rows = spatial, cols = dispersion). Each column holds a Gaussian spatial
// profile of the given sigma centered on center(col), scaled so the analytic
// integral over the spatial axis equals flux. Pixel values are sampled at the
// row centers, so column sums approach flux only while the profile is well
// inside the frame.
func GaussianFrame(rows, cols int, center func(col int) float64, sigma, flux float64) []float64 {
	data := make([]float64, rows*cols)
	norm := flux / (sigma * math.Sqrt(2*math.Pi))

	for c := 0; c < cols; c++ {
		mu := center(c)
		for r := 0; r < rows; r++ {
			d := (float64(r) - mu) / sigma
			data[r*cols+c] = norm * math.Exp(-0.5*d*d)
		}
	}

	return data
}

// ProfileFrame synthesizes a frame where every column holds flux times the
// given spatial profile. The profile is used as-is; pass one that sums to 1
// when exact column totals matter.
func ProfileFrame(cols int, profile []float64, flux float64) []float64 {
	rows := len(profile)

	data := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data[r*cols+c] = flux * profile[r]
		}
	}

	return data
}

// AddNoise adds deterministic Gaussian noise with the given standard
// deviation, using a fixed seed for reproducibility.
func AddNoise(data []float64, seed int64, stddev float64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range data {
		data[i] += rng.NormFloat64() * stddev
	}
}

// Constant returns a slice of length n filled with v.
func Constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}

	return out
}

// FlatCenter returns a trace function holding position constant.
func FlatCenter(position float64) func(int) float64 {
	return func(int) float64 { return position }
}

// TiltedCenter returns a trace function with a linear tilt across dispersion.
func TiltedCenter(position, slope float64) func(int) float64 {
	return func(col int) float64 { return position + slope*float64(col) }
}
