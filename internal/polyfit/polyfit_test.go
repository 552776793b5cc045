package polyfit

import (
	"errors"
	"math"
	"testing"
)

func TestFitRecoversExactPolynomial(t *testing.T) {
	// y = 2 - 0.5x + 0.25x^2
	want := []float64{2, -0.5, 0.25}

	x := make([]float64, 12)
	y := make([]float64, 12)

	for i := range x {
		x[i] = float64(i)
		y[i] = Eval(want, x[i])
	}

	got, err := Fit(x, y, 2)
	if err != nil {
		t.Fatalf("Fit error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("coefficient count = %d, want 3", len(got))
	}

	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("coeff[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFitConstant(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{7, 7, 7, 7, 7}

	coeffs, err := Fit(x, y, 2)
	if err != nil {
		t.Fatalf("Fit error: %v", err)
	}

	for _, xi := range x {
		if math.Abs(Eval(coeffs, xi)-7) > 1e-10 {
			t.Fatalf("Eval(%v) = %v, want 7", xi, Eval(coeffs, xi))
		}
	}
}

func TestFitLargeAbscissa(t *testing.T) {
	// Column indices in the thousands; internal normalization must keep the
	// system solvable.
	want := []float64{100, 0.01, -1e-6}

	x := make([]float64, 50)
	y := make([]float64, 50)

	for i := range x {
		x[i] = 4000 + float64(i)*20
		y[i] = Eval(want, x[i])
	}

	coeffs, err := Fit(x, y, 2)
	if err != nil {
		t.Fatalf("Fit error: %v", err)
	}

	for _, xi := range x {
		if math.Abs(Eval(coeffs, xi)-Eval(want, xi)) > 1e-6 {
			t.Fatalf("Eval(%v) = %v, want %v", xi, Eval(coeffs, xi), Eval(want, xi))
		}
	}
}

func TestFitWeightedIgnoresZeroWeight(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}
	y := []float64{1, 1, 1, 1, 1, 1000} // outlier at the end
	w := []float64{1, 1, 1, 1, 1, 0}

	coeffs, err := FitWeighted(x, y, w, 1)
	if err != nil {
		t.Fatalf("FitWeighted error: %v", err)
	}

	if math.Abs(Eval(coeffs, 5)-1) > 1e-9 {
		t.Fatalf("outlier leaked into fit: Eval(5) = %v", Eval(coeffs, 5))
	}
}

func TestFitInsufficientPoints(t *testing.T) {
	_, err := Fit([]float64{1, 2}, []float64{1, 2}, 2)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("err = %v, want ErrInsufficientPoints", err)
	}

	w := []float64{1, 0, 0, 0}
	_, err = FitWeighted([]float64{0, 1, 2, 3}, []float64{0, 1, 2, 3}, w, 1)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("err = %v, want ErrInsufficientPoints", err)
	}
}

func TestFitLengthMismatch(t *testing.T) {
	_, err := Fit([]float64{1, 2, 3}, []float64{1, 2}, 1)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}
}

func TestFitDuplicateAbscissa(t *testing.T) {
	// All points at the same x cannot constrain a line.
	x := []float64{3, 3, 3}
	y := []float64{1, 2, 3}

	_, err := Fit(x, y, 1)
	if !errors.Is(err, ErrIllConditioned) {
		t.Fatalf("err = %v, want ErrIllConditioned", err)
	}
}

func TestEvalEmpty(t *testing.T) {
	if v := Eval(nil, 10); v != 0 {
		t.Fatalf("Eval(nil) = %v, want 0", v)
	}
}
