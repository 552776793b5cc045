package aperture

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-spectral/internal/testutil"
	"github.com/cwbudde/algo-spectral/spectral/trace"
)

func flatTrace(t *testing.T, position float64, cols int) trace.Trace {
	t.Helper()

	tr, err := trace.NewFlat(position, cols)
	if err != nil {
		t.Fatalf("NewFlat: %v", err)
	}

	return tr
}

func TestWeightsFullPixels(t *testing.T) {
	w, err := New(flatTrace(t, 2, 10), 1.5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dst := make([]float64, 5)
	if err := w.Weights(dst, 0, 5); err != nil {
		t.Fatalf("Weights: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, dst, []float64{0, 1, 1, 1, 0}, 1e-12)
}

func TestWeightsFractionalEdges(t *testing.T) {
	w, err := New(flatTrace(t, 2, 10), 1.25)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dst := make([]float64, 5)
	if err := w.Weights(dst, 3, 5); err != nil {
		t.Fatalf("Weights: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, dst, []float64{0, 0.75, 1, 0.75, 0}, 1e-12)
}

func TestWeightsOffCenterTrace(t *testing.T) {
	w, err := New(flatTrace(t, 2.3, 10), 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dst := make([]float64, 6)
	if err := w.Weights(dst, 0, 6); err != nil {
		t.Fatalf("Weights: %v", err)
	}

	// Window [1.3, 3.3]: row 1 covers [1.3,1.5], row 2 full, row 3 [2.5,3.3].
	testutil.RequireSliceNearlyEqual(t, dst, []float64{0, 0.2, 1, 0.8, 0, 0}, 1e-12)
}

func TestWeightsSumMatchesWidth(t *testing.T) {
	for _, hw := range []float64{0.5, 1, 2.25, 3.7} {
		w, err := New(flatTrace(t, 10, 4), hw)
		if err != nil {
			t.Fatalf("New(%v): %v", hw, err)
		}

		dst := make([]float64, 21)
		if err := w.Weights(dst, 1, 21); err != nil {
			t.Fatalf("Weights: %v", err)
		}

		if got := vecmath.Sum(dst); math.Abs(got-2*hw) > 1e-12 {
			t.Fatalf("hw=%v: weight sum = %v, want %v", hw, got, 2*hw)
		}
	}
}

func TestWeightsClippedAtEdge(t *testing.T) {
	// Trace near row 0: the lower half of the window falls off the frame and
	// the weight sum drops below 2*halfWidth.
	w, err := New(flatTrace(t, 0.5, 4), 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dst := make([]float64, 8)
	if err := w.Weights(dst, 0, 8); err != nil {
		t.Fatalf("Weights: %v", err)
	}

	// Window [-1.5, 2.5]: rows 0..1 full, row 2 full, rows below 0 absent.
	testutil.RequireSliceNearlyEqual(t, dst, []float64{1, 1, 1, 0, 0, 0, 0, 0}, 1e-12)

	if got := vecmath.Sum(dst); got >= 4 {
		t.Fatalf("clipped weight sum = %v, want < 4", got)
	}
}

func TestInvalidWidth(t *testing.T) {
	tr := flatTrace(t, 2, 10)

	for _, hw := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := New(tr, hw); !errors.Is(err, ErrInvalidWidth) {
			t.Fatalf("hw=%v: err = %v, want ErrInvalidWidth", hw, err)
		}
	}
}

func TestNilTrace(t *testing.T) {
	if _, err := New(nil, 1); !errors.Is(err, ErrNilTrace) {
		t.Fatalf("err = %v, want ErrNilTrace", err)
	}
}

func TestWeightsErrors(t *testing.T) {
	w, err := New(flatTrace(t, 2, 4), 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := w.Weights(make([]float64, 3), 0, 5); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}

	if err := w.Weights(make([]float64, 5), 7, 5); !errors.Is(err, trace.ErrOutOfBounds) {
		t.Fatalf("err = %v, want trace.ErrOutOfBounds", err)
	}
}
