package extract_test

import (
	"testing"

	"github.com/cwbudde/algo-spectral/internal/testutil"
	"github.com/cwbudde/algo-spectral/spectral/extract"
	"github.com/cwbudde/algo-spectral/spectral/image"
	"github.com/cwbudde/algo-spectral/spectral/trace"
)

func benchFrame(b *testing.B, rows, cols int) (*image.Frame, trace.Trace) {
	b.Helper()

	data := testutil.GaussianFrame(rows, cols, testutil.FlatCenter(float64(rows/2)), 2.5, 500)
	testutil.AddNoise(data, 1, 3)

	variance := testutil.Constant(rows*cols, 9)

	frame, err := image.New(data, rows, cols, image.WithVariance(variance))
	if err != nil {
		b.Fatal(err)
	}

	tr, err := trace.NewFlat(float64(rows/2), cols)
	if err != nil {
		b.Fatal(err)
	}

	return frame, tr
}

func BenchmarkBoxcarExtract(b *testing.B) {
	frame, tr := benchFrame(b, 64, 256)

	bx, err := extract.NewBoxcar(frame, tr)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := bx.Extract(8); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHorneExtractPoly(b *testing.B) {
	frame, tr := benchFrame(b, 64, 256)

	h, err := extract.NewHorne(frame, tr, extract.Config{HalfWidth: 10})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := h.Extract(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHorneExtractKernel(b *testing.B) {
	frame, tr := benchFrame(b, 64, 256)

	h, err := extract.NewHorne(frame, tr, extract.Config{
		HalfWidth: 10,
		Smoother:  extract.KernelSmoother{FWHM: 20},
	})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := h.Extract(); err != nil {
			b.Fatal(err)
		}
	}
}
