package extract_test

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-spectral/internal/testutil"
	"github.com/cwbudde/algo-spectral/spectral/extract"
	"github.com/cwbudde/algo-spectral/spectral/image"
	"github.com/cwbudde/algo-spectral/spectral/trace"
)

func mustFlat(t *testing.T, position float64, cols int) trace.Trace {
	t.Helper()

	tr, err := trace.NewFlat(position, cols)
	if err != nil {
		t.Fatalf("NewFlat: %v", err)
	}

	return tr
}

func mustFrame(t *testing.T, data []float64, rows, cols int, opts ...image.Option) *image.Frame {
	t.Helper()

	f, err := image.New(data, rows, cols, opts...)
	if err != nil {
		t.Fatalf("image.New: %v", err)
	}

	return f
}

func TestBoxcarKnownValues(t *testing.T) {
	// 5 rows x 3 cols, column values 1..5 down the slit.
	data := []float64{
		1, 1, 1,
		2, 2, 2,
		3, 3, 3,
		4, 4, 4,
		5, 5, 5,
	}

	f := mustFrame(t, data, 5, 3, image.WithUnit("adu"))

	spec, err := extract.BoxcarExtract(f, mustFlat(t, 2, 3), 1.5)
	if err != nil {
		t.Fatalf("BoxcarExtract: %v", err)
	}

	// Full rows 1..3: 2+3+4 = 9.
	testutil.RequireSliceNearlyEqual(t, spec.Flux(), []float64{9, 9, 9}, 1e-12)

	if spec.Unit() != "adu" {
		t.Fatalf("unit = %q, want adu", spec.Unit())
	}

	if !spec.Converged() {
		t.Fatal("boxcar must always report convergence")
	}
}

func TestBoxcarFractionalAperture(t *testing.T) {
	data := []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
		5, 5,
	}

	f := mustFrame(t, data, 5, 2)

	spec, err := extract.BoxcarExtract(f, mustFlat(t, 2, 2), 1.25)
	if err != nil {
		t.Fatalf("BoxcarExtract: %v", err)
	}

	// Weights {0, 0.75, 1, 0.75, 0}: 0.75*2 + 3 + 0.75*4 = 7.5.
	testutil.RequireSliceNearlyEqual(t, spec.Flux(), []float64{7.5, 7.5}, 1e-12)
}

func TestBoxcarVariancePropagation(t *testing.T) {
	data := []float64{
		1, 1,
		2, 2,
		3, 3,
	}
	variance := []float64{
		4, 4,
		9, 9,
		16, 16,
	}

	f := mustFrame(t, data, 3, 2, image.WithVariance(variance))

	spec, err := extract.BoxcarExtract(f, mustFlat(t, 1, 2), 1.25)
	if err != nil {
		t.Fatalf("BoxcarExtract: %v", err)
	}

	// Weights {0.75, 1, 0.75}: variance sum = 4*0.5625 + 9 + 16*0.5625 = 20.25.
	want := math.Sqrt(20.25)

	for i := 0; i < spec.Len(); i++ {
		if math.Abs(spec.UncertaintyAt(i)-want) > 1e-12 {
			t.Fatalf("col %d: uncertainty = %v, want %v", i, spec.UncertaintyAt(i), want)
		}
	}
}

func TestBoxcarMaskExcludesPixels(t *testing.T) {
	data := []float64{
		1, 1,
		2, 2,
		3, 3,
	}
	mask := []bool{
		false, false,
		true, false,
		false, false,
	}

	f := mustFrame(t, data, 3, 2, image.WithMask(mask))

	spec, err := extract.BoxcarExtract(f, mustFlat(t, 1, 2), 1.25)
	if err != nil {
		t.Fatalf("BoxcarExtract: %v", err)
	}

	// Col 0 loses the center row: 0.75*1 + 0.75*3 = 3; col 1 keeps all: 5.
	testutil.RequireSliceNearlyEqual(t, spec.Flux(), []float64{3, 5}, 1e-12)
}

func TestBoxcarMaskedNaNPixel(t *testing.T) {
	// Masked pixels commonly hold NaN. One sits outside the aperture
	// (row 0) and one inside it (row 2); neither may poison its column.
	nan := math.NaN()
	data := []float64{
		1, nan, 1,
		2, 2, 2,
		3, 3, nan,
		4, 4, 4,
		5, 5, 5,
	}
	mask := []bool{
		false, true, false,
		false, false, false,
		false, false, true,
		false, false, false,
		false, false, false,
	}

	f := mustFrame(t, data, 5, 3,
		image.WithVariance(testutil.Constant(15, 1)),
		image.WithMask(mask))

	spec, err := extract.BoxcarExtract(f, mustFlat(t, 2, 3), 1.5)
	if err != nil {
		t.Fatalf("BoxcarExtract: %v", err)
	}

	// Full columns sum rows 1..3 to 9; column 2 loses its center row.
	testutil.RequireSliceNearlyEqual(t, spec.Flux(), []float64{9, 9, 6}, 1e-12)
	testutil.RequireFinite(t, spec.Uncertainty())

	if want := math.Sqrt(2); math.Abs(spec.UncertaintyAt(2)-want) > 1e-12 {
		t.Fatalf("uncertainty[2] = %v, want %v", spec.UncertaintyAt(2), want)
	}
}

func TestBoxcarShrinkingApertureNeverGainsFlux(t *testing.T) {
	rows, cols := 21, 40

	data := testutil.GaussianFrame(rows, cols, testutil.FlatCenter(10), 2, 100)
	f := mustFrame(t, data, rows, cols)

	tr := mustFlat(t, 10, cols)

	prev := math.Inf(1)

	for _, hw := range []float64{9, 6, 4, 2.5, 1, 0.5} {
		spec, err := extract.BoxcarExtract(f, tr, hw)
		if err != nil {
			t.Fatalf("hw=%v: %v", hw, err)
		}

		for i := 0; i < spec.Len(); i++ {
			if spec.FluxAt(i) > prev+1e-9 {
				t.Fatalf("hw=%v col=%d: flux %v exceeds wider aperture %v", hw, i, spec.FluxAt(i), prev)
			}
		}

		prev = spec.FluxAt(0)
	}
}

func TestBoxcarFullyMaskedColumn(t *testing.T) {
	data := []float64{
		1, 1, 1,
		2, 2, 2,
		3, 3, 3,
	}
	mask := []bool{
		false, true, false,
		false, true, false,
		false, true, false,
	}

	f := mustFrame(t, data, 3, 3, image.WithMask(mask))

	spec, err := extract.BoxcarExtract(f, mustFlat(t, 1, 3), 1.25)
	if err != nil {
		t.Fatalf("BoxcarExtract: %v", err)
	}

	testutil.RequireFiniteExcept(t, spec.Flux(), 1)

	bad := spec.BadColumns()
	if len(bad) != 1 || bad[0] != 1 {
		t.Fatalf("BadColumns = %v, want [1]", bad)
	}
}

func TestBoxcarInvalidWidth(t *testing.T) {
	f := mustFrame(t, make([]float64, 12), 4, 3)
	tr := mustFlat(t, 1.5, 3)

	for _, hw := range []float64{0, -2, 2, 5, math.NaN()} {
		_, err := extract.BoxcarExtract(f, tr, hw)
		if !errors.Is(err, extract.ErrInvalidParameter) {
			t.Fatalf("hw=%v: err = %v, want ErrInvalidParameter", hw, err)
		}
	}
}

func TestBoxcarShapeMismatch(t *testing.T) {
	f := mustFrame(t, make([]float64, 12), 4, 3)
	tr := mustFlat(t, 1.5, 5)

	_, err := extract.NewBoxcar(f, tr)
	if !errors.Is(err, extract.ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}

type bundledFrame struct {
	data, variance []float64
	mask           []bool
	rows, cols     int
	unit           string
}

func (b bundledFrame) Data() []float64     { return b.data }
func (b bundledFrame) Shape() (int, int)   { return b.rows, b.cols }
func (b bundledFrame) Variance() []float64 { return b.variance }
func (b bundledFrame) Mask() []bool        { return b.mask }
func (b bundledFrame) Unit() string        { return b.unit }

func TestBoxcarEquivalentInputForms(t *testing.T) {
	rows, cols := 15, 30

	data := testutil.GaussianFrame(rows, cols, testutil.FlatCenter(7), 1.8, 250)
	testutil.AddNoise(data, 42, 2)

	variance := testutil.Constant(rows*cols, 4)

	mask := make([]bool, rows*cols)
	mask[5*cols+12] = true

	direct := mustFrame(t, data, rows, cols,
		image.WithVariance(variance),
		image.WithMask(mask),
		image.WithUnit("electron"))

	viaSource, err := image.FromSource(bundledFrame{
		data: data, variance: variance, mask: mask,
		rows: rows, cols: cols, unit: "electron",
	})
	if err != nil {
		t.Fatalf("FromSource: %v", err)
	}

	tr := mustFlat(t, 7, cols)

	a, err := extract.BoxcarExtract(direct, tr, 4)
	if err != nil {
		t.Fatalf("direct: %v", err)
	}

	b, err := extract.BoxcarExtract(viaSource, tr, 4)
	if err != nil {
		t.Fatalf("via source: %v", err)
	}

	if !a.Equal(b) {
		t.Fatal("separate-array and bundled inputs must produce bit-identical flux")
	}

	for i := 0; i < a.Len(); i++ {
		if a.UncertaintyAt(i) != b.UncertaintyAt(i) {
			t.Fatalf("col %d: uncertainty differs between input forms", i)
		}
	}
}
