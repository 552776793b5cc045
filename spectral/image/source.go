package image

// Source is the bundled image-like input form: any object exposing data,
// shape, and the optional variance/mask/unit attributes. Variance and Mask
// may return nil when the attribute is absent.
//
// FromSource normalizes a Source into a Frame once at the extractor
// boundary; both algorithms then operate on the internal representation
// only, so bundled and separate-array inputs yield bit-identical spectra.
type Source interface {
	Data() []float64
	Shape() (rows, cols int)
	Variance() []float64
	Mask() []bool
	Unit() string
}

// FromSource builds a Frame from a bundled image-like object, applying the
// same validation and copying as New.
func FromSource(src Source) (*Frame, error) {
	rows, cols := src.Shape()

	return build(src.Data(), src.Variance(), src.Mask(), src.Unit(), rows, cols)
}
