package image

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyFrame is returned when a frame has no rows or no columns.
	ErrEmptyFrame = errors.New("image: frame must have at least one row and column")

	// ErrShapeMismatch is returned when data, variance, or mask lengths
	// disagree with the declared shape.
	ErrShapeMismatch = errors.New("image: shape mismatch")

	// ErrNegativeVariance is returned when a variance array contains
	// negative values.
	ErrNegativeVariance = errors.New("image: variance must be non-negative")

	// ErrColumnRange is returned when a column index lies outside the frame.
	ErrColumnRange = errors.New("image: column out of range")
)

// Frame is an immutable 2D spectral image with optional variance, mask, and
// unit. Data layout is row-major: element (r, c) lives at index r*cols+c.
type Frame struct {
	data     []float64
	variance []float64
	mask     []bool
	rows     int
	cols     int
	unit     string
}

// Option configures optional Frame attributes at construction time.
type Option func(*frameConfig)

type frameConfig struct {
	variance []float64
	mask     []bool
	unit     string
}

// WithVariance attaches a per-pixel variance array (same shape as the data).
func WithVariance(variance []float64) Option {
	return func(cfg *frameConfig) {
		cfg.variance = variance
	}
}

// WithMask attaches a bad-pixel mask (same shape as the data, true = exclude).
func WithMask(mask []bool) Option {
	return func(cfg *frameConfig) {
		cfg.mask = mask
	}
}

// WithUnit tags the frame with a physical flux unit (e.g. "adu", "electron").
func WithUnit(unit string) Option {
	return func(cfg *frameConfig) {
		cfg.unit = unit
	}
}

// New constructs a Frame from row-major data with the given shape. All
// inputs are copied; the caller keeps ownership of its slices. Shape and
// variance validation is eager, so extraction never starts on malformed
// input.
func New(data []float64, rows, cols int, opts ...Option) (*Frame, error) {
	var cfg frameConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return build(data, cfg.variance, cfg.mask, cfg.unit, rows, cols)
}

func build(data, variance []float64, mask []bool, unit string, rows, cols int) (*Frame, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrEmptyFrame, rows, cols)
	}

	n := rows * cols
	if len(data) != n {
		return nil, fmt.Errorf("%w: data length %d, want %d (%dx%d)", ErrShapeMismatch, len(data), n, rows, cols)
	}

	f := &Frame{
		data: append([]float64(nil), data...),
		rows: rows,
		cols: cols,
		unit: unit,
	}

	if variance != nil {
		if len(variance) != n {
			return nil, fmt.Errorf("%w: variance length %d, want %d", ErrShapeMismatch, len(variance), n)
		}

		for i, v := range variance {
			if v < 0 || math.IsNaN(v) {
				return nil, fmt.Errorf("%w: element %d is %v", ErrNegativeVariance, i, v)
			}
		}

		f.variance = append([]float64(nil), variance...)
	}

	if mask != nil {
		if len(mask) != n {
			return nil, fmt.Errorf("%w: mask length %d, want %d", ErrShapeMismatch, len(mask), n)
		}

		f.mask = append([]bool(nil), mask...)
	}

	return f, nil
}

// Rows returns the spatial extent.
func (f *Frame) Rows() int { return f.rows }

// Cols returns the dispersion extent.
func (f *Frame) Cols() int { return f.cols }

// Unit returns the flux unit tag, which may be empty.
func (f *Frame) Unit() string { return f.unit }

// HasVariance reports whether a variance array is attached.
func (f *Frame) HasVariance() bool { return f.variance != nil }

// HasMask reports whether a bad-pixel mask is attached.
func (f *Frame) HasMask() bool { return f.mask != nil }

// At returns the flux value at spatial row r, dispersion column c.
func (f *Frame) At(r, c int) float64 { return f.data[r*f.cols+c] }

// VarAt returns the variance at (r, c). It panics when no variance is
// attached; guard with HasVariance.
func (f *Frame) VarAt(r, c int) float64 { return f.variance[r*f.cols+c] }

// MaskedAt reports whether the pixel at (r, c) is excluded. Frames without a
// mask have no excluded pixels.
func (f *Frame) MaskedAt(r, c int) bool {
	return f.mask != nil && f.mask[r*f.cols+c]
}

// Col gathers dispersion column c into dst, which must have length Rows.
func (f *Frame) Col(dst []float64, c int) error {
	if c < 0 || c >= f.cols {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrColumnRange, c, f.cols)
	}

	if len(dst) != f.rows {
		return fmt.Errorf("%w: dst length %d, want %d", ErrShapeMismatch, len(dst), f.rows)
	}

	for r := 0; r < f.rows; r++ {
		dst[r] = f.data[r*f.cols+c]
	}

	return nil
}

// VarCol gathers the variance of column c into dst. The frame must carry
// variance.
func (f *Frame) VarCol(dst []float64, c int) error {
	if f.variance == nil {
		return fmt.Errorf("%w: no variance attached", ErrShapeMismatch)
	}

	if c < 0 || c >= f.cols {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrColumnRange, c, f.cols)
	}

	if len(dst) != f.rows {
		return fmt.Errorf("%w: dst length %d, want %d", ErrShapeMismatch, len(dst), f.rows)
	}

	for r := 0; r < f.rows; r++ {
		dst[r] = f.variance[r*f.cols+c]
	}

	return nil
}

// MaskCol gathers the mask of column c into dst. Frames without a mask fill
// dst with false.
func (f *Frame) MaskCol(dst []bool, c int) error {
	if c < 0 || c >= f.cols {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrColumnRange, c, f.cols)
	}

	if len(dst) != f.rows {
		return fmt.Errorf("%w: dst length %d, want %d", ErrShapeMismatch, len(dst), f.rows)
	}

	for r := 0; r < f.rows; r++ {
		dst[r] = f.mask != nil && f.mask[r*f.cols+c]
	}

	return nil
}
