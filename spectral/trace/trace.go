package trace

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOutOfBounds is returned when a trace is queried outside its valid
	// column range.
	ErrOutOfBounds = errors.New("trace: column out of bounds")

	// ErrInvalidPosition is returned when a trace would yield a non-finite
	// spatial position.
	ErrInvalidPosition = errors.New("trace: position must be finite")

	// ErrInvalidColumns is returned when a trace is constructed with a
	// non-positive column count.
	ErrInvalidColumns = errors.New("trace: column count must be > 0")
)

// Trace maps a dispersion column index to the spatial center of the source.
// Implementations are pure: no side effects, no state beyond construction.
type Trace interface {
	// At returns the spatial position at the given column. It fails with
	// ErrOutOfBounds when col is outside [0, Columns()).
	At(col int) (float64, error)

	// Columns returns the number of dispersion columns the trace covers.
	Columns() int
}

func checkColumn(col, columns int) error {
	if col < 0 || col >= columns {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfBounds, col, columns)
	}

	return nil
}

// Flat is a trace holding one constant spatial position.
type Flat struct {
	position float64
	columns  int
}

// NewFlat creates a constant trace at the given spatial position.
func NewFlat(position float64, columns int) (*Flat, error) {
	if columns <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColumns, columns)
	}

	if math.IsNaN(position) || math.IsInf(position, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, position)
	}

	return &Flat{position: position, columns: columns}, nil
}

// At returns the constant position for any in-range column.
func (f *Flat) At(col int) (float64, error) {
	if err := checkColumn(col, f.columns); err != nil {
		return 0, err
	}

	return f.position, nil
}

// Columns returns the covered dispersion extent.
func (f *Flat) Columns() int { return f.columns }

// Position returns the constant spatial position.
func (f *Flat) Position() float64 { return f.position }

// Polynomial is a trace evaluated from polynomial coefficients in ascending
// power order: position(c) = coeffs[0] + coeffs[1]*c + ...
type Polynomial struct {
	coeffs  []float64
	columns int
}

// NewPolynomial creates a polynomial trace. Coefficients are copied.
func NewPolynomial(coeffs []float64, columns int) (*Polynomial, error) {
	if columns <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColumns, columns)
	}

	if len(coeffs) == 0 {
		return nil, fmt.Errorf("%w: no coefficients", ErrInvalidPosition)
	}

	for _, c := range coeffs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: coefficient %v", ErrInvalidPosition, c)
		}
	}

	return &Polynomial{
		coeffs:  append([]float64(nil), coeffs...),
		columns: columns,
	}, nil
}

// At evaluates the polynomial at the column index using Horner's rule.
func (p *Polynomial) At(col int) (float64, error) {
	if err := checkColumn(col, p.columns); err != nil {
		return 0, err
	}

	x := float64(col)

	v := 0.0
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		v = v*x + p.coeffs[i]
	}

	return v, nil
}

// Columns returns the covered dispersion extent.
func (p *Polynomial) Columns() int { return p.columns }

// Coefficients returns a copy of the ascending-power coefficients.
func (p *Polynomial) Coefficients() []float64 {
	return append([]float64(nil), p.coeffs...)
}

// Shifted returns t translated by delta along the spatial axis. The
// underlying trace is shared, not copied.
func Shifted(t Trace, delta float64) Trace {
	return &shifted{inner: t, delta: delta}
}

type shifted struct {
	inner Trace
	delta float64
}

func (s *shifted) At(col int) (float64, error) {
	v, err := s.inner.At(col)
	if err != nil {
		return 0, err
	}

	return v + s.delta, nil
}

func (s *shifted) Columns() int { return s.inner.Columns() }
