package extract

import "errors"

var (
	// ErrInvalidParameter is returned for caller-fixable problems detected
	// before any computation starts: bad widths, bad configuration, shape
	// mismatches between frame and trace, or non-positive variance on a
	// usable pixel.
	ErrInvalidParameter = errors.New("extract: invalid parameter")

	// ErrVarianceRequired is returned when optimal extraction is requested
	// on a frame without a variance array.
	ErrVarianceRequired = errors.New("extract: variance required for optimal extraction")

	// ErrInsufficientData is returned when no column in the frame has any
	// usable pixel. A column-local lack of data degrades that column to NaN
	// instead (see Spectrum.BadColumns).
	ErrInsufficientData = errors.New("extract: no usable pixels in any column")
)
