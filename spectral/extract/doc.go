// Package extract reduces a 2D spectral frame to a 1D flux spectrum with
// propagated uncertainty.
//
// Two strategies are provided:
//
//   - [Boxcar]: uniform-aperture summation with fractional-pixel edge
//     weights. Deterministic single pass; columns are independent.
//   - [Horne]: variance-weighted optimal extraction after Horne (1986,
//     PASP 98, 609). A slowly-varying spatial profile is estimated from the
//     data, smoothed along dispersion, and used as inverse-variance weights;
//     outliers (cosmic rays, hot pixels) are rejected iteratively.
//
// Both extractors treat the caller's frame as read-only. The Horne iteration
// masks pixels on an internal working copy only; the final working mask is
// exposed on the result for inspection.
//
// # Usage
//
// One-shot extraction:
//
//	spec, err := extract.BoxcarExtract(frame, tr, 5)
//	spec, err := extract.HorneExtract(frame, tr)
//
// Repeated extraction with shared setup and explicit configuration:
//
//	b, _ := extract.NewBoxcar(frame, tr)
//	wide, _ := b.Extract(8)
//	narrow, _ := b.Extract(3)
//
//	h, _ := extract.NewHorne(frame, tr, extract.Config{RejectionSigma: 4})
//	spec, err := h.Extract()
package extract
