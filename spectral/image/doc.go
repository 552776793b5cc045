// Package image provides the 2D spectral frame model consumed by the
// extraction algorithms.
//
// A [Frame] bundles flux data with optional per-pixel variance, a bad-pixel
// mask, and a physical unit tag. Data is stored row-major with the spatial
// axis along rows and the dispersion axis along columns, matching the
// (n_spatial, n_dispersion) convention of reduced spectral images.
//
// Frames are read-only after construction: New and FromSource copy their
// inputs, and the extractors never write back into a frame. Inputs arriving
// as a bundled image-like object (anything satisfying [Source]) and inputs
// arriving as separate arrays produce bit-identical frames.
package image
