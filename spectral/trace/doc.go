// Package trace models the spatial center of a spectral source as a
// function of dispersion column.
//
// Available trace types:
//
//   - [Flat]:       constant spatial position for all columns
//   - [Polynomial]: position evaluated from fit coefficients
//   - [Sampled]:    per-column sampled positions with fractional lookup
//
// A trace can also be estimated from the image itself with [Fit], which
// locates the source peak in binned column sums and fits a low-order
// polynomial through the bin centers.
//
// All traces are stateless after construction and safe to share across
// repeated extraction calls on frames of matching geometry.
package trace
