// Package stats computes summary statistics over an extracted spectrum in a
// single pass. NaN columns (per-column extraction failures) are skipped and
// counted separately.
package stats

import (
	"math"

	"github.com/cwbudde/algo-spectral/spectral/extract"
)

// Stats holds per-spectrum summary statistics.
type Stats struct {
	Length int // total columns
	Valid  int // columns with finite flux
	Bad    int // columns skipped as NaN

	TotalFlux  float64
	MeanFlux   float64
	MinFlux    float64
	MinPos     int
	MaxFlux    float64
	MaxPos     int
	FluxStdDev float64 // sample standard deviation across columns

	MeanUncertainty float64
	MeanSNR         float64 // mean of flux/uncertainty over valid columns
	PeakSNR         float64
}

// Calculate computes all statistics in one pass using Welford's online
// algorithm for the flux variance.
func Calculate(s *extract.Spectrum) Stats {
	out := Stats{Length: s.Len()}
	if s.Len() == 0 {
		return out
	}

	var (
		mean float64
		m2   float64
	)

	var sumUnc, sumSNR float64

	sawValid := false

	for i := 0; i < s.Len(); i++ {
		f := s.FluxAt(i)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			out.Bad++
			continue
		}

		out.Valid++
		out.TotalFlux += f

		if !sawValid || f < out.MinFlux {
			out.MinFlux = f
			out.MinPos = i
		}

		if !sawValid || f > out.MaxFlux {
			out.MaxFlux = f
			out.MaxPos = i
		}

		sawValid = true

		delta := f - mean
		mean += delta / float64(out.Valid)
		m2 += delta * (f - mean)

		u := s.UncertaintyAt(i)
		if u > 0 && !math.IsNaN(u) {
			sumUnc += u

			snr := f / u
			sumSNR += snr

			if snr > out.PeakSNR {
				out.PeakSNR = snr
			}
		}
	}

	if out.Valid == 0 {
		return out
	}

	out.MeanFlux = mean

	if out.Valid > 1 {
		out.FluxStdDev = math.Sqrt(m2 / float64(out.Valid-1))
	}

	out.MeanUncertainty = sumUnc / float64(out.Valid)
	out.MeanSNR = sumSNR / float64(out.Valid)

	return out
}
