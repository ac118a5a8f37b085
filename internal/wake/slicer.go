package wake

import (
	"fmt"
	"math"

	"github.com/banshee-data/beambeam/internal/bberr"
	"gonum.org/v1/gonum/floats"
)

// UniformBinSlicer assigns particles to equal-width zeta bins, optionally
// repeated for a train of bunches.
type UniformBinSlicer struct {
	ZetaMin   float64 // lower edge of the first bin of bunch 0, m
	DZeta     float64 // bin width, m
	NumSlices int

	// With NumBunches zero every particle belongs to bunch 0. Otherwise
	// bunch i covers bins shifted by i*BunchSpacingZeta, and only bunches
	// FirstBunch to NumBunches-1 are filled.
	NumBunches       int
	FirstBunch       int
	BunchSpacingZeta float64
}

// NewUniformBinSlicer splits [lo, hi) into n bins for a single bunch.
func NewUniformBinSlicer(lo, hi float64, n int) (*UniformBinSlicer, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d slices", bberr.ErrInvalidSlices, n)
	}
	if !(hi > lo) {
		return nil, fmt.Errorf("%w: empty zeta range [%g, %g)", bberr.ErrInvalidParams, lo, hi)
	}
	return &UniformBinSlicer{ZetaMin: lo, DZeta: (hi - lo) / float64(n), NumSlices: n}, nil
}

// WithBunches returns a copy of s for a train of bunches.
func (s UniformBinSlicer) WithBunches(num, first int, spacing float64) *UniformBinSlicer {
	s.NumBunches, s.FirstBunch, s.BunchSpacingZeta = num, first, spacing
	return &s
}

// Centers returns the bin centres of bunch 0.
func (s *UniformBinSlicer) Centers() []float64 {
	out := make([]float64, s.NumSlices)
	first := s.ZetaMin + s.DZeta/2
	if s.NumSlices == 1 {
		out[0] = first
		return out
	}
	return floats.Span(out, first, first+float64(s.NumSlices-1)*s.DZeta)
}

// Slices is the result of binning a set of particles.
type Slices struct {
	// SliceOf and BunchOf hold the bin of each particle; -1 for particles
	// outside every bin.
	SliceOf []int
	BunchOf []int
	// Weight is the summed weight per bin, indexed by slice + bunch*NumSlices.
	Weight []float64
}

// Slice bins particles at zetas. weights may be nil for unit weights.
func (s *UniformBinSlicer) Slice(zetas, weights []float64) (*Slices, error) {
	if weights != nil && len(weights) != len(zetas) {
		return nil, fmt.Errorf("%w: %d weights for %d particles", bberr.ErrInvalidParams, len(weights), len(zetas))
	}
	bunches := s.NumBunches
	if bunches <= 0 {
		bunches = 1
	}
	out := &Slices{
		SliceOf: make([]int, len(zetas)),
		BunchOf: make([]int, len(zetas)),
		Weight:  make([]float64, bunches*s.NumSlices),
	}
	for i, z := range zetas {
		bunch, edge, ok := 0, s.ZetaMin, true
		if s.NumBunches > 0 {
			bunch = int(math.Floor((z - s.ZetaMin) / s.BunchSpacingZeta))
			if bunch >= s.FirstBunch && bunch < s.NumBunches {
				edge = s.ZetaMin + float64(bunch)*s.BunchSpacingZeta
			} else {
				bunch, ok = -1, false
			}
		}
		out.BunchOf[i] = bunch

		slice := int(math.Floor((z - edge) / s.DZeta))
		if !ok || slice < 0 || slice >= s.NumSlices {
			out.SliceOf[i] = -1
			continue
		}
		out.SliceOf[i] = slice
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		out.Weight[slice+bunch*s.NumSlices] += w
	}
	return out, nil
}

// BunchWeight returns the bin weights of one bunch.
func (sl *Slices) BunchWeight(bunch, numSlices int) []float64 {
	return sl.Weight[bunch*numSlices : (bunch+1)*numSlices]
}
