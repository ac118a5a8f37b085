package encounter

import (
	"fmt"

	"github.com/banshee-data/beambeam/internal/bberr"
	"gonum.org/v1/gonum/stat/distuv"
)

// Slicing is a constant-charge slicing of a longitudinal profile.
type Slicing struct {
	// Centroids are the charge-weighted mean positions of the slices.
	Centroids []float64
	// Cuts are the N-1 interior slice boundaries (empty for one slice).
	Cuts []float64
	// Charges are the per-slice charges, all equal to total/N.
	Charges []float64
}

// ConstantChargeSlicing splits a Gaussian bunch of RMS length sigmaz into n
// slices of equal charge.
//
// The cuts are the k/n quantiles of the Gaussian. The centroid of the slice
// between cuts a and b is -sigmaz^2 (rho(b) - rho(a)) n, with rho the
// Gaussian density and the outer cuts at -inf and +inf.
func ConstantChargeSlicing(total, sigmaz float64, n int) (Slicing, error) {
	switch {
	case n < 1:
		return Slicing{}, fmt.Errorf("%w: %d", bberr.ErrInvalidSlices, n)
	case n == 1:
		return Slicing{
			Centroids: []float64{0},
			Cuts:      []float64{},
			Charges:   []float64{total},
		}, nil
	}
	if !(sigmaz > 0) {
		return Slicing{}, fmt.Errorf("%w: bunch length must be positive to slice, got %g", bberr.ErrInvalidParams, sigmaz)
	}

	profile := distuv.Normal{Mu: 0, Sigma: sigmaz}
	nf := float64(n)

	cuts := make([]float64, n-1)
	for k := 1; k < n; k++ {
		cuts[k-1] = profile.Quantile(float64(k) / nf)
	}

	// sigmaz^2 * rho(z) = sigmaz/sqrt(2 pi) * exp(-z^2 / (2 sigmaz^2))
	edge := func(z float64) float64 {
		return sigmaz * sigmaz * profile.Prob(z)
	}

	centroids := make([]float64, n)
	centroids[0] = -edge(cuts[0]) * nf
	for i := 0; i < n-2; i++ {
		centroids[i+1] = -(edge(cuts[i+1]) - edge(cuts[i])) * nf
	}
	centroids[n-1] = edge(cuts[n-2]) * nf

	charges := make([]float64, n)
	for i := range charges {
		charges[i] = total / nf
	}

	return Slicing{Centroids: centroids, Cuts: cuts, Charges: charges}, nil
}
