package resolve

import (
	"math"

	"github.com/banshee-data/beambeam/internal/geometry"
)

// ComputeSeparations fills separations, slope differences and the crossing
// angle and plane of every encounter. Partners must have been
// cross-referenced. With crabbing, the raw separations are kept in the
// NoCrab fields and the partner's crab displacement is added.
func ComputeSeparations(bt *BeamTable) error {
	for _, r := range bt.Rows() {
		sx, sy, err := geometry.Separation(r.SelfLab, r.OtherLab)
		if err != nil {
			return err
		}
		r.SeparationX, r.SeparationY = sx, sy

		r.DPx = r.SelfLab.Px - r.OtherLab.Px
		r.DPy = r.SelfLab.Py - r.OtherLab.Py
		r.Alpha, r.Phi = FindAlphaAndPhi(r.DPx, r.DPy)

		if bt.Crabbing {
			r.SeparationXNoCrab, r.SeparationYNoCrab = r.SeparationX, r.SeparationY
			r.SeparationX += r.OtherCrab.X
			r.SeparationY += r.OtherCrab.Y
		}
	}
	return nil
}

// phiZero is the half crossing angle below which the crossing plane is
// undefined and set to zero.
const phiZero = 1e-20

// FindAlphaAndPhi returns the crossing plane alpha and the half crossing
// angle phi for the slope differences dpx, dpy.
//
// |phi| is half the norm of (dpx, dpy). The sign of phi and the choice of
// arctangent depend on the octant, so that alpha stays within [-pi/4, 3pi/4]
// and (2 phi cos alpha, 2 phi sin alpha) reproduces (dpx, dpy).
func FindAlphaAndPhi(dpx, dpy float64) (alpha, phi float64) {
	absphi := math.Sqrt(dpx*dpx+dpy*dpy) / 2
	if absphi < phiZero {
		return 0, absphi
	}

	if dpy >= 0 {
		if dpx >= 0 {
			if math.Abs(dpx) >= math.Abs(dpy) {
				return math.Atan(dpy / dpx), absphi
			}
			return math.Pi/2 - math.Atan(dpx/dpy), absphi
		}
		if math.Abs(dpx) < math.Abs(dpy) {
			return math.Pi/2 - math.Atan(dpx/dpy), absphi
		}
		return math.Atan(dpy / dpx), -absphi
	}

	if dpx <= 0 {
		if math.Abs(dpx) >= math.Abs(dpy) {
			return math.Atan(dpy / dpx), -absphi
		}
		return math.Pi/2 - math.Atan(dpx/dpy), -absphi
	}
	if math.Abs(dpx) <= math.Abs(dpy) {
		return math.Pi/2 - math.Atan(dpx/dpy), -absphi
	}
	return math.Atan(dpy / dpx), absphi
}
